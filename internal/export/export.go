// Package export renders corpus snapshots and query results as
// datalog facts, both as Mangle AST atoms for direct engine loading
// and as textual .mg source for offline analysis.
package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/mangle/ast"

	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/store"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// Name is a Mangle name constant (starting with /). The explicit type
// avoids ambiguity between ordinary strings and atoms.
type Name string

// Fact is a single ground atom over the corpus vocabulary.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// String returns the datalog source form of the fact.
func (f Fact) String() string {
	args := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case Name:
			args = append(args, string(v))
		case string:
			args = append(args, fmt.Sprintf("%q", v))
		case types.ClassID:
			args = append(args, fmt.Sprintf("%d", int(v)))
		case int:
			args = append(args, fmt.Sprintf("%d", v))
		case int64:
			args = append(args, fmt.Sprintf("%d", v))
		default:
			args = append(args, fmt.Sprintf("%v", v))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// ToAtom converts the fact to a Mangle AST atom for store insertion.
func (f Fact) ToAtom() (ast.Atom, error) {
	terms := make([]ast.BaseTerm, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case Name:
			c, err := ast.Name(string(v))
			if err != nil {
				return ast.Atom{}, fmt.Errorf("bad name constant %q in %s: %w", v, f.Predicate, err)
			}
			terms = append(terms, c)
		case string:
			terms = append(terms, ast.String(v))
		case types.ClassID:
			terms = append(terms, ast.Number(int64(v)))
		case int:
			terms = append(terms, ast.Number(int64(v)))
		case int64:
			terms = append(terms, ast.Number(v))
		default:
			terms = append(terms, ast.String(fmt.Sprintf("%v", v)))
		}
	}
	return ast.NewAtom(f.Predicate, terms...), nil
}

func zoneName(z types.Zone) Name {
	return Name("/" + strings.ToLower(string(z)))
}

func fineZoneName(f types.FineZone) Name {
	return Name("/" + strings.ToLower(string(f)))
}

func statusName(s types.ReachabilityStatus) Name {
	return Name("/" + strings.ToLower(s.String()))
}

// StoreFacts dumps the loaded corpus as ground facts. The output is
// deterministic: facts are emitted in sorted entity order.
func StoreFacts(st *store.Store) []Fact {
	var facts []Fact

	for _, c := range st.Classes() {
		facts = append(facts, Fact{
			Predicate: "instruction_class",
			Args:      []interface{}{c.ID, Name("/" + string(c.Role))},
		})
		for _, unit := range c.RequiredVocabulary.Sorted() {
			facts = append(facts, Fact{
				Predicate: "class_requires",
				Args:      []interface{}{c.ID, unit},
			})
		}
	}

	for _, p := range st.Pages() {
		facts = append(facts, Fact{Predicate: "diagram_page", Args: []interface{}{p.ID}})
		for _, unit := range p.Vocabulary.Sorted() {
			facts = append(facts, Fact{
				Predicate: "page_vocab",
				Args:      []interface{}{p.ID, unit},
			})
		}
	}

	for _, f := range st.Folios() {
		facts = append(facts, Fact{Predicate: "target_folio", Args: []interface{}{f.ID}})
		for _, id := range f.RequiredClasses.Sorted() {
			facts = append(facts, Fact{
				Predicate: "folio_requires",
				Args:      []interface{}{f.ID, id},
			})
		}
	}

	for _, unit := range st.LegalityUnits() {
		for _, z := range st.Legality(unit).Sorted() {
			facts = append(facts, Fact{
				Predicate: "vocab_legal",
				Args:      []interface{}{unit, zoneName(z)},
			})
		}
	}

	for _, unit := range st.SpreadUnits() {
		facts = append(facts, Fact{
			Predicate: "vocab_spread",
			Args:      []interface{}{unit, st.Spread(unit)},
		})
	}

	return facts
}

// ResultFacts dumps one query result as ground facts keyed by its
// query id, suitable for joining against the corpus dump.
func ResultFacts(res types.Result) []Fact {
	var facts []Fact

	for _, unit := range res.Bundle.Vocabulary.Sorted() {
		facts = append(facts, Fact{
			Predicate: "query_unit",
			Args:      []interface{}{res.QueryID, unit},
		})
	}

	zones := make([]types.FineZone, 0, len(res.GrammarByZone))
	for z := range res.GrammarByZone {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	for _, z := range zones {
		for _, id := range res.GrammarByZone[z].Reachable.Sorted() {
			facts = append(facts, Fact{
				Predicate: "zone_reachable",
				Args:      []interface{}{res.QueryID, fineZoneName(z), id},
			})
		}
	}

	folios := make([]string, 0, len(res.Folios))
	for id := range res.Folios {
		folios = append(folios, id)
	}
	sort.Strings(folios)
	for _, id := range folios {
		fr := res.Folios[id]
		facts = append(facts, Fact{
			Predicate: "folio_status",
			Args:      []interface{}{res.QueryID, id, statusName(fr.Status)},
		})
		for _, z := range fr.ReachableZones {
			facts = append(facts, Fact{
				Predicate: "folio_zone",
				Args:      []interface{}{res.QueryID, id, fineZoneName(z)},
			})
		}
		for _, cid := range fr.MissingClasses.Sorted() {
			facts = append(facts, Fact{
				Predicate: "folio_missing",
				Args:      []interface{}{res.QueryID, id, cid},
			})
		}
	}

	return facts
}

// WriteTo writes facts as datalog source, one per line.
func WriteTo(w io.Writer, facts []Fact) error {
	for _, f := range facts {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return fmt.Errorf("failed to write fact: %w", err)
		}
	}
	logging.Get(logging.CategoryExport).Debug("wrote %d facts", len(facts))
	return nil
}

// Atoms converts facts to Mangle atoms, failing on the first bad one.
func Atoms(facts []Fact) ([]ast.Atom, error) {
	atoms := make([]ast.Atom, 0, len(facts))
	for _, f := range facts {
		a, err := f.ToAtom()
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
	}
	return atoms, nil
}
