// Package store builds and serves the static knowledge base of the
// reachability engine: instruction classes, diagram pages, target
// folios, vocabulary legality, and vocabulary spread. The store is
// constructed once from the corpus artifact, validated atomically, and
// never mutated afterwards, so it is safe to share across concurrent
// queries without locking.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// DataLoadError reports a missing or internally inconsistent corpus
// artifact. Construction fails atomically: no partially built store is
// ever published when this error is returned.
type DataLoadError struct {
	Artifact string // the table/file that is missing or invalid
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corpus load failed: artifact %q: %s: %v", e.Artifact, e.Reason, e.Err)
	}
	return fmt.Sprintf("corpus load failed: artifact %q: %s", e.Artifact, e.Reason)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// loadErrorf builds a DataLoadError with a formatted reason.
func loadErrorf(artifact string, format string, args ...interface{}) error {
	return &DataLoadError{Artifact: artifact, Reason: fmt.Sprintf(format, args...)}
}

// IsDataLoadError reports whether err is (or wraps) a DataLoadError.
func IsDataLoadError(err error) bool {
	var dle *DataLoadError
	return errors.As(err, &dle)
}

// Snapshot is the raw, unvalidated shape of a corpus as produced by
// the external data-preparation step. NewStore validates it and
// freezes it into a Store; WriteCorpus persists it as the SQLite
// artifact.
type Snapshot struct {
	Classes  []types.InstructionClass
	Pages    []types.DiagramPage
	Folios   []types.TargetFolio
	Legality map[string][]types.Zone
	Spread   map[string]int
}

// Store is the immutable knowledge base. Accessors return internal
// structures; callers must treat them as read-only.
type Store struct {
	classes  map[types.ClassID]types.InstructionClass
	classIDs types.ClassSet
	pages    []types.DiagramPage
	folios   []types.TargetFolio
	legality map[string]types.ZoneSet
	spread   map[string]int
}

// NewStore validates a snapshot and freezes it into a Store. Any
// inconsistency yields a DataLoadError naming the offending artifact
// and no store is returned.
func NewStore(snap Snapshot) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewStore")
	defer timer.Stop()

	if len(snap.Classes) == 0 {
		return nil, loadErrorf("classes", "no instruction classes defined")
	}

	classes := make(map[types.ClassID]types.InstructionClass, len(snap.Classes))
	classIDs := make(types.ClassSet, len(snap.Classes))
	for _, c := range snap.Classes {
		if c.ID < 1 {
			return nil, loadErrorf("classes", "invalid class id %d", c.ID)
		}
		if _, dup := classes[c.ID]; dup {
			return nil, loadErrorf("classes", "class id %d defined more than once", c.ID)
		}
		// Snapshot sets are cloned so later mutation of the caller's
		// snapshot cannot reach into the frozen store.
		c.RequiredVocabulary = c.RequiredVocabulary.Clone()
		classes[c.ID] = c
		classIDs.Add(c.ID)
	}

	pageIDs := make(map[string]bool, len(snap.Pages))
	for _, p := range snap.Pages {
		if p.ID == "" {
			return nil, loadErrorf("pages", "diagram page with empty id")
		}
		if pageIDs[p.ID] {
			return nil, loadErrorf("pages", "diagram page %q defined more than once", p.ID)
		}
		pageIDs[p.ID] = true
	}

	folioIDs := make(map[string]bool, len(snap.Folios))
	for _, f := range snap.Folios {
		if f.ID == "" {
			return nil, loadErrorf("folios", "target folio with empty id")
		}
		if folioIDs[f.ID] {
			return nil, loadErrorf("folios", "target folio %q defined more than once", f.ID)
		}
		folioIDs[f.ID] = true
		for id := range f.RequiredClasses {
			if !classIDs.Has(id) {
				return nil, loadErrorf("folio_classes", "target folio %q references undefined class %d", f.ID, id)
			}
		}
	}

	known := make(map[types.Zone]bool, len(types.CanonicalZones))
	for _, z := range types.CanonicalZones {
		known[z] = true
	}
	legality := make(map[string]types.ZoneSet, len(snap.Legality))
	for unit, zones := range snap.Legality {
		if len(zones) == 0 {
			// An explicit empty legality entry would make the unit
			// legal nowhere, which the model forbids: absence means
			// legal everywhere, presence must name zones.
			return nil, loadErrorf("vocab_legality", "unit %q has an empty legality set", unit)
		}
		set := make(types.ZoneSet, len(zones))
		for _, z := range zones {
			if !known[z] {
				return nil, loadErrorf("vocab_legality", "unit %q licensed in unknown zone %q", unit, z)
			}
			set[z] = struct{}{}
		}
		legality[unit] = set
	}

	spread := make(map[string]int, len(snap.Spread))
	for unit, n := range snap.Spread {
		if n < 0 {
			return nil, loadErrorf("vocab_spread", "unit %q has negative spread %d", unit, n)
		}
		spread[unit] = n
	}

	logging.Store("corpus loaded: %d classes, %d pages, %d folios, %d legality entries, %d spread entries",
		len(classes), len(snap.Pages), len(snap.Folios), len(legality), len(spread))

	pages := make([]types.DiagramPage, len(snap.Pages))
	for i, p := range snap.Pages {
		p.Vocabulary = p.Vocabulary.Clone()
		pages[i] = p
	}
	folios := make([]types.TargetFolio, len(snap.Folios))
	for i, f := range snap.Folios {
		f.RequiredClasses = f.RequiredClasses.Clone()
		folios[i] = f
	}

	return &Store{
		classes:  classes,
		classIDs: classIDs,
		pages:    pages,
		folios:   folios,
		legality: legality,
		spread:   spread,
	}, nil
}

// Class returns the instruction class with the given id. Like every
// accessor below, the returned sets are copies: callers cannot reach
// the store's internal state through them.
func (s *Store) Class(id types.ClassID) (types.InstructionClass, bool) {
	c, ok := s.classes[id]
	if !ok {
		return types.InstructionClass{}, false
	}
	c.RequiredVocabulary = c.RequiredVocabulary.Clone()
	return c, true
}

// Classes returns all instruction classes in ascending id order.
func (s *Store) Classes() []types.InstructionClass {
	out := make([]types.InstructionClass, 0, len(s.classes))
	for _, id := range s.classIDs.Sorted() {
		c := s.classes[id]
		c.RequiredVocabulary = c.RequiredVocabulary.Clone()
		out = append(out, c)
	}
	return out
}

// ClassIDs returns the set of all defined class ids.
func (s *Store) ClassIDs() types.ClassSet {
	return s.classIDs.Clone()
}

// Pages returns all diagram pages.
func (s *Store) Pages() []types.DiagramPage {
	out := make([]types.DiagramPage, len(s.pages))
	for i, p := range s.pages {
		p.Vocabulary = p.Vocabulary.Clone()
		out[i] = p
	}
	return out
}

// Folios returns all target folios.
func (s *Store) Folios() []types.TargetFolio {
	out := make([]types.TargetFolio, len(s.folios))
	for i, f := range s.folios {
		f.RequiredClasses = f.RequiredClasses.Clone()
		out[i] = f
	}
	return out
}

// Legality returns the set of canonical zones where a vocabulary unit
// is licensed. A unit with no legality entry is legal everywhere. The
// returned set is shared (this sits on the per-unit projection hot
// path) and must not be modified.
func (s *Store) Legality(unit string) types.ZoneSet {
	if zones, ok := s.legality[unit]; ok {
		return zones
	}
	return types.AllZones()
}

// HasLegalityEntry reports whether the unit has an explicit legality
// entry (diagnostics only; Legality already applies the default).
func (s *Store) HasLegalityEntry(unit string) bool {
	_, ok := s.legality[unit]
	return ok
}

// Spread returns the number of distinct diagram pages that carry the
// unit. A unit with no spread entry has spread 0.
func (s *Store) Spread(unit string) int {
	return s.spread[unit]
}

// LegalityUnits lists the units with explicit legality entries, sorted.
func (s *Store) LegalityUnits() []string {
	units := make([]string, 0, len(s.legality))
	for u := range s.legality {
		units = append(units, u)
	}
	sort.Strings(units)
	return units
}

// SpreadUnits lists the units with spread entries, sorted.
func (s *Store) SpreadUnits() []string {
	units := make([]string, 0, len(s.spread))
	for u := range s.spread {
		units = append(units, u)
	}
	sort.Strings(units)
	return units
}

// Stats summarizes the corpus for display.
type Stats struct {
	Classes         int
	KernelClasses   int
	Pages           int
	Folios          int
	LegalityEntries int
	SpreadEntries   int
}

// Stats returns corpus counts.
func (s *Store) Stats() Stats {
	st := Stats{
		Classes:         len(s.classes),
		Pages:           len(s.pages),
		Folios:          len(s.folios),
		LegalityEntries: len(s.legality),
		SpreadEntries:   len(s.spread),
	}
	for _, c := range s.classes {
		if c.IsKernel() {
			st.KernelClasses++
		}
	}
	return st
}
