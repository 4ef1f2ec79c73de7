// Package projector propagates a query bundle through the diagram
// layer: it filters the diagram pages down to the compatible set,
// derives the effective legal vocabulary per canonical zone, and turns
// that into per-zone reachable/pruned instruction-class sets.
package projector

import (
	"fmt"
	"sort"

	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/store"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// Projector computes zone projections against one immutable store.
// Safe for concurrent use: it holds no per-query state.
type Projector struct {
	store     *store.Store
	threshold int
	taxonomy  types.Taxonomy
}

// New creates a projector. threshold is the page-spread cutoff
// separating RESTRICTED from UNIVERSAL vocabulary; it has no default
// and must be >= 1.
func New(st *store.Store, threshold int, taxonomy types.Taxonomy) (*Projector, error) {
	if st == nil {
		return nil, fmt.Errorf("projector needs a store")
	}
	if threshold < 1 {
		return nil, fmt.Errorf("spread threshold must be >= 1, got %d", threshold)
	}
	if err := taxonomy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy: %w", err)
	}
	return &Projector{store: st, threshold: threshold, taxonomy: taxonomy}, nil
}

// Threshold returns the configured spread cutoff.
func (p *Projector) Threshold() int {
	return p.threshold
}

// Categorize classifies one vocabulary unit by its page spread.
func (p *Projector) Categorize(unit string) types.SpreadCategory {
	spread := p.store.Spread(unit)
	switch {
	case spread == 0:
		return types.SpreadUnknown
	case spread < p.threshold:
		return types.SpreadRestricted
	default:
		return types.SpreadUniversal
	}
}

// Project propagates the bundle through the diagram layer. An empty
// bundle (and equally a bundle with no RESTRICTED units) is compatible
// with every page, yielding the maximal reachability per zone; it is
// the "no constraint" floor, not an error.
func (p *Projector) Project(b types.Bundle) types.Projection {
	timer := logging.StartTimer(logging.CategoryProjector, "Project")
	defer timer.Stop()

	// Step 1: only RESTRICTED units participate in page filtering.
	restricted := types.NewVocabSet()
	for unit := range b.Vocabulary {
		if p.Categorize(unit) == types.SpreadRestricted {
			restricted.Add(unit)
		}
	}

	// Step 2: a page is compatible iff it carries every restricted
	// unit of the bundle.
	var compatible []types.DiagramPage
	for _, page := range p.store.Pages() {
		if page.Vocabulary.ContainsAll(restricted) {
			compatible = append(compatible, page)
		}
	}
	logging.Projector("bundle of %d units (%d restricted): %d/%d pages compatible",
		len(b.Vocabulary), len(restricted), len(compatible), len(p.store.Pages()))

	// Pool the compatible pages' vocabulary once; zones then select
	// from the pool by legality.
	pool := types.NewVocabSet()
	for _, page := range compatible {
		pool = pool.Union(page.Vocabulary)
	}

	// Step 3: effective legal vocabulary per canonical zone.
	effective := make(map[types.Zone]types.VocabSet, len(types.CanonicalZones))
	for _, z := range types.CanonicalZones {
		legal := types.NewVocabSet()
		for unit := range pool {
			if p.store.Legality(unit).Has(z) {
				legal.Add(unit)
			}
		}
		effective[z] = legal
	}

	// Step 4: reachable classes per canonical zone, computed once and
	// shared by every fine zone that consolidates there.
	allClasses := p.store.ClassIDs()
	classes := p.store.Classes()
	byCanonical := make(map[types.Zone]types.ZoneReachability, len(effective))
	for z, legal := range effective {
		reachable := types.NewClassSet()
		for _, c := range classes {
			if c.IsKernel() || legal.ContainsAll(c.RequiredVocabulary) {
				reachable.Add(c.ID)
			}
		}
		byCanonical[z] = types.ZoneReachability{
			Reachable: reachable,
			Pruned:    allClasses.Minus(reachable),
		}
	}

	// Step 5: fine zones keep their own key but reuse the canonical
	// legality result.
	zones := make(map[types.FineZone]types.ZoneReachability, len(p.taxonomy.Fine))
	for _, f := range p.taxonomy.Fine {
		zones[f] = byCanonical[p.taxonomy.Canonical(f)]
	}

	pageIDs := make([]string, 0, len(compatible))
	for _, page := range compatible {
		pageIDs = append(pageIDs, page.ID)
	}
	sort.Strings(pageIDs)

	return types.Projection{
		Zones:           zones,
		CompatiblePages: pageIDs,
		EffectiveLegal:  effective,
	}
}
