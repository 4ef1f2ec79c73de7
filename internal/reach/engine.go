// Package reach classifies target folios against a zone projection:
// for each folio it derives the zones where the folio's class
// footprint is fully reachable and collapses that into the tri-state
// REACHABLE / CONDITIONAL / UNREACHABLE verdict.
package reach

import (
	"fmt"

	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/store"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// Engine classifies folios against one immutable store. Stateless per
// query; safe for concurrent use.
type Engine struct {
	store    *store.Store
	taxonomy types.Taxonomy
}

// NewEngine creates a reachability engine.
func NewEngine(st *store.Store, taxonomy types.Taxonomy) (*Engine, error) {
	if st == nil {
		return nil, fmt.Errorf("engine needs a store")
	}
	if err := taxonomy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy: %w", err)
	}
	return &Engine{store: st, taxonomy: taxonomy}, nil
}

// Classify produces exactly one FolioResult per target folio. The
// verdict is a pure function of the folio footprint and the zone
// reachability map; results are never partially emitted.
func (e *Engine) Classify(proj types.Projection) map[string]types.FolioResult {
	timer := logging.StartTimer(logging.CategoryEngine, "Classify")
	defer timer.Stop()

	reachableInC := types.NewClassSet()
	if zr, ok := proj.Zones[types.FineC]; ok {
		reachableInC = zr.Reachable
	}

	results := make(map[string]types.FolioResult, len(e.store.Folios()))
	for _, f := range e.store.Folios() {
		var reachableZones []types.FineZone
		for _, zone := range e.taxonomy.Fine {
			if f.RequiredClasses.SubsetOf(proj.Zones[zone].Reachable) {
				reachableZones = append(reachableZones, zone)
			}
		}

		status := types.StatusUnreachable
		for _, zone := range reachableZones {
			if zone == types.FineC {
				status = types.StatusReachable
				break
			}
		}
		if status != types.StatusReachable && len(reachableZones) > 0 {
			status = types.StatusConditional
		}

		// Missing classes are always computed against zone C, even
		// for REACHABLE folios (where the set is empty).
		missing := f.RequiredClasses.Minus(reachableInC)

		results[f.ID] = types.FolioResult{
			FolioID:         f.ID,
			Status:          status,
			RequiredClasses: f.RequiredClasses,
			MissingClasses:  missing,
			ReachableZones:  reachableZones,
		}
		logging.Engine("folio %s: status=%s zones=%v missing=%v",
			f.ID, status, reachableZones, missing.Sorted())
	}
	return results
}
