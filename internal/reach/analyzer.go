package reach

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/epilectrik/voynich-sub021/internal/bundle"
	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/projector"
	"github.com/epilectrik/voynich-sub021/internal/store"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// Analyzer is the query facade consumed by external callers (CLIs,
// viewers, ad hoc scripts): token or record in, full Result out. It
// composes the bundle builder, zone projector, and engine over one
// shared store and is safe for unlimited concurrent queries.
type Analyzer struct {
	builder   *bundle.Builder
	projector *projector.Projector
	engine    *Engine
}

// NewAnalyzer wires the pipeline over a loaded store.
func NewAnalyzer(st *store.Store, seg bundle.Segmenter, threshold int, taxonomy types.Taxonomy) (*Analyzer, error) {
	proj, err := projector.New(st, threshold, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to build projector: %w", err)
	}
	eng, err := NewEngine(st, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}
	return &Analyzer{
		builder:   bundle.NewBuilder(seg),
		projector: proj,
		engine:    eng,
	}, nil
}

// Projector exposes the underlying projector for diagnostics.
func (a *Analyzer) Projector() *projector.Projector {
	return a.projector
}

// AnalyzeToken runs the full pipeline for one token.
func (a *Analyzer) AnalyzeToken(token string) types.Result {
	return a.analyze(a.builder.ComputeBundle(token), fmt.Sprintf("token %q", token))
}

// AnalyzeRecord runs the full pipeline for an ordered record of
// tokens.
func (a *Analyzer) AnalyzeRecord(record []string) types.Result {
	return a.analyze(a.builder.ComputeRecordBundle(record), fmt.Sprintf("record of %d tokens", len(record)))
}

// AnalyzeBundle runs projection and classification over an
// already-built bundle.
func (a *Analyzer) AnalyzeBundle(b types.Bundle) types.Result {
	return a.analyze(b, "prebuilt bundle")
}

func (a *Analyzer) analyze(b types.Bundle, desc string) types.Result {
	queryID := uuid.NewString()
	log := logging.Get(logging.CategoryQuery)
	log.Query(queryID, "start: %s, %d vocabulary units", desc, len(b.Vocabulary))

	proj := a.projector.Project(b)
	folios := a.engine.Classify(proj)

	log.Query(queryID, "done: %d compatible pages, %d folio verdicts",
		len(proj.CompatiblePages), len(folios))

	return types.Result{
		QueryID:         queryID,
		Bundle:          b,
		CompatiblePages: proj.CompatiblePages,
		GrammarByZone:   proj.Zones,
		Folios:          folios,
	}
}
