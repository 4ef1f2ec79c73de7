package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/epilectrik/voynich-sub021/internal/config"
	"github.com/epilectrik/voynich-sub021/internal/store"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// writeTestCorpus materializes a small SQLite corpus in a temp dir.
func writeTestCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.db")
	snap := store.Snapshot{
		Classes: []types.InstructionClass{
			{ID: 1, Role: types.RoleKernel, RequiredVocabulary: types.NewVocabSet()},
			{ID: 2, Role: types.RoleLexical, RequiredVocabulary: types.NewVocabSet("ked")},
		},
		Pages: []types.DiagramPage{
			{ID: "f67r", Vocabulary: types.NewVocabSet("ked")},
			{ID: "f68v", Vocabulary: types.NewVocabSet()},
		},
		Folios: []types.TargetFolio{
			{ID: "f103r", RequiredClasses: types.NewClassSet(1, 2)},
		},
		Legality: map[string][]types.Zone{"ked": {types.ZoneC}},
		Spread:   map[string]int{"ked": 1},
	}
	if err := store.WriteCorpus(path, snap); err != nil {
		t.Fatalf("failed to write corpus: %v", err)
	}
	return path
}

// setupCLI resets global command state between tests.
func setupCLI(t *testing.T, corpus string, thresh int, asJSON bool) {
	t.Helper()
	store.ResetShared()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	cfg.Logging.Enabled = false
	cfg.Corpus.DatabasePath = corpus
	cfg.Engine.Threshold = thresh
	// Pinned affix tables so "qokedy" segments to middle "ked".
	cfg.Segmentation.Prefixes = []string{"qo"}
	cfg.Segmentation.Suffixes = []string{"y"}
	jsonOut = asJSON
	t.Cleanup(func() {
		store.ResetShared()
		jsonOut = false
	})
}

func TestCorpusStatsCommand(t *testing.T) {
	setupCLI(t, writeTestCorpus(t), 4, false)

	var buf bytes.Buffer
	corpusStatsCmd.SetOut(&buf)
	if err := runCorpusStats(corpusStatsCmd, nil); err != nil {
		t.Fatalf("corpus stats failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Instruction classes: 2 (1 kernel)", "Diagram pages:       2", "Target folios:       1"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q; got:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommandText(t *testing.T) {
	setupCLI(t, writeTestCorpus(t), 4, false)
	analyzeAsRecord = false

	var buf bytes.Buffer
	analyzeCmd.SetOut(&buf)
	// "qokedy" strips prefix qo and suffix y, leaving middle "ked".
	if err := runAnalyze(analyzeCmd, []string{"qokedy"}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Bundle: ked") {
		t.Errorf("expected bundle with unit ked, got:\n%s", out)
	}
	if !strings.Contains(out, "Compatible pages: 1") {
		t.Errorf("restricted unit should leave one compatible page, got:\n%s", out)
	}
	if !strings.Contains(out, "f103r: REACHABLE") {
		t.Errorf("expected f103r REACHABLE, got:\n%s", out)
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	setupCLI(t, writeTestCorpus(t), 4, true)
	analyzeAsRecord = false

	var buf bytes.Buffer
	analyzeCmd.SetOut(&buf)
	if err := runAnalyze(analyzeCmd, []string{"qokedy"}); err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var res resultJSON
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if res.QueryID == "" {
		t.Errorf("JSON output missing query id")
	}
	if len(res.Bundle) != 1 || res.Bundle[0] != "ked" {
		t.Errorf("JSON bundle = %v, want [ked]", res.Bundle)
	}
	if got := res.Folios["f103r"].Status; got != "REACHABLE" {
		t.Errorf("JSON folio status = %q, want REACHABLE", got)
	}
}

func TestAnalyzeRejectsMissingThreshold(t *testing.T) {
	setupCLI(t, writeTestCorpus(t), 0, false)

	if err := runAnalyze(analyzeCmd, []string{"qokedy"}); err == nil {
		t.Fatalf("expected error for unset threshold")
	}
}

func TestExportCommandIncludesQueryFacts(t *testing.T) {
	setupCLI(t, writeTestCorpus(t), 4, false)
	exportQuery = "qokedy"
	exportOut = ""
	t.Cleanup(func() { exportQuery = "" })

	var buf bytes.Buffer
	exportCmd.SetOut(&buf)
	if err := runExport(exportCmd, nil); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`instruction_class(1, /kernel).`, `query_unit(`, `folio_status(`} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q; got:\n%s", want, out)
		}
	}
}
