package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/epilectrik/voynich-sub021/internal/types"
)

func TestDefaultConfigHasNoThreshold(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Engine.Threshold != 0 {
		t.Fatalf("default threshold must be unset, got %d", cfg.Engine.Threshold)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("defaults must not validate without an explicit threshold")
	}
}

func TestValidateAcceptsExplicitThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Threshold = 4
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Name != "voynich-sub021" {
		t.Fatalf("unexpected default name: %s", cfg.Name)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub021.yaml")

	cfg := DefaultConfig()
	cfg.Engine.Threshold = 7
	cfg.Corpus.DatabasePath = "corpus/test.db"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Engine.Threshold != 7 {
		t.Fatalf("threshold not round-tripped: %d", loaded.Engine.Threshold)
	}
	if loaded.Corpus.DatabasePath != "corpus/test.db" {
		t.Fatalf("database path not round-tripped: %s", loaded.Corpus.DatabasePath)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOYREACH_THRESHOLD", "9")
	t.Setenv("VOYREACH_CORPUS_DB", "/tmp/alt.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Engine.Threshold != 9 {
		t.Fatalf("env threshold override not applied: %d", cfg.Engine.Threshold)
	}
	if cfg.Corpus.DatabasePath != "/tmp/alt.db" {
		t.Fatalf("env corpus override not applied: %s", cfg.Corpus.DatabasePath)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine: ["), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTaxonomyDefault(t *testing.T) {
	cfg := DefaultConfig()
	tax, err := cfg.Taxonomy()
	if err != nil {
		t.Fatalf("default taxonomy failed: %v", err)
	}
	if tax.Canonical(types.FineR2) != types.ZoneR {
		t.Fatalf("default taxonomy lost R2 consolidation")
	}
}

func TestTaxonomyOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.FineZones = []string{"C", "P"}
	cfg.Engine.Consolidation = map[string]string{"C": "C", "P": "P"}

	tax, err := cfg.Taxonomy()
	if err != nil {
		t.Fatalf("override taxonomy failed: %v", err)
	}
	if len(tax.Fine) != 2 {
		t.Fatalf("expected 2 fine zones, got %d", len(tax.Fine))
	}

	// Half-specified override is rejected.
	cfg.Engine.Consolidation = nil
	if _, err := cfg.Taxonomy(); err == nil {
		t.Fatalf("expected error for partial taxonomy override")
	}

	// Consolidation to an unknown bucket is rejected.
	cfg.Engine.Consolidation = map[string]string{"C": "Q", "P": "P"}
	if _, err := cfg.Taxonomy(); err == nil {
		t.Fatalf("expected error for unknown canonical zone")
	}
}
