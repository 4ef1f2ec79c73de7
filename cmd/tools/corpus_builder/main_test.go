package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/epilectrik/voynich-sub021/internal/store"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

const sampleSource = `
classes:
  - id: 1
    role: kernel
  - id: 2
    role: lexical
    vocabulary: [ol]
pages:
  - id: f67r
    vocabulary: [ol, che]
folios:
  - id: f103r
    classes: [1, 2]
legality:
  ol: [C, P]
spread:
  ol: 1
  che: 1
`

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	return path
}

func TestLoadSource(t *testing.T) {
	snap, err := loadSource(writeSource(t, sampleSource))
	if err != nil {
		t.Fatalf("loadSource failed: %v", err)
	}

	if len(snap.Classes) != 2 || len(snap.Pages) != 1 || len(snap.Folios) != 1 {
		t.Fatalf("unexpected counts: %d classes, %d pages, %d folios",
			len(snap.Classes), len(snap.Pages), len(snap.Folios))
	}
	if snap.Classes[0].Role != types.RoleKernel {
		t.Errorf("class 1 role = %q, want kernel", snap.Classes[0].Role)
	}
	if !snap.Classes[1].RequiredVocabulary.Has("ol") {
		t.Errorf("class 2 should require unit ol")
	}
	if got := snap.Legality["ol"]; len(got) != 2 {
		t.Errorf("legality for ol = %v, want two zones", got)
	}

	// The snapshot must survive full store validation.
	if _, err := store.NewStore(snap); err != nil {
		t.Fatalf("sample source failed validation: %v", err)
	}
}

func TestLoadSourceBadYAML(t *testing.T) {
	_, err := loadSource(writeSource(t, "classes: [not a mapping"))
	if err == nil {
		t.Fatalf("expected error for malformed YAML")
	}
}

func TestLoadSourceMissingFile(t *testing.T) {
	_, err := loadSource(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
