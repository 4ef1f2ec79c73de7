package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisabledLoggingIsNoOp(t *testing.T) {
	if err := Initialize(Options{Enabled: false}); err != nil {
		t.Fatalf("disabled init failed: %v", err)
	}

	l := Get(CategoryStore)
	l.Info("this should go nowhere")
	if l.logger != nil {
		t.Fatalf("expected no-op logger when disabled")
	}
}

func TestEnabledLoggingWritesFile(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{Enabled: true, Dir: dir, Level: "debug"}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { _ = Initialize(Options{Enabled: false}) })

	Get(CategoryProjector).Info("projected %d pages", 3)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	var found string
	for _, e := range entries {
		if strings.Contains(e.Name(), string(CategoryProjector)) {
			found = filepath.Join(dir, e.Name())
		}
	}
	if found == "" {
		t.Fatalf("no projector log file created in %s", dir)
	}

	data, err := os.ReadFile(found)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), "projected 3 pages") {
		t.Fatalf("log line missing from file: %q", string(data))
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{Enabled: true, Dir: dir, Level: "warn"}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { _ = Initialize(Options{Enabled: false}) })

	l := Get(CategoryEngine)
	l.Debug("invisible")
	l.Info("also invisible")
	l.Warn("visible warning")

	entries, _ := os.ReadDir(dir)
	var content string
	for _, e := range entries {
		if strings.Contains(e.Name(), string(CategoryEngine)) {
			data, _ := os.ReadFile(filepath.Join(dir, e.Name()))
			content = string(data)
		}
	}
	if strings.Contains(content, "invisible") {
		t.Fatalf("level filter leaked: %q", content)
	}
	if !strings.Contains(content, "visible warning") {
		t.Fatalf("warn line missing: %q", content)
	}
}

func TestCategoryFilter(t *testing.T) {
	dir := t.TempDir()
	err := Initialize(Options{
		Enabled:    true,
		Dir:        dir,
		Level:      "debug",
		Categories: map[string]bool{string(CategoryBundle): false},
	})
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { _ = Initialize(Options{Enabled: false}) })

	if IsCategoryEnabled(CategoryBundle) {
		t.Fatalf("bundle category should be disabled")
	}
	if !IsCategoryEnabled(CategoryStore) {
		t.Fatalf("unlisted categories should stay enabled")
	}
}

func TestJSONFormat(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(Options{Enabled: true, Dir: dir, Level: "info", JSONFormat: true}); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { _ = Initialize(Options{Enabled: false}) })

	Get(CategoryQuery).Query("q-123", "classified %d folios", 5)

	entries, _ := os.ReadDir(dir)
	var content string
	for _, e := range entries {
		if strings.Contains(e.Name(), string(CategoryQuery)) {
			data, _ := os.ReadFile(filepath.Join(dir, e.Name()))
			content = string(data)
		}
	}
	if !strings.Contains(content, `"query":"q-123"`) {
		t.Fatalf("structured query id missing: %q", content)
	}
	if !strings.Contains(content, `"cat":"query"`) {
		t.Fatalf("structured category missing: %q", content)
	}
}
