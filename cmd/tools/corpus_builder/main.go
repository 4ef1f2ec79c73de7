// Package main implements the corpus builder tool. It reads the
// hand-curated YAML source artifact (instruction classes, diagram
// pages, target folios, vocabulary legality and spread) and bakes it
// into the SQLite corpus database consumed by the reachability engine.
//
// Usage:
//
//	go run ./cmd/tools/corpus_builder -in data/sub021_source.yaml -out data/sub021_corpus.db
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epilectrik/voynich-sub021/internal/store"
	"github.com/epilectrik/voynich-sub021/internal/types"
)

// sourceArtifact is the YAML shape of the curated corpus source.
type sourceArtifact struct {
	Classes []struct {
		ID         int      `yaml:"id"`
		Role       string   `yaml:"role"`
		Vocabulary []string `yaml:"vocabulary"`
	} `yaml:"classes"`
	Pages []struct {
		ID         string   `yaml:"id"`
		Vocabulary []string `yaml:"vocabulary"`
	} `yaml:"pages"`
	Folios []struct {
		ID      string `yaml:"id"`
		Classes []int  `yaml:"classes"`
	} `yaml:"folios"`
	Legality map[string][]string `yaml:"legality"`
	Spread   map[string]int      `yaml:"spread"`
}

func main() {
	inPath := flag.String("in", "data/sub021_source.yaml", "YAML corpus source")
	outPath := flag.String("out", "data/sub021_corpus.db", "SQLite corpus output")
	flag.Parse()

	fmt.Println("=================================================")
	fmt.Println("  CORPUS BUILDER - Reachability Corpus DB")
	fmt.Println("=================================================")
	fmt.Println()

	snap, err := loadSource(*inPath)
	if err != nil {
		fmt.Printf("ERROR: Failed to read corpus source: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[OK] Source parsed: %d classes, %d pages, %d folios\n",
		len(snap.Classes), len(snap.Pages), len(snap.Folios))

	// NewStore runs the full validation pass; bail before writing
	// anything if the source is inconsistent.
	st, err := store.NewStore(snap)
	if err != nil {
		fmt.Printf("ERROR: Corpus source failed validation: %v\n", err)
		os.Exit(1)
	}
	stats := st.Stats()
	fmt.Printf("[OK] Validation passed: %d kernel classes, %d legality entries, %d spread entries\n",
		stats.KernelClasses, stats.LegalityEntries, stats.SpreadEntries)

	if err := store.WriteCorpus(*outPath, snap); err != nil {
		fmt.Printf("ERROR: Failed to write corpus database: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("[OK] Corpus written to %s\n", *outPath)

	// Reload through the normal path to prove the artifact is usable.
	if _, err := store.Open(*outPath); err != nil {
		fmt.Printf("ERROR: Round-trip load failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("[OK] Round-trip load verified")
}

func loadSource(path string) (store.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Snapshot{}, err
	}
	var src sourceArtifact
	if err := yaml.Unmarshal(data, &src); err != nil {
		return store.Snapshot{}, fmt.Errorf("bad YAML: %w", err)
	}

	snap := store.Snapshot{
		Legality: make(map[string][]types.Zone, len(src.Legality)),
		Spread:   src.Spread,
	}
	for _, c := range src.Classes {
		snap.Classes = append(snap.Classes, types.InstructionClass{
			ID:                 types.ClassID(c.ID),
			Role:               types.ParseRole(c.Role),
			RequiredVocabulary: types.NewVocabSet(c.Vocabulary...),
		})
	}
	for _, p := range src.Pages {
		snap.Pages = append(snap.Pages, types.DiagramPage{
			ID:         p.ID,
			Vocabulary: types.NewVocabSet(p.Vocabulary...),
		})
	}
	for _, f := range src.Folios {
		ids := make([]types.ClassID, 0, len(f.Classes))
		for _, id := range f.Classes {
			ids = append(ids, types.ClassID(id))
		}
		snap.Folios = append(snap.Folios, types.TargetFolio{
			ID:              f.ID,
			RequiredClasses: types.NewClassSet(ids...),
		})
	}
	for unit, zones := range src.Legality {
		zs := make([]types.Zone, 0, len(zones))
		for _, z := range zones {
			zs = append(zs, types.Zone(z))
		}
		snap.Legality[unit] = zs
	}
	return snap, nil
}
