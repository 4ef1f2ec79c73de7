package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the loaded corpus artifact",
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus counts",
	RunE:  runCorpusStats,
}

var corpusClassesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List instruction classes with their vocabulary requirements",
	RunE:  runCorpusClasses,
}

var corpusFoliosCmd = &cobra.Command{
	Use:   "folios",
	Short: "List target folios with their class footprints",
	RunE:  runCorpusFolios,
}

func init() {
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusClassesCmd)
	corpusCmd.AddCommand(corpusFoliosCmd)
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	st, err := loadStore()
	if err != nil {
		return err
	}
	stats := st.Stats()
	out := cmd.OutOrStdout()

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]int{
			"classes":          stats.Classes,
			"kernel_classes":   stats.KernelClasses,
			"pages":            stats.Pages,
			"folios":           stats.Folios,
			"legality_entries": stats.LegalityEntries,
			"spread_entries":   stats.SpreadEntries,
		})
	}

	fmt.Fprintf(out, "Corpus: %s\n", cfg.Corpus.DatabasePath)
	fmt.Fprintf(out, "  Instruction classes: %d (%d kernel)\n", stats.Classes, stats.KernelClasses)
	fmt.Fprintf(out, "  Diagram pages:       %d\n", stats.Pages)
	fmt.Fprintf(out, "  Target folios:       %d\n", stats.Folios)
	fmt.Fprintf(out, "  Legality entries:    %d\n", stats.LegalityEntries)
	fmt.Fprintf(out, "  Spread entries:      %d\n", stats.SpreadEntries)

	hist := map[int]int{}
	for _, unit := range st.SpreadUnits() {
		hist[st.Spread(unit)]++
	}
	if len(hist) > 0 {
		values := make([]int, 0, len(hist))
		for v := range hist {
			values = append(values, v)
		}
		sort.Ints(values)
		fmt.Fprintln(out, "  Spread histogram:")
		for _, v := range values {
			fmt.Fprintf(out, "    %3d pages: %d units\n", v, hist[v])
		}
	}
	return nil
}

func runCorpusClasses(cmd *cobra.Command, args []string) error {
	st, err := loadStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, c := range st.Classes() {
		vocab := "(none)"
		if len(c.RequiredVocabulary) > 0 {
			vocab = strings.Join(c.RequiredVocabulary.Sorted(), " ")
		}
		fmt.Fprintf(out, "class %-3d %-10s requires: %s\n", c.ID, c.Role, vocab)
	}
	return nil
}

func runCorpusFolios(cmd *cobra.Command, args []string) error {
	st, err := loadStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, f := range st.Folios() {
		fmt.Fprintf(out, "folio %-8s classes: %v\n", f.ID, f.RequiredClasses.Sorted())
	}
	return nil
}
