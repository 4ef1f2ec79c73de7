package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epilectrik/voynich-sub021/internal/types"
)

var analyzeAsRecord bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [token...]",
	Short: "Classify target folios against one token or record",
	Long: `Runs the full pipeline for the given EVA token(s): segmentation,
bundle construction, zone projection, and folio classification.

By default each argument is analyzed as a separate query. With
--record all arguments form one record and their vocabulary units are
pooled into a single bundle.

Examples:
  voyreach analyze qokedy --threshold 4
  voyreach analyze --record qokedy okaiin daiin --threshold 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeAsRecord, "record", false, "Pool all tokens into one bundle")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analyzer, _, err := loadAnalyzer()
	if err != nil {
		return err
	}

	if analyzeAsRecord {
		res := analyzer.AnalyzeRecord(args)
		logger.Info("record analyzed",
			zap.String("query_id", res.QueryID),
			zap.Int("tokens", len(args)),
			zap.Int("units", len(res.Bundle.Vocabulary)))
		return renderResult(cmd.OutOrStdout(), res)
	}

	for _, token := range args {
		res := analyzer.AnalyzeToken(token)
		logger.Info("token analyzed",
			zap.String("query_id", res.QueryID),
			zap.String("token", token))
		if err := renderResult(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	}
	return nil
}

// resultJSON is the stable JSON shape of a query result: sets are
// rendered as sorted arrays.
type resultJSON struct {
	QueryID         string                 `json:"query_id"`
	Bundle          []string               `json:"bundle"`
	CompatiblePages []string               `json:"compatible_pages"`
	Zones           map[string]zoneJSON    `json:"zones"`
	Folios          map[string]verdictJSON `json:"folios"`
}

type zoneJSON struct {
	Reachable []types.ClassID `json:"reachable"`
	Pruned    []types.ClassID `json:"pruned"`
}

type verdictJSON struct {
	Status         string          `json:"status"`
	Required       []types.ClassID `json:"required_classes"`
	Missing        []types.ClassID `json:"missing_classes"`
	ReachableZones []string        `json:"reachable_zones"`
}

func resultToJSON(res types.Result) resultJSON {
	out := resultJSON{
		QueryID:         res.QueryID,
		Bundle:          res.Bundle.Vocabulary.Sorted(),
		CompatiblePages: res.CompatiblePages,
		Zones:           make(map[string]zoneJSON, len(res.GrammarByZone)),
		Folios:          make(map[string]verdictJSON, len(res.Folios)),
	}
	for z, zr := range res.GrammarByZone {
		out.Zones[string(z)] = zoneJSON{
			Reachable: zr.Reachable.Sorted(),
			Pruned:    zr.Pruned.Sorted(),
		}
	}
	for id, fr := range res.Folios {
		zones := make([]string, 0, len(fr.ReachableZones))
		for _, z := range fr.ReachableZones {
			zones = append(zones, string(z))
		}
		out.Folios[id] = verdictJSON{
			Status:         fr.Status.String(),
			Required:       fr.RequiredClasses.Sorted(),
			Missing:        fr.MissingClasses.Sorted(),
			ReachableZones: zones,
		}
	}
	return out
}

func renderResult(w io.Writer, res types.Result) error {
	if jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resultToJSON(res))
	}

	fmt.Fprintf(w, "Query %s\n", res.QueryID)
	if res.Bundle.IsEmpty() {
		fmt.Fprintf(w, "  Bundle: (empty)\n")
	} else {
		fmt.Fprintf(w, "  Bundle: %s\n", strings.Join(res.Bundle.Vocabulary.Sorted(), " "))
	}
	fmt.Fprintf(w, "  Compatible pages: %d\n", len(res.CompatiblePages))

	zones := make([]types.FineZone, 0, len(res.GrammarByZone))
	for z := range res.GrammarByZone {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	for _, z := range zones {
		zr := res.GrammarByZone[z]
		fmt.Fprintf(w, "  Zone %-3s reachable=%d pruned=%d\n",
			z, len(zr.Reachable), len(zr.Pruned))
	}

	folios := make([]string, 0, len(res.Folios))
	for id := range res.Folios {
		folios = append(folios, id)
	}
	sort.Strings(folios)
	for _, id := range folios {
		fr := res.Folios[id]
		line := fmt.Sprintf("  %s: %s", id, fr.Status)
		if len(fr.ReachableZones) > 0 {
			zs := make([]string, 0, len(fr.ReachableZones))
			for _, z := range fr.ReachableZones {
				zs = append(zs, string(z))
			}
			line += fmt.Sprintf(" zones=%s", strings.Join(zs, ","))
		}
		if len(fr.MissingClasses) > 0 {
			line += fmt.Sprintf(" missing=%v", fr.MissingClasses.Sorted())
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
