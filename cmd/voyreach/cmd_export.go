package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/epilectrik/voynich-sub021/internal/export"
)

var (
	exportOut   string
	exportQuery string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus (and optionally a query result) as datalog facts",
	Long: `Dumps the loaded corpus as ground datalog facts for offline analysis
with a Mangle interpreter. With --query, the given token is analyzed
first and the query result facts are appended to the dump.

Example:
  voyreach export --out corpus.mg
  voyreach export --query qokedy --threshold 4 --out session.mg`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportQuery, "query", "", "Token to analyze and include in the dump")
}

func runExport(cmd *cobra.Command, args []string) error {
	var facts []export.Fact

	if exportQuery != "" {
		analyzer, st, err := loadAnalyzer()
		if err != nil {
			return err
		}
		facts = export.StoreFacts(st)
		res := analyzer.AnalyzeToken(exportQuery)
		facts = append(facts, export.ResultFacts(res)...)
		logger.Info("query included in export",
			zap.String("query_id", res.QueryID),
			zap.String("token", exportQuery))
	} else {
		st, err := loadStore()
		if err != nil {
			return err
		}
		facts = export.StoreFacts(st)
	}

	w := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.WriteTo(w, facts); err != nil {
		return err
	}
	logger.Info("export written", zap.Int("facts", len(facts)))
	return nil
}
