package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/epilectrik/voynich-sub021/internal/types"
)

var batchWorkers int

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Analyze many records concurrently",
	Long: `Reads one record per line (whitespace-separated tokens) from the
given file, or from stdin when no file is given, and analyzes all
records concurrently against the shared corpus store. Blank lines and
lines starting with # are skipped.

Output preserves input order regardless of completion order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchWorkers, "workers", runtime.NumCPU(), "Concurrent query workers")
}

func runBatch(cmd *cobra.Command, args []string) error {
	analyzer, _, err := loadAnalyzer()
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open record file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var records [][]string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		records = append(records, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no records to analyze")
	}

	logger.Info("batch started",
		zap.Int("records", len(records)),
		zap.Int("workers", batchWorkers))

	results := make([]types.Result, len(records))
	var g errgroup.Group
	g.SetLimit(batchWorkers)
	for i, record := range records {
		g.Go(func() error {
			results[i] = analyzer.AnalyzeRecord(record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	counts := map[types.ReachabilityStatus]int{}
	for i, res := range results {
		if !jsonOut {
			fmt.Fprintf(out, "--- record %d: %s\n", i+1, strings.Join(records[i], " "))
		}
		if err := renderResult(out, res); err != nil {
			return err
		}
		for _, fr := range res.Folios {
			counts[fr.Status]++
		}
	}

	if !jsonOut {
		fmt.Fprintf(out, "--- %d records, verdicts: %d reachable, %d conditional, %d unreachable\n",
			len(records),
			counts[types.StatusReachable],
			counts[types.StatusConditional],
			counts[types.StatusUnreachable])
	}
	return nil
}
