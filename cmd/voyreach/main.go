package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/epilectrik/voynich-sub021/internal/bundle"
	"github.com/epilectrik/voynich-sub021/internal/config"
	"github.com/epilectrik/voynich-sub021/internal/logging"
	"github.com/epilectrik/voynich-sub021/internal/reach"
	"github.com/epilectrik/voynich-sub021/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	corpusPath string
	threshold  int
	jsonOut    bool

	// Loaded per invocation by PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "voyreach",
	Short: "voyreach - Voynich zone reachability engine (SUB-021)",
	Long: `voyreach classifies Voynich target folios by constraint propagation.

A query token is segmented to its MIDDLE vocabulary unit, the unit bundle
is projected through the diagram-page corpus into per-zone legal grammars,
and every target folio receives a REACHABLE / CONDITIONAL / UNREACHABLE
verdict against those grammars.

The corpus artifact and the spread threshold come from the config file
(sub021.yaml) or flags; the threshold has no default and must be set.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if corpusPath != "" {
			cfg.Corpus.DatabasePath = corpusPath
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Engine.Threshold = threshold
		}

		return logging.Initialize(logging.Options{
			Enabled:    cfg.Logging.Enabled,
			Dir:        cfg.Logging.Dir,
			Level:      cfg.Logging.Level,
			JSONFormat: cfg.Logging.Format == "json",
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadAnalyzer validates the effective config, opens the shared corpus
// store, and wires the full analysis pipeline.
func loadAnalyzer() (*reach.Analyzer, *store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	st, err := store.Shared(cfg.Corpus.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	tax, err := cfg.Taxonomy()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid taxonomy config: %w", err)
	}
	seg := bundle.NewAffixSegmenter(cfg.Segmentation.Prefixes, cfg.Segmentation.Suffixes)
	a, err := reach.NewAnalyzer(st, seg, cfg.Engine.Threshold, tax)
	if err != nil {
		return nil, nil, err
	}
	return a, st, nil
}

// loadStore opens the corpus without requiring a threshold, for
// commands that only inspect the artifact.
func loadStore() (*store.Store, error) {
	if cfg.Corpus.DatabasePath == "" {
		return nil, fmt.Errorf("no corpus database configured")
	}
	st, err := store.Shared(cfg.Corpus.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}
	return st, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "Corpus SQLite database (overrides config)")
	rootCmd.PersistentFlags().IntVar(&threshold, "threshold", 0, "Spread threshold separating RESTRICTED from UNIVERSAL units")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(corpusCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
