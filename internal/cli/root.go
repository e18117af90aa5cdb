// Package cli provides the command-line interface for loreline.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loreline/loreline/internal/config"
	"github.com/loreline/loreline/internal/extract"
	"github.com/loreline/loreline/internal/jobs"
	"github.com/loreline/loreline/internal/knowledge"
	"github.com/loreline/loreline/internal/metrics"
	"github.com/loreline/loreline/internal/oracle"
	"github.com/loreline/loreline/internal/pipeline"
	"github.com/loreline/loreline/internal/publish"
	"github.com/loreline/loreline/internal/store"
	"github.com/loreline/loreline/internal/store/surreal"
	"github.com/loreline/loreline/internal/synthesize"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	ownerID   string
	showStats bool

	// Shared state wired in PersistentPreRunE
	cfg       config.Config
	logger    *slog.Logger
	logClose  func() error
	backend   store.Store
	collector *metrics.Collector

	// Lazy-initialized model
	model oracle.Oracle
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "loreline",
	Short: "Content pipeline for structured notes and knowledge graphs",
	Long: `Loreline ingests talks, articles, and recordings, extracts their
content through a cascade of strategies, synthesizes structured notes
with an LLM, and reduces a library of notes into a per-owner knowledge
graph.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logClose = config.SetupLogger(cfg.LogFile, level)
		collector = metrics.NewCollector()

		ctx := context.Background()
		client, err := surreal.NewClient(ctx, surreal.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			// Degrade to the in-memory store so jobs still run; results
			// from this session are lost on exit.
			logger.Warn("primary store unreachable, using in-memory store", "error", err)
			backend = store.NewMemory()
			return nil
		}
		if err := client.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
		backend = store.NewFallback(client, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if showStats && collector != nil {
			printStats(collector.Snapshot())
		}
		if backend != nil {
			if err := backend.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
		if logClose != nil {
			_ = logClose()
		}
	},
}

// getModel lazily initializes the LLM, instrumented with the collector.
func getModel(ctx context.Context) (oracle.Oracle, error) {
	if model != nil {
		return model, nil
	}
	m, err := oracle.NewModel(ctx, oracle.Config{
		Provider:          cfg.LLMProvider,
		Model:             cfg.LLMModel,
		GoogleAPIKey:      cfg.GoogleAPIKey,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		AnthropicAPIKey:   cfg.AnthropicAPIKey,
		OllamaHost:        cfg.OllamaHost,
		RequestsPerMinute: cfg.RequestsPerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	model = oracle.WithMetrics(m, collector)
	return model, nil
}

// getLedger builds the job ledger over the connected store.
func getLedger() *jobs.Ledger {
	return jobs.NewLedger(backend, logger)
}

// getRunner wires the full processing pipeline.
func getRunner(ctx context.Context) (*pipeline.Runner, error) {
	m, err := getModel(ctx)
	if err != nil {
		return nil, err
	}

	strategies := []extract.Strategy{
		extract.NewCaptionAPI(cfg.CaptionAPIURL, cfg.CaptionAPIKey, nil),
		extract.NewTimedtext("", nil),
		extract.NewArticle(nil),
	}
	extractor := extract.NewEngine(strategies, extract.Options{
		MaxAttempts:    cfg.ExtractMaxAttempts,
		BackoffBase:    cfg.ExtractBackoff,
		AttemptTimeout: cfg.ExtractTimeout,
	}, logger)

	synthesizer := synthesize.NewEngine(m, synthesize.Options{
		SingleCallThreshold: cfg.SingleCallThreshold,
		WindowMax:           cfg.WindowMax,
	}, logger)

	var publisher publish.Publisher = publish.Noop{}
	if cfg.WebhookURL != "" {
		publisher = publish.NewWebhook(cfg.WebhookURL, nil, logger)
	}

	return pipeline.NewRunner(getLedger(), extractor, synthesizer, backend, publisher, pipeline.Options{
		Workers:    cfg.Workers,
		JobTimeout: cfg.JobTimeout,
		Metrics:    collector,
	}, logger)
}

// getBuilder wires the knowledge reduction engine. The progress callback
// may be nil.
func getBuilder(ctx context.Context, progress knowledge.ProgressFunc) (*knowledge.Builder, error) {
	m, err := getModel(ctx)
	if err != nil {
		return nil, err
	}
	return knowledge.NewBuilder(m, backend, backend, knowledge.Options{
		BatchSize:   cfg.GraphBatchSize,
		Concurrency: cfg.GraphConcurrency,
		Progress:    progress,
	}, logger), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// printStats writes the run's operation timings and LLM usage to stderr.
func printStats(snap metrics.Snapshot) {
	fmt.Fprintln(os.Stderr, "\nRun statistics:")
	printOpStats("extraction", snap.Extraction)
	printOpStats("llm", snap.Oracle)
	printOpStats("store", snap.StoreQuery)
	printOpStats("publish", snap.Publish)
}

func printOpStats(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "  %-10s %d call(s), avg %.0fms, max %dms", name, op.Count, op.AvgTimeMs, op.MaxTimeMs)
	if op.TotalPromptChars != nil && op.TotalResponseChars != nil {
		fmt.Fprintf(os.Stderr, ", %d prompt chars, %d response chars", *op.TotalPromptChars, *op.TotalResponseChars)
	}
	fmt.Fprintln(os.Stderr)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&ownerID, "owner", "o", "default", "owner the operation applies to")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print run statistics on exit")
}
