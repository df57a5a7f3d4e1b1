package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/fetch"
	"github.com/pricewatch/pricewatch/internal/log"
	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/pipeline"
	"github.com/pricewatch/pricewatch/internal/report"
	"github.com/pricewatch/pricewatch/internal/rules"
	"github.com/pricewatch/pricewatch/internal/store"
	"github.com/spf13/cobra"
)

// reportHistoryLimit caps how many recent price points the Markdown
// report renders per item.
const reportHistoryLimit = 10

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url-or-id]...",
		Short: "Check current prices of tracked product pages",
		Long: `Check fetches tracked product pages and records the current price of
each one.

With no arguments every tracked item is checked. Arguments may be
product URLs or document IDs; each one resolves to the same tracked
item regardless of URL spelling.

Every check fetches the page, extracts the price using the host's rule
table entry, appends it to the price history, and classifies the
result: NEW, DROP, RISE, UNCHANGED, SKIPPED, or FAILED. Items checked
within the skip window are not fetched again; pass --window 0 to force
a fresh fetch.

Examples:
  # Check every tracked item
  pricewatch check

  # Check a single page by URL
  pricewatch check https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html

  # Check by document ID
  pricewatch check 2f7d6a1f0f590ed0d2c0f49555e9f76847641a33

  # Write a JSON report to a file
  pricewatch check --json --output reports/prices.json

  # Force a re-check of everything, four pages at a time
  pricewatch check --window 0 --batch 4

Configuration file (.pricewatch) example:
  hosts:
    books.toscrape.com:
      cookie: "session_id=abc123"
      headers:
        Accept-Language: "en-GB"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Overall timeout for each page fetch")
	cmd.Flags().Int("retries", config.DefaultMaxRetries,
		"Retry attempts for transient fetch failures")
	cmd.Flags().Float64("rate", config.DefaultHostRateLimit,
		"Per-host fetch rate limit in requests per second")

	// Check behavior flags
	cmd.Flags().DurationP("window", "w", config.DefaultRecentCheckWindow,
		"Skip items already checked within this window (0 checks everything)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent checks")

	// Configuration files
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pricewatch in current or home directory)")
	cmd.Flags().StringP("rules", "r", "",
		"Scrape rules file path (default: embedded rule table)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCheck(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
// The config file is applied first, then environment variables, then
// flags, so later sources win.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := applyConfigFile(cfg); err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.MaxRetries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.HostRateLimit, err = cmd.Flags().GetFloat64("rate")
	if err != nil {
		return nil, err
	}

	cfg.RecentCheckWindow, err = cmd.Flags().GetDuration("window")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	rulesPath, err := cmd.Flags().GetString("rules")
	if err != nil {
		return nil, err
	}
	if rulesPath != "" {
		cfg.RulesPath = rulesPath
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Get positional arguments (product URLs or document IDs)
	cfg.Targets = args

	return cfg, nil
}

// applyConfigFile loads the configuration file into the config.
// If the user explicitly specified a config file path, a missing file is
// an error. The default search silently yields an empty file config when
// nothing is found.
func applyConfigFile(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf)
		return nil
	}

	if explicitConfigPath {
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	cfg.HostConfigs = &config.File{
		Hosts: make(map[string]config.HostConfig),
	}
	return nil
}

// setupLogger creates a structured logger based on verbosity setting.
// The logger masks tokens and cookie values in its output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// loadRuleTable loads the scrape rule table from the configured path,
// falling back to the embedded default table.
func loadRuleTable(cfg *config.Config) (*rules.Table, error) {
	if cfg.RulesPath == "" {
		return rules.Default(), nil
	}
	table, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules file %s: %w", cfg.RulesPath, err)
	}
	return table, nil
}

// newFetchClient builds the HTTP fetch client from the config.
func newFetchClient(cfg *config.Config) *fetch.Client {
	opts := []fetch.Option{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithMaxRetries(cfg.MaxRetries),
		fetch.WithHostRateLimit(cfg.HostRateLimit),
	}
	if cfg.HostConfigs != nil {
		opts = append(opts, fetch.WithHostConfigs(cfg.HostConfigs))
	}
	return fetch.New(opts...)
}

// newCheckPipeline builds the standard check pipeline.
func newCheckPipeline(cfg *config.Config, table *rules.Table, st *store.Store, client *fetch.Client, logger *slog.Logger) *pipeline.Pipeline {
	return pipeline.DefaultPipeline(table, st, client,
		[]pipeline.Option{
			pipeline.WithLogger(logger),
			pipeline.WithContinueOnError(true),
		},
		pipeline.WithPipelineRecentWindow(cfg.RecentCheckWindow),
	)
}

// runCheck executes the check run.
func runCheck(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	logger.Info("store opened", "dir", cfg.DBDir)

	table, err := loadRuleTable(cfg)
	if err != nil {
		return err
	}

	// No arguments means check everything that is tracked.
	inputs := cfg.Targets
	if len(inputs) == 0 {
		items, err := st.ListItems(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tracked items: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No tracked items.")
			fmt.Println("\nUse 'pricewatch track <url>' to start tracking a product page.")
			return nil
		}
		inputs = make([]string, 0, len(items))
		for _, item := range items {
			inputs = append(inputs, item.ID)
		}
	}

	logger.Info("starting check",
		"items", len(inputs),
		"batchSize", cfg.BatchSize,
		"window", cfg.RecentCheckWindow,
	)

	client := newFetchClient(cfg)

	// Use the batch processor for concurrent checks if multiple items
	if len(inputs) > 1 && cfg.BatchSize > 1 {
		return runBatchCheck(ctx, cfg, st, table, client, inputs, logger)
	}

	// Single item or sequential checking
	return runSequentialCheck(ctx, cfg, st, table, client, inputs, logger)
}

// runSequentialCheck checks items one at a time.
func runSequentialCheck(ctx context.Context, cfg *config.Config, st *store.Store, table *rules.Table, client *fetch.Client, inputs []string, logger *slog.Logger) error {
	p := newCheckPipeline(cfg, table, st, client, logger)
	startTime := time.Now()

	results := make([]*model.CheckResult, 0, len(inputs))
	for i, input := range inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result := model.NewCheckResult(input)
		_ = p.Execute(ctx, result) //nolint:errcheck // The pipeline continues on error and records it on the result

		results = append(results, result)

		// Progress goes to stderr so a report on stdout stays parseable.
		fmt.Fprintf(os.Stderr, "[%d/%d] %-9s %s\n", i+1, len(inputs), result.Outcome(), checkLabel(result))
	}

	checkReport := model.NewCheckReport(results)
	checkReport.Duration = time.Since(startTime)

	return outputReport(ctx, cfg, st, table, checkReport)
}

// runBatchCheck checks multiple items concurrently using BatchProcessor.
func runBatchCheck(ctx context.Context, cfg *config.Config, st *store.Store, table *rules.Table, client *fetch.Client, inputs []string, logger *slog.Logger) error {
	fmt.Fprintf(os.Stderr, "Checking %d items (concurrency: %d)...\n", len(inputs), cfg.BatchSize)
	startTime := time.Now()

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return newCheckPipeline(cfg, table, st, client, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming progress
	results := make([]*model.CheckResult, len(inputs))
	var mu sync.Mutex
	var done int
	err := bp.ProcessBatchWithCallback(ctx, inputs, func(result *model.CheckResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		results[index] = result
		done++
		fmt.Fprintf(os.Stderr, "[%d/%d] %-9s %s\n", done, len(inputs), result.Outcome(), checkLabel(result))
	})
	if err != nil {
		return err
	}

	checkReport := model.NewCheckReport(results)
	checkReport.Duration = time.Since(startTime)

	return outputReport(ctx, cfg, st, table, checkReport)
}

// checkLabel names a result for progress output, preferring the
// canonical URL over the raw input.
func checkLabel(result *model.CheckResult) string {
	if result.Item != nil && result.Item.URL != "" {
		return result.Item.URL
	}
	return result.Input
}

// outputReport outputs the check report in the requested format.
func outputReport(ctx context.Context, cfg *config.Config, st *store.Store, table *rules.Table, checkReport *model.CheckReport) error {
	// Only the Markdown report renders history tables.
	if cfg.MarkdownReport {
		attachHistory(ctx, st, checkReport)
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions (0600)
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report with tool metadata)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(checkReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(checkReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output,
		report.WithColorTable(table),
		report.WithShowAll(cfg.Verbose),
		report.WithVerbose(cfg.Verbose),
	)
	_, err := writer.Write(checkReport)
	return err
}

// attachHistory loads recent price points for each checked item so the
// report can render history tables. A history read failure drops the
// table for that item only.
func attachHistory(ctx context.Context, st *store.Store, checkReport *model.CheckReport) {
	for _, result := range checkReport.Results {
		if result == nil || result.Item == nil {
			continue
		}
		points, err := st.PriceHistory(ctx, result.Item.ID, reportHistoryLimit)
		if err != nil {
			slog.Warn("failed to load price history", "id", result.Item.ID, "error", err)
			continue
		}
		checkReport.AttachHistory(result.Item.ID, points)
	}
}
