package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/report"
	"github.com/pricewatch/pricewatch/internal/store"
	"github.com/spf13/cobra"
)

// NewTrackCmd creates the track command.
func NewTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <url>...",
		Short: "Start tracking product pages",
		Long: `Track registers product pages and records their first price.

Each URL is canonicalized, assigned a document ID derived from the
canonical form, and fetched once so the item starts with a price.
Tracking the same page twice, with or without www, query strings, or a
trailing slash, never creates a second item.

Only URLs on hosts with a rule table entry can be tracked; run
'pricewatch hosts' to see them.

Examples:
  # Track a product page
  pricewatch track https://books.toscrape.com/catalogue/a-light-in-the-attic_1000/index.html

  # Track several pages at once
  pricewatch track https://shop.example.com/p/1 https://shop.example.com/p/2

  # Track using a custom rules file
  pricewatch track -r myrules.yaml https://shop.example.com/p/1`,
		Args: cobra.MinimumNArgs(1),
		RunE: runTrackCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Overall timeout for each page fetch")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pricewatch in current or home directory)")
	cmd.Flags().StringP("rules", "r", "",
		"Scrape rules file path (default: embedded rule table)")

	return cmd
}

// runTrackCmd executes the track command.
func runTrackCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildTrackConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runTrack(ctx, cfg, logger)
}

// buildTrackConfig creates a Config for the track command.
func buildTrackConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
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

	rulesPath, err := cmd.Flags().GetString("rules")
	if err != nil {
		return nil, err
	}
	if rulesPath != "" {
		cfg.RulesPath = rulesPath
	}

	// A fresh track always fetches; the skip window only applies to
	// repeat checks.
	cfg.RecentCheckWindow = 0

	cfg.Targets = args

	return cfg, nil
}

// runTrack registers each target page and records its first price.
func runTrack(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	table, err := loadRuleTable(cfg)
	if err != nil {
		return err
	}

	client := newFetchClient(cfg)
	p := newCheckPipeline(cfg, table, st, client, logger)
	writer := report.NewSimpleWriter(os.Stdout, report.WithColorTable(table))

	var failed int
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result := model.NewCheckResult(target)
		_ = p.Execute(ctx, result) //nolint:errcheck // The pipeline continues on error and records it on the result

		if _, err := writer.WriteResult(result); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
		if result.Failed() {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pages could not be tracked", failed, len(cfg.Targets))
	}
	return nil
}
