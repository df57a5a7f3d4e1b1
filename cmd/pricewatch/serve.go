package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/log"
	"github.com/pricewatch/pricewatch/internal/server"
	"github.com/pricewatch/pricewatch/internal/store"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tracker over an HTTP API",
		Long: `Serve runs the HTTP API for the tracker.

The API exposes the tracked items, their price history, and the
supported hosts, and lets automation trigger check runs. Mutating
routes (tracking, untracking, running checks) require a bearer token
read from the PRICEWATCH_ADMIN_TOKEN environment variable or a .env
file; the server refuses to start without one.

Item links in responses are built from the hosting base URL of the
active region ('serve.hosting' in the configuration file).

Logs are written as JSON to stdout and to a size-rotated log file.

Examples:
  # Serve on the configured address (default :8080)
  PRICEWATCH_ADMIN_TOKEN=secret pricewatch serve

  # Serve on a specific address with verbose request logs
  PRICEWATCH_ADMIN_TOKEN=secret pricewatch serve --addr 127.0.0.1:9090 -v

  # Serve behind the EU hosting region
  PRICEWATCH_ADMIN_TOKEN=secret pricewatch serve --region eu`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("addr", "a", "",
		"HTTP listen address (default "+config.DefaultServeAddr+")")
	cmd.Flags().String("region", "",
		"Hosting region used to build item links (default "+config.DefaultRegion+")")
	cmd.Flags().String("log-file", "",
		"Rotating log file path (default: pricewatch.log in the XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pricewatch in current or home directory)")
	cmd.Flags().StringP("rules", "r", "",
		"Scrape rules file path (default: embedded rule table)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	// Fail on bad serve config before any files are touched.
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	cfg.Verbose = getVerboseFlag(cmd)

	logger, closeLog := log.NewRotatingLogger(cfg.LogFile, cfg.Verbose)
	defer closeLog() //nolint:errcheck // Best effort flush on shutdown
	slog.SetDefault(logger)

	// The engine mode is process-global, so it is set once here rather
	// than inside the server package.
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	table, err := loadRuleTable(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, st, table, server.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping server...")
		cancel()
	}()

	fmt.Printf("Serving HTTP API on %s (region %s)\n", cfg.ServeAddr, cfg.Region)
	return srv.Run(ctx)
}

// buildServeConfig creates a Config for the serve command.
// Flag values win over environment variables, which win over the
// configuration file.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
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

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.ServeAddr = addr
	}

	region, err := cmd.Flags().GetString("region")
	if err != nil {
		return nil, err
	}
	if region != "" {
		cfg.Region = region
	}

	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return nil, err
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	rulesPath, err := cmd.Flags().GetString("rules")
	if err != nil {
		return nil, err
	}
	if rulesPath != "" {
		cfg.RulesPath = rulesPath
	}

	return cfg, nil
}
