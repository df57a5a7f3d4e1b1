package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/fetch"
	"github.com/pricewatch/pricewatch/internal/pipeline"
	"github.com/pricewatch/pricewatch/internal/rules"
	"github.com/pricewatch/pricewatch/internal/store"
)

const (
	// defaultReadHeaderTimeout bounds how long a client may take to send
	// request headers.
	defaultReadHeaderTimeout = 10 * time.Second

	// defaultIdleTimeout closes keep-alive connections that go quiet.
	defaultIdleTimeout = 60 * time.Second

	// defaultShutdownTimeout is how long graceful shutdown waits for
	// in-flight requests before giving up.
	defaultShutdownTimeout = 10 * time.Second
)

// Server hosts the HTTP API. Build one with New, then call Run to serve
// until the context is cancelled.
//
// Design decision: The server receives its store, rule table, and fetch
// client instead of constructing them because:
// 1. The CLI builds the same dependencies for its own commands
// 2. Tests can inject a fetch client that trusts a local TLS fixture
// 3. Ownership stays with the caller, so Close ordering is explicit
type Server struct {
	// cfg is the validated serve configuration.
	cfg *config.Config

	// store persists items, prices, and check records.
	store *store.Store

	// table is the rule table backing admission and host listings.
	table *rules.Table

	// fetcher downloads product pages for checks started via the API.
	fetcher *fetch.Client

	// logger for structured logging.
	logger *slog.Logger

	// engine is the configured gin router.
	engine *gin.Engine

	// baseURL is the active region's hosting base URL without a trailing
	// slash, used to build absolute item links.
	baseURL string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server and its middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithFetchClient sets the fetch client used by API-triggered checks.
// Default is a client built from the configuration's fetch settings.
func WithFetchClient(client *fetch.Client) Option {
	return func(s *Server) {
		s.fetcher = client
	}
}

// New creates a Server from a validated configuration.
//
// The configuration is re-validated with ValidateServe so a caller that
// skipped validation cannot reach listening state without an admin token
// or with an unusable hosting region.
func New(cfg *config.Config, st *store.Store, table *rules.Table, opts ...Option) (*Server, error) {
	if err := cfg.ValidateServe(); err != nil {
		return nil, fmt.Errorf("serve config: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		table:   table,
		baseURL: strings.TrimRight(cfg.HostingURL(), "/"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.fetcher == nil {
		s.fetcher = fetch.New(
			fetch.WithTimeout(cfg.Timeout),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithMaxBodySize(cfg.MaxBodySize),
			fetch.WithMaxRetries(cfg.MaxRetries),
			fetch.WithHostRateLimit(cfg.HostRateLimit),
			fetch.WithHostConfigs(cfg.HostConfigs),
		)
	}

	s.engine = s.buildRouter()
	return s, nil
}

// Handler returns the server's HTTP handler. It is what Run serves and
// what tests drive directly.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves the API until the context is cancelled, then shuts down
// gracefully. It blocks and returns nil on a clean shutdown.
//
// The underlying http.Server gets no write timeout on purpose: a check
// cycle started through the API holds its response open for as long as
// the fetches take, which can outlive any fixed deadline.
func (s *Server) Run(ctx context.Context) error {
	s.refreshItemCount(ctx)

	srv := &http.Server{
		Addr:              s.cfg.ServeAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("http api listening",
		"addr", s.cfg.ServeAddr,
		"region", s.cfg.Region,
		"base_url", s.baseURL,
	)

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down http api", "reason", ctx.Err())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case err := <-errCh:
		return fmt.Errorf("listen on %s: %w", s.cfg.ServeAddr, err)
	}
}

// newPipeline builds a fresh check pipeline wired to the server's
// dependencies. Each API-triggered check gets its own instance.
func (s *Server) newPipeline() *pipeline.Pipeline {
	return pipeline.DefaultPipeline(s.table, s.store, s.fetcher,
		[]pipeline.Option{pipeline.WithLogger(s.logger)},
		pipeline.WithPipelineRecentWindow(s.cfg.RecentCheckWindow),
	)
}
