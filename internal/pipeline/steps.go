package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pricewatch/pricewatch/internal/config"
	"github.com/pricewatch/pricewatch/internal/fetch"
	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/rules"
	"github.com/pricewatch/pricewatch/internal/scrape"
	"github.com/pricewatch/pricewatch/internal/store"
	"github.com/pricewatch/pricewatch/internal/urlkey"
)

// GateStep admits only inputs the system can handle: document IDs, which
// refer to items admitted when they were tracked, and URLs whose canonical
// hostname has a rule table entry.
//
// Design decision: Admission runs before any network or database work
// because:
// 1. Unsupported shops fail fast with a typed error the API layer can map
// 2. Invalid URLs and unsupported hosts stay distinguishable for callers
// 3. Later steps can assume a parseable input
type GateStep struct {
	// table is the rule table consulted for admission.
	table *rules.Table

	// logger for structured logging.
	logger *slog.Logger
}

// GateStepOption configures a GateStep.
type GateStepOption func(*GateStep)

// WithGateLogger sets a custom logger for the gate step.
func WithGateLogger(logger *slog.Logger) GateStepOption {
	return func(s *GateStep) {
		s.logger = logger
	}
}

// NewGateStep creates a new admission gate step.
func NewGateStep(table *rules.Table, opts ...GateStepOption) *GateStep {
	s := &GateStep{
		table:  table,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *GateStep) Name() string {
	return "gate"
}

// Do executes the admission gate.
func (s *GateStep) Do(_ context.Context, result *model.CheckResult) error {
	if result.Failed() {
		return nil
	}
	if result.Item != nil {
		// The caller resolved the item already; it was admitted when it
		// was first tracked.
		return nil
	}
	if urlkey.IsDocumentID(result.Input) {
		// Document IDs refer to stored items. Whether the ID exists is
		// the resolve step's question, not an admission one.
		return nil
	}

	canonical, err := urlkey.Normalize(result.Input)
	if err != nil {
		return err
	}

	host := urlkey.Hostname(canonical)
	if _, ok := s.table.Lookup(host); !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedHost, host)
	}

	s.logger.Debug("input admitted", "host", host)
	return nil
}

// ResolveStep turns the input into a tracked item. URLs are normalized
// and hashed to their document ID; IDs are looked up directly.
//
// Design decision: A URL never seen before is registered immediately,
// before the fetch, because:
// 1. The check history needs a row to attach to even when the first
//    fetch fails
// 2. Tracking the same page twice resolves to the same ID, so eager
//    registration can never create a duplicate
// 3. Later steps uniformly operate on a stored item
type ResolveStep struct {
	// table supplies the parser and color for newly registered items.
	table *rules.Table

	// store loads and registers items.
	store *store.Store

	// logger for structured logging.
	logger *slog.Logger
}

// ResolveStepOption configures a ResolveStep.
type ResolveStepOption func(*ResolveStep)

// WithResolveLogger sets a custom logger for the resolve step.
func WithResolveLogger(logger *slog.Logger) ResolveStepOption {
	return func(s *ResolveStep) {
		s.logger = logger
	}
}

// NewResolveStep creates a new identity resolution step.
func NewResolveStep(table *rules.Table, st *store.Store, opts ...ResolveStepOption) *ResolveStep {
	s := &ResolveStep{
		table:  table,
		store:  st,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do executes the resolution step.
func (s *ResolveStep) Do(ctx context.Context, result *model.CheckResult) error {
	if result.Failed() {
		return nil
	}
	if result.Item != nil {
		s.logger.Debug("item already resolved", "id", result.Item.ID)
		return nil
	}

	if urlkey.IsDocumentID(result.Input) {
		// Stored IDs are lowercase hex; accept either case from callers.
		item, err := s.store.GetItem(ctx, strings.ToLower(result.Input))
		if err != nil {
			return fmt.Errorf("resolve %q: %w", result.Input, err)
		}
		s.refresh(item)
		result.Item = item
		return nil
	}

	canonical, err := urlkey.Normalize(result.Input)
	if err != nil {
		return err
	}
	id, err := urlkey.Identify(canonical)
	if err != nil {
		return err
	}

	item, err := s.store.GetItem(ctx, id)
	switch {
	case err == nil:
		s.refresh(item)
		result.Item = item
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("resolve %q: %w", result.Input, err)
	}

	// First sighting of this page: register it under its document ID.
	host := urlkey.Hostname(canonical)
	entry, ok := s.table.Lookup(host)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedHost, host)
	}

	item = &model.Item{
		ID:      id,
		URL:     canonical,
		Host:    host,
		Parser:  entry.Parser,
		Color:   entry.Color.String(),
		AddedAt: time.Now(),
	}
	if err := s.store.SaveItem(ctx, item); err != nil {
		return fmt.Errorf("register item %s: %w", id, err)
	}
	result.Item = item

	s.logger.Info("tracking new item", "id", id, "url", canonical)
	return nil
}

// refresh overwrites the stored parser and color with the live rule
// table's values. The table is authoritative; the stored copies are
// display metadata that would otherwise go stale when rules change.
func (s *ResolveStep) refresh(item *model.Item) {
	if entry, ok := s.table.Lookup(item.Host); ok {
		item.Parser = entry.Parser
		item.Color = entry.Color.String()
	}
}

// SkipRecentStep marks the check as skipped when the item already has a
// successful check inside the configured window. Only successful checks
// count; a failed check never suppresses a retry.
type SkipRecentStep struct {
	// store answers the recent-check query.
	store *store.Store

	// window is how recent a successful check must be to skip. Zero or
	// negative disables skipping.
	window time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// SkipRecentStepOption configures a SkipRecentStep.
type SkipRecentStepOption func(*SkipRecentStep)

// WithRecentWindow sets how recent a successful check must be for the
// item to be skipped. Zero disables skipping.
func WithRecentWindow(window time.Duration) SkipRecentStepOption {
	return func(s *SkipRecentStep) {
		s.window = window
	}
}

// WithSkipRecentLogger sets a custom logger for the skip step.
func WithSkipRecentLogger(logger *slog.Logger) SkipRecentStepOption {
	return func(s *SkipRecentStep) {
		s.logger = logger
	}
}

// NewSkipRecentStep creates a new recent-check skip step.
func NewSkipRecentStep(st *store.Store, opts ...SkipRecentStepOption) *SkipRecentStep {
	s := &SkipRecentStep{
		store:  st,
		window: config.DefaultRecentCheckWindow,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SkipRecentStep) Name() string {
	return "skip_recent"
}

// Do executes the skip decision.
func (s *SkipRecentStep) Do(ctx context.Context, result *model.CheckResult) error {
	if result.Failed() || result.Item == nil {
		return nil
	}
	if s.window <= 0 {
		return nil
	}

	recent, err := s.store.HasRecentCheck(ctx, result.Item.ID, s.window)
	if err != nil {
		return fmt.Errorf("recent check lookup for %s: %w", result.Item.ID, err)
	}
	if recent {
		result.Skipped = true
		result.SkipReason = fmt.Sprintf("checked within the last %s", s.window)
		s.logger.Info("skipping recently checked item",
			"id", result.Item.ID,
			"window", s.window,
		)
	}

	return nil
}

// FetchStep downloads the item's page through the polite fetch client.
// The snapshot it produces is what every extraction strategy works from.
type FetchStep struct {
	// client performs the rate-limited, retrying download.
	client *fetch.Client

	// logger for structured logging.
	logger *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a new page fetch step.
func NewFetchStep(client *fetch.Client, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, result *model.CheckResult) error {
	if result.Failed() || result.Skipped || result.Item == nil {
		return nil
	}

	snapshot, err := s.client.Fetch(ctx, result.Item.URL)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", result.Item.URL, err)
	}
	result.Snapshot = snapshot

	s.logger.Debug("page fetched",
		"url", result.Item.URL,
		"status", snapshot.StatusCode,
		"bytes", len(snapshot.Body),
	)
	return nil
}

// ScrapeStep extracts product fields from the fetched snapshot and turns
// them into the check's price observation.
//
// Design decision: The parser is chosen from the live rule table by the
// item's host, not from the parser name stored on the item, because rule
// updates must take effect on the next check without migrating stored
// items.
type ScrapeStep struct {
	// table supplies the rule entry for the item's host.
	table *rules.Table

	// registry resolves the entry's parser name to an implementation.
	registry *scrape.Registry

	// logger for structured logging.
	logger *slog.Logger
}

// ScrapeStepOption configures a ScrapeStep.
type ScrapeStepOption func(*ScrapeStep)

// WithScrapeRegistry sets the parser registry used by the scrape step.
// Default is the registry of built-in parsers.
func WithScrapeRegistry(registry *scrape.Registry) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.registry = registry
	}
}

// WithScrapeLogger sets a custom logger for the scrape step.
func WithScrapeLogger(logger *slog.Logger) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.logger = logger
	}
}

// NewScrapeStep creates a new extraction step.
func NewScrapeStep(table *rules.Table, opts ...ScrapeStepOption) *ScrapeStep {
	s := &ScrapeStep{
		table:    table,
		registry: scrape.NewRegistry(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScrapeStep) Name() string {
	return "scrape"
}

// Do executes the extraction step.
func (s *ScrapeStep) Do(ctx context.Context, result *model.CheckResult) error {
	if result.Failed() || result.Skipped || result.Snapshot == nil {
		return nil
	}

	entry, ok := s.table.Lookup(result.Item.Host)
	if !ok {
		// The host was removed from the rules after the item was tracked.
		return fmt.Errorf("%w: %s", ErrUnsupportedHost, result.Item.Host)
	}

	product, err := s.registry.Parse(ctx, entry, result.Snapshot)
	if err != nil {
		return fmt.Errorf("scrape %s: %w", result.Item.URL, err)
	}
	result.Product = product

	price := product.PricePoint(result.Snapshot.FetchedAt)
	result.Price = &price

	s.logger.Info("price extracted",
		"id", result.Item.ID,
		"price", price.Format(),
		"available", price.Available,
	)
	return nil
}

// PersistStep writes the check outcome to the store: the updated item,
// the observed price point, and a check record.
//
// Design decision: Persistence is the last step and also runs for failed
// checks because:
// 1. The checks table is the audit trail for both outcomes
// 2. The previous price is read here, immediately before the append, so
//    change detection always compares against the stored series
// 3. A failed audit write must never replace the original failure, so it
//    is logged and dropped instead of returned
type PersistStep struct {
	// store receives the item, price, and check records.
	store *store.Store

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step.
func NewPersistStep(st *store.Store, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  st,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step.
func (s *PersistStep) Do(ctx context.Context, result *model.CheckResult) error {
	if result.Skipped {
		s.logger.Debug("skipping persist, check was skipped", "input", result.Input)
		return nil
	}
	if result.Item == nil {
		// Nothing resolved, so there is no row to record an outcome on.
		return nil
	}

	if result.Failed() {
		if err := s.store.RecordCheck(ctx, result.Item.ID, false, result.ErrorMessage); err != nil {
			s.logger.Warn("failed to record check outcome",
				"id", result.Item.ID,
				"error", err,
			)
		}
		return nil
	}

	if result.Price == nil {
		s.logger.Debug("skipping persist, no price extracted", "input", result.Input)
		return nil
	}

	prev, err := s.store.LatestPrice(ctx, result.Item.ID)
	if err != nil {
		return fmt.Errorf("previous price for %s: %w", result.Item.ID, err)
	}
	result.PreviousPrice = prev

	item := result.Item
	if result.Product.Name != "" {
		item.Name = result.Product.Name
	}
	if result.Product.ImageURL != "" {
		item.ImageURL = result.Product.ImageURL
	}
	item.CheckedAt = time.Now()
	item.LatestPrice = result.Price

	if err := s.store.SaveItem(ctx, item); err != nil {
		return fmt.Errorf("save item %s: %w", item.ID, err)
	}
	if err := s.store.AppendPrice(ctx, item.ID, *result.Price); err != nil {
		return fmt.Errorf("append price for %s: %w", item.ID, err)
	}
	if err := s.store.RecordCheck(ctx, item.ID, true, result.Price.Format()); err != nil {
		return fmt.Errorf("record check for %s: %w", item.ID, err)
	}

	switch {
	case prev == nil:
		s.logger.Info("first price recorded",
			"id", item.ID,
			"price", result.Price.Format(),
		)
	case result.PriceChanged():
		s.logger.Info("price changed",
			"id", item.ID,
			"from", prev.Format(),
			"to", result.Price.Format(),
		)
	}

	return nil
}

// DefaultPipelineConfig holds configuration for the default check pipeline.
type DefaultPipelineConfig struct {
	// RecentWindow is how recent a successful check must be for an item
	// to be skipped instead of re-fetched. Zero disables skipping.
	RecentWindow time.Duration

	// Registry is the parser registry used by the scrape step. Sharing
	// one registry across pipelines is safe; parsers are stateless.
	Registry *scrape.Registry
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineRecentWindow sets the skip window for recently checked items.
func WithPipelineRecentWindow(window time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.RecentWindow = window
	}
}

// WithPipelineRegistry sets the parser registry used by the scrape step.
func WithPipelineRegistry(registry *scrape.Registry) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Registry = registry
	}
}

// DefaultPipeline creates a pipeline with all standard check steps wired
// in order: gate, resolve, skip_recent, fetch, scrape, persist.
//
// Design decision: The returned pipeline always continues on error
// because:
// 1. The persist step doubles as the outcome recorder and must run even
//    when an earlier step failed
// 2. Steps guard on the result's state, so a failed check flows through
//    the remaining steps without doing further work
// 3. Callers read success or failure from the result, not from Execute's
//    return value
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineRecentWindow, etc).
func DefaultPipeline(table *rules.Table, st *store.Store, client *fetch.Client, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	cfg := &DefaultPipelineConfig{
		RecentWindow: config.DefaultRecentCheckWindow,
		Registry:     scrape.NewRegistry(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	// Caller options first; continue-on-error is fixed by this pipeline's
	// design and must not be overridden.
	opts := append(append([]Option{}, pipelineOpts...), WithContinueOnError(true))
	p := New(opts...)

	p.AddSteps(
		NewGateStep(table),
		NewResolveStep(table, st),
		NewSkipRecentStep(st, WithRecentWindow(cfg.RecentWindow)),
		NewFetchStep(client),
		NewScrapeStep(table, WithScrapeRegistry(cfg.Registry)),
		NewPersistStep(st),
	)

	return p
}
