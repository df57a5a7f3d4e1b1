package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pricewatch/pricewatch/internal/model"
	"github.com/pricewatch/pricewatch/internal/pipeline"
	"github.com/pricewatch/pricewatch/internal/store"
	"github.com/pricewatch/pricewatch/internal/urlkey"
)

// itemView is an item as the API renders it: the stored fields plus an
// absolute link under the active hosting region's base URL.
type itemView struct {
	*model.Item
	Link string `json:"link"`
}

// hostView is one rule table entry as the API renders it.
type hostView struct {
	Host   string `json:"host"`
	Parser string `json:"parser"`
	Color  string `json:"color,omitempty"`
}

// trackRequest is the body of POST /api/items.
type trackRequest struct {
	URL string `json:"url" binding:"required"`
}

// checksRequest is the optional body of POST /api/checks. An empty body
// checks every tracked item at the configured concurrency.
type checksRequest struct {
	Inputs      []string `json:"inputs"`
	Concurrency int      `json:"concurrency"`
}

// itemLink builds the absolute API link for a document ID.
func (s *Server) itemLink(id string) string {
	return s.baseURL + "/api/items/" + id
}

// viewOf wraps an item with its absolute API link.
func (s *Server) viewOf(item *model.Item) itemView {
	return itemView{Item: item, Link: s.itemLink(item.ID)}
}

// health reports liveness.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listItems returns every tracked item.
func (s *Server) listItems(c *gin.Context) {
	items, err := s.store.ListItems(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list items"})
		return
	}

	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, s.viewOf(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": views,
		"count": len(views),
	})
}

// getItem returns one tracked item. The :id segment accepts either a
// document ID or a percent-encoded product URL; both resolve to the
// same document ID here.
func (s *Server) getItem(c *gin.Context) {
	id, ok := s.resolveParam(c)
	if !ok {
		return
	}

	item, err := s.store.GetItem(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err, "failed to load item")
		return
	}

	c.JSON(http.StatusOK, s.viewOf(item))
}

// deleteItem removes a tracked item with its history.
func (s *Server) deleteItem(c *gin.Context) {
	id, ok := s.resolveParam(c)
	if !ok {
		return
	}

	if err := s.store.DeleteItem(c.Request.Context(), id); err != nil {
		s.storeError(c, err, "failed to delete item")
		return
	}

	s.logger.Info("item untracked", "id", id)
	s.refreshItemCount(c.Request.Context())
	c.JSON(http.StatusNoContent, nil)
}

// priceHistory returns an item's stored price observations, newest
// first. A limit query parameter caps how many are returned.
func (s *Server) priceHistory(c *gin.Context) {
	id, ok := s.resolveParam(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		s.storeError(c, err, "failed to load item")
		return
	}

	points, err := s.store.PriceHistory(ctx, id, limit)
	if err != nil {
		s.logger.Error("failed to load price history", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":   s.viewOf(item),
		"prices": points,
		"count":  len(points),
	})
}

// listHosts returns the rule table as the API's supported-host view.
func (s *Server) listHosts(c *gin.Context) {
	hosts := s.table.SupportedHosts()

	views := make([]hostView, 0, len(hosts))
	for _, host := range hosts {
		entry, ok := s.table.Lookup(host)
		if !ok {
			continue
		}
		views = append(views, hostView{
			Host:   entry.Host,
			Parser: entry.Parser,
			Color:  entry.Color.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"hosts": views,
		"count": len(views),
	})
}

// trackItem admits a product URL, runs its first check, and persists
// the item. Tracking an already tracked page re-checks it in place.
func (s *Server) trackItem(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	result := model.NewCheckResult(req.URL)
	// The standard pipeline continues on error and records the failure
	// on the result, so Execute's return is not consulted here.
	_ = s.newPipeline().Execute(c.Request.Context(), result) //nolint:errcheck

	recordCheckMetrics(result)

	if result.Failed() {
		s.checkFailure(c, result)
		return
	}

	s.refreshItemCount(c.Request.Context())

	c.JSON(http.StatusCreated, gin.H{
		"item":    s.viewOf(result.Item),
		"outcome": result.Outcome().String(),
		"price":   result.Price,
	})
}

// runChecks runs a check cycle and returns the aggregated report.
// Without a body it checks every tracked item.
func (s *Server) runChecks(c *gin.Context) {
	var req checksRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	inputs := req.Inputs
	if len(inputs) == 0 {
		items, err := s.store.ListItems(ctx)
		if err != nil {
			s.logger.Error("failed to list items for check cycle", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list items"})
			return
		}
		for _, item := range items {
			inputs = append(inputs, item.ID)
		}
	}

	concurrency := req.Concurrency
	if concurrency <= 0 {
		concurrency = s.cfg.BatchSize
	}

	start := time.Now()
	processor := pipeline.NewBatchProcessor(s.newPipeline,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(s.logger),
	)

	results, err := processor.ProcessBatch(ctx, inputs)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "check cycle interrupted",
			"details": err.Error(),
		})
		return
	}

	for _, result := range results {
		recordCheckMetrics(result)
	}
	s.refreshItemCount(ctx)

	report := model.NewCheckReport(results)
	report.Duration = time.Since(start)

	c.JSON(http.StatusOK, report)
}

// resolveParam turns the :id path parameter into a stored document ID,
// writing the error response itself when the value is unusable. This is
// the one place the API accepts a URL and an ID interchangeably.
func (s *Server) resolveParam(c *gin.Context) (string, bool) {
	id, err := urlkey.ResolveID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid item reference",
			"details": err.Error(),
		})
		return "", false
	}

	// Stored IDs are lowercase hex; accept either case from callers.
	return strings.ToLower(id), true
}

// storeError maps a store failure onto the API's status codes.
func (s *Server) storeError(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	s.logger.Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// checkFailure maps a failed check onto the API's status codes: bad
// input is the caller's fault, an unsupported shop is unprocessable,
// and anything past admission failed on our side of the fetch.
func (s *Server) checkFailure(c *gin.Context, result *model.CheckResult) {
	err := result.Error

	switch {
	case errors.Is(err, urlkey.ErrInvalidURL):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid url",
			"details": result.ErrorMessage,
		})
	case errors.Is(err, pipeline.ErrUnsupportedHost):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "unsupported host",
			"details": result.ErrorMessage,
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "item not found",
			"details": result.ErrorMessage,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "check failed",
			"details": result.ErrorMessage,
		})
	}
}
