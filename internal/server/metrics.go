package server

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pricewatch/pricewatch/internal/model"
)

var (
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricewatch_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	checksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricewatch_checks_total",
			Help: "Total number of item checks, labeled by outcome.",
		},
		[]string{"outcome"},
	)
	itemsTracked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricewatch_items_tracked",
			Help: "Number of items currently tracked.",
		},
	)
	priceDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricewatch_price_drops_total",
			Help: "Total number of price drops observed by checks.",
		},
	)
)

func init() {
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(checksTotal)
	prometheus.MustRegister(itemsTracked)
	prometheus.MustRegister(priceDropsTotal)
}

// recordCheckMetrics counts a completed check by its outcome.
func recordCheckMetrics(result *model.CheckResult) {
	if result == nil {
		return
	}
	outcome := result.Outcome()
	checksTotal.WithLabelValues(outcome.String()).Inc()
	if outcome == model.OutcomeDrop {
		priceDropsTotal.Inc()
	}
}

// refreshItemCount re-reads the tracked item total from the store after
// a mutation. A count query per mutation is cheaper than keeping the
// gauge in sync by hand, and it can never drift.
func (s *Server) refreshItemCount(ctx context.Context) {
	counts, err := s.store.HostCounts(ctx)
	if err != nil {
		s.logger.Warn("failed to refresh tracked item count", "error", err)
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	itemsTracked.Set(float64(total))
}
