package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Token gate outcomes.
const (
	OutcomeHolder       = "holder"
	OutcomeNotHolder    = "not_holder"
	OutcomeError        = "error"
	OutcomeUnconfigured = "unconfigured"
)

var (
	pendingItemsDesc = prometheus.NewDesc(
		"marketplace_pending_items",
		"Items awaiting moderation by kind",
		[]string{"kind"},
		nil,
	)

	tokenGateChecks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_token_gate_checks_total",
		Help: "Token ownership checks by outcome",
	}, []string{"outcome"})

	moderationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_moderation_actions_total",
		Help: "Admin moderation actions by action",
	}, []string{"action"})

	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_rate_limited_total",
		Help: "Requests rejected by a rate limit, by limiter",
	}, []string{"key"})
)

// PendingCounter reports the moderation backlog.
type PendingCounter interface {
	PendingCounts(ctx context.Context) (listings, editRequests int, err error)
}

// PendingCollector is a custom Prometheus collector that reads the moderation
// backlog from the database on each scrape.
type PendingCollector struct {
	store  PendingCounter
	logger *zap.Logger
}

// NewPendingCollector creates a collector over store.
func NewPendingCollector(store PendingCounter, logger *zap.Logger) *PendingCollector {
	return &PendingCollector{store: store, logger: logger}
}

// Describe sends the metric descriptor to the channel.
func (c *PendingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pendingItemsDesc
}

// Collect queries the backlog and emits one gauge per kind.
func (c *PendingCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	listings, edits, err := c.store.PendingCounts(ctx)
	if err != nil {
		c.logger.Error("failed to collect pending item metrics", zap.Error(err))
		return
	}
	ch <- prometheus.MustNewConstMetric(pendingItemsDesc, prometheus.GaugeValue, float64(listings), "listing")
	ch <- prometheus.MustNewConstMetric(pendingItemsDesc, prometheus.GaugeValue, float64(edits), "edit_request")
}

var initOnce sync.Once

// Init registers the counters and the backlog collector with the default
// registry. Must be called once at startup.
func Init(store PendingCounter, logger *zap.Logger) {
	initOnce.Do(func() {
		prometheus.MustRegister(tokenGateChecks, moderationActions, rateLimited)
		prometheus.MustRegister(NewPendingCollector(store, logger))
	})
}

// RecordTokenGateCheck counts a token ownership check outcome.
func RecordTokenGateCheck(outcome string) {
	tokenGateChecks.WithLabelValues(outcome).Inc()
}

// RecordModerationAction counts an admin action such as "approve_listing".
func RecordModerationAction(action string) {
	moderationActions.WithLabelValues(action).Inc()
}

// RecordRateLimited counts a rejected request for the named limiter.
func RecordRateLimited(key string) {
	rateLimited.WithLabelValues(key).Inc()
}
