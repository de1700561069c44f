package guildmetrics

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// GuildMetrics is the metric surface of the guild configuration service.
type GuildMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordCacheInvalidation(ctx context.Context)
}

type prometheusMetrics struct {
	*metrics.Operations
	cache *prometheus.CounterVec
}

// NewPrometheus registers the guild collectors on reg.
func NewPrometheus(reg prometheus.Registerer) GuildMetrics {
	m := &prometheusMetrics{
		Operations: metrics.NewOperations(reg, "guild"),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guild",
			Name:      "config_cache_events_total",
			Help:      "Guild config cache hits, misses and invalidations.",
		}, []string{"event"}),
	}
	reg.MustRegister(m.cache)
	return m
}

func (m *prometheusMetrics) RecordCacheHit(context.Context)  { m.cache.WithLabelValues("hit").Inc() }
func (m *prometheusMetrics) RecordCacheMiss(context.Context) { m.cache.WithLabelValues("miss").Inc() }
func (m *prometheusMetrics) RecordCacheInvalidation(context.Context) {
	m.cache.WithLabelValues("invalidate").Inc()
}

// NoOpMetrics discards everything. Used in tests.
type NoOpMetrics struct {
	metrics.NoOpOperations
}

func (NoOpMetrics) RecordCacheHit(context.Context)          {}
func (NoOpMetrics) RecordCacheMiss(context.Context)         {}
func (NoOpMetrics) RecordCacheInvalidation(context.Context) {}
