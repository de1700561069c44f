package competitionmetrics

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// CompetitionMetrics is the metric surface of the season scheduler and voting.
type CompetitionMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	RecordTransition(ctx context.Context, from, to string)
	RecordSideEffectFailure(ctx context.Context, step string)
	RecordSeasonFailure(ctx context.Context)
	RecordVote(ctx context.Context, outcome string)
	RecordSubmission(ctx context.Context, outcome string)
	RecordTick(ctx context.Context, seasons int, d time.Duration)
}

type prometheusMetrics struct {
	*metrics.Operations
	transitions  *prometheus.CounterVec
	sideEffects  *prometheus.CounterVec
	seasonErrors prometheus.Counter
	votes        *prometheus.CounterVec
	submissions  *prometheus.CounterVec
	tickSeasons  prometheus.Gauge
	tickDuration prometheus.Histogram
}

// NewPrometheus registers the competition collectors on reg.
func NewPrometheus(reg prometheus.Registerer) CompetitionMetrics {
	m := &prometheusMetrics{
		Operations: metrics.NewOperations(reg, "competition"),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "competition",
			Name:      "season_transitions_total",
			Help:      "Committed season status transitions.",
		}, []string{"from", "to"}),
		sideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "competition",
			Name:      "transition_side_effect_failures_total",
			Help:      "Announcements or ballot posts that failed after a transition was committed.",
		}, []string{"step"}),
		seasonErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "competition",
			Name:      "season_tick_errors_total",
			Help:      "Seasons whose evaluation failed during a scheduler tick.",
		}),
		votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "competition",
			Name:      "votes_total",
			Help:      "Vote attempts by outcome.",
		}, []string{"outcome"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "competition",
			Name:      "submissions_total",
			Help:      "Entry submissions by outcome.",
		}, []string{"outcome"}),
		tickSeasons: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "competition",
			Name:      "tick_open_seasons",
			Help:      "Open seasons evaluated by the last scheduler tick.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "competition",
			Name:      "tick_duration_seconds",
			Help:      "Scheduler tick latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.transitions, m.sideEffects, m.seasonErrors, m.votes, m.submissions, m.tickSeasons, m.tickDuration)
	return m
}

func (m *prometheusMetrics) RecordTransition(_ context.Context, from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *prometheusMetrics) RecordSideEffectFailure(_ context.Context, step string) {
	m.sideEffects.WithLabelValues(step).Inc()
}

func (m *prometheusMetrics) RecordSeasonFailure(context.Context) { m.seasonErrors.Inc() }

func (m *prometheusMetrics) RecordVote(_ context.Context, outcome string) {
	m.votes.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordSubmission(_ context.Context, outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordTick(_ context.Context, seasons int, d time.Duration) {
	m.tickSeasons.Set(float64(seasons))
	m.tickDuration.Observe(d.Seconds())
}

// NoOpMetrics discards everything. Used in tests.
type NoOpMetrics struct {
	metrics.NoOpOperations
}

func (NoOpMetrics) RecordTransition(context.Context, string, string) {}
func (NoOpMetrics) RecordSideEffectFailure(context.Context, string)  {}
func (NoOpMetrics) RecordSeasonFailure(context.Context)              {}
func (NoOpMetrics) RecordVote(context.Context, string)               {}
func (NoOpMetrics) RecordSubmission(context.Context, string)         {}
func (NoOpMetrics) RecordTick(context.Context, int, time.Duration)   {}
