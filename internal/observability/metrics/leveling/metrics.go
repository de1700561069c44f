package levelingmetrics

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// LevelingMetrics is the metric surface of the activity scoring engine and auditor.
type LevelingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)

	// RecordActivityOutcome counts messages by scoring outcome (awarded, cooldown, blocked, no_config).
	RecordActivityOutcome(ctx context.Context, outcome string)
	RecordPointsAwarded(ctx context.Context, points int64)
	RecordScoreConflict(ctx context.Context)
	RecordLevelUp(ctx context.Context)
	RecordRoleChange(ctx context.Context, action string, ok bool)
	RecordAuditCorrections(ctx context.Context, corrected int)
}

type prometheusMetrics struct {
	*metrics.Operations
	activity    *prometheus.CounterVec
	points      prometheus.Counter
	conflicts   prometheus.Counter
	levelUps    prometheus.Counter
	roleChanges *prometheus.CounterVec
	corrections prometheus.Counter
}

// NewPrometheus registers the leveling collectors on reg.
func NewPrometheus(reg prometheus.Registerer) LevelingMetrics {
	m := &prometheusMetrics{
		Operations: metrics.NewOperations(reg, "leveling"),
		activity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leveling",
			Name:      "activity_total",
			Help:      "Inbound messages by scoring outcome.",
		}, []string{"outcome"}),
		points: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leveling",
			Name:      "points_awarded_total",
			Help:      "Total points awarded for activity.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leveling",
			Name:      "score_version_conflicts_total",
			Help:      "Optimistic score writes that lost a race and were retried.",
		}),
		levelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leveling",
			Name:      "level_ups_total",
			Help:      "Level-ups produced by activity.",
		}),
		roleChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leveling",
			Name:      "role_changes_total",
			Help:      "Ladder role grants and revocations by result.",
		}, []string{"action", "result"}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "leveling",
			Name:      "audit_corrections_total",
			Help:      "Members corrected by the role auditor.",
		}),
	}
	reg.MustRegister(m.activity, m.points, m.conflicts, m.levelUps, m.roleChanges, m.corrections)
	return m
}

func (m *prometheusMetrics) RecordActivityOutcome(_ context.Context, outcome string) {
	m.activity.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordPointsAwarded(_ context.Context, points int64) {
	m.points.Add(float64(points))
}

func (m *prometheusMetrics) RecordScoreConflict(context.Context) { m.conflicts.Inc() }
func (m *prometheusMetrics) RecordLevelUp(context.Context)       { m.levelUps.Inc() }

func (m *prometheusMetrics) RecordRoleChange(_ context.Context, action string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.roleChanges.WithLabelValues(action, result).Inc()
}

func (m *prometheusMetrics) RecordAuditCorrections(_ context.Context, corrected int) {
	m.corrections.Add(float64(corrected))
}

// NoOpMetrics discards everything. Used in tests.
type NoOpMetrics struct {
	metrics.NoOpOperations
}

func (NoOpMetrics) RecordActivityOutcome(context.Context, string)  {}
func (NoOpMetrics) RecordPointsAwarded(context.Context, int64)     {}
func (NoOpMetrics) RecordScoreConflict(context.Context)            {}
func (NoOpMetrics) RecordLevelUp(context.Context)                  {}
func (NoOpMetrics) RecordRoleChange(context.Context, string, bool) {}
func (NoOpMetrics) RecordAuditCorrections(context.Context, int)    {}
