// Package metrics holds the Prometheus collectors shared by the per-module metric sets.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the operation metric surface every service records against.
type Recorder interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
}

// Operations counts service operation attempts, outcomes and latency under one namespace.
type Operations struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewOperations registers the operation collectors for namespace on reg.
func NewOperations(reg prometheus.Registerer, namespace string) *Operations {
	o := &Operations{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_attempts_total",
			Help:      "Number of service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_success_total",
			Help:      "Number of service operations that completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failure_total",
			Help:      "Number of service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
	}
	reg.MustRegister(o.attempts, o.successes, o.failures, o.duration)
	return o
}

func (o *Operations) RecordOperationAttempt(_ context.Context, operation, service string) {
	o.attempts.WithLabelValues(operation, service).Inc()
}

func (o *Operations) RecordOperationSuccess(_ context.Context, operation, service string) {
	o.successes.WithLabelValues(operation, service).Inc()
}

func (o *Operations) RecordOperationFailure(_ context.Context, operation, service string) {
	o.failures.WithLabelValues(operation, service).Inc()
}

func (o *Operations) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	o.duration.WithLabelValues(operation, service).Observe(d.Seconds())
}

var (
	_ Recorder = (*Operations)(nil)
	_ Recorder = NoOpOperations{}
)

// NoOpOperations discards everything.
type NoOpOperations struct{}

func (NoOpOperations) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpOperations) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpOperations) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpOperations) RecordOperationDuration(context.Context, string, string, time.Duration) {}
