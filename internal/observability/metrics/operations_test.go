package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	ops := NewOperations(reg, "test")
	ctx := context.Background()

	ops.RecordOperationAttempt(ctx, "Op", "Svc")
	ops.RecordOperationAttempt(ctx, "Op", "Svc")
	ops.RecordOperationSuccess(ctx, "Op", "Svc")
	ops.RecordOperationFailure(ctx, "Op", "Svc")
	ops.RecordOperationDuration(ctx, "Op", "Svc", 25*time.Millisecond)

	if got := testutil.ToFloat64(ops.attempts.WithLabelValues("Op", "Svc")); got != 2 {
		t.Errorf("attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ops.successes.WithLabelValues("Op", "Svc")); got != 1 {
		t.Errorf("successes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ops.failures.WithLabelValues("Op", "Svc")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(ops.duration); n != 1 {
		t.Errorf("expected one duration series, got %d", n)
	}
}
