package levelingservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	levelingdb "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	levelingmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/leveling"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const defaultMaxAttempts = 64

// Options tune the engine. Zero values select defaults.
type Options struct {
	// MaxAttempts bounds optimistic write retries per message.
	MaxAttempts int
	// RoleCallsPerSecond paces the auditor's platform calls. Zero disables pacing.
	RoleCallsPerSecond float64
	// Intn draws the points roll; it must return a value in [0, n).
	Intn func(n int) int
	// Backoff is the pause before retry attempt n (n >= 1) after a write conflict.
	Backoff func(attempt int) time.Duration
}

// LevelingService implements the Service interface.
type LevelingService struct {
	repo        levelingdb.Repository
	guilds      GuildConfigs
	gateway     platform.Gateway
	logger      *slog.Logger
	metrics     levelingmetrics.LevelingMetrics
	tracer      trace.Tracer
	db          *bun.DB
	intn        func(n int) int
	backoff     func(attempt int) time.Duration
	maxAttempts int
	pacer       *rate.Limiter
}

var _ Service = (*LevelingService)(nil)

// NewLevelingService creates a new LevelingService.
func NewLevelingService(
	repo levelingdb.Repository,
	guilds GuildConfigs,
	gateway platform.Gateway,
	logger *slog.Logger,
	metrics levelingmetrics.LevelingMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *LevelingService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = levelingmetrics.NoOpMetrics{}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Intn == nil {
		opts.Intn = rand.IntN
	}
	if opts.Backoff == nil {
		opts.Backoff = retryBackoff
	}
	limit := rate.Inf
	if opts.RoleCallsPerSecond > 0 {
		limit = rate.Limit(opts.RoleCallsPerSecond)
	}
	return &LevelingService{
		repo:        repo,
		guilds:      guilds,
		gateway:     gateway,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		intn:        opts.Intn,
		backoff:     opts.Backoff,
		maxAttempts: opts.MaxAttempts,
		pacer:       rate.NewLimiter(limit, 1),
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LevelingService,
	ctx context.Context,
	operationName string,
	guildID string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("guild_id", guildID),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, "LevelingService")
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "LevelingService", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("guild_id", guildID),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "LevelingService")
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("guild_id", guildID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, "LevelingService")
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.InfoContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("guild_id", guildID),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, "LevelingService")
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *LevelingService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// inTx runs fn inside a transaction, or directly when the service has no database.
func (s *LevelingService) inTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
