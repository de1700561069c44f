package guildservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	guildmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/guild"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Defaults seed a configuration created by a partial update.
type Defaults struct {
	CooldownSeconds  int
	PointsPerMessage int
}

// GuildService implements the Service interface.
type GuildService struct {
	repo     guilddb.Repository
	cache    *ConfigCache
	defaults Defaults
	logger   *slog.Logger
	metrics  guildmetrics.GuildMetrics
	tracer   trace.Tracer
	db       *bun.DB
}

var _ Service = (*GuildService)(nil)

// NewGuildService creates a new GuildService.
func NewGuildService(
	repo guilddb.Repository,
	cache *ConfigCache,
	defaults Defaults,
	logger *slog.Logger,
	metrics guildmetrics.GuildMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *GuildService {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NewConfigCache(5*time.Minute, metrics)
	}
	if defaults.PointsPerMessage < 1 {
		defaults.PointsPerMessage = 5
	}
	return &GuildService{
		repo:     repo,
		cache:    cache,
		defaults: defaults,
		logger:   logger,
		metrics:  metrics,
		tracer:   tracer,
		db:       db,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *GuildService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("guild_id", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, "GuildService")
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, "GuildService", time.Since(startTime))
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("guild_id", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, "GuildService")
			}
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
			attr.String("guild_id", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, "GuildService")
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("guild_id", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, "GuildService")
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *GuildService,
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
