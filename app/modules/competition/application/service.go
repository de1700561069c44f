package competitionservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/clock"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	competitionmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/competition"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Options tune the engine. Zero values select defaults.
type Options struct {
	// BallotSize caps vote prompts per ballot; values above the platform limit are clamped.
	BallotSize int
	// Location is used for natural-language season boundaries without an explicit zone.
	Location *time.Location
	Clock    clock.Clock
}

// CompetitionService implements the Service interface.
type CompetitionService struct {
	repo       competitiondb.Repository
	announcer  platform.Announcer
	logger     *slog.Logger
	metrics    competitionmetrics.CompetitionMetrics
	tracer     trace.Tracer
	db         *bun.DB
	clock      clock.Clock
	ballotSize int
	location   *time.Location
}

var _ Service = (*CompetitionService)(nil)

// NewCompetitionService creates a new CompetitionService.
func NewCompetitionService(
	repo competitiondb.Repository,
	announcer platform.Announcer,
	logger *slog.Logger,
	metrics competitionmetrics.CompetitionMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts Options,
) *CompetitionService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = competitionmetrics.NoOpMetrics{}
	}
	if opts.BallotSize <= 0 || opts.BallotSize > competitiondomain.MaxBallotSize {
		opts.BallotSize = competitiondomain.MaxBallotSize
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &CompetitionService{
		repo:       repo,
		announcer:  announcer,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
		clock:      opts.Clock,
		ballotSize: opts.BallotSize,
		location:   opts.Location,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *CompetitionService,
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

	s.metrics.RecordOperationAttempt(ctx, operationName, "CompetitionService")
	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, "CompetitionService", time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("guild_id", guildID),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, "CompetitionService")
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
		s.metrics.RecordOperationFailure(ctx, operationName, "CompetitionService")
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

	s.metrics.RecordOperationSuccess(ctx, operationName, "CompetitionService")
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *CompetitionService,
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

// unwrap turns a telemetry result into the public (value, error) pair.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	if result.Success == nil {
		return zero, nil
	}
	return *result.Success, nil
}
