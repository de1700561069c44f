// Package queue runs the process's single River client. Modules contribute
// workers, queues and periodic jobs through Registration; one client keeps
// River's leader election, and therefore periodic scheduling, in one place.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Registration is one module's contribution to the River client.
type Registration struct {
	Queue      string
	MaxWorkers int
	Periodic   []*river.PeriodicJob
}

// Service owns the River client and its pgx pool.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewService connects to Postgres and builds a River client for the given workers.
func NewService(ctx context.Context, dsn string, logger *slog.Logger, m metrics.Recorder, workers *river.Workers, regs ...Registration) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_queue_service"),
		attr.String("component", "river_queue"),
	)
	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", "river")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: 10},
	}
	var periodic []*river.PeriodicJob
	for _, r := range regs {
		if r.Queue != "" {
			queues[r.Queue] = river.QueueConfig{MaxWorkers: max(r.MaxWorkers, 1)}
		}
		periodic = append(periodic, r.Periodic...)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       logger,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		m.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", "river")
	m.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.Info("Queue service initialized",
		attr.Int("queues", len(queues)),
		attr.Int("periodic_jobs", len(periodic)),
	)

	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: m}, nil
}

// Start begins working jobs and scheduling periodic ones.
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", "river")
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", "river")
	s.logger.Info("Queue service started")
	return nil
}

// Stop stops fetching new jobs and waits for running ones to finish, bounded
// by ctx. The pool is closed afterwards.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", "river")
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", "river")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", "river")
	s.logger.Info("Queue service stopped")
	return nil
}

// HealthCheck verifies the queue's database connection.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

// Client returns the underlying River client for inserting jobs.
func (s *Service) Client() *river.Client[pgx.Tx] {
	return s.client
}
