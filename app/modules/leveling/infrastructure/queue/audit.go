package levelingqueue

import (
	"context"
	"log/slog"
	"time"

	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/queue"
	"github.com/riverqueue/river"
)

// QueueName is the River queue leveling jobs run on.
const QueueName = "leveling"

// auditTimeout bounds one sweep. Role calls are paced, so large guilds take a while.
const auditTimeout = 2 * time.Hour

// AuditJob triggers a role audit of every opted-in guild.
type AuditJob struct{}

// Kind returns the job type identifier for River.
func (AuditJob) Kind() string { return "leveling_role_audit" }

// Auditor is the part of the leveling service the worker drives.
type Auditor interface {
	AuditAll(ctx context.Context) (levelingservice.AuditSummary, error)
}

// AuditWorker runs AuditJob.
type AuditWorker struct {
	river.WorkerDefaults[AuditJob]
	auditor Auditor
	logger  *slog.Logger
}

// NewAuditWorker creates a new AuditWorker.
func NewAuditWorker(auditor Auditor, logger *slog.Logger) *AuditWorker {
	return &AuditWorker{auditor: auditor, logger: logger}
}

func (w *AuditWorker) Timeout(*river.Job[AuditJob]) time.Duration { return auditTimeout }

func (w *AuditWorker) Work(ctx context.Context, job *river.Job[AuditJob]) error {
	w.logger.InfoContext(ctx, "Starting scheduled role audit", attr.Int64("job_id", job.ID))

	summary, err := w.auditor.AuditAll(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Scheduled role audit stopped early",
			attr.Int64("job_id", job.ID),
			attr.Int("guilds_done", len(summary.Guilds)),
			attr.Error(err),
		)
		return err
	}

	corrected := 0
	for _, g := range summary.Guilds {
		corrected += g.Corrected
	}
	w.logger.InfoContext(ctx, "Scheduled role audit complete",
		attr.Int64("job_id", job.ID),
		attr.Int("guilds", len(summary.Guilds)),
		attr.Int("corrected", corrected),
		attr.Int("guild_errors", summary.GuildErrors),
	)
	return nil
}

// Register adds the audit worker and its periodic schedule.
func Register(workers *river.Workers, auditor Auditor, logger *slog.Logger, interval time.Duration) queue.Registration {
	river.AddWorker(workers, NewAuditWorker(auditor, logger))
	return queue.Registration{
		Queue:      QueueName,
		MaxWorkers: 1,
		Periodic:   []*river.PeriodicJob{queue.Every(interval, QueueName, AuditJob{}, false)},
	}
}
