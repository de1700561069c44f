package competitionqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitionhandlers "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/handlers"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/queue"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// QueueName is the River queue competition jobs run on.
const QueueName = "competition"

// tickTimeout bounds one scheduler pass.
const tickTimeout = 5 * time.Minute

// TickJob runs one pass of the season scheduler.
type TickJob struct{}

// Kind returns the job type identifier for River.
func (TickJob) Kind() string { return "competition_season_tick" }

// Ticker is the part of the competition service the worker drives.
type Ticker interface {
	Tick(ctx context.Context) (competitionservice.TickReport, error)
}

// Publisher is satisfied by the event bus.
type Publisher interface {
	Publish(topic string, messages ...*message.Message) error
}

// TickWorker runs TickJob and publishes every committed transition.
type TickWorker struct {
	river.WorkerDefaults[TickJob]
	ticker    Ticker
	publisher Publisher
	logger    *slog.Logger
}

// NewTickWorker creates a new TickWorker.
func NewTickWorker(ticker Ticker, publisher Publisher, logger *slog.Logger) *TickWorker {
	return &TickWorker{ticker: ticker, publisher: publisher, logger: logger}
}

func (w *TickWorker) Timeout(*river.Job[TickJob]) time.Duration { return tickTimeout }

// Work never fails the job for a single season. Those are retried on the next
// tick. Only a failure to list seasons is returned.
func (w *TickWorker) Work(ctx context.Context, job *river.Job[TickJob]) error {
	report, err := w.ticker.Tick(ctx)
	w.publish(ctx, report.Transitions)
	if err != nil {
		w.logger.ErrorContext(ctx, "Season tick failed",
			attr.Int64("job_id", job.ID),
			attr.Error(err),
		)
		return err
	}
	if len(report.Transitions) > 0 || report.Failures > 0 {
		w.logger.InfoContext(ctx, "Season tick complete",
			attr.Int64("job_id", job.ID),
			attr.Int("seasons", report.Seasons),
			attr.Int("transitions", len(report.Transitions)),
			attr.Int("failures", report.Failures),
			attr.Duration("duration", report.Duration),
		)
	}
	return nil
}

func (w *TickWorker) publish(ctx context.Context, transitions []competitionservice.Transition) {
	for _, r := range competitionhandlers.TransitionResults(transitions) {
		if err := w.publishOne(ctx, r); err != nil {
			w.logger.WarnContext(ctx, "Failed to publish season transition",
				attr.String("topic", r.Topic),
				attr.Error(err),
			)
		}
	}
}

func (w *TickWorker) publishOne(ctx context.Context, r handlerwrapper.Result) error {
	msg, err := handlerwrapper.NewMessage(ctx, r)
	if err != nil {
		return err
	}
	if err := w.publisher.Publish(r.Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", r.Topic, err)
	}
	return nil
}

// Register adds the tick worker and its periodic schedule. The first tick runs
// at startup so boundaries missed while the process was down are caught up.
func Register(workers *river.Workers, ticker Ticker, publisher Publisher, logger *slog.Logger, interval time.Duration) queue.Registration {
	river.AddWorker(workers, NewTickWorker(ticker, publisher, logger))
	return queue.Registration{
		Queue:      QueueName,
		MaxWorkers: 1,
		Periodic:   []*river.PeriodicJob{queue.Every(interval, QueueName, TickJob{}, true)},
	}
}
