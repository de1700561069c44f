package competition

import (
	"context"
	"fmt"
	"sync"
	"time"

	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitionhandlers "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/handlers"
	competitionqueue "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/queue"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	competitionrouter "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/router"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/config"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	"github.com/Black-And-White-Club/guild-bot/internal/queue"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
	"github.com/uptrace/bun"
)

// Module represents the build competition module.
type Module struct {
	EventBus           eventbus.EventBus
	CompetitionService *competitionservice.CompetitionService
	CompetitionRouter  *competitionrouter.CompetitionRouter
	tickInterval       time.Duration
	cancelFunc         context.CancelFunc
	observability      observability.Observability
}

// NewCompetitionModule wires the season engine. Announcements go through the
// platform announcer; the scheduler runs as a periodic job.
func NewCompetitionModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	announcer platform.Announcer,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "competition.NewCompetitionModule called")

	if announcer == nil {
		return nil, fmt.Errorf("competition module requires a platform announcer")
	}
	loc, err := competitiondomain.LoadLocation(cfg.Competition.Timezone, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("competition timezone: %w", err)
	}

	svc := competitionservice.NewCompetitionService(
		competitiondb.NewRepository(db),
		announcer,
		logger,
		obs.Registry.CompetitionMetrics,
		tracer,
		db,
		competitionservice.Options{
			BallotSize: cfg.Competition.BallotSize,
			Location:   loc,
		},
	)

	return &Module{
		EventBus:           eventBus,
		CompetitionService: svc,
		CompetitionRouter:  competitionrouter.NewCompetitionRouter(logger, router, eventBus, eventBus, tracer),
		tickInterval:       cfg.Competition.TickInterval,
		observability:      obs,
	}, nil
}

// Configure registers the competition handlers.
func (m *Module) Configure(ctx context.Context, tiers platform.TierResolver) error {
	handlers := competitionhandlers.NewCompetitionHandlers(m.CompetitionService, tiers, m.observability.Provider.Logger)
	if err := m.CompetitionRouter.Configure(ctx, handlers); err != nil {
		return fmt.Errorf("failed to configure competition router: %w", err)
	}
	return nil
}

// RegisterJobs adds the season scheduler to the shared job queue.
func (m *Module) RegisterJobs(workers *river.Workers) queue.Registration {
	return competitionqueue.Register(workers, m.CompetitionService, m.EventBus, m.observability.Provider.Logger, m.tickInterval)
}

// Run starts the competition module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting competition module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Competition module goroutine stopped")
}

// Close stops the competition module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Provider.Logger.Info("Competition module stopped")
	return nil
}
