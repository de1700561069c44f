package leveling

import (
	"context"
	"fmt"
	"sync"
	"time"

	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	levelinghandlers "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/handlers"
	levelingqueue "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/queue"
	levelingdb "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories"
	levelingrouter "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/router"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/config"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	"github.com/Black-And-White-Club/guild-bot/internal/queue"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
	"github.com/uptrace/bun"
)

// Module represents the leveling module.
type Module struct {
	EventBus        eventbus.EventBus
	LevelingService *levelingservice.LevelingService
	LevelingRouter  *levelingrouter.LevelingRouter
	guilds          levelingservice.GuildConfigs
	auditInterval   time.Duration
	cancelFunc      context.CancelFunc
	observability   observability.Observability
}

// NewLevelingModule wires the score engine against the guild configuration
// source and the platform gateway.
func NewLevelingModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
	guilds levelingservice.GuildConfigs,
	gateway platform.Gateway,
) (*Module, error) {
	logger := obs.Provider.Logger
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "leveling.NewLevelingModule called")

	if guilds == nil {
		return nil, fmt.Errorf("leveling module requires a guild configuration source")
	}
	if gateway == nil {
		return nil, fmt.Errorf("leveling module requires a platform gateway")
	}

	svc := levelingservice.NewLevelingService(
		levelingdb.NewRepository(db),
		guilds,
		gateway,
		logger,
		obs.Registry.LevelingMetrics,
		tracer,
		db,
		levelingservice.Options{RoleCallsPerSecond: cfg.Leveling.RoleCallsPerSecond},
	)

	return &Module{
		EventBus:        eventBus,
		LevelingService: svc,
		LevelingRouter:  levelingrouter.NewLevelingRouter(logger, router, eventBus, eventBus, tracer),
		guilds:          guilds,
		auditInterval:   cfg.Leveling.AuditInterval,
		observability:   obs,
	}, nil
}

// Configure registers the leveling handlers.
func (m *Module) Configure(ctx context.Context, tiers platform.TierResolver) error {
	handlers := levelinghandlers.NewLevelingHandlers(m.LevelingService, m.guilds, tiers, m.observability.Provider.Logger)
	if err := m.LevelingRouter.Configure(ctx, handlers); err != nil {
		return fmt.Errorf("failed to configure leveling router: %w", err)
	}
	return nil
}

// RegisterJobs adds the periodic role audit to the shared job queue.
func (m *Module) RegisterJobs(workers *river.Workers) queue.Registration {
	return levelingqueue.Register(workers, m.LevelingService, m.observability.Provider.Logger, m.auditInterval)
}

// Run starts the leveling module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting leveling module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Leveling module goroutine stopped")
}

// Close stops the leveling module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Provider.Logger.Info("Leveling module stopped")
	return nil
}
