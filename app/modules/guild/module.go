package guild

import (
	"context"
	"fmt"
	"sync"

	guildservice "github.com/Black-And-White-Club/guild-bot/app/modules/guild/application"
	guildhandlers "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/handlers"
	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	guildrouter "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/router"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/config"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the guild module.
type Module struct {
	EventBus      eventbus.EventBus
	GuildService  *guildservice.GuildService
	GuildRouter   *guildrouter.GuildRouter
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewGuildModule creates the guild service. Call Configure once the tier
// resolver exists to register the event handlers.
func NewGuildModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Provider.Logger
	metrics := obs.Registry.GuildMetrics
	tracer := obs.Registry.Tracer

	logger.InfoContext(ctx, "guild.NewGuildModule called")

	repo := guilddb.NewRepository(db)
	cache := guildservice.NewConfigCache(cfg.Leveling.ConfigCacheTTL, metrics)
	defaults := guildservice.Defaults{
		CooldownSeconds:  cfg.Leveling.DefaultCooldownSeconds,
		PointsPerMessage: cfg.Leveling.DefaultPointsPerMessage,
	}
	guildService := guildservice.NewGuildService(repo, cache, defaults, logger, metrics, tracer, db)

	return &Module{
		EventBus:      eventBus,
		GuildService:  guildService,
		GuildRouter:   guildrouter.NewGuildRouter(logger, router, eventBus, eventBus, tracer),
		observability: obs,
	}, nil
}

// Configure registers the guild handlers.
func (m *Module) Configure(ctx context.Context, tiers platform.TierResolver) error {
	handlers := guildhandlers.NewGuildHandlers(m.GuildService, tiers, m.observability.Provider.Logger)
	if err := m.GuildRouter.Configure(ctx, handlers); err != nil {
		return fmt.Errorf("failed to configure guild router: %w", err)
	}
	return nil
}

// Run starts the guild module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Provider.Logger
	logger.InfoContext(ctx, "Starting guild module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Guild module goroutine stopped")
}

// Close stops the guild module.
func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.observability.Provider.Logger.Info("Guild module stopped")
	return nil
}
