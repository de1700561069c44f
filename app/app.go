// Package app assembles the modules into one running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/guild-bot/api"
	authevents "github.com/Black-And-White-Club/guild-bot/app/events/auth"
	competitionevents "github.com/Black-And-White-Club/guild-bot/app/events/competition"
	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	guildevents "github.com/Black-And-White-Club/guild-bot/app/events/guild"
	levelingevents "github.com/Black-And-White-Club/guild-bot/app/events/leveling"
	"github.com/Black-And-White-Club/guild-bot/app/modules/auth"
	"github.com/Black-And-White-Club/guild-bot/app/modules/competition"
	"github.com/Black-And-White-Club/guild-bot/app/modules/guild"
	"github.com/Black-And-White-Club/guild-bot/app/modules/leveling"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/app/platform/bus"
	"github.com/Black-And-White-Club/guild-bot/app/platform/discordrest"
	"github.com/Black-And-White-Club/guild-bot/config"
	"github.com/Black-And-White-Club/guild-bot/internal/db/bundb"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/queue"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/riverqueue/river"
	"github.com/uptrace/bun"
)

const (
	routerCloseTimeout = 10 * time.Second
	queueStopTimeout   = 30 * time.Second
)

// streams are provisioned on startup so every subscription has a home.
var streams = []string{
	discordevents.StreamName,
	guildevents.StreamName,
	authevents.StreamName,
	levelingevents.StreamName,
	competitionevents.StreamName,
}

// App holds every long-lived component of the process.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	Gateway       platform.Gateway

	GuildModule       *guild.Module
	AuthModule        *auth.Module
	LevelingModule    *leveling.Module
	CompetitionModule *competition.Module

	Queue *queue.Service
	API   *api.Server

	queueStarted bool
}

// NewApp connects to Postgres and NATS and builds every module. Nothing
// consumes events or jobs until Run is called.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	obs, err := observability.Init(config.ToObsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Provider.Logger

	a := &App{Config: cfg, Observability: obs}
	if err := a.build(ctx); err != nil {
		logger.ErrorContext(ctx, "Startup failed", attr.Error(err))
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	obs := a.Observability
	logger := obs.Provider.Logger

	db, err := bundb.Open(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return err
	}
	a.DB = db

	a.EventBus, err = eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		QueueGroup: cfg.NATS.QueueGroup,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	for _, s := range streams {
		if err := a.EventBus.CreateStream(ctx, s); err != nil {
			return fmt.Errorf("failed to create stream %q: %w", s, err)
		}
	}

	a.Router, err = message.NewRouter(message.RouterConfig{CloseTimeout: routerCloseTimeout}, watermill.NewSlogLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}
	a.Router.AddMiddleware(middleware.CorrelationID, middleware.Recoverer)

	a.Gateway, err = newGateway(cfg.Discord, a.EventBus, obs)
	if err != nil {
		return err
	}

	if a.GuildModule, err = guild.NewGuildModule(ctx, cfg, obs, db, a.EventBus, a.Router); err != nil {
		return fmt.Errorf("failed to create guild module: %w", err)
	}
	guilds := a.GuildModule.GuildService

	if a.AuthModule, err = auth.NewAuthModule(ctx, cfg, obs, guilds, a.EventBus, a.Router); err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	tiers := a.AuthModule.AuthService

	if a.LevelingModule, err = leveling.NewLevelingModule(ctx, cfg, obs, db, a.EventBus, a.Router, guilds, a.Gateway); err != nil {
		return fmt.Errorf("failed to create leveling module: %w", err)
	}
	if a.CompetitionModule, err = competition.NewCompetitionModule(ctx, cfg, obs, db, a.EventBus, a.Router, a.Gateway); err != nil {
		return fmt.Errorf("failed to create competition module: %w", err)
	}

	if err := a.GuildModule.Configure(ctx, tiers); err != nil {
		return err
	}
	if err := a.LevelingModule.Configure(ctx, tiers); err != nil {
		return err
	}
	if err := a.CompetitionModule.Configure(ctx, tiers); err != nil {
		return err
	}

	workers := river.NewWorkers()
	a.Queue, err = queue.NewService(ctx, cfg.Postgres.DSN, logger, obs.Registry.QueueMetrics, workers,
		a.LevelingModule.RegisterJobs(workers),
		a.CompetitionModule.RegisterJobs(workers),
	)
	if err != nil {
		return fmt.Errorf("failed to create queue service: %w", err)
	}

	a.API = api.NewServer(cfg.HTTP, api.Dependencies{
		Tokens:      tiers,
		Leveling:    a.LevelingModule.LevelingService,
		Guilds:      guilds,
		Competition: a.CompetitionModule.CompetitionService,
		Events:      a.EventBus,
		Metrics:     obs.Registry.Prometheus,
		Checks: []api.HealthCheck{
			{Name: "postgres", Check: bundb.Ping(db)},
			{Name: "queue", Check: a.Queue.HealthCheck},
		},
		Logger: logger,
	})
	return nil
}

// newGateway picks the outbound platform adapter. "bus" hands platform calls
// to the Discord worker over NATS; "rest" calls Discord directly.
func newGateway(cfg config.DiscordConfig, eb eventbus.EventBus, obs observability.Observability) (platform.Gateway, error) {
	logger := obs.Provider.Logger
	switch cfg.Mode {
	case "", "bus":
		return bus.NewGateway(eb, logger), nil
	case "rest":
		g, err := discordrest.New(cfg.Token, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create discord REST gateway: %w", err)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown discord.mode %q", cfg.Mode)
	}
}

// Run consumes events, jobs and HTTP requests until ctx is cancelled, then
// drains them in reverse order.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Provider.Logger

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		if err := a.Router.Run(runCtx); err != nil {
			errCh <- fmt.Errorf("router: %w", err)
		}
	}()

	select {
	case <-a.Router.Running():
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return a.shutdown()
	}

	if err := a.Queue.Start(runCtx); err != nil {
		cancel()
		return errors.Join(err, a.shutdown())
	}
	a.queueStarted = true

	var wg sync.WaitGroup
	wg.Add(3)
	go a.LevelingModule.Run(runCtx, &wg)
	go a.CompetitionModule.Run(runCtx, &wg)
	go a.GuildModule.Run(runCtx, &wg)

	go func() {
		if err := a.API.Run(runCtx); err != nil {
			errCh <- fmt.Errorf("api: %w", err)
		}
	}()

	logger.InfoContext(ctx, "guild-bot running")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case runErr = <-errCh:
		logger.Error("Component failed, shutting down", attr.Error(runErr))
	}
	cancel()
	wg.Wait()

	return errors.Join(runErr, a.shutdown())
}

func (a *App) shutdown() error {
	stopCtx, cancel := context.WithTimeout(context.Background(), queueStopTimeout)
	defer cancel()

	var errs []error
	if a.queueStarted {
		if err := a.Queue.Stop(stopCtx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Router != nil {
		if err := a.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("router close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close releases connections. It is safe on a partially built App.
func (a *App) Close() error {
	var errs []error
	if a.CompetitionModule != nil {
		errs = append(errs, a.CompetitionModule.Close())
	}
	if a.LevelingModule != nil {
		errs = append(errs, a.LevelingModule.Close())
	}
	if a.GuildModule != nil {
		errs = append(errs, a.GuildModule.Close())
	}
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	errs = append(errs, a.Observability.Shutdown())
	return errors.Join(errs...)
}
