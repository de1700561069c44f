package auth

import (
	"context"
	"fmt"

	authservice "github.com/Black-And-White-Club/guild-bot/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/guild-bot/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/guild-bot/app/modules/auth/infrastructure/jwt"
	authrouter "github.com/Black-And-White-Club/guild-bot/app/modules/auth/infrastructure/router"
	"github.com/Black-And-White-Club/guild-bot/config"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module owns tier resolution and admin API tokens.
type Module struct {
	AuthService *authservice.AuthService
	AuthRouter  *authrouter.AuthRouter
}

// NewAuthModule builds the auth service against the guild configuration
// source and registers the token request handler.
func NewAuthModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	guilds authservice.GuildConfigReader,
	eventBus eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Provider.Logger
	logger.InfoContext(ctx, "Initializing auth module")

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("auth module requires jwt.secret")
	}
	if guilds == nil {
		return nil, fmt.Errorf("auth module requires a guild configuration source")
	}

	svc := authservice.NewAuthService(guilds, authjwt.NewProvider(cfg.JWT.Secret), cfg.JWT.DefaultTTL, logger)
	r := authrouter.NewAuthRouter(logger, router, eventBus, eventBus, obs.Registry.Tracer)
	if err := r.Configure(ctx, authhandlers.NewAuthHandlers(svc, logger)); err != nil {
		return nil, fmt.Errorf("failed to configure auth router: %w", err)
	}

	return &Module{AuthService: svc, AuthRouter: r}, nil
}
