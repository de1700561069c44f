package authrouter

import (
	"context"
	"log/slog"

	authevents "github.com/Black-And-White-Club/guild-bot/app/events/auth"
	authhandlers "github.com/Black-And-White-Club/guild-bot/app/modules/auth/infrastructure/handlers"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// AuthRouter subscribes the auth handlers to their command topics.
type AuthRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewAuthRouter creates a new AuthRouter.
func NewAuthRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *AuthRouter {
	return &AuthRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the token request handler.
func (r *AuthRouter) Configure(_ context.Context, handlers authhandlers.Handlers) error {
	handlerName := "auth." + authevents.TokenRequestedV1
	r.Router.AddNoPublisherHandler(
		handlerName,
		authevents.TokenRequestedV1,
		r.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			r.logger,
			r.tracer,
			r.publisher,
			handlers.HandleTokenRequested,
		),
	)
	return nil
}
