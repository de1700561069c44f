package levelingrouter

import (
	"context"
	"log/slog"

	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	levelingevents "github.com/Black-And-White-Club/guild-bot/app/events/leveling"
	levelinghandlers "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/handlers"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// LevelingRouter handles routing for leveling module events.
type LevelingRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewLevelingRouter creates a new LevelingRouter.
func NewLevelingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *LevelingRouter {
	return &LevelingRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure registers the inbound message subscription and the leveling commands.
func (r *LevelingRouter) Configure(_ context.Context, handlers levelinghandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, discordevents.MessageCreatedV1, handlers.HandleMessageCreated)
	registerHandler(deps, levelingevents.RankRequestedV1, handlers.HandleRankRequested)
	registerHandler(deps, levelingevents.RoleSetupRequestedV1, handlers.HandleRoleSetupRequested)
	registerHandler(deps, levelingevents.ScoreCorrectionRequestedV1, handlers.HandleScoreCorrectionRequested)
	registerHandler(deps, levelingevents.AuditRequestedV1, handlers.HandleAuditRequested)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "leveling." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}
