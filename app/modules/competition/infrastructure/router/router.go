package competitionrouter

import (
	"context"
	"log/slog"

	competitionevents "github.com/Black-And-White-Club/guild-bot/app/events/competition"
	competitionhandlers "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/handlers"
	"github.com/Black-And-White-Club/guild-bot/internal/eventbus"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// CompetitionRouter handles routing for build competition commands.
type CompetitionRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer
}

// NewCompetitionRouter creates a new CompetitionRouter.
func NewCompetitionRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
) *CompetitionRouter {
	return &CompetitionRouter{
		logger:     logger,
		Router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

func (r *CompetitionRouter) Configure(_ context.Context, handlers competitionhandlers.Handlers) error {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	registerHandler(deps, competitionevents.BuildConfigUpdateRequestedV1, handlers.HandleBuildConfigUpdateRequested)
	registerHandler(deps, competitionevents.SeasonCreateRequestedV1, handlers.HandleSeasonCreateRequested)
	registerHandler(deps, competitionevents.SeasonAdvanceRequestedV1, handlers.HandleSeasonAdvanceRequested)
	registerHandler(deps, competitionevents.SeasonStatusRequestedV1, handlers.HandleSeasonStatusRequested)
	registerHandler(deps, competitionevents.EntrySubmitRequestedV1, handlers.HandleEntrySubmitRequested)
	registerHandler(deps, competitionevents.VoteRequestedV1, handlers.HandleVoteRequested)
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
	handlerName := "competition." + topic

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
