package competitionhandlers

import (
	"context"
	"log/slog"

	competitionevents "github.com/Black-And-White-Club/guild-bot/app/events/competition"
	competitionservice "github.com/Black-And-White-Club/guild-bot/app/modules/competition/application"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// Handlers is the set of competition event handlers registered on the router.
type Handlers interface {
	HandleBuildConfigUpdateRequested(ctx context.Context, payload *competitionevents.BuildConfigUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleSeasonCreateRequested(ctx context.Context, payload *competitionevents.SeasonCreateRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleSeasonAdvanceRequested(ctx context.Context, payload *competitionevents.SeasonAdvanceRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleSeasonStatusRequested(ctx context.Context, payload *competitionevents.SeasonStatusRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleEntrySubmitRequested(ctx context.Context, payload *competitionevents.EntrySubmitRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleVoteRequested(ctx context.Context, payload *competitionevents.VoteRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// CompetitionHandlers implements the Handlers interface.
type CompetitionHandlers struct {
	service competitionservice.Service
	tiers   platform.TierResolver
	logger  *slog.Logger
}

// NewCompetitionHandlers creates a new CompetitionHandlers instance.
func NewCompetitionHandlers(
	service competitionservice.Service,
	tiers platform.TierResolver,
	logger *slog.Logger,
) *CompetitionHandlers {
	return &CompetitionHandlers{
		service: service,
		tiers:   tiers,
		logger:  logger,
	}
}

// TransitionResults turns committed transitions into SeasonTransitioned events.
func TransitionResults(transitions []competitionservice.Transition) []handlerwrapper.Result {
	out := make([]handlerwrapper.Result, 0, len(transitions))
	for _, t := range transitions {
		out = append(out, handlerwrapper.Result{
			Topic: competitionevents.SeasonTransitionedV1,
			Payload: competitionevents.SeasonTransitionedPayloadV1{
				GuildID:  t.GuildID,
				SeasonID: t.SeasonID,
				From:     t.From.String(),
				To:       t.To.String(),
			},
		})
	}
	return out
}
