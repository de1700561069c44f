package levelinghandlers

import (
	"context"
	"log/slog"

	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	levelingevents "github.com/Black-And-White-Club/guild-bot/app/events/leveling"
	levelingservice "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/application"
	"github.com/Black-And-White-Club/guild-bot/app/platform"
	"github.com/Black-And-White-Club/guild-bot/internal/clock"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// Handlers is the set of leveling event handlers registered on the router.
type Handlers interface {
	HandleMessageCreated(ctx context.Context, payload *discordevents.MessageCreatedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRankRequested(ctx context.Context, payload *levelingevents.RankRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRoleSetupRequested(ctx context.Context, payload *levelingevents.RoleSetupRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleScoreCorrectionRequested(ctx context.Context, payload *levelingevents.ScoreCorrectionRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleAuditRequested(ctx context.Context, payload *levelingevents.AuditRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// LevelingHandlers implements the Handlers interface.
type LevelingHandlers struct {
	service levelingservice.Service
	guilds  levelingservice.GuildConfigs
	tiers   platform.TierResolver
	logger  *slog.Logger
}

// NewLevelingHandlers creates a new LevelingHandlers instance.
func NewLevelingHandlers(
	service levelingservice.Service,
	guilds levelingservice.GuildConfigs,
	tiers platform.TierResolver,
	logger *slog.Logger,
) *LevelingHandlers {
	return &LevelingHandlers{
		service: service,
		guilds:  guilds,
		tiers:   tiers,
		logger:  logger,
	}
}

// messageClock evaluates cooldowns against the time the message was sent,
// so redelivered or queued events do not score against consumption time.
func messageClock(payload *discordevents.MessageCreatedPayloadV1) clock.Clock {
	return clock.NewAnchorClock(payload.Timestamp)
}
