package levelinghandlers

import (
	"context"

	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	levelingevents "github.com/Black-And-White-Club/guild-bot/app/events/leveling"
	"github.com/Black-And-White-Club/guild-bot/internal/handlerwrapper"
)

// HandleMessageCreated scores a chat message. A returned error means the
// score was not persisted and the message should be redelivered.
func (h *LevelingHandlers) HandleMessageCreated(ctx context.Context, payload *discordevents.MessageCreatedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload.IsBot || payload.GuildID == "" || payload.UserID == "" {
		return nil, nil
	}

	outcome, err := h.service.RecordActivity(ctx, payload.GuildID, payload.UserID, payload.ChannelID, messageClock(payload).NowUTC())
	if err != nil {
		return nil, err
	}
	if !outcome.LeveledUp() {
		return nil, nil
	}

	levelUp := levelingevents.LevelUpPayloadV1{
		GuildID:       payload.GuildID,
		UserID:        payload.UserID,
		PreviousLevel: outcome.Before.Level,
		NewLevel:      outcome.After.Level,
		Score:         outcome.After.Score,
	}
	if outcome.Roles.Target != nil {
		levelUp.RoleID = outcome.Roles.Target.RoleID
	}
	return []handlerwrapper.Result{{Topic: levelingevents.LevelUpV1, Payload: levelUp}}, nil
}
