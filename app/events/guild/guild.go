// Package guildevents defines guild configuration command topics and payloads.
package guildevents

import (
	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

const StreamName = "guild"

const (
	GuildConfigRetrievalRequestedV1 = "guild.config.retrieval.requested.v1"
	GuildConfigUpdateRequestedV1    = "guild.config.update.requested.v1"
	GuildConfigDeletionRequestedV1  = "guild.config.deletion.requested.v1"
	// GuildConfigChangedV1 is published after any successful configuration write.
	GuildConfigChangedV1 = "guild.config.changed.v1"
)

// GuildConfigRetrievalRequestedPayloadV1 asks for the guild's current configuration.
type GuildConfigRetrievalRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
}

// GuildConfigUpdateRequestedPayloadV1 creates or partially updates a configuration.
// Nil fields are left untouched.
type GuildConfigUpdateRequestedPayloadV1 struct {
	Interaction      discordevents.Interaction `json:"interaction"`
	CooldownSeconds  *int                      `json:"cooldown_seconds,omitempty"`
	PointsPerMessage *int                      `json:"points_per_message,omitempty"`
	BlockedChannels  *[]sharedtypes.ChannelID  `json:"blocked_channels,omitempty"`
	LogChannelID     *sharedtypes.ChannelID    `json:"log_channel_id,omitempty"`
	LevelUpChannelID *sharedtypes.ChannelID    `json:"level_up_channel_id,omitempty"`
	AuditEnabled     *bool                     `json:"audit_enabled,omitempty"`
	AdminRoleID      *sharedtypes.RoleID       `json:"admin_role_id,omitempty"`
	EditorRoleID     *sharedtypes.RoleID       `json:"editor_role_id,omitempty"`
}

// GuildConfigDeletionRequestedPayloadV1 removes the guild's configuration.
type GuildConfigDeletionRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
}

// GuildConfigChangedPayloadV1 notifies other modules that a configuration changed.
type GuildConfigChangedPayloadV1 struct {
	GuildID sharedtypes.GuildID `json:"guild_id"`
	Deleted bool                `json:"deleted"`
}
