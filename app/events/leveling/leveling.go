// Package levelingevents defines leveling topics and payloads.
package levelingevents

import (
	discordevents "github.com/Black-And-White-Club/guild-bot/app/events/discord"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

const StreamName = "leveling"

const (
	RankRequestedV1            = "leveling.rank.requested.v1"
	RoleSetupRequestedV1       = "leveling.roles.setup.requested.v1"
	ScoreCorrectionRequestedV1 = "leveling.score.correction.requested.v1"
	AuditRequestedV1           = "leveling.audit.requested.v1"

	// LevelUpV1 is published after a member's level increases through activity.
	LevelUpV1 = "leveling.level.up.v1"
)

// RankRequestedPayloadV1 asks for a member's rank. An empty TargetUserID means the invoker.
type RankRequestedPayloadV1 struct {
	Interaction  discordevents.Interaction `json:"interaction"`
	TargetUserID sharedtypes.DiscordID     `json:"target_user_id,omitempty"`
}

// RoleBinding maps a level threshold to a role.
type RoleBinding struct {
	LevelThreshold int                `json:"level_threshold"`
	RoleID         sharedtypes.RoleID `json:"role_id"`
	RoleName       string             `json:"role_name"`
}

// RoleSetupRequestedPayloadV1 replaces the guild's level ladder.
type RoleSetupRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
	Bindings    []RoleBinding             `json:"bindings"`
}

// ScoreCorrectionRequestedPayloadV1 sets a member's score to an exact value.
type ScoreCorrectionRequestedPayloadV1 struct {
	Interaction  discordevents.Interaction `json:"interaction"`
	TargetUserID sharedtypes.DiscordID     `json:"target_user_id"`
	Score        int64                     `json:"score"`
}

// AuditRequestedPayloadV1 runs the role reconciliation audit for the invoker's guild now.
type AuditRequestedPayloadV1 struct {
	Interaction discordevents.Interaction `json:"interaction"`
}

// LevelUpPayloadV1 describes a level increase.
type LevelUpPayloadV1 struct {
	GuildID       sharedtypes.GuildID   `json:"guild_id"`
	UserID        sharedtypes.DiscordID `json:"user_id"`
	PreviousLevel int                   `json:"previous_level"`
	NewLevel      int                   `json:"new_level"`
	Score         int64                 `json:"score"`
	RoleID        sharedtypes.RoleID    `json:"role_id,omitempty"`
}
