package levelingservice

import (
	"context"
	"time"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// GuildConfigs is the slice of the guild module the leveling engine reads.
type GuildConfigs interface {
	GetConfig(ctx context.Context, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error)
	ListAuditEnabled(ctx context.Context) ([]*guilddomain.GuildConfig, error)
}

// ActivityStatus is why a message did or did not score.
type ActivityStatus string

const (
	ActivityAwarded  ActivityStatus = "awarded"
	ActivityCooldown ActivityStatus = "cooldown"
	ActivityBlocked  ActivityStatus = "blocked"
	ActivityNoConfig ActivityStatus = "no_config"
)

// ActivityOutcome describes the effect of one inbound message.
type ActivityOutcome struct {
	Status ActivityStatus
	Points int64
	Before *levelingdomain.ScoreRecord
	After  *levelingdomain.ScoreRecord
	Roles  RoleSyncReport
}

// LeveledUp reports whether the message pushed the member to a higher level.
func (o ActivityOutcome) LeveledUp() bool {
	return o.Status == ActivityAwarded && o.Before != nil && o.After != nil && o.After.Level > o.Before.Level
}

// RoleSyncReport records what a role synchronization did.
type RoleSyncReport struct {
	Target        *levelingdomain.RoleBinding
	Granted       []sharedtypes.RoleID
	Revoked       []sharedtypes.RoleID
	Failed        int
	MemberMissing bool
}

// Changed reports whether any grant or revoke succeeded.
func (r RoleSyncReport) Changed() bool { return len(r.Granted) > 0 || len(r.Revoked) > 0 }

// AuditReport summarises one guild's reconciliation pass. Corrected counts
// members whose level or roles changed, each member once.
type AuditReport struct {
	GuildID        sharedtypes.GuildID
	Members        int
	Corrected      int
	LevelsFixed    int
	RolesChanged   int
	Failures       int
	Conflicts      int
	MembersMissing int
}

// AuditSummary aggregates AuditAll.
type AuditSummary struct {
	Guilds      []AuditReport
	GuildErrors int
	Duration    time.Duration
}

// Rank is a member's standing in a guild.
type Rank struct {
	GuildID  sharedtypes.GuildID
	UserID   sharedtypes.DiscordID
	Score    int64
	Info     levelingdomain.LevelInfo
	Position int
}

// LeaderboardEntry is one row of a guild leaderboard. Equal scores share a position.
type LeaderboardEntry struct {
	Position int
	UserID   sharedtypes.DiscordID
	Score    int64
	Level    int
	Progress float64
}

// ScoreChange is the result of an admin score correction.
type ScoreChange struct {
	Before *levelingdomain.ScoreRecord
	After  *levelingdomain.ScoreRecord
	Roles  RoleSyncReport
}

type (
	ActivityResult    = results.OperationResult[ActivityOutcome, error]
	ScoreChangeResult = results.OperationResult[ScoreChange, error]
	LadderResult      = results.OperationResult[levelingdomain.Ladder, error]
)

// Service is the leveling engine.
type Service interface {
	// RecordActivity scores one qualifying message sent at now.
	RecordActivity(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, channelID sharedtypes.ChannelID, now time.Time) (ActivityOutcome, error)

	// SyncRoleForLevel brings the member's ladder roles in line with level.
	// Platform failures are logged and counted in the report, never returned.
	SyncRoleForLevel(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, level int) RoleSyncReport

	AuditGuild(ctx context.Context, cfg *guilddomain.GuildConfig) (AuditReport, error)
	AuditAll(ctx context.Context) (AuditSummary, error)

	SetupLevelRoles(ctx context.Context, guildID sharedtypes.GuildID, bindings []levelingdomain.RoleBinding) (levelingdomain.Ladder, error)
	GetRank(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (Rank, error)
	Leaderboard(ctx context.Context, guildID sharedtypes.GuildID, limit int) ([]LeaderboardEntry, error)
	SetScore(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, score int64) (ScoreChange, error)
	ExportLeaderboard(ctx context.Context, guildID sharedtypes.GuildID) ([]byte, error)
}
