package guilddb

import (
	"time"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// GuildConfig is a guild's leveling configuration row.
type GuildConfig struct {
	bun.BaseModel    `bun:"table:guild_configs,alias:g"`
	GuildID          sharedtypes.GuildID `bun:"guild_id,pk,notnull,type:varchar(20)"`
	CreatedAt        time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time           `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	CooldownSeconds  int                 `bun:"cooldown_seconds,notnull,default:60"`
	PointsPerMessage int                 `bun:"points_per_message,notnull,default:5"`
	BlockedChannels  []string            `bun:"blocked_channels,array,type:varchar(20)[]"`
	LogChannelID     string              `bun:"log_channel_id,nullzero,type:varchar(20)"`
	LevelUpChannelID string              `bun:"level_up_channel_id,nullzero,type:varchar(20)"`
	AuditEnabled     bool                `bun:"audit_enabled,notnull,default:false"`
	AdminRoleID      string              `bun:"admin_role_id,nullzero,type:varchar(20)"`
	EditorRoleID     string              `bun:"editor_role_id,nullzero,type:varchar(20)"`
}

// toDomain converts the DB GuildConfig to the domain type
func toDomain(cfg *GuildConfig) *guilddomain.GuildConfig {
	if cfg == nil {
		return nil
	}
	blocked := make([]sharedtypes.ChannelID, 0, len(cfg.BlockedChannels))
	for _, ch := range cfg.BlockedChannels {
		blocked = append(blocked, sharedtypes.ChannelID(ch))
	}
	return &guilddomain.GuildConfig{
		GuildID:          cfg.GuildID,
		CooldownSeconds:  cfg.CooldownSeconds,
		PointsPerMessage: cfg.PointsPerMessage,
		BlockedChannels:  blocked,
		LogChannelID:     sharedtypes.ChannelID(cfg.LogChannelID),
		LevelUpChannelID: sharedtypes.ChannelID(cfg.LevelUpChannelID),
		AuditEnabled:     cfg.AuditEnabled,
		AdminRoleID:      sharedtypes.RoleID(cfg.AdminRoleID),
		EditorRoleID:     sharedtypes.RoleID(cfg.EditorRoleID),
		CreatedAt:        cfg.CreatedAt,
		UpdatedAt:        cfg.UpdatedAt,
	}
}

// toDBModel converts the domain GuildConfig to the DB model
func toDBModel(cfg *guilddomain.GuildConfig) *GuildConfig {
	if cfg == nil {
		return nil
	}
	return &GuildConfig{
		GuildID:          cfg.GuildID,
		CreatedAt:        cfg.CreatedAt,
		UpdatedAt:        cfg.UpdatedAt,
		CooldownSeconds:  cfg.CooldownSeconds,
		PointsPerMessage: cfg.PointsPerMessage,
		BlockedChannels:  channelStrings(cfg.BlockedChannels),
		LogChannelID:     string(cfg.LogChannelID),
		LevelUpChannelID: string(cfg.LevelUpChannelID),
		AuditEnabled:     cfg.AuditEnabled,
		AdminRoleID:      string(cfg.AdminRoleID),
		EditorRoleID:     string(cfg.EditorRoleID),
	}
}

func channelStrings(in []sharedtypes.ChannelID) []string {
	out := make([]string, 0, len(in))
	for _, ch := range in {
		out = append(out, string(ch))
	}
	return out
}
