package guilddb

import (
	"context"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// UpdateFields represents the updateable fields of a guild config.
// Pointer fields distinguish "not provided" (nil) from "set to zero value".
// This enables clean partial updates without full object replacement.
type UpdateFields struct {
	CooldownSeconds  *int
	PointsPerMessage *int
	BlockedChannels  *[]sharedtypes.ChannelID
	LogChannelID     *sharedtypes.ChannelID
	LevelUpChannelID *sharedtypes.ChannelID
	AuditEnabled     *bool
	AdminRoleID      *sharedtypes.RoleID
	EditorRoleID     *sharedtypes.RoleID
}

// IsEmpty reports whether any fields are set for update.
func (u *UpdateFields) IsEmpty() bool {
	if u == nil {
		return true
	}
	return u.CooldownSeconds == nil &&
		u.PointsPerMessage == nil &&
		u.BlockedChannels == nil &&
		u.LogChannelID == nil &&
		u.LevelUpChannelID == nil &&
		u.AuditEnabled == nil &&
		u.AdminRoleID == nil &&
		u.EditorRoleID == nil
}

// Apply copies the set fields onto cfg.
func (u *UpdateFields) Apply(cfg *guilddomain.GuildConfig) {
	if u == nil || cfg == nil {
		return
	}
	if u.CooldownSeconds != nil {
		cfg.CooldownSeconds = *u.CooldownSeconds
	}
	if u.PointsPerMessage != nil {
		cfg.PointsPerMessage = *u.PointsPerMessage
	}
	if u.BlockedChannels != nil {
		cfg.BlockedChannels = append([]sharedtypes.ChannelID(nil), (*u.BlockedChannels)...)
	}
	if u.LogChannelID != nil {
		cfg.LogChannelID = *u.LogChannelID
	}
	if u.LevelUpChannelID != nil {
		cfg.LevelUpChannelID = *u.LevelUpChannelID
	}
	if u.AuditEnabled != nil {
		cfg.AuditEnabled = *u.AuditEnabled
	}
	if u.AdminRoleID != nil {
		cfg.AdminRoleID = *u.AdminRoleID
	}
	if u.EditorRoleID != nil {
		cfg.EditorRoleID = *u.EditorRoleID
	}
}

// Repository defines the contract for guild configuration persistence.
// All methods are context-aware for cancellation and timeout propagation.
// A nil db argument means the repository's own connection.
//
// Error semantics:
//   - ErrNotFound: Record does not exist (GetConfig)
//   - ErrNoRowsAffected: UPDATE matched no rows
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// GetConfig retrieves a guild configuration by ID.
	// Returns ErrNotFound if no config exists for the guild.
	GetConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error)

	// SaveConfig creates or replaces a guild configuration.
	SaveConfig(ctx context.Context, db bun.IDB, config *guilddomain.GuildConfig) error

	// UpdateConfig applies partial updates to a guild configuration.
	// Only non-nil fields in UpdateFields are applied.
	// Returns ErrNoRowsAffected if no config exists.
	UpdateConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, updates *UpdateFields) error

	// DeleteConfig removes the configuration.
	// Idempotent: no error if it doesn't exist.
	DeleteConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) error

	// ListAuditEnabled returns every guild that opted into role audits.
	ListAuditEnabled(ctx context.Context, db bun.IDB) ([]*guilddomain.GuildConfig, error)
}
