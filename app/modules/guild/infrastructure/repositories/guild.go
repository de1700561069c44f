package guilddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new guild config repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*guilddomain.GuildConfig, error) {
	db = r.resolveDB(db)
	config := new(GuildConfig)
	err := db.NewSelect().Model(config).Where("guild_id = ?", guildID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("guilddb.GetConfig: %w", err)
	}
	return toDomain(config), nil
}

func (r *Impl) SaveConfig(ctx context.Context, db bun.IDB, config *guilddomain.GuildConfig) error {
	db = r.resolveDB(db)
	model := toDBModel(config)
	now := time.Now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now
	_, err := db.NewInsert().
		Model(model).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("cooldown_seconds = EXCLUDED.cooldown_seconds").
		Set("points_per_message = EXCLUDED.points_per_message").
		Set("blocked_channels = EXCLUDED.blocked_channels").
		Set("log_channel_id = EXCLUDED.log_channel_id").
		Set("level_up_channel_id = EXCLUDED.level_up_channel_id").
		Set("audit_enabled = EXCLUDED.audit_enabled").
		Set("admin_role_id = EXCLUDED.admin_role_id").
		Set("editor_role_id = EXCLUDED.editor_role_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("guilddb.SaveConfig: %w", err)
	}
	return nil
}

func (r *Impl) UpdateConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, updates *UpdateFields) error {
	if updates.IsEmpty() {
		return nil
	}
	db = r.resolveDB(db)
	q := db.NewUpdate().Model((*GuildConfig)(nil)).Where("guild_id = ?", guildID)
	if updates.CooldownSeconds != nil {
		q = q.Set("cooldown_seconds = ?", *updates.CooldownSeconds)
	}
	if updates.PointsPerMessage != nil {
		q = q.Set("points_per_message = ?", *updates.PointsPerMessage)
	}
	if updates.BlockedChannels != nil {
		q = q.Set("blocked_channels = ?", pgdialect.Array(channelStrings(*updates.BlockedChannels)))
	}
	if updates.LogChannelID != nil {
		q = q.Set("log_channel_id = ?", nullable(string(*updates.LogChannelID)))
	}
	if updates.LevelUpChannelID != nil {
		q = q.Set("level_up_channel_id = ?", nullable(string(*updates.LevelUpChannelID)))
	}
	if updates.AuditEnabled != nil {
		q = q.Set("audit_enabled = ?", *updates.AuditEnabled)
	}
	if updates.AdminRoleID != nil {
		q = q.Set("admin_role_id = ?", nullable(string(*updates.AdminRoleID)))
	}
	if updates.EditorRoleID != nil {
		q = q.Set("editor_role_id = ?", nullable(string(*updates.EditorRoleID)))
	}
	q = q.Set("updated_at = ?", time.Now().UTC())

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("guilddb.UpdateConfig: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("guilddb.UpdateConfig: rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) DeleteConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) error {
	db = r.resolveDB(db)
	_, err := db.NewDelete().Model((*GuildConfig)(nil)).Where("guild_id = ?", guildID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("guilddb.DeleteConfig: %w", err)
	}
	return nil
}

func (r *Impl) ListAuditEnabled(ctx context.Context, db bun.IDB) ([]*guilddomain.GuildConfig, error) {
	db = r.resolveDB(db)
	var rows []GuildConfig
	err := db.NewSelect().Model(&rows).Where("audit_enabled = TRUE").OrderExpr("guild_id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("guilddb.ListAuditEnabled: %w", err)
	}
	out := make([]*guilddomain.GuildConfig, 0, len(rows))
	for i := range rows {
		out = append(out, toDomain(&rows[i]))
	}
	return out, nil
}

// nullable maps empty strings to SQL NULL, matching the nullzero columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
