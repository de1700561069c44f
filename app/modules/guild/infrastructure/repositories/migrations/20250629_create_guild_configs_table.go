package migrations

import (
	"context"
	"fmt"

	guilddb "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// guild_configs holds one row per guild; absent rows mean defaults.
func init() {
	Migrations.MustRegister(createGuildConfigs, dropGuildConfigs)
}

func createGuildConfigs(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewCreateTable().Model((*guilddb.GuildConfig)(nil)).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("guild_configs: %w", err)
		}
		// The audit scheduler only scans guilds that opted in.
		if _, err := tx.NewRaw(`CREATE INDEX IF NOT EXISTS idx_guild_configs_audit_enabled ON guild_configs (guild_id) WHERE audit_enabled`).Exec(ctx); err != nil {
			return fmt.Errorf("guild_configs audit index: %w", err)
		}
		return nil
	})
}

func dropGuildConfigs(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*guilddb.GuildConfig)(nil)).IfExists().Cascade().Exec(ctx)
	return err
}
