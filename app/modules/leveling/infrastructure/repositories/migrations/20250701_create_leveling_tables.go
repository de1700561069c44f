package migrations

import (
	"context"
	"fmt"

	levelingdb "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating server_scores table...")
			if _, err := db.NewCreateTable().Model((*levelingdb.ServerScore)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewRaw(`CREATE INDEX IF NOT EXISTS idx_server_scores_rank ON server_scores (guild_id, score DESC, user_id)`).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create rank index: %w", err)
			}

			fmt.Println("Creating leveled_roles table...")
			if _, err := db.NewCreateTable().Model((*levelingdb.LeveledRole)(nil)).IfNotExists().Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewRaw(`CREATE UNIQUE INDEX IF NOT EXISTS idx_leveled_roles_role ON leveled_roles (guild_id, role_id)`).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create role index: %w", err)
			}
			fmt.Println("leveling tables created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping leveling tables...")
			if _, err := db.NewDropTable().Model((*levelingdb.LeveledRole)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			if _, err := db.NewDropTable().Model((*levelingdb.ServerScore)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
				return err
			}
			fmt.Println("leveling tables dropped successfully!")
			return nil
		},
	)
}
