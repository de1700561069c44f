package migrations

import (
	"context"
	"fmt"

	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating competition tables...")
			models := []any{
				(*competitiondb.BuildConfig)(nil),
				(*competitiondb.BuildSeason)(nil),
				(*competitiondb.BuildEntry)(nil),
				(*competitiondb.BuildVote)(nil),
			}
			for _, m := range models {
				if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
					return err
				}
			}

			statements := []string{
				`CREATE INDEX IF NOT EXISTS idx_build_seasons_open ON build_seasons (status, submission_start) WHERE status <> 'closed'`,
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_build_seasons_one_open ON build_seasons (guild_id) WHERE status <> 'closed'`,
				`CREATE INDEX IF NOT EXISTS idx_build_seasons_guild ON build_seasons (guild_id, created_at DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_build_entries_season ON build_entries (season_id, created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_build_entries_author ON build_entries (season_id, author_id)`,
				`ALTER TABLE build_entries DROP CONSTRAINT IF EXISTS fk_build_entries_season`,
				`ALTER TABLE build_entries ADD CONSTRAINT fk_build_entries_season FOREIGN KEY (season_id) REFERENCES build_seasons (id) ON DELETE CASCADE`,
				`ALTER TABLE build_votes DROP CONSTRAINT IF EXISTS fk_build_votes_entry`,
				`ALTER TABLE build_votes ADD CONSTRAINT fk_build_votes_entry FOREIGN KEY (entry_id) REFERENCES build_entries (id) ON DELETE CASCADE`,
			}
			for _, stmt := range statements {
				if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
					return fmt.Errorf("failed to apply %q: %w", stmt, err)
				}
			}
			fmt.Println("competition tables created successfully!")
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping competition tables...")
			models := []any{
				(*competitiondb.BuildVote)(nil),
				(*competitiondb.BuildEntry)(nil),
				(*competitiondb.BuildSeason)(nil),
				(*competitiondb.BuildConfig)(nil),
			}
			for _, m := range models {
				if _, err := db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx); err != nil {
					return err
				}
			}
			fmt.Println("competition tables dropped successfully!")
			return nil
		},
	)
}
