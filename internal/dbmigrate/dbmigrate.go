// Package dbmigrate lists every module's bun migrations and the River schema.
package dbmigrate

import (
	"context"
	"fmt"

	competitionmigrations "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories/migrations"
	guildmigrations "github.com/Black-And-White-Club/guild-bot/app/modules/guild/infrastructure/repositories/migrations"
	levelingmigrations "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Module is one module's migration set. Each module tracks its own history
// so group numbers never collide.
type Module struct {
	Name       string
	Migrations *migrate.Migrations
}

// Modules in the order they are applied.
var Modules = []Module{
	{Name: "guild", Migrations: guildmigrations.Migrations},
	{Name: "leveling", Migrations: levelingmigrations.Migrations},
	{Name: "competition", Migrations: competitionmigrations.Migrations},
}

// NamedMigrator pairs a bun migrator with its module name.
type NamedMigrator struct {
	Name string
	*migrate.Migrator
}

// Migrators builds one migrator per module.
func Migrators(db *bun.DB) []NamedMigrator {
	out := make([]NamedMigrator, 0, len(Modules))
	for _, m := range Modules {
		out = append(out, NamedMigrator{
			Name: m.Name,
			Migrator: migrate.NewMigrator(db, m.Migrations,
				migrate.WithTableName("bun_migrations_"+m.Name),
				migrate.WithLocksTableName("bun_migration_locks_"+m.Name),
			),
		})
	}
	return out
}

// Up initialises and applies every module's migrations.
func Up(ctx context.Context, db *bun.DB) error {
	for _, m := range Migrators(db) {
		if err := m.Init(ctx); err != nil {
			return fmt.Errorf("init %s migrations: %w", m.Name, err)
		}
		if _, err := m.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", m.Name, err)
		}
	}
	return nil
}

// River applies the River job queue schema.
func River(ctx context.Context, pool *pgxpool.Pool) ([]int, error) {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return nil, fmt.Errorf("river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return nil, fmt.Errorf("river migrate: %w", err)
	}
	versions := make([]int, 0, len(res.Versions))
	for _, v := range res.Versions {
		versions = append(versions, v.Version)
	}
	return versions, nil
}
