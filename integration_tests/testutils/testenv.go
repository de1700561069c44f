// Package testutils provides the shared container environment for integration tests.
package testutils

import (
	"context"
	"flag"
	"fmt"
	"log"
	"testing"

	"github.com/Black-And-White-Club/guild-bot/integration_tests/containers"
	"github.com/Black-And-White-Club/guild-bot/internal/db/bundb"
	"github.com/Black-And-White-Club/guild-bot/internal/dbmigrate"
	"github.com/Black-And-White-Club/guild-bot/internal/observability"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// Tables lists every module table in truncation order.
var Tables = []string{
	"build_votes",
	"build_entries",
	"build_seasons",
	"build_configs",
	"leveled_roles",
	"server_scores",
	"guild_configs",
}

// TestEnvironment holds a migrated Postgres database.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	DSN         string
	DB          *bun.DB
}

// NewTestEnvironment starts Postgres and applies every module migration.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	db, err := bundb.Open(ctx, dsn, observability.NoOpLogger)
	if err != nil {
		pgContainer.Terminate(ctx)
		return nil, err
	}
	if err := dbmigrate.Up(ctx, db); err != nil {
		db.Close()
		pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &TestEnvironment{Ctx: ctx, PgContainer: pgContainer, DSN: dsn, DB: db}, nil
}

// Reset empties every module table.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	for _, table := range Tables {
		if _, err := env.DB.NewTruncateTable().TableExpr(table).Cascade().Exec(env.Ctx); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}

// Terminate closes the database and stops the container.
func (env *TestEnvironment) Terminate() {
	if env.DB != nil {
		env.DB.Close()
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(context.Background()); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
}

// Main runs m against a fresh environment stored in *env. Under -short the
// container is never started and every test is expected to skip itself.
func Main(m *testing.M, env **TestEnvironment) int {
	flag.Parse()
	if testing.Short() {
		return m.Run()
	}
	e, err := NewTestEnvironment(context.Background())
	if err != nil {
		log.Printf("integration environment unavailable: %v", err)
		return 1
	}
	defer e.Terminate()
	*env = e
	return m.Run()
}

// Require skips under -short and fails when the environment is missing.
func Require(t *testing.T, env *TestEnvironment) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped under -short")
	}
	if env == nil {
		t.Fatal("integration environment not initialised")
	}
	env.Reset(t)
	return env
}
