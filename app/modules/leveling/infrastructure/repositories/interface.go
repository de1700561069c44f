package levelingdb

import (
	"context"

	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// Repository defines persistence for scores and the level ladder.
// A nil db argument means the repository's own connection.
//
// Score writes are optimistic: every row carries a version, InsertScore only
// creates (version 1) and CompareAndSwapScore only replaces the exact version
// the caller read. Callers re-read and retry on ErrAlreadyExists or
// ErrVersionConflict.
//
// Error semantics:
//   - ErrNotFound: no score row for the member (GetScore)
//   - ErrAlreadyExists: another writer created the row first (InsertScore)
//   - ErrVersionConflict: the row changed since it was read (CompareAndSwapScore)
//   - Other errors: infrastructure failures
type Repository interface {
	GetScore(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*levelingdomain.ScoreRecord, error)

	// InsertScore creates rec at version 1 and sets rec.Version.
	// GetScoreForUpdate is GetScore holding a row lock until db's transaction ends.
	GetScoreForUpdate(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*levelingdomain.ScoreRecord, error)

	InsertScore(ctx context.Context, db bun.IDB, rec *levelingdomain.ScoreRecord) error

	// CompareAndSwapScore writes rec if the stored version equals expectedVersion,
	// then sets rec.Version to expectedVersion+1.
	CompareAndSwapScore(ctx context.Context, db bun.IDB, rec *levelingdomain.ScoreRecord, expectedVersion int64) error

	// ListScores returns every score row in the guild, ordered by user id.
	ListScores(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) ([]*levelingdomain.ScoreRecord, error)

	// TopScores returns up to limit rows ordered by score descending, ties by user id.
	TopScores(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, limit int) ([]*levelingdomain.ScoreRecord, error)

	// CountAbove counts members in the guild with a strictly higher score.
	CountAbove(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, score int64) (int, error)

	// GetLadder returns the guild's role bindings. An unconfigured guild yields an empty ladder.
	GetLadder(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) ([]levelingdomain.RoleBinding, error)

	// ReplaceLadder deletes the guild's bindings and inserts the given ones.
	// Run it inside a transaction to make the swap atomic.
	ReplaceLadder(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, bindings []levelingdomain.RoleBinding) error
}
