package competitiondb

import (
	"context"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// Lock selects the row lock taken by GetSeason. Locks only hold inside a transaction.
type Lock int

const (
	LockNone Lock = iota
	// LockShare blocks status changes until the caller's transaction ends.
	LockShare
	// LockUpdate serialises writers of the season and its entries.
	LockUpdate
)

// Repository defines persistence for build configs, seasons, entries and votes.
// A nil db argument means the repository's own connection.
//
// Error semantics:
//   - ErrNotFound: the requested row does not exist
//   - ErrStatusConflict: CompareAndSwapStatus found a status other than from
//   - ErrOpenSeasonExists: InsertSeason hit the one-open-season-per-guild index
//   - ErrDuplicateVote: InsertVote hit the one-vote-per-season constraint
//   - Other errors: infrastructure failures
type Repository interface {
	GetBuildConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.BuildConfig, error)
	UpsertBuildConfig(ctx context.Context, db bun.IDB, cfg *competitiondomain.BuildConfig) error

	InsertSeason(ctx context.Context, db bun.IDB, season *competitiondomain.Season) error
	GetSeason(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, lock Lock) (*competitiondomain.Season, error)

	// GetOpenSeason returns the guild's most recent season that is not closed.
	GetOpenSeason(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.Season, error)

	// GetLatestSeason returns the guild's most recently created season in any status.
	GetLatestSeason(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.Season, error)

	// ListOpenSeasons returns every season across all guilds that is not closed,
	// ordered by submission start.
	ListOpenSeasons(ctx context.Context, db bun.IDB) ([]*competitiondomain.Season, error)

	// CompareAndSwapStatus moves the season from one status to another and
	// fails with ErrStatusConflict if it was no longer in from.
	CompareAndSwapStatus(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, from, to competitiondomain.Status) error

	SetWinner(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, entryID sharedtypes.EntryID) error

	InsertEntry(ctx context.Context, db bun.IDB, entry *competitiondomain.Entry) error
	GetEntry(ctx context.Context, db bun.IDB, entryID sharedtypes.EntryID) (*competitiondomain.Entry, error)

	// ListEntries returns the season's entries ordered by creation time.
	ListEntries(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID) ([]*competitiondomain.Entry, error)
	CountEntriesByAuthor(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, authorID sharedtypes.DiscordID) (int, error)

	// AddEntryTag appends tag unless the entry already carries it.
	AddEntryTag(ctx context.Context, db bun.IDB, entryID sharedtypes.EntryID, tag string) error

	InsertVote(ctx context.Context, db bun.IDB, vote *competitiondomain.Vote) error
	ListVotes(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID) ([]*competitiondomain.Vote, error)
}
