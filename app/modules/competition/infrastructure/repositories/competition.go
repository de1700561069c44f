package competitiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new competition repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetBuildConfig(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.BuildConfig, error) {
	db = r.resolveDB(db)
	row := new(BuildConfig)
	err := db.NewSelect().Model(row).Where("guild_id = ?", guildID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetBuildConfig: %w", err)
	}
	return configToDomain(row), nil
}

func (r *Impl) UpsertBuildConfig(ctx context.Context, db bun.IDB, cfg *competitiondomain.BuildConfig) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	row := &BuildConfig{
		GuildID:               cfg.GuildID,
		AnnouncementChannelID: string(cfg.AnnouncementChannelID),
		VotingChannelID:       string(cfg.VotingChannelID),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("announcement_channel_id = EXCLUDED.announcement_channel_id").
		Set("voting_channel_id = EXCLUDED.voting_channel_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.UpsertBuildConfig: %w", err)
	}
	cfg.UpdatedAt = now
	return nil
}

func (r *Impl) InsertSeason(ctx context.Context, db bun.IDB, season *competitiondomain.Season) error {
	db = r.resolveDB(db)
	row := seasonToDBModel(season)
	now := time.Now().UTC()
	row.CreatedAt, row.UpdatedAt = now, now
	if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrOpenSeasonExists
		}
		return fmt.Errorf("competitiondb.InsertSeason: %w", err)
	}
	season.CreatedAt = now
	return nil
}

func (r *Impl) GetSeason(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, lock Lock) (*competitiondomain.Season, error) {
	db = r.resolveDB(db)
	row := new(BuildSeason)
	q := db.NewSelect().Model(row).Where("id = ?", seasonID)
	switch lock {
	case LockShare:
		q = q.For("SHARE")
	case LockUpdate:
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetSeason: %w", err)
	}
	return seasonToDomain(row), nil
}

func (r *Impl) GetOpenSeason(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.Season, error) {
	db = r.resolveDB(db)
	row := new(BuildSeason)
	err := db.NewSelect().
		Model(row).
		Where("guild_id = ?", guildID).
		Where("status <> ?", competitiondomain.StatusClosed).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetOpenSeason: %w", err)
	}
	return seasonToDomain(row), nil
}

func (r *Impl) GetLatestSeason(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) (*competitiondomain.Season, error) {
	db = r.resolveDB(db)
	row := new(BuildSeason)
	err := db.NewSelect().
		Model(row).
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetLatestSeason: %w", err)
	}
	return seasonToDomain(row), nil
}

func (r *Impl) ListOpenSeasons(ctx context.Context, db bun.IDB) ([]*competitiondomain.Season, error) {
	db = r.resolveDB(db)
	var rows []*BuildSeason
	err := db.NewSelect().
		Model(&rows).
		Where("status <> ?", competitiondomain.StatusClosed).
		Order("submission_start ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.ListOpenSeasons: %w", err)
	}
	out := make([]*competitiondomain.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonToDomain(row))
	}
	return out, nil
}

func (r *Impl) CompareAndSwapStatus(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, from, to competitiondomain.Status) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*BuildSeason)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", seasonID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.CompareAndSwapStatus: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("competitiondb.CompareAndSwapStatus: rows affected: %w", err)
	}
	if n == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *Impl) SetWinner(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, entryID sharedtypes.EntryID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*BuildSeason)(nil)).
		Set("winner_entry_id = ?", entryID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", seasonID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.SetWinner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) InsertEntry(ctx context.Context, db bun.IDB, entry *competitiondomain.Entry) error {
	db = r.resolveDB(db)
	row := &BuildEntry{
		ID:        entry.ID,
		SeasonID:  entry.SeasonID,
		GuildID:   entry.GuildID,
		AuthorID:  entry.AuthorID,
		Title:     entry.Title,
		ImageURLs: entry.ImageURLs,
		Tags:      entry.Tags,
		CreatedAt: entry.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if _, err := db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("competitiondb.InsertEntry: %w", err)
	}
	entry.CreatedAt = row.CreatedAt
	return nil
}

func (r *Impl) GetEntry(ctx context.Context, db bun.IDB, entryID sharedtypes.EntryID) (*competitiondomain.Entry, error) {
	db = r.resolveDB(db)
	row := new(BuildEntry)
	if err := db.NewSelect().Model(row).Where("id = ?", entryID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("competitiondb.GetEntry: %w", err)
	}
	return entryToDomain(row), nil
}

func (r *Impl) ListEntries(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID) ([]*competitiondomain.Entry, error) {
	db = r.resolveDB(db)
	var rows []*BuildEntry
	err := db.NewSelect().
		Model(&rows).
		Where("season_id = ?", seasonID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.ListEntries: %w", err)
	}
	out := make([]*competitiondomain.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryToDomain(row))
	}
	return out, nil
}

func (r *Impl) CountEntriesByAuthor(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID, authorID sharedtypes.DiscordID) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*BuildEntry)(nil)).
		Where("season_id = ?", seasonID).
		Where("author_id = ?", authorID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("competitiondb.CountEntriesByAuthor: %w", err)
	}
	return n, nil
}

func (r *Impl) AddEntryTag(ctx context.Context, db bun.IDB, entryID sharedtypes.EntryID, tag string) error {
	db = r.resolveDB(db)
	_, err := db.NewUpdate().
		Model((*BuildEntry)(nil)).
		Set("tags = array_append(coalesce(tags, '{}'), ?)", tag).
		Where("id = ?", entryID).
		Where("NOT (? = ANY(coalesce(tags, '{}')))", tag).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("competitiondb.AddEntryTag: %w", err)
	}
	return nil
}

func (r *Impl) InsertVote(ctx context.Context, db bun.IDB, vote *competitiondomain.Vote) error {
	db = r.resolveDB(db)
	row := &BuildVote{
		SeasonID:  vote.SeasonID,
		VoterID:   vote.VoterID,
		EntryID:   vote.EntryID,
		CreatedAt: vote.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	res, err := db.NewInsert().
		Model(row).
		On("CONFLICT (season_id, voter_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("competitiondb.InsertVote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("competitiondb.InsertVote: rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateVote
	}
	vote.CreatedAt = row.CreatedAt
	return nil
}

func (r *Impl) ListVotes(ctx context.Context, db bun.IDB, seasonID sharedtypes.SeasonID) ([]*competitiondomain.Vote, error) {
	db = r.resolveDB(db)
	var rows []*BuildVote
	err := db.NewSelect().
		Model(&rows).
		Where("season_id = ?", seasonID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("competitiondb.ListVotes: %w", err)
	}
	out := make([]*competitiondomain.Vote, 0, len(rows))
	for _, row := range rows {
		out = append(out, voteToDomain(row))
	}
	return out, nil
}
