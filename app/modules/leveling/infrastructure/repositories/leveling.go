package levelingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new leveling repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetScore(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*levelingdomain.ScoreRecord, error) {
	return r.getScore(ctx, db, guildID, userID, false)
}

func (r *Impl) GetScoreForUpdate(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (*levelingdomain.ScoreRecord, error) {
	return r.getScore(ctx, db, guildID, userID, true)
}

func (r *Impl) getScore(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, lock bool) (*levelingdomain.ScoreRecord, error) {
	db = r.resolveDB(db)
	row := new(ServerScore)
	q := db.NewSelect().
		Model(row).
		Where("guild_id = ?", guildID).
		Where("user_id = ?", userID)
	if lock {
		q = q.For("UPDATE")
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("levelingdb.GetScore: %w", err)
	}
	return scoreToDomain(row), nil
}

func (r *Impl) InsertScore(ctx context.Context, db bun.IDB, rec *levelingdomain.ScoreRecord) error {
	db = r.resolveDB(db)
	row := scoreToDBModel(rec)
	row.Version = 1
	now := time.Now().UTC()
	row.CreatedAt, row.UpdatedAt = now, now

	res, err := db.NewInsert().
		Model(row).
		On("CONFLICT (guild_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("levelingdb.InsertScore: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("levelingdb.InsertScore: rows affected: %w", err)
	}
	if n == 0 {
		return ErrAlreadyExists
	}
	rec.Version = 1
	return nil
}

func (r *Impl) CompareAndSwapScore(ctx context.Context, db bun.IDB, rec *levelingdomain.ScoreRecord, expectedVersion int64) error {
	db = r.resolveDB(db)
	q := db.NewUpdate().
		Model((*ServerScore)(nil)).
		Set("score = ?", rec.Score).
		Set("level = ?", rec.Level).
		Set("progress = ?", rec.Progress).
		Set("version = version + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("guild_id = ?", rec.GuildID).
		Where("user_id = ?", rec.UserID).
		Where("version = ?", expectedVersion)
	if !rec.LastActivityAt.IsZero() {
		q = q.Set("last_activity_at = ?", rec.LastActivityAt.UTC())
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return fmt.Errorf("levelingdb.CompareAndSwapScore: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("levelingdb.CompareAndSwapScore: rows affected: %w", err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	rec.Version = expectedVersion + 1
	return nil
}

func (r *Impl) ListScores(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) ([]*levelingdomain.ScoreRecord, error) {
	db = r.resolveDB(db)
	var rows []ServerScore
	err := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		OrderExpr("user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("levelingdb.ListScores: %w", err)
	}
	return scoresToDomain(rows), nil
}

func (r *Impl) TopScores(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, limit int) ([]*levelingdomain.ScoreRecord, error) {
	db = r.resolveDB(db)
	var rows []ServerScore
	q := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		OrderExpr("score DESC, user_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("levelingdb.TopScores: %w", err)
	}
	return scoresToDomain(rows), nil
}

func (r *Impl) CountAbove(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, score int64) (int, error) {
	db = r.resolveDB(db)
	n, err := db.NewSelect().
		Model((*ServerScore)(nil)).
		Where("guild_id = ?", guildID).
		Where("score > ?", score).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("levelingdb.CountAbove: %w", err)
	}
	return n, nil
}

func (r *Impl) GetLadder(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID) ([]levelingdomain.RoleBinding, error) {
	db = r.resolveDB(db)
	var rows []LeveledRole
	err := db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		OrderExpr("level_threshold ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("levelingdb.GetLadder: %w", err)
	}
	out := make([]levelingdomain.RoleBinding, 0, len(rows))
	for _, row := range rows {
		out = append(out, levelingdomain.RoleBinding{
			LevelThreshold: row.LevelThreshold,
			RoleID:         row.RoleID,
			RoleName:       row.RoleName,
		})
	}
	return out, nil
}

func (r *Impl) ReplaceLadder(ctx context.Context, db bun.IDB, guildID sharedtypes.GuildID, bindings []levelingdomain.RoleBinding) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*LeveledRole)(nil)).Where("guild_id = ?", guildID).Exec(ctx); err != nil {
		return fmt.Errorf("levelingdb.ReplaceLadder: delete: %w", err)
	}
	if len(bindings) == 0 {
		return nil
	}
	rows := make([]LeveledRole, 0, len(bindings))
	for _, b := range bindings {
		rows = append(rows, LeveledRole{
			GuildID:        guildID,
			LevelThreshold: b.LevelThreshold,
			RoleID:         b.RoleID,
			RoleName:       b.RoleName,
		})
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("levelingdb.ReplaceLadder: insert: %w", err)
	}
	return nil
}

func scoresToDomain(rows []ServerScore) []*levelingdomain.ScoreRecord {
	out := make([]*levelingdomain.ScoreRecord, 0, len(rows))
	for i := range rows {
		out = append(out, scoreToDomain(&rows[i]))
	}
	return out
}
