package levelingservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	levelingdb "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/report"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// GetRank returns the member's score, level and position. A member who never
// scored is reported at score zero.
func (s *LevelingService) GetRank(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (Rank, error) {
	result, err := withTelemetry(s, ctx, "GetRank", string(guildID), func(ctx context.Context) (results.OperationResult[Rank, error], error) {
		var score int64
		rec, err := s.repo.GetScore(ctx, nil, guildID, userID)
		switch {
		case errors.Is(err, levelingdb.ErrNotFound):
		case err != nil:
			return results.OperationResult[Rank, error]{}, err
		default:
			score = rec.Score
		}

		above, err := s.repo.CountAbove(ctx, nil, guildID, score)
		if err != nil {
			return results.OperationResult[Rank, error]{}, err
		}
		return results.SuccessResult[Rank, error](Rank{
			GuildID:  guildID,
			UserID:   userID,
			Score:    score,
			Info:     levelingdomain.LevelFor(score),
			Position: above + 1,
		}), nil
	})
	if err != nil {
		return Rank{}, err
	}
	return *result.Success, nil
}

// Leaderboard returns the top limit members; limit <= 0 returns everyone.
func (s *LevelingService) Leaderboard(ctx context.Context, guildID sharedtypes.GuildID, limit int) ([]LeaderboardEntry, error) {
	result, err := withTelemetry(s, ctx, "Leaderboard", string(guildID), func(ctx context.Context) (results.OperationResult[[]LeaderboardEntry, error], error) {
		records, err := s.repo.TopScores(ctx, nil, guildID, limit)
		if err != nil {
			return results.OperationResult[[]LeaderboardEntry, error]{}, err
		}
		return results.SuccessResult[[]LeaderboardEntry, error](rankEntries(records)), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// rankEntries assigns competition ranking positions (1, 2, 2, 4) to records
// already sorted by score descending.
func rankEntries(records []*levelingdomain.ScoreRecord) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(records))
	for i, rec := range records {
		pos := i + 1
		if i > 0 && rec.Score == records[i-1].Score {
			pos = entries[i-1].Position
		}
		info := levelingdomain.LevelFor(rec.Score)
		entries = append(entries, LeaderboardEntry{
			Position: pos,
			UserID:   rec.UserID,
			Score:    rec.Score,
			Level:    info.Level,
			Progress: info.Progress,
		})
	}
	return entries
}

// SetScore overwrites a member's score. It is the only path that may lower a
// score. Roles are always resynced, since a correction can move either way.
func (s *LevelingService) SetScore(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID, score int64) (ScoreChange, error) {
	result, err := withTelemetry(s, ctx, "SetScore", string(guildID), func(ctx context.Context) (ScoreChangeResult, error) {
		if score < 0 {
			return results.FailureResult[ScoreChange, error](ErrNegativeScore), nil
		}
		before, after, err := s.updateScore(ctx, guildID, userID, func(current *levelingdomain.ScoreRecord) *levelingdomain.ScoreRecord {
			return current.WithScore(score, time.Time{})
		})
		if err != nil {
			return ScoreChangeResult{}, err
		}
		return results.SuccessResult[ScoreChange, error](ScoreChange{Before: before, After: after}), nil
	})
	if err != nil {
		return ScoreChange{}, err
	}
	if result.IsFailure() {
		return ScoreChange{}, *result.Failure
	}

	change := *result.Success
	change.Roles = s.SyncRoleForLevel(ctx, guildID, userID, change.After.Level)
	return change, nil
}

// ExportLeaderboard renders the full leaderboard as an XLSX workbook.
func (s *LevelingService) ExportLeaderboard(ctx context.Context, guildID sharedtypes.GuildID) ([]byte, error) {
	entries, err := s.Leaderboard(ctx, guildID, 0)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.Position, string(e.UserID), e.Score, e.Level, e.Progress})
	}
	data, err := report.WriteXLSX(report.Sheet{
		Name:   "Leaderboard",
		Header: []string{"Position", "User ID", "Score", "Level", "Progress"},
		Rows:   rows,
	})
	if err != nil {
		return nil, fmt.Errorf("ExportLeaderboard: %w", err)
	}
	return data, nil
}
