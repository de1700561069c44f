package levelingservice

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	levelingdomain "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/domain"
	levelingdb "github.com/Black-And-White-Club/guild-bot/app/modules/leveling/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// RecordActivity scores one message. Missing config, blocked channels and an
// active cooldown are normal outcomes, not errors. An error means the points
// were not persisted.
func (s *LevelingService) RecordActivity(
	ctx context.Context,
	guildID sharedtypes.GuildID,
	userID sharedtypes.DiscordID,
	channelID sharedtypes.ChannelID,
	now time.Time,
) (ActivityOutcome, error) {
	cfg, err := s.guilds.GetConfig(ctx, guildID)
	switch {
	case errors.Is(err, guilddomain.ErrConfigNotFound):
		s.metrics.RecordActivityOutcome(ctx, string(ActivityNoConfig))
		return ActivityOutcome{Status: ActivityNoConfig}, nil
	case err != nil:
		return ActivityOutcome{}, fmt.Errorf("RecordActivity: load config: %w", err)
	}
	if cfg.IsBlocked(channelID) {
		s.metrics.RecordActivityOutcome(ctx, string(ActivityBlocked))
		return ActivityOutcome{Status: ActivityBlocked}, nil
	}

	result, err := withTelemetry(s, ctx, "RecordActivity", string(guildID), func(ctx context.Context) (ActivityResult, error) {
		return s.applyActivity(ctx, cfg, userID, now)
	})
	if err != nil {
		return ActivityOutcome{}, err
	}
	outcome := *result.Success
	s.metrics.RecordActivityOutcome(ctx, string(outcome.Status))

	if outcome.Status == ActivityCooldown {
		s.logger.DebugContext(ctx, "Cooldown active, message not scored",
			attr.GuildID(guildID),
			attr.UserID(userID),
		)
		return outcome, nil
	}
	s.metrics.RecordPointsAwarded(ctx, outcome.Points)

	if outcome.LeveledUp() {
		s.metrics.RecordLevelUp(ctx)
		outcome.Roles = s.SyncRoleForLevel(ctx, guildID, userID, outcome.After.Level)
		s.notifyLevelUp(ctx, cfg, userID, outcome)
	}
	return outcome, nil
}

func (s *LevelingService) applyActivity(ctx context.Context, cfg *guilddomain.GuildConfig, userID sharedtypes.DiscordID, now time.Time) (ActivityResult, error) {
	var points int64
	cooling := false
	before, after, err := s.updateScore(ctx, cfg.GuildID, userID, func(current *levelingdomain.ScoreRecord) *levelingdomain.ScoreRecord {
		if current.CooldownActive(now, cfg.Cooldown()) {
			cooling = true
			return nil
		}
		cooling = false
		points = levelingdomain.RollPoints(cfg.PointsPerMessage, s.intn)
		at := now
		if current.LastActivityAt.After(at) {
			at = current.LastActivityAt
		}
		return current.WithScore(current.Score+points, at)
	})
	if err != nil {
		return ActivityResult{}, err
	}
	if cooling {
		return results.SuccessResult[ActivityOutcome, error](ActivityOutcome{Status: ActivityCooldown, Before: before, After: before}), nil
	}
	return results.SuccessResult[ActivityOutcome, error](ActivityOutcome{
		Status: ActivityAwarded,
		Points: points,
		Before: before,
		After:  after,
	}), nil
}

// updateScore runs read, compute, compare-and-swap until the write lands.
// compute sees the freshest record on every attempt and returns nil to leave
// it untouched, in which case after is nil. Each attempt row-locks the record
// inside a transaction so same-member writers queue in Postgres; a lost race
// on the first insert or a version conflict backs off with jitter and retries.
func (s *LevelingService) updateScore(
	ctx context.Context,
	guildID sharedtypes.GuildID,
	userID sharedtypes.DiscordID,
	compute func(current *levelingdomain.ScoreRecord) *levelingdomain.ScoreRecord,
) (before, after *levelingdomain.ScoreRecord, err error) {
	for attempt := range s.maxAttempts {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.backoff(attempt)); err != nil {
				return nil, nil, fmt.Errorf("score retry: %w", err)
			}
		}

		err = s.inTx(ctx, func(ctx context.Context, db bun.IDB) error {
			current, err := s.repo.GetScoreForUpdate(ctx, db, guildID, userID)
			exists := true
			switch {
			case errors.Is(err, levelingdb.ErrNotFound):
				current = levelingdomain.NewScoreRecord(guildID, userID)
				exists = false
			case err != nil:
				return fmt.Errorf("load: %w", err)
			}

			next := compute(current)
			if next == nil {
				before, after = current, nil
				return nil
			}
			if exists {
				err = s.repo.CompareAndSwapScore(ctx, db, next, current.Version)
			} else {
				err = s.repo.InsertScore(ctx, db, next)
			}
			if err != nil {
				return err
			}
			before, after = current, next
			return nil
		})
		switch {
		case err == nil:
			return before, after, nil
		case errors.Is(err, levelingdb.ErrVersionConflict), errors.Is(err, levelingdb.ErrAlreadyExists):
			s.metrics.RecordScoreConflict(ctx)
		default:
			return nil, nil, fmt.Errorf("persist score: %w", err)
		}
	}
	return nil, nil, ErrContention
}

// retryBackoff doubles from 1ms up to 64ms and draws uniformly from the upper
// half so colliding writers spread out.
func retryBackoff(attempt int) time.Duration {
	d := time.Millisecond << min(attempt-1, 6)
	return d/2 + rand.N(d/2+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// notifyLevelUp announces the level-up and writes an audit line. Failures are
// logged only; the score is already committed.
func (s *LevelingService) notifyLevelUp(ctx context.Context, cfg *guilddomain.GuildConfig, userID sharedtypes.DiscordID, outcome ActivityOutcome) {
	content := fmt.Sprintf("<@%s> reached level %d!", userID, outcome.After.Level)
	if t := outcome.Roles.Target; t != nil && slices.Contains(outcome.Roles.Granted, t.RoleID) {
		content += fmt.Sprintf(" They are now %s.", roleLabel(*t))
	}

	channel := cfg.AnnouncementChannel()
	if channel == "" {
		s.logger.DebugContext(ctx, "No announcement channel configured, level-up not announced",
			attr.GuildID(cfg.GuildID),
			attr.UserID(userID),
		)
	} else if err := s.gateway.Announce(ctx, cfg.GuildID, channel, content); err != nil {
		s.logger.WarnContext(ctx, "Failed to announce level-up",
			attr.ExtractCorrelationID(ctx),
			attr.GuildID(cfg.GuildID),
			attr.UserID(userID),
			attr.ChannelID(channel),
			attr.Error(err),
		)
	}

	if cfg.LogChannelID == "" || cfg.LogChannelID == channel {
		return
	}
	line := fmt.Sprintf("Level-up: <@%s> level %d to %d (score %d)", userID, outcome.Before.Level, outcome.After.Level, outcome.After.Score)
	if err := s.gateway.Announce(ctx, cfg.GuildID, cfg.LogChannelID, line); err != nil {
		s.logger.WarnContext(ctx, "Failed to write level-up audit line",
			attr.GuildID(cfg.GuildID),
			attr.UserID(userID),
			attr.ChannelID(cfg.LogChannelID),
			attr.Error(err),
		)
	}
}

func roleLabel(b levelingdomain.RoleBinding) string {
	if b.RoleName != "" {
		return "**" + b.RoleName + "**"
	}
	return fmt.Sprintf("<@&%s>", b.RoleID)
}
