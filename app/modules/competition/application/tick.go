package competitionservice

import (
	"context"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// Tick evaluates every open season against the clock. A season that missed
// several boundaries walks through each intermediate status in this tick. A
// failing season is logged and counted without affecting the others; its
// uncommitted step is retried on the next tick. Cancellation stops the tick
// between seasons.
func (s *CompetitionService) Tick(ctx context.Context) (TickReport, error) {
	return unwrap(withTelemetry(s, ctx, "Tick", "*", func(ctx context.Context) (TickResult, error) {
		start := time.Now()
		now := s.clock.Now().UTC()

		seasons, err := s.repo.ListOpenSeasons(ctx, nil)
		if err != nil {
			return TickResult{}, fmt.Errorf("list open seasons: %w", err)
		}

		report := TickReport{Seasons: len(seasons)}
		for _, season := range seasons {
			if err := ctx.Err(); err != nil {
				report.Duration = time.Since(start)
				return results.SuccessResult[TickReport, error](report), nil
			}
			applied, err := s.tickSeason(ctx, season, now)
			report.Transitions = append(report.Transitions, applied...)
			if err != nil {
				report.Failures++
				s.metrics.RecordSeasonFailure(ctx)
				s.logger.ErrorContext(ctx, "Season evaluation failed",
					attr.ExtractCorrelationID(ctx),
					attr.GuildID(season.GuildID),
					attr.SeasonID(season.ID),
					attr.String("status", string(season.Status)),
					attr.Error(err),
				)
			}
		}

		report.Duration = time.Since(start)
		s.metrics.RecordTick(ctx, report.Seasons, report.Duration)
		if len(report.Transitions) > 0 || report.Failures > 0 {
			s.logger.InfoContext(ctx, "Season tick completed",
				attr.Int("seasons", report.Seasons),
				attr.Int("transitions", len(report.Transitions)),
				attr.Int("failures", report.Failures),
				attr.Duration("duration", report.Duration),
			)
		}
		return results.SuccessResult[TickReport, error](report), nil
	}))
}

// tickSeason isolates one season so a panic is reported as that season's failure.
func (s *CompetitionService) tickSeason(ctx context.Context, season *competitiondomain.Season, now time.Time) (applied []Transition, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic advancing season %s: %v", season.ID, r)
		}
	}()
	return s.advance(ctx, season, false, func(cur *competitiondomain.Season) (competitiondomain.Status, bool) {
		return cur.DueTransition(now)
	})
}

// ForceAdvance moves a season forward to target through every intermediate
// status, running each step's side effects, regardless of the clock.
func (s *CompetitionService) ForceAdvance(ctx context.Context, seasonID sharedtypes.SeasonID, target competitiondomain.Status) (AdvanceOutcome, error) {
	return unwrap(withTelemetry(s, ctx, "ForceAdvance", seasonID.String(), func(ctx context.Context) (AdvanceResult, error) {
		season, err := s.loadSeason(ctx, seasonID)
		if err != nil {
			return AdvanceResult{}, err
		}
		if season == nil {
			return results.FailureResult[AdvanceOutcome, error](ErrSeasonNotFound), nil
		}
		if _, err := season.PathTo(target); err != nil {
			return results.FailureResult[AdvanceOutcome, error](err), nil
		}

		applied, err := s.advance(ctx, season, true, func(cur *competitiondomain.Season) (competitiondomain.Status, bool) {
			if !cur.Status.Before(target) {
				return "", false
			}
			return cur.Status.Next()
		})
		if err != nil {
			return AdvanceResult{}, err
		}
		return results.SuccessResult[AdvanceOutcome, error](AdvanceOutcome{Season: season, Transitions: applied}), nil
	}))
}
