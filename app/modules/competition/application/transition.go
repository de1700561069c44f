package competitionservice

import (
	"context"
	"errors"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/uptrace/bun"
)

// transitionCommit is what a committed transition hands to its side effects.
type transitionCommit struct {
	entries   []*competitiondomain.Entry
	standings []competitiondomain.Standing
	hasWinner bool
}

// maxStaleReloads bounds how often one advance re-reads a season that moved underneath it.
const maxStaleReloads = 4

// applyTransition moves season one step to `to`. The status write commits
// first and the announcements run afterwards, so each step's side effects
// happen at most once: a crash or failed post after the commit leaves the
// season advanced without that notice. It returns errStaleSeason when the
// stored status no longer matches season.Status.
func (s *CompetitionService) applyTransition(
	ctx context.Context,
	cfg *competitiondomain.BuildConfig,
	season *competitiondomain.Season,
	to competitiondomain.Status,
	forced bool,
) (Transition, error) {
	// A shutdown must not interrupt a step between its commit and its announcements.
	ctx = context.WithoutCancel(ctx)
	from := season.Status

	commit := func(ctx context.Context, db bun.IDB) (TransitionResult, error) {
		locked, err := s.repo.GetSeason(ctx, db, season.ID, competitiondb.LockUpdate)
		if err != nil {
			return TransitionResult{}, fmt.Errorf("lock season: %w", err)
		}
		if locked.Status != from {
			return results.FailureResult[transitionCommit, error](errStaleSeason), nil
		}

		var out transitionCommit
		switch to {
		case competitiondomain.StatusVoting:
			if out.entries, err = s.repo.ListEntries(ctx, db, season.ID); err != nil {
				return TransitionResult{}, fmt.Errorf("list entries: %w", err)
			}
		case competitiondomain.StatusClosed:
			if out.entries, err = s.repo.ListEntries(ctx, db, season.ID); err != nil {
				return TransitionResult{}, fmt.Errorf("list entries: %w", err)
			}
			votes, err := s.repo.ListVotes(ctx, db, season.ID)
			if err != nil {
				return TransitionResult{}, fmt.Errorf("list votes: %w", err)
			}
			out.standings, out.hasWinner = competitiondomain.Tally(out.entries, votes)
			if out.hasWinner {
				winner := out.standings[0].Entry
				if err := s.repo.SetWinner(ctx, db, season.ID, winner.ID); err != nil {
					return TransitionResult{}, fmt.Errorf("set winner: %w", err)
				}
				if err := s.repo.AddEntryTag(ctx, db, winner.ID, competitiondomain.WinnerTag); err != nil {
					return TransitionResult{}, fmt.Errorf("tag winner: %w", err)
				}
			}
		}

		if err := s.repo.CompareAndSwapStatus(ctx, db, season.ID, from, to); err != nil {
			if errors.Is(err, competitiondb.ErrStatusConflict) {
				return results.FailureResult[transitionCommit, error](errStaleSeason), nil
			}
			return TransitionResult{}, fmt.Errorf("write status: %w", err)
		}
		return results.SuccessResult[transitionCommit, error](out), nil
	}

	result, err := runInTx(s, ctx, commit)
	if err != nil {
		return Transition{}, err
	}
	if result.IsFailure() {
		return Transition{}, *result.Failure
	}

	season.Status = to
	if to == competitiondomain.StatusClosed && result.Success.hasWinner {
		id := result.Success.standings[0].Entry.ID
		season.WinnerEntryID = &id
	}
	s.metrics.RecordTransition(ctx, string(from), string(to))
	s.logger.InfoContext(ctx, "Season transitioned",
		attr.ExtractCorrelationID(ctx),
		attr.GuildID(season.GuildID),
		attr.SeasonID(season.ID),
		attr.String("from", string(from)),
		attr.String("to", string(to)),
		attr.Bool("forced", forced),
	)

	s.announceTransition(ctx, cfg, season, to, *result.Success)

	return Transition{
		GuildID:  season.GuildID,
		SeasonID: season.ID,
		Theme:    season.Theme,
		From:     from,
		To:       to,
		Forced:   forced,
	}, nil
}

// stepper yields the next status to apply, or false when the advance is done.
type stepper func(season *competitiondomain.Season) (competitiondomain.Status, bool)

// advance applies steps until next reports nothing left. A stale season is
// re-read and the walk continues from its stored status.
func (s *CompetitionService) advance(
	ctx context.Context,
	season *competitiondomain.Season,
	forced bool,
	next stepper,
) ([]Transition, error) {
	cfg, err := s.buildConfigForAnnouncements(ctx, season)
	if err != nil {
		return nil, err
	}

	var applied []Transition
	reloads := 0
	for {
		to, ok := next(season)
		if !ok {
			return applied, nil
		}
		t, err := s.applyTransition(ctx, cfg, season, to, forced)
		if errors.Is(err, errStaleSeason) {
			if reloads++; reloads > maxStaleReloads {
				return applied, fmt.Errorf("season %s: status kept changing concurrently", season.ID)
			}
			fresh, err := s.repo.GetSeason(ctx, nil, season.ID, competitiondb.LockNone)
			if err != nil {
				return applied, fmt.Errorf("reload season: %w", err)
			}
			*season = *fresh
			continue
		}
		if err != nil {
			return applied, fmt.Errorf("season %s %s -> %s: %w", season.ID, season.Status, to, err)
		}
		applied = append(applied, t)
	}
}

// buildConfigForAnnouncements loads the guild's channels. A guild without a
// build config still advances; its announcements are skipped.
func (s *CompetitionService) buildConfigForAnnouncements(ctx context.Context, season *competitiondomain.Season) (*competitiondomain.BuildConfig, error) {
	cfg, err := s.repo.GetBuildConfig(ctx, nil, season.GuildID)
	if errors.Is(err, competitiondb.ErrNotFound) {
		s.logger.WarnContext(ctx, "Guild has no build config, season announcements will be skipped",
			attr.GuildID(season.GuildID),
			attr.SeasonID(season.ID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load build config: %w", err)
	}
	return cfg, nil
}
