package competitionservice

import (
	"context"
	"errors"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// CreateSeason schedules a new season for the guild. The guild needs a build
// config and no other open season. Validation problems are returned as errors
// wrapping competitiondomain.ErrInvalidSeason.
func (s *CompetitionService) CreateSeason(ctx context.Context, req SeasonRequest) (*competitiondomain.Season, error) {
	return unwrap(withTelemetry(s, ctx, "CreateSeason", string(req.GuildID), func(ctx context.Context) (SeasonResult, error) {
		if _, err := s.repo.GetBuildConfig(ctx, nil, req.GuildID); err != nil {
			if errors.Is(err, competitiondb.ErrNotFound) {
				return results.FailureResult[*competitiondomain.Season, error](competitiondomain.ErrBuildConfigNotFound), nil
			}
			return SeasonResult{}, fmt.Errorf("load build config: %w", err)
		}

		season, err := s.seasonFromRequest(req)
		if err != nil {
			return results.FailureResult[*competitiondomain.Season, error](err), nil
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (SeasonResult, error) {
			_, err := s.repo.GetOpenSeason(ctx, db, req.GuildID)
			switch {
			case err == nil:
				return results.FailureResult[*competitiondomain.Season, error](ErrSeasonAlreadyOpen), nil
			case !errors.Is(err, competitiondb.ErrNotFound):
				return SeasonResult{}, fmt.Errorf("check open season: %w", err)
			}
			if err := s.repo.InsertSeason(ctx, db, season); err != nil {
				if errors.Is(err, competitiondb.ErrOpenSeasonExists) {
					return results.FailureResult[*competitiondomain.Season, error](ErrSeasonAlreadyOpen), nil
				}
				return SeasonResult{}, fmt.Errorf("insert season: %w", err)
			}
			return results.SuccessResult[*competitiondomain.Season, error](season), nil
		})
	}))
}

func (s *CompetitionService) seasonFromRequest(req SeasonRequest) (*competitiondomain.Season, error) {
	loc, err := competitiondomain.LoadLocation(req.Timezone, s.location)
	if err != nil {
		return nil, err
	}
	bounds, err := competitiondomain.NewBoundaryParser(loc).ParseAll(s.clock.Now(), [4]string{
		req.SubmissionStart, req.SubmissionEnd, req.VotingStart, req.VotingEnd,
	})
	if err != nil {
		return nil, err
	}
	maxImages := req.MaxImages
	if maxImages == 0 {
		maxImages = competitiondomain.DefaultMaxImages
	}
	season := &competitiondomain.Season{
		ID:                   sharedtypes.NewSeasonID(),
		GuildID:              req.GuildID,
		Theme:                req.Theme,
		SubmissionStart:      bounds[0],
		SubmissionEnd:        bounds[1],
		VotingStart:          bounds[2],
		VotingEnd:            bounds[3],
		Status:               competitiondomain.StatusScheduled,
		MaxImages:            maxImages,
		AllowMultipleEntries: req.AllowMultipleEntries,
	}
	if err := season.Validate(); err != nil {
		return nil, err
	}
	return season, nil
}

// SeasonStatus reports the guild's open season, or its most recent one when
// none is open.
func (s *CompetitionService) SeasonStatus(ctx context.Context, guildID sharedtypes.GuildID) (SeasonSummary, error) {
	return unwrap(withTelemetry(s, ctx, "SeasonStatus", string(guildID), func(ctx context.Context) (SummaryResult, error) {
		season, err := s.repo.GetOpenSeason(ctx, nil, guildID)
		if errors.Is(err, competitiondb.ErrNotFound) {
			season, err = s.repo.GetLatestSeason(ctx, nil, guildID)
		}
		if errors.Is(err, competitiondb.ErrNotFound) {
			return results.FailureResult[SeasonSummary, error](ErrNoSeason), nil
		}
		if err != nil {
			return SummaryResult{}, fmt.Errorf("load season: %w", err)
		}

		entries, err := s.repo.ListEntries(ctx, nil, season.ID)
		if err != nil {
			return SummaryResult{}, fmt.Errorf("list entries: %w", err)
		}
		votes, err := s.repo.ListVotes(ctx, nil, season.ID)
		if err != nil {
			return SummaryResult{}, fmt.Errorf("list votes: %w", err)
		}

		summary := SeasonSummary{Season: season, Entries: len(entries), Votes: len(votes)}
		if season.Status == competitiondomain.StatusClosed {
			summary.Standings, _ = competitiondomain.Tally(entries, votes)
		}
		return results.SuccessResult[SeasonSummary, error](summary), nil
	}))
}

// GetSeason loads one season by id.
func (s *CompetitionService) GetSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (*competitiondomain.Season, error) {
	return unwrap(withTelemetry(s, ctx, "GetSeason", seasonID.String(), func(ctx context.Context) (SeasonResult, error) {
		season, err := s.loadSeason(ctx, seasonID)
		if err != nil {
			return SeasonResult{}, err
		}
		if season == nil {
			return results.FailureResult[*competitiondomain.Season, error](ErrSeasonNotFound), nil
		}
		return results.SuccessResult[*competitiondomain.Season, error](season), nil
	}))
}

// loadSeason returns nil without error for an unknown id.
func (s *CompetitionService) loadSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (*competitiondomain.Season, error) {
	season, err := s.repo.GetSeason(ctx, nil, seasonID, competitiondb.LockNone)
	if errors.Is(err, competitiondb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load season: %w", err)
	}
	return season, nil
}
