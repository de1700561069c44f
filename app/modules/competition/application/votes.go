package competitionservice

import (
	"context"
	"errors"
	"fmt"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/observability/attr"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// RecordVote stores the voter's single vote for the season. Rule violations
// come back as a rejected outcome. The season row is share-locked so a vote
// either lands before the closing tally or sees the season closed.
func (s *CompetitionService) RecordVote(ctx context.Context, voterID sharedtypes.DiscordID, seasonID sharedtypes.SeasonID, entryID sharedtypes.EntryID) (VoteOutcome, error) {
	voteTx := func(ctx context.Context, db bun.IDB) (VoteResult, error) {
		season, err := s.repo.GetSeason(ctx, db, seasonID, competitiondb.LockShare)
		if errors.Is(err, competitiondb.ErrNotFound) {
			return rejectedVote(competitiondomain.VoteSeasonNotFound), nil
		}
		if err != nil {
			return VoteResult{}, fmt.Errorf("load season: %w", err)
		}
		entry, err := s.repo.GetEntry(ctx, db, entryID)
		if errors.Is(err, competitiondb.ErrNotFound) {
			return rejectedVote(competitiondomain.VoteEntryNotFound), nil
		}
		if err != nil {
			return VoteResult{}, fmt.Errorf("load entry: %w", err)
		}
		if r := competitiondomain.CheckVote(season, entry, voterID); r != "" {
			return rejectedVote(r), nil
		}

		err = s.repo.InsertVote(ctx, db, &competitiondomain.Vote{
			SeasonID:  seasonID,
			VoterID:   voterID,
			EntryID:   entryID,
			CreatedAt: s.clock.Now().UTC(),
		})
		if errors.Is(err, competitiondb.ErrDuplicateVote) {
			return rejectedVote(competitiondomain.VoteAlreadyVoted), nil
		}
		if err != nil {
			return VoteResult{}, fmt.Errorf("insert vote: %w", err)
		}
		return results.SuccessResult[VoteOutcome, error](VoteOutcome{Accepted: true, Entry: entry}), nil
	}

	outcome, err := unwrap(withTelemetry(s, ctx, "RecordVote", seasonID.String(), func(ctx context.Context) (VoteResult, error) {
		return runInTx(s, ctx, voteTx)
	}))
	if err != nil {
		s.metrics.RecordVote(ctx, "error")
		return VoteOutcome{}, err
	}
	if outcome.Accepted {
		s.metrics.RecordVote(ctx, "accepted")
		return outcome, nil
	}
	s.metrics.RecordVote(ctx, "rejected")
	s.logger.InfoContext(ctx, "Vote rejected",
		attr.ExtractCorrelationID(ctx),
		attr.SeasonID(seasonID),
		attr.UserID(voterID),
		attr.String("reason", string(outcome.Rejection)),
	)
	return outcome, nil
}

func rejectedVote(r competitiondomain.VoteRejection) VoteResult {
	return results.SuccessResult[VoteOutcome, error](VoteOutcome{Rejection: r})
}
