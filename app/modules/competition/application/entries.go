package competitionservice

import (
	"context"
	"errors"
	"fmt"
	"slices"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/guild-bot/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/uptrace/bun"
)

// CanSubmit reports whether the user may submit an entry right now: the
// guild's open season must be scheduled or accepting submissions with now
// inside its submission window, and the user must not already have an entry
// unless the season allows several.
func (s *CompetitionService) CanSubmit(ctx context.Context, guildID sharedtypes.GuildID, userID sharedtypes.DiscordID) (bool, error) {
	season, err := s.repo.GetOpenSeason(ctx, nil, guildID)
	if errors.Is(err, competitiondb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("CanSubmit: %w", err)
	}
	rejection, err := s.submissionGate(ctx, nil, season, userID)
	if err != nil {
		return false, fmt.Errorf("CanSubmit: %w", err)
	}
	return rejection == "", nil
}

func (s *CompetitionService) submissionGate(ctx context.Context, db bun.IDB, season *competitiondomain.Season, userID sharedtypes.DiscordID) (competitiondomain.SubmissionRejection, error) {
	if !season.AcceptsSubmissions(s.clock.Now()) {
		return competitiondomain.SubmissionNoOpenSeason, nil
	}
	if season.AllowMultipleEntries {
		return "", nil
	}
	n, err := s.repo.CountEntriesByAuthor(ctx, db, season.ID, userID)
	if err != nil {
		return "", fmt.Errorf("count entries: %w", err)
	}
	if n > 0 {
		return competitiondomain.SubmissionAlreadySubmitted, nil
	}
	return "", nil
}

// SubmitEntry records a build for the guild's open season. The season row is
// locked while the gate is checked so one user cannot slip in two entries.
func (s *CompetitionService) SubmitEntry(
	ctx context.Context,
	guildID sharedtypes.GuildID,
	userID sharedtypes.DiscordID,
	title string,
	imageURLs []string,
) (SubmissionOutcome, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (SubmissionResult, error) {
		open, err := s.repo.GetOpenSeason(ctx, db, guildID)
		if errors.Is(err, competitiondb.ErrNotFound) {
			return rejectedSubmission(nil, competitiondomain.SubmissionNoOpenSeason), nil
		}
		if err != nil {
			return SubmissionResult{}, fmt.Errorf("load open season: %w", err)
		}
		season, err := s.repo.GetSeason(ctx, db, open.ID, competitiondb.LockUpdate)
		if err != nil {
			return SubmissionResult{}, fmt.Errorf("lock season: %w", err)
		}

		rejection, err := s.submissionGate(ctx, db, season, userID)
		if err != nil {
			return SubmissionResult{}, err
		}
		if rejection == "" {
			rejection = competitiondomain.CheckEntryShape(season, title, imageURLs)
		}
		if rejection != "" {
			return rejectedSubmission(season, rejection), nil
		}

		entry := &competitiondomain.Entry{
			ID:        sharedtypes.NewEntryID(),
			SeasonID:  season.ID,
			GuildID:   guildID,
			AuthorID:  userID,
			Title:     title,
			ImageURLs: slices.Clone(imageURLs),
			CreatedAt: s.clock.Now().UTC(),
		}
		if err := s.repo.InsertEntry(ctx, db, entry); err != nil {
			return SubmissionResult{}, fmt.Errorf("insert entry: %w", err)
		}
		return results.SuccessResult[SubmissionOutcome, error](SubmissionOutcome{
			Accepted: true,
			Season:   season,
			Entry:    entry,
		}), nil
	}

	outcome, err := unwrap(withTelemetry(s, ctx, "SubmitEntry", string(guildID), func(ctx context.Context) (SubmissionResult, error) {
		return runInTx(s, ctx, submitTx)
	}))
	if err != nil {
		s.metrics.RecordSubmission(ctx, "error")
		return SubmissionOutcome{}, err
	}
	if outcome.Accepted {
		s.metrics.RecordSubmission(ctx, "accepted")
	} else {
		s.metrics.RecordSubmission(ctx, "rejected")
	}
	return outcome, nil
}

func rejectedSubmission(season *competitiondomain.Season, r competitiondomain.SubmissionRejection) SubmissionResult {
	return results.SuccessResult[SubmissionOutcome, error](SubmissionOutcome{
		Rejection: r,
		Reason:    r.Describe(season),
		Season:    season,
	})
}
