package competitionservice

import (
	"context"
	"fmt"
	"time"

	competitiondomain "github.com/Black-And-White-Club/guild-bot/app/modules/competition/domain"
	"github.com/Black-And-White-Club/guild-bot/internal/report"
	"github.com/Black-And-White-Club/guild-bot/internal/results"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// ExportSeasonResults renders the season's standings and votes as a workbook.
// Standings are in tally order, so an open season shows the current count.
func (s *CompetitionService) ExportSeasonResults(ctx context.Context, seasonID sharedtypes.SeasonID) ([]byte, error) {
	return unwrap(withTelemetry(s, ctx, "ExportSeasonResults", seasonID.String(), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		season, err := s.loadSeason(ctx, seasonID)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		if season == nil {
			return results.FailureResult[[]byte, error](ErrSeasonNotFound), nil
		}
		entries, err := s.repo.ListEntries(ctx, nil, seasonID)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("list entries: %w", err)
		}
		votes, err := s.repo.ListVotes(ctx, nil, seasonID)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("list votes: %w", err)
		}

		standings, _ := competitiondomain.Tally(entries, votes)
		standingRows := make([][]any, 0, len(standings))
		for i, st := range standings {
			winner := ""
			if season.WinnerEntryID != nil && *season.WinnerEntryID == st.Entry.ID {
				winner = "yes"
			}
			standingRows = append(standingRows, []any{
				i + 1,
				st.Entry.ID.String(),
				st.Entry.Title,
				string(st.Entry.AuthorID),
				st.Votes,
				st.Entry.CreatedAt.UTC().Format(time.RFC3339),
				winner,
			})
		}
		voteRows := make([][]any, 0, len(votes))
		for _, v := range votes {
			voteRows = append(voteRows, []any{
				string(v.VoterID),
				v.EntryID.String(),
				v.CreatedAt.UTC().Format(time.RFC3339),
			})
		}

		data, err := report.WriteXLSX(
			report.Sheet{
				Name:   "Standings",
				Header: []string{"Position", "Entry ID", "Title", "Author ID", "Votes", "Submitted At", "Winner"},
				Rows:   standingRows,
			},
			report.Sheet{
				Name:   "Votes",
				Header: []string{"Voter ID", "Entry ID", "Voted At"},
				Rows:   voteRows,
			},
		)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("write workbook: %w", err)
		}
		return results.SuccessResult[[]byte, error](data), nil
	}))
}
