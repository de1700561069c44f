package competitiondomain

import (
	"slices"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// MaxBallotSize is the largest number of vote prompts a single ballot post can render.
const MaxBallotSize = 25

// BallotOption is one votable entry.
type BallotOption struct {
	EntryID  sharedtypes.EntryID
	Title    string
	AuthorID sharedtypes.DiscordID
	ImageURL string
}

// BuildBallot orders entries by submission time and keeps the first limit of
// them. omitted is how many entries did not fit.
func BuildBallot(entries []*Entry, limit int) (options []BallotOption, omitted int) {
	if limit <= 0 || limit > MaxBallotSize {
		limit = MaxBallotSize
	}
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b *Entry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if len(sorted) > limit {
		omitted = len(sorted) - limit
		sorted = sorted[:limit]
	}
	options = make([]BallotOption, 0, len(sorted))
	for _, e := range sorted {
		options = append(options, BallotOption{
			EntryID:  e.ID,
			Title:    e.Title,
			AuthorID: e.AuthorID,
			ImageURL: e.CoverImage(),
		})
	}
	return options, omitted
}
