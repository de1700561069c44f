package competitiondomain

import (
	"cmp"
	"slices"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// Standing is an entry with its vote count.
type Standing struct {
	Entry *Entry
	Votes int
}

// Tally counts votes per entry and orders entries by votes descending, then
// by creation time ascending. Votes for entries outside the slice are ignored.
// ok is false when there are no entries, in which case there is no winner.
func Tally(entries []*Entry, votes []*Vote) (standings []Standing, ok bool) {
	if len(entries) == 0 {
		return nil, false
	}
	counts := make(map[sharedtypes.EntryID]int, len(entries))
	for _, v := range votes {
		counts[v.EntryID]++
	}
	standings = make([]Standing, 0, len(entries))
	for _, e := range entries {
		standings = append(standings, Standing{Entry: e, Votes: counts[e.ID]})
	}
	slices.SortStableFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
			return c
		}
		if c := a.Entry.CreatedAt.Compare(b.Entry.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Entry.ID.String(), b.Entry.ID.String())
	})
	return standings, true
}
