package competitiondomain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

// DefaultMaxImages applies when a season is created without an image limit.
const DefaultMaxImages = 5

var (
	// ErrInvalidSeason wraps every season validation failure.
	ErrInvalidSeason = errors.New("invalid season")
	// ErrInvalidTarget is returned when a forced advance does not move forward.
	ErrInvalidTarget = errors.New("invalid target status")
)

// Season is one run of the build competition.
type Season struct {
	ID                   sharedtypes.SeasonID
	GuildID              sharedtypes.GuildID
	Theme                string
	SubmissionStart      time.Time
	SubmissionEnd        time.Time
	VotingStart          time.Time
	VotingEnd            time.Time
	Status               Status
	MaxImages            int
	AllowMultipleEntries bool
	WinnerEntryID        *sharedtypes.EntryID
	CreatedAt            time.Time
}

// Validate checks the theme, image limit and that the four boundaries never decrease.
func (s *Season) Validate() error {
	if s.GuildID == "" {
		return fmt.Errorf("%w: guild id is required", ErrInvalidSeason)
	}
	if strings.TrimSpace(s.Theme) == "" {
		return fmt.Errorf("%w: theme is required", ErrInvalidSeason)
	}
	if s.MaxImages < 1 {
		return fmt.Errorf("%w: max images must be at least 1, got %d", ErrInvalidSeason, s.MaxImages)
	}
	bounds := []struct {
		name string
		t    time.Time
	}{
		{"submission start", s.SubmissionStart},
		{"submission end", s.SubmissionEnd},
		{"voting start", s.VotingStart},
		{"voting end", s.VotingEnd},
	}
	for i, b := range bounds {
		if b.t.IsZero() {
			return fmt.Errorf("%w: %s is required", ErrInvalidSeason, b.name)
		}
		if i > 0 && b.t.Before(bounds[i-1].t) {
			return fmt.Errorf("%w: %s (%s) is before %s (%s)", ErrInvalidSeason,
				b.name, b.t.Format(time.RFC3339), bounds[i-1].name, bounds[i-1].t.Format(time.RFC3339))
		}
	}
	return nil
}

// Boundary is the wall-clock time at which the season may enter to.
func (s *Season) Boundary(to Status) (time.Time, bool) {
	switch to {
	case StatusSubmissions:
		return s.SubmissionStart, true
	case StatusVoting:
		return s.SubmissionEnd, true
	case StatusClosed:
		return s.VotingEnd, true
	default:
		return time.Time{}, false
	}
}

// DueTransition returns the next status when its boundary has passed at now.
// Callers apply it and ask again until nothing is due, so a season that
// missed several ticks walks through every intermediate status.
func (s *Season) DueTransition(now time.Time) (Status, bool) {
	next, ok := s.Status.Next()
	if !ok {
		return "", false
	}
	at, ok := s.Boundary(next)
	if !ok || now.Before(at) {
		return "", false
	}
	return next, true
}

// PathTo lists the statuses between the current one and target, inclusive of target.
func (s *Season) PathTo(target Status) ([]Status, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	if !s.Status.Before(target) {
		return nil, fmt.Errorf("%w: season is already %s", ErrInvalidTarget, s.Status)
	}
	var path []Status
	for st := s.Status; st != target; {
		st, _ = st.Next()
		path = append(path, st)
	}
	return path, nil
}

// AcceptsSubmissions reports whether now falls inside the submission window
// of a season that has not yet moved to voting.
func (s *Season) AcceptsSubmissions(now time.Time) bool {
	if s.Status != StatusScheduled && s.Status != StatusSubmissions {
		return false
	}
	return !now.Before(s.SubmissionStart) && now.Before(s.SubmissionEnd)
}
