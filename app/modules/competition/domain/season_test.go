package competitiondomain

import (
	"errors"
	"testing"
	"time"

	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func testSeason() *Season {
	return &Season{
		ID:              sharedtypes.NewSeasonID(),
		GuildID:         "g1",
		Theme:           "Castles",
		SubmissionStart: t0,
		SubmissionEnd:   t0.Add(time.Hour),
		VotingStart:     t0.Add(time.Hour),
		VotingEnd:       t0.Add(2 * time.Hour),
		Status:          StatusScheduled,
		MaxImages:       DefaultMaxImages,
	}
}

func TestSeasonValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Season)
		ok     bool
	}{
		{"valid", func(*Season) {}, true},
		{"equal boundaries", func(s *Season) {
			s.SubmissionEnd, s.VotingStart, s.VotingEnd = t0, t0, t0
		}, true},
		{"no theme", func(s *Season) { s.Theme = "  " }, false},
		{"no guild", func(s *Season) { s.GuildID = "" }, false},
		{"zero images", func(s *Season) { s.MaxImages = 0 }, false},
		{"missing voting end", func(s *Season) { s.VotingEnd = time.Time{} }, false},
		{"voting before submissions end", func(s *Season) { s.VotingStart = t0.Add(30 * time.Minute) }, false},
		{"end before start", func(s *Season) { s.SubmissionEnd = t0.Add(-time.Minute) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSeason()
			tt.mutate(s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSeason))
		})
	}
}

func TestDueTransition(t *testing.T) {
	s := testSeason()

	_, due := s.DueTransition(t0.Add(-time.Second))
	assert.False(t, due, "nothing due before submissions open")

	next, due := s.DueTransition(t0)
	require.True(t, due, "boundary is inclusive")
	assert.Equal(t, StatusSubmissions, next)

	s.Status = StatusSubmissions
	_, due = s.DueTransition(t0.Add(59 * time.Minute))
	assert.False(t, due)

	s.Status = StatusClosed
	_, due = s.DueTransition(t0.Add(100 * time.Hour))
	assert.False(t, due)
}

func TestDueTransitionWalksMissedBoundaries(t *testing.T) {
	s := testSeason()
	now := t0.Add(3 * time.Hour)

	var path []Status
	for {
		next, due := s.DueTransition(now)
		if !due {
			break
		}
		path = append(path, next)
		s.Status = next
	}
	assert.Equal(t, []Status{StatusSubmissions, StatusVoting, StatusClosed}, path)
}

func TestPathTo(t *testing.T) {
	s := testSeason()
	path, err := s.PathTo(StatusVoting)
	require.NoError(t, err)
	assert.Equal(t, []Status{StatusSubmissions, StatusVoting}, path)

	s.Status = StatusVoting
	_, err = s.PathTo(StatusSubmissions)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = s.PathTo(StatusVoting)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = s.PathTo("bogus")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestAcceptsSubmissions(t *testing.T) {
	s := testSeason()
	assert.False(t, s.AcceptsSubmissions(t0.Add(-time.Minute)))
	assert.True(t, s.AcceptsSubmissions(t0), "scheduled season inside its window still accepts")
	s.Status = StatusSubmissions
	assert.True(t, s.AcceptsSubmissions(t0.Add(59*time.Minute)))
	assert.False(t, s.AcceptsSubmissions(t0.Add(time.Hour)))
	s.Status = StatusVoting
	assert.False(t, s.AcceptsSubmissions(t0.Add(30*time.Minute)))
}
