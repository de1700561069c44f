package competitiondomain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundaryParserRFC3339(t *testing.T) {
	p := NewBoundaryParser(nil)
	got, err := p.Parse("2025-07-04T18:00:00-04:00", t0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 4, 22, 0, 0, 0, time.UTC), got)
}

func TestBoundaryParserNaturalLanguage(t *testing.T) {
	p := NewBoundaryParser(time.UTC)
	got, err := p.Parse("in 3 days", t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(72*time.Hour), got)
}

func TestBoundaryParserRejectsGarbage(t *testing.T) {
	p := NewBoundaryParser(time.UTC)
	_, err := p.Parse("xyzzy", t0)
	assert.ErrorIs(t, err, ErrInvalidSeason)

	_, err = p.Parse("", t0)
	assert.ErrorIs(t, err, ErrInvalidSeason)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Mars/Olympus", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidSeason)
}
