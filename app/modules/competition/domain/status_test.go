package competitiondomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLifecycle(t *testing.T) {
	next, ok := StatusScheduled.Next()
	require.True(t, ok)
	assert.Equal(t, StatusSubmissions, next)

	next, ok = StatusVoting.Next()
	require.True(t, ok)
	assert.Equal(t, StatusClosed, next)

	_, ok = StatusClosed.Next()
	assert.False(t, ok)

	_, ok = Status("paused").Next()
	assert.False(t, ok)

	assert.True(t, StatusScheduled.Before(StatusClosed))
	assert.False(t, StatusVoting.Before(StatusSubmissions))
	assert.False(t, StatusVoting.Before(StatusVoting))
	assert.False(t, StatusClosed.IsOpen())
	assert.True(t, StatusVoting.IsOpen())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("voting")
	require.NoError(t, err)
	assert.Equal(t, StatusVoting, st)

	_, err = ParseStatus("Voting")
	assert.Error(t, err)
}
