package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	data, err := WriteXLSX(
		Sheet{Name: "Leaderboard", Header: []string{"Position", "User"}, Rows: [][]any{{1, "alice"}, {2, "bob"}}},
		Sheet{Name: "Votes", Header: []string{"Entry", "Votes"}},
	)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Leaderboard", "Votes"}, f.GetSheetList())
	rows, err := f.GetRows("Leaderboard")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Position", "User"}, {"1", "alice"}, {"2", "bob"}}, rows)

	votes, err := f.GetRows("Votes")
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestWriteXLSX_NoSheets(t *testing.T) {
	_, err := WriteXLSX()
	assert.Error(t, err)
}
