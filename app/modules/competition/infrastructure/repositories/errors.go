package competitiondb

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a config, season, entry or vote does not exist.
	ErrNotFound = errors.New("competition record not found")

	// ErrStatusConflict is returned when a status compare-and-swap found a different status.
	ErrStatusConflict = errors.New("season status changed concurrently")

	// ErrOpenSeasonExists is returned when the guild already has a season that is not closed.
	ErrOpenSeasonExists = errors.New("guild already has an open season")

	// ErrDuplicateVote is returned when the voter already has a vote in the season.
	ErrDuplicateVote = errors.New("voter already voted in this season")
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation
}
