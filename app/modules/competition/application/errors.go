package competitionservice

import "errors"

var (
	// ErrNoSeason is returned when a guild has never scheduled a season.
	ErrNoSeason = errors.New("no season found")

	// ErrSeasonAlreadyOpen rejects a new season while another is still running.
	ErrSeasonAlreadyOpen = errors.New("a season is already scheduled or running")

	// ErrSeasonNotFound is returned for an unknown season id.
	ErrSeasonNotFound = errors.New("season not found")

	// errStaleSeason means the season's status moved under us; the caller reloads.
	errStaleSeason = errors.New("season status is stale")
)
