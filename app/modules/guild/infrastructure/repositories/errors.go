package guilddb

import "errors"

var (
	// ErrNotFound is returned when a guild config does not exist.
	ErrNotFound = errors.New("guild config not found")

	// ErrNoRowsAffected is returned when an update matched nothing.
	ErrNoRowsAffected = errors.New("no rows affected")
)
