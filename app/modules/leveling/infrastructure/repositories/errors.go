package levelingdb

import "errors"

var (
	// ErrNotFound is returned when a score row does not exist.
	ErrNotFound = errors.New("score record not found")

	// ErrAlreadyExists is returned when InsertScore races another insert for the same member.
	ErrAlreadyExists = errors.New("score record already exists")

	// ErrVersionConflict is returned when a compare-and-swap saw a newer version.
	ErrVersionConflict = errors.New("score record version conflict")
)
