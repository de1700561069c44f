package levelingservice

import "errors"

var (
	// ErrNegativeScore rejects a score correction below zero.
	ErrNegativeScore = errors.New("score cannot be negative")

	// ErrContention means a score write kept losing to concurrent writers.
	ErrContention = errors.New("score write retries exhausted")
)
