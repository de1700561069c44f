package guildservice

import "errors"

// ErrInvalidConfig wraps validation failures. Handlers surface these to the invoker.
var ErrInvalidConfig = errors.New("invalid guild config")
