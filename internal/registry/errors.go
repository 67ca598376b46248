package registry

import "errors"

var (
	ErrUnknownToken   = errors.New("registry: unknown token")
	ErrGameInProgress = errors.New("registry: a game is already in progress for this token")
	ErrNoGame         = errors.New("registry: no game for this token")
)
