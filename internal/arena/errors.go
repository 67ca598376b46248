package arena

import "errors"

var (
	ErrGameOver     = errors.New("arena: game already over")
	ErrNotYourTurn  = errors.New("arena: not this color's turn")
	ErrMoveInFlight = errors.New("arena: a move is already being processed")
)
