package rules

// Checkmate reports whether the side to move is in check with no legal
// reply.
func (b *Board) Checkmate() bool {
	return b.InCheck(b.turn) && !b.hasAnyLegalMove(b.turn)
}

// Stalemate reports whether the side to move has no legal move and is
// not in check.
func (b *Board) Stalemate() bool {
	return !b.InCheck(b.turn) && !b.hasAnyLegalMove(b.turn)
}

// FiftyMoveDraw reports whether the half-move clock has reached the
// 50-move (100 half-move) threshold.
func (b *Board) FiftyMoveDraw() bool {
	return b.halfmove >= 100
}

// Terminal reports whether the game has ended and, if so, in what way:
// "checkmate", "stalemate", "fifty-move" or "" if still in progress.
// The winner is only meaningful for "checkmate".
func (b *Board) Terminal() (reason string, winner Color, over bool) {
	switch {
	case b.Checkmate():
		return "checkmate", b.turn.Opposite(), true
	case b.Stalemate():
		return "stalemate", Color(0), true
	case b.FiftyMoveDraw():
		return "fifty-move", Color(0), true
	default:
		return "", Color(0), false
	}
}
