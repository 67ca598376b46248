package rules

// applyRaw mutates the board for an already-resolved Move, with no
// legality checking — used both by the check-safety test (on a copy)
// and by the public Execute path once a candidate has been accepted.
func (b *Board) applyRaw(m Move) {
	mover, _ := b.PieceAt(m.From)

	if m.CastleKS || m.CastleQS {
		b.applyCastle(m)
	} else if m.EnPassant {
		b.applyEnPassant(m)
	} else {
		if target, occ := b.PieceAt(m.To); occ {
			b.recordCapture(m.Color, target.Type)
		}
		b.clearSquare(m.From)
		placed := mover
		if m.Promotion != NoPieceType {
			placed = Piece{Type: m.Promotion, Color: m.Color}
		}
		b.setPiece(m.To, placed)
	}

	b.updateCastlingRights(m, mover)
	b.updateEnPassantTarget(m, mover)
	b.updateHalfmoveClock(m)

	if m.Color == Black {
		b.fullmove++
	}
	b.turn = m.Color.Opposite()
	lm := m
	b.lastMove = &lm
}

func (b *Board) applyCastle(m Move) {
	rank := homeRank(m.Color)
	king, _ := b.PieceAt(Square{File: 4, Rank: rank})

	var rookFrom, rookTo Square
	if m.CastleKS {
		rookFrom = Square{File: 7, Rank: rank}
		rookTo = Square{File: 5, Rank: rank}
	} else {
		rookFrom = Square{File: 0, Rank: rank}
		rookTo = Square{File: 3, Rank: rank}
	}
	rook, _ := b.PieceAt(rookFrom)

	b.clearSquare(Square{File: 4, Rank: rank})
	b.clearSquare(rookFrom)
	b.setPiece(m.To, king)
	b.setPiece(rookTo, rook)
}

func (b *Board) applyEnPassant(m Move) {
	capturedSq := Square{File: m.To.File, Rank: m.From.Rank}
	captured, _ := b.PieceAt(capturedSq)
	b.recordCapture(m.Color, captured.Type)

	mover, _ := b.PieceAt(m.From)
	b.clearSquare(m.From)
	b.clearSquare(capturedSq)
	b.setPiece(m.To, mover)
}

func (b *Board) recordCapture(by Color, captured PieceType) {
	b.capturedBy[by] = append(b.capturedBy[by], captured)
}

// updateCastlingRights clears rights on king moves, rook departures
// from their home corners, or a piece arriving on an opposing rook's
// home corner (to handle rook captures).
func (b *Board) updateCastlingRights(m Move, mover Piece) {
	if mover.Type == King {
		if mover.Color == White {
			b.castleWK, b.castleWQ = false, false
		} else {
			b.castleBK, b.castleBQ = false, false
		}
	}
	clearForCorner := func(sq Square) {
		switch sq {
		case Square{File: 0, Rank: 0}:
			b.castleWQ = false
		case Square{File: 7, Rank: 0}:
			b.castleWK = false
		case Square{File: 0, Rank: 7}:
			b.castleBQ = false
		case Square{File: 7, Rank: 7}:
			b.castleBK = false
		}
	}
	clearForCorner(m.From)
	clearForCorner(m.To)
}

// updateEnPassantTarget sets the target iff the move was a pawn
// double-step, to the skipped square; otherwise clears it.
func (b *Board) updateEnPassantTarget(m Move, mover Piece) {
	if mover.Type == Pawn && abs(m.To.Rank-m.From.Rank) == 2 {
		target := Square{File: m.From.File, Rank: (m.From.Rank + m.To.Rank) / 2}
		b.epTarget = &target
		return
	}
	b.epTarget = nil
}

// updateHalfmoveClock resets on pawn moves and captures, otherwise
// increments.
func (b *Board) updateHalfmoveClock(m Move) {
	if m.PieceType == Pawn || m.Capture {
		b.halfmove = 0
		return
	}
	b.halfmove++
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
