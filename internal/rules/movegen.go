package rules

var bishopDirs = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var queenDirs = append(append([][2]int{}, bishopDirs...), rookDirs...)
var knightDeltas = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingDeltas = [][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}

// slidingReach walks each direction from "from" until it runs off the
// board or is blocked; a square occupied by the opponent is included
// (as a capture) and stops the walk, a square occupied by the mover's
// own color stops the walk without being included.
func (b *Board) slidingReach(from Square, color Color, dirs [][2]int) []Square {
	var out []Square
	for _, d := range dirs {
		cur := from
		for {
			cur = Square{File: cur.File + d[0], Rank: cur.Rank + d[1]}
			if !cur.OnBoard() {
				break
			}
			if p, occ := b.PieceAt(cur); occ {
				if p.Color != color {
					out = append(out, cur)
				}
				break
			}
			out = append(out, cur)
		}
	}
	return out
}

func (b *Board) steppingReach(from Square, color Color, deltas [][2]int) []Square {
	var out []Square
	for _, d := range deltas {
		cur := Square{File: from.File + d[0], Rank: from.Rank + d[1]}
		if !cur.OnBoard() {
			continue
		}
		if p, occ := b.PieceAt(cur); occ && p.Color == color {
			continue
		}
		out = append(out, cur)
	}
	return out
}

// pawnAttacks returns the two diagonal squares a pawn on "from" attacks,
// independent of occupancy — used only for check/attack detection.
func pawnAttacks(from Square, color Color) []Square {
	dir := forwardDir(color)
	var out []Square
	for _, df := range []int{-1, 1} {
		sq := Square{File: from.File + df, Rank: from.Rank + dir}
		if sq.OnBoard() {
			out = append(out, sq)
		}
	}
	return out
}

// pawnReach returns the legal movement destinations (forward push,
// double step, diagonal capture, en passant) for a pawn at "from".
func (b *Board) pawnReach(from Square, color Color) []Square {
	var out []Square
	dir := forwardDir(color)

	one := Square{File: from.File, Rank: from.Rank + dir}
	if one.OnBoard() {
		if _, occ := b.PieceAt(one); !occ {
			out = append(out, one)
			if from.Rank == startRank(color) {
				two := Square{File: from.File, Rank: from.Rank + 2*dir}
				if _, occ2 := b.PieceAt(two); !occ2 {
					out = append(out, two)
				}
			}
		}
	}

	for _, target := range pawnAttacks(from, color) {
		if p, occ := b.PieceAt(target); occ && p.Color != color {
			out = append(out, target)
			continue
		}
		if ep, ok := b.EnPassantTarget(); ok && ep == target {
			out = append(out, target)
		}
	}
	return out
}

// pieceReach returns the geometric, occupancy-aware movement
// destinations for the piece at "from" — not including castling.
func (b *Board) pieceReach(from Square, p Piece) []Square {
	switch p.Type {
	case King:
		return b.steppingReach(from, p.Color, kingDeltas)
	case Knight:
		return b.steppingReach(from, p.Color, knightDeltas)
	case Bishop:
		return b.slidingReach(from, p.Color, bishopDirs)
	case Rook:
		return b.slidingReach(from, p.Color, rookDirs)
	case Queen:
		return b.slidingReach(from, p.Color, queenDirs)
	case Pawn:
		return b.pawnReach(from, p.Color)
	default:
		return nil
	}
}

func containsSquare(list []Square, sq Square) bool {
	for _, s := range list {
		if s == sq {
			return true
		}
	}
	return false
}

// isAttacked reports whether sq is attacked by any piece of byColor.
func (b *Board) isAttacked(sq Square, byColor Color) bool {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.grid[r][f]
			if p.Type == NoPieceType || p.Color != byColor {
				continue
			}
			from := Square{File: f, Rank: r}
			if p.Type == Pawn {
				if containsSquare(pawnAttacks(from, byColor), sq) {
					return true
				}
				continue
			}
			if containsSquare(b.pieceReach(from, p), sq) {
				return true
			}
		}
	}
	return false
}

// InCheck reports whether color's king currently sits on an attacked
// square.
func (b *Board) InCheck(color Color) bool {
	kingSq, ok := b.kingSquare(color)
	if !ok {
		return false
	}
	return b.isAttacked(kingSq, color.Opposite())
}

// wouldLeaveInCheck executes the raw move on a copy and reports whether
// the mover's own king ends up attacked.
func (b *Board) wouldLeaveInCheck(m Move) bool {
	cp := b.Copy()
	cp.applyRaw(m)
	return cp.InCheck(m.Color)
}

// legalDestinations enumerates the squares a piece at "from" may
// legally move to: geometric reach filtered by the check-safety test,
// plus castling destinations for a king.
func (b *Board) legalDestinations(from Square) []Square {
	p, occ := b.PieceAt(from)
	if !occ {
		return nil
	}
	var out []Square
	for _, to := range b.pieceReach(from, p) {
		m := b.buildRawMove(from, to, p, NoPieceType)
		if !b.wouldLeaveInCheck(m) {
			out = append(out, to)
		}
	}
	if p.Type == King {
		if ks, ok := b.castleDestination(p.Color, true); ok {
			out = append(out, ks)
		}
		if qs, ok := b.castleDestination(p.Color, false); ok {
			out = append(out, qs)
		}
	}
	return out
}

// hasAnyLegalMove reports whether color has at least one legal move —
// the shared basis for checkmate/stalemate detection.
func (b *Board) hasAnyLegalMove(color Color) bool {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.grid[r][f]
			if p.Type == NoPieceType || p.Color != color {
				continue
			}
			from := Square{File: f, Rank: r}
			if len(b.legalDestinations(from)) > 0 {
				return true
			}
		}
	}
	return false
}

// buildRawMove fills in capture/en-passant/castle flags for a
// geometric from->to reach, without any legality test.
func (b *Board) buildRawMove(from, to Square, p Piece, promotion PieceType) Move {
	m := Move{From: from, To: to, PieceType: p.Type, Color: p.Color, Promotion: promotion}
	if target, occ := b.PieceAt(to); occ {
		m.Capture = true
		_ = target
	} else if p.Type == Pawn {
		if ep, ok := b.EnPassantTarget(); ok && ep == to && to.File != from.File {
			m.Capture = true
			m.EnPassant = true
		}
	}
	return m
}

// castleDestination returns the king's landing square for the
// requested side if castling currently resolves: right still held,
// king and rook on their start squares, path between them empty, and
// the king neither starts, passes through, nor lands on an attacked
// square.
func (b *Board) castleDestination(color Color, kingside bool) (Square, bool) {
	rank := homeRank(color)
	kingFrom := Square{File: 4, Rank: rank}
	p, occ := b.PieceAt(kingFrom)
	if !occ || p.Type != King || p.Color != color {
		return Square{}, false
	}

	var right bool
	var rookFile, kingToFile int
	var kingPassFiles []int // squares (excluding start) the king must not be attacked on
	switch {
	case color == White && kingside:
		right, rookFile, kingToFile = b.castleWK, 7, 6
		kingPassFiles = []int{5, 6}
	case color == White && !kingside:
		right, rookFile, kingToFile = b.castleWQ, 0, 2
		kingPassFiles = []int{3, 2}
	case color == Black && kingside:
		right, rookFile, kingToFile = b.castleBK, 7, 6
		kingPassFiles = []int{5, 6}
	default:
		right, rookFile, kingToFile = b.castleBQ, 0, 2
		kingPassFiles = []int{3, 2}
	}
	if !right {
		return Square{}, false
	}

	rookSq := Square{File: rookFile, Rank: rank}
	rp, rookOcc := b.PieceAt(rookSq)
	if !rookOcc || rp.Type != Rook || rp.Color != color {
		return Square{}, false
	}

	lo, hi := rookFile, 4
	if lo > hi {
		lo, hi = hi, lo
	}
	for f := lo + 1; f < hi; f++ {
		if _, occ := b.PieceAt(Square{File: f, Rank: rank}); occ {
			return Square{}, false
		}
	}

	opp := color.Opposite()
	if b.isAttacked(kingFrom, opp) {
		return Square{}, false
	}
	for _, f := range kingPassFiles {
		if b.isAttacked(Square{File: f, Rank: rank}, opp) {
			return Square{}, false
		}
	}
	return Square{File: kingToFile, Rank: rank}, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
