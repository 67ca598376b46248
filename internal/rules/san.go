package rules

import (
	"errors"
	"strings"
	"unicode"
)

// ErrIllegalMove is returned for SAN that does not parse, resolves to
// zero or multiple candidates, or whose execution would leave the
// mover in check. The board is never mutated when this is returned.
var ErrIllegalMove = errors.New("not a legal move")

// Execute parses san for the side to move, and on success mutates the
// board to the resulting position and returns the applied Move.
func (b *Board) Execute(san string) (Move, error) {
	color := b.turn
	m, err := b.resolve(san, color)
	if err != nil {
		return Move{}, err
	}
	b.applyRaw(m)
	m.Notation = san
	return m, nil
}

func (b *Board) resolve(san string, color Color) (Move, error) {
	trimmed := stripAnnotations(strings.TrimSpace(san))
	if trimmed == "" {
		return Move{}, ErrIllegalMove
	}

	if isCastleLiteral(trimmed, true) {
		return b.resolveCastle(color, true)
	}
	if isCastleLiteral(trimmed, false) {
		return b.resolveCastle(color, false)
	}

	pieceType := Pawn
	idx := 0
	if t, ok := pieceLetters[trimmed[0]]; ok {
		pieceType = t
		idx = 1
	}

	body := trimmed[idx:]
	body = strings.ReplaceAll(body, "x", "")

	promotion := NoPieceType
	if i := strings.IndexByte(body, '='); i >= 0 {
		if i+1 >= len(body) {
			return Move{}, ErrIllegalMove
		}
		t, ok := pieceLetters[byte(unicode.ToUpper(rune(body[i+1])))]
		if !ok {
			return Move{}, ErrIllegalMove
		}
		promotion = t
		body = body[:i]
	}

	if len(body) < 2 {
		return Move{}, ErrIllegalMove
	}
	destStr := body[len(body)-2:]
	dest, ok := ParseSquare(destStr)
	if !ok {
		return Move{}, ErrIllegalMove
	}
	hint := body[:len(body)-2]

	candidates := b.findCandidates(pieceType, color, dest, hint)
	if len(candidates) != 1 {
		return Move{}, ErrIllegalMove
	}
	from := candidates[0]
	mover := Piece{Type: pieceType, Color: color}

	if pieceType == Pawn && promotion == NoPieceType && dest.Rank == promotionRank(color) {
		promotion = Queen
	}

	m := b.buildRawMove(from, dest, mover, promotion)
	if b.wouldLeaveInCheck(m) {
		return Move{}, ErrIllegalMove
	}
	return m, nil
}

func (b *Board) findCandidates(pieceType PieceType, color Color, dest Square, hint string) []Square {
	var out []Square
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.grid[r][f]
			if p.Type != pieceType || p.Color != color {
				continue
			}
			from := Square{File: f, Rank: r}
			if !containsSquare(b.pieceReach(from, p), dest) {
				continue
			}
			if !matchesHint(from, hint) {
				continue
			}
			out = append(out, from)
		}
	}
	return out
}

func matchesHint(from Square, hint string) bool {
	for _, c := range hint {
		switch {
		case c >= 'a' && c <= 'h':
			if from.File != int(c-'a') {
				return false
			}
		case c >= '1' && c <= '8':
			if from.Rank != int(c-'1') {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func promotionRank(color Color) int {
	if color == White {
		return 7
	}
	return 0
}

func isCastleLiteral(s string, kingside bool) bool {
	ks := s == "O-O" || s == "0-0"
	qs := s == "O-O-O" || s == "0-0-0"
	if kingside {
		return ks
	}
	return qs
}

func (b *Board) resolveCastle(color Color, kingside bool) (Move, error) {
	dest, ok := b.castleDestination(color, kingside)
	if !ok {
		return Move{}, ErrIllegalMove
	}
	rank := homeRank(color)
	m := Move{
		From:      Square{File: 4, Rank: rank},
		To:        dest,
		PieceType: King,
		Color:     color,
		CastleKS:  kingside,
		CastleQS:  !kingside,
	}
	return m, nil
}
