package rules

import "strings"

// Board owns the position: an 8x8 grid of optional pieces, castling
// rights, the en-passant target (if any), the half-move clock, and the
// two capture lists. Grid cells are addressed grid[rank][file], rank 0
// = rank 1, file 0 = file a — a fixed-size array so Copy is O(1)
// allocation, cheap enough to call on every legality test.
type Board struct {
	grid [8][8]Piece // Type == NoPieceType means empty

	turn Color

	castleWK, castleWQ bool
	castleBK, castleBQ bool

	epTarget   *Square
	halfmove   int
	fullmove   int
	lastMove   *Move
	capturedBy map[Color][]PieceType
}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	b := &Board{
		turn:       White,
		castleWK:   true,
		castleWQ:   true,
		castleBK:   true,
		castleBQ:   true,
		fullmove:   1,
		capturedBy: map[Color][]PieceType{White: {}, Black: {}},
	}

	backRank := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for f := 0; f < 8; f++ {
		b.grid[0][f] = Piece{Type: backRank[f], Color: White}
		b.grid[1][f] = Piece{Type: Pawn, Color: White}
		b.grid[6][f] = Piece{Type: Pawn, Color: Black}
		b.grid[7][f] = Piece{Type: backRank[f], Color: Black}
	}
	return b
}

// Copy returns a deep-enough clone to run an exploratory Execute without
// disturbing the original: the grid and flags are plain values, the
// en-passant pointer and capture slices are independently owned.
func (b *Board) Copy() *Board {
	cp := &Board{
		grid:     b.grid,
		turn:     b.turn,
		castleWK: b.castleWK,
		castleWQ: b.castleWQ,
		castleBK: b.castleBK,
		castleBQ: b.castleBQ,
		halfmove: b.halfmove,
		fullmove: b.fullmove,
	}
	if b.epTarget != nil {
		ep := *b.epTarget
		cp.epTarget = &ep
	}
	if b.lastMove != nil {
		lm := *b.lastMove
		cp.lastMove = &lm
	}
	cp.capturedBy = map[Color][]PieceType{
		White: append([]PieceType{}, b.capturedBy[White]...),
		Black: append([]PieceType{}, b.capturedBy[Black]...),
	}
	return cp
}

// Turn returns the side to move.
func (b *Board) Turn() Color { return b.turn }

// PieceAt returns the piece on sq and whether the square is occupied.
func (b *Board) PieceAt(sq Square) (Piece, bool) {
	p := b.grid[sq.Rank][sq.File]
	return p, p.Type != NoPieceType
}

func (b *Board) setPiece(sq Square, p Piece) {
	b.grid[sq.Rank][sq.File] = p
}

func (b *Board) clearSquare(sq Square) {
	b.grid[sq.Rank][sq.File] = Piece{}
}

// HalfmoveClock returns the count of plies since the last pawn move or
// capture; 100 signals the 50-move draw.
func (b *Board) HalfmoveClock() int { return b.halfmove }

// EnPassantTarget returns the current en-passant target square, if any.
func (b *Board) EnPassantTarget() (Square, bool) {
	if b.epTarget == nil {
		return Square{}, false
	}
	return *b.epTarget, true
}

// CastlingRights reports the four castling-right booleans.
func (b *Board) CastlingRights() (wk, wq, bk, bq bool) {
	return b.castleWK, b.castleWQ, b.castleBK, b.castleBQ
}

// Captured returns the ordered piece-type lists captured by the given
// color (i.e. taken from the opponent).
func (b *Board) Captured(by Color) []PieceType {
	return append([]PieceType{}, b.capturedBy[by]...)
}

// LastMove returns the most recently executed move, if any.
func (b *Board) LastMove() *Move {
	if b.lastMove == nil {
		return nil
	}
	m := *b.lastMove
	return &m
}

// SquareView is one occupied cell of the row-major board
// representation that ToJSON builds for transmission: row 0 = rank 8,
// row 7 = rank 1; columns 0..7 = files a..h.
type SquareView struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// ToJSON renders the board as an 8x8 grid of square views for the
// state snapshot and stream payloads.
func (b *Board) ToJSON() [8][8]*SquareView {
	var out [8][8]*SquareView
	for row := 0; row < 8; row++ {
		rank := 7 - row
		for file := 0; file < 8; file++ {
			p := b.grid[rank][file]
			if p.Type == NoPieceType {
				continue
			}
			out[row][file] = &SquareView{
				Type:  PieceTypeName(p.Type),
				Color: string(p.Color),
			}
		}
	}
	return out
}

// PieceTypeName renders a PieceType as the upper-case name used on the wire.
func PieceTypeName(t PieceType) string {
	switch t {
	case King:
		return "KING"
	case Queen:
		return "QUEEN"
	case Rook:
		return "ROOK"
	case Bishop:
		return "BISHOP"
	case Knight:
		return "KNIGHT"
	case Pawn:
		return "PAWN"
	default:
		return ""
	}
}

// materialCount counts every piece currently on the board, to cross-check
// against the capture list.
func (b *Board) materialCount() int {
	n := 0
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b.grid[r][f].Type != NoPieceType {
				n++
			}
		}
	}
	return n
}

func (b *Board) kingSquare(c Color) (Square, bool) {
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := b.grid[r][f]
			if p.Type == King && p.Color == c {
				return Square{File: f, Rank: r}, true
			}
		}
	}
	return Square{}, false
}

func startRank(c Color) int {
	if c == White {
		return 1
	}
	return 6
}

func homeRank(c Color) int {
	if c == White {
		return 0
	}
	return 7
}

func forwardDir(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

// stripAnnotations removes check/checkmate/annotation suffixes from a
// raw SAN token before parsing.
func stripAnnotations(san string) string {
	return strings.TrimRight(san, "+#!?")
}
