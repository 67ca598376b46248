package rules

import "testing"

func mustExecute(t *testing.T, b *Board, sans ...string) {
	t.Helper()
	for _, s := range sans {
		if _, err := b.Execute(s); err != nil {
			t.Fatalf("Execute(%q) failed: %v", s, err)
		}
	}
}

func TestNewBoardStartingPosition(t *testing.T) {
	b := NewBoard()
	if b.Turn() != White {
		t.Fatalf("expected White to move, got %v", b.Turn())
	}
	if got := b.materialCount(); got != 32 {
		t.Fatalf("expected 32 pieces, got %d", got)
	}
	wk, wq, bk, bq := b.CastlingRights()
	if !wk || !wq || !bk || !bq {
		t.Fatalf("expected all castling rights held, got %v %v %v %v", wk, wq, bk, bq)
	}
}

func TestScholarsMateCheckmate(t *testing.T) {
	b := NewBoard()
	mustExecute(t, b, "e4", "e5", "Qh5", "Nc6", "Bc4", "Nf6", "Qxf7")
	reason, winner, over := b.Terminal()
	if !over || reason != "checkmate" || winner != White {
		t.Fatalf("expected White checkmate, got reason=%q winner=%v over=%v", reason, winner, over)
	}
}

func TestCaptureUpdatesCapturedListAndMaterial(t *testing.T) {
	b := NewBoard()
	mustExecute(t, b, "e4", "d5", "exd5")
	if got := b.materialCount(); got != 31 {
		t.Fatalf("expected 31 pieces after a capture, got %d", got)
	}
	captured := b.Captured(White)
	if len(captured) != 1 || captured[0] != Pawn {
		t.Fatalf("expected White to have captured one pawn, got %v", captured)
	}
}

func TestCastlingKingsideUpdatesRookAndRights(t *testing.T) {
	b := NewBoard()
	mustExecute(t, b, "e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5", "O-O")
	rook, occ := b.PieceAt(Square{File: 5, Rank: 0})
	if !occ || rook.Type != Rook || rook.Color != White {
		t.Fatalf("expected White rook on f1 after O-O, got %+v occ=%v", rook, occ)
	}
	king, occ := b.PieceAt(Square{File: 6, Rank: 0})
	if !occ || king.Type != King {
		t.Fatalf("expected White king on g1 after O-O, got %+v occ=%v", king, occ)
	}
	wk, wq, _, _ := b.CastlingRights()
	if wk || wq {
		t.Fatalf("expected White castling rights cleared after castling")
	}
}

func TestCastlingThroughCheckRejected(t *testing.T) {
	b := &Board{turn: White, castleWK: true, capturedBy: map[Color][]PieceType{White: {}, Black: {}}}
	b.setPiece(Square{File: 4, Rank: 0}, Piece{Type: King, Color: White})
	b.setPiece(Square{File: 7, Rank: 0}, Piece{Type: Rook, Color: White})
	b.setPiece(Square{File: 4, Rank: 7}, Piece{Type: King, Color: Black})
	// Bishop on a6 attacks f1 (the square the king must pass through)
	// along the a6-f1 diagonal, which is otherwise empty.
	b.setPiece(Square{File: 0, Rank: 5}, Piece{Type: Bishop, Color: Black})
	if _, err := b.Execute("O-O"); err == nil {
		t.Fatalf("expected castling through an attacked square to fail")
	}
}

func TestEnPassantCapture(t *testing.T) {
	b := NewBoard()
	mustExecute(t, b, "e4", "a6", "e5", "d5")
	m, err := b.Execute("exd6")
	if err != nil {
		t.Fatalf("Execute(exd6) failed: %v", err)
	}
	if !m.EnPassant || !m.Capture {
		t.Fatalf("expected en passant capture flags set, got %+v", m)
	}
	if _, occ := b.PieceAt(Square{File: 3, Rank: 4}); occ {
		t.Fatalf("expected captured pawn removed from d5")
	}
}

func TestAmbiguousSourceRejected(t *testing.T) {
	b := &Board{turn: White, capturedBy: map[Color][]PieceType{White: {}, Black: {}}}
	b.setPiece(Square{File: 0, Rank: 0}, Piece{Type: King, Color: White})
	b.setPiece(Square{File: 0, Rank: 7}, Piece{Type: King, Color: Black})
	b.setPiece(Square{File: 2, Rank: 2}, Piece{Type: Knight, Color: White}) // c3
	b.setPiece(Square{File: 6, Rank: 2}, Piece{Type: Knight, Color: White}) // g3
	// Both knights reach e4 — should be rejected without a hint.
	if _, err := b.Execute("Ne4"); err == nil {
		t.Fatalf("expected ambiguous knight move to fail without a disambiguation hint")
	}
	if _, err := b.Execute("Nce4"); err != nil {
		t.Fatalf("expected disambiguated knight move to succeed, got %v", err)
	}
}

func TestAmbiguityCheckedBeforeCheckSafety(t *testing.T) {
	// Two rooks can reach d4, but only the one on h4 may safely move
	// there — the a4 rook is pinned to the king along the a-file by the
	// black rook on a8. The resolution order requires ambiguity to be
	// reported before either candidate is tested for check safety, so
	// this must still fail rather than silently pick the h4 rook.
	b := &Board{turn: White, capturedBy: map[Color][]PieceType{White: {}, Black: {}}}
	b.setPiece(Square{File: 0, Rank: 0}, Piece{Type: King, Color: White})
	b.setPiece(Square{File: 0, Rank: 3}, Piece{Type: Rook, Color: White}) // a4
	b.setPiece(Square{File: 7, Rank: 3}, Piece{Type: Rook, Color: White}) // h4
	b.setPiece(Square{File: 0, Rank: 7}, Piece{Type: Rook, Color: Black}) // a8
	b.setPiece(Square{File: 4, Rank: 7}, Piece{Type: King, Color: Black})
	if _, err := b.Execute("Rd4"); err == nil {
		t.Fatalf("expected ambiguous rook move to fail regardless of check safety")
	}
}

func TestStalemate(t *testing.T) {
	b := &Board{turn: Black, capturedBy: map[Color][]PieceType{White: {}, Black: {}}}
	b.setPiece(Square{File: 0, Rank: 7}, Piece{Type: King, Color: Black})
	b.setPiece(Square{File: 1, Rank: 5}, Piece{Type: King, Color: White})
	b.setPiece(Square{File: 2, Rank: 6}, Piece{Type: Queen, Color: White})
	if !b.Stalemate() {
		t.Fatalf("expected stalemate position to be detected")
	}
	if b.Checkmate() {
		t.Fatalf("stalemate must not also report as checkmate")
	}
}

func TestPawnAutoQueenPromotion(t *testing.T) {
	b := &Board{turn: White, capturedBy: map[Color][]PieceType{White: {}, Black: {}}}
	b.setPiece(Square{File: 0, Rank: 0}, Piece{Type: King, Color: White})
	b.setPiece(Square{File: 7, Rank: 7}, Piece{Type: King, Color: Black})
	b.setPiece(Square{File: 4, Rank: 6}, Piece{Type: Pawn, Color: White})
	m, err := b.Execute("e8")
	if err != nil {
		t.Fatalf("Execute(e8) failed: %v", err)
	}
	if m.Promotion != Queen {
		t.Fatalf("expected auto-queen promotion, got %v", m.Promotion)
	}
	placed, _ := b.PieceAt(Square{File: 4, Rank: 7})
	if placed.Type != Queen {
		t.Fatalf("expected queen placed on e8, got %v", placed.Type)
	}
}

func TestIllegalMoveLeavesBoardUnchanged(t *testing.T) {
	b := NewBoard()
	before := *b
	if _, err := b.Execute("e5"); err == nil {
		t.Fatalf("expected e5 to be illegal as White's first move")
	}
	if b.grid != before.grid || b.turn != before.turn {
		t.Fatalf("board mutated despite illegal move")
	}
}

func TestFiftyMoveDrawThreshold(t *testing.T) {
	b := &Board{turn: White, capturedBy: map[Color][]PieceType{White: {}, Black: {}}, halfmove: 99}
	b.setPiece(Square{File: 0, Rank: 0}, Piece{Type: King, Color: White})
	b.setPiece(Square{File: 7, Rank: 7}, Piece{Type: King, Color: Black})
	b.setPiece(Square{File: 0, Rank: 3}, Piece{Type: Rook, Color: White})
	if _, err := b.Execute("Ra5"); err != nil {
		t.Fatalf("Execute(Ra5) failed: %v", err)
	}
	if !b.FiftyMoveDraw() {
		t.Fatalf("expected fifty-move draw once halfmove clock reaches 100")
	}
}
