package rules

// Move is the record of a single applied ply: produced by parsing SAN
// against a Board, consumed by both the Board (to execute) and the
// orchestrator (to report). Castling records PieceType == King with
// From/To set to the king's own squares.
type Move struct {
	From      Square
	To        Square
	PieceType PieceType
	Promotion PieceType // NoPieceType if not a promotion
	Capture   bool
	CastleKS  bool
	CastleQS  bool
	EnPassant bool
	Notation  string
	Color     Color
}
