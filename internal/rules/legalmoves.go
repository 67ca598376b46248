package rules

// LegalDestinations returns every square the piece on from may legally
// move to, or nil if from is empty or holds the opponent's piece. It
// is the public face of the same legalDestinations walk used
// internally for checkmate/stalemate detection, exposed for callers
// that need to highlight a single piece's legal moves (e.g. a
// point-and-click board) rather than the full move list Execute
// accepts.
func (b *Board) LegalDestinations(from Square) []Square {
	p, occ := b.PieceAt(from)
	if !occ || p.Color != b.turn {
		return nil
	}
	return b.legalDestinations(from)
}
