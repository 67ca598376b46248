package arena

import "arena/internal/rules"

// ModelsView names the model assigned to each LLM-controlled side,
// omitting any side played by a human.
type ModelsView struct {
	White string `json:"white,omitempty"`
	Black string `json:"black,omitempty"`
}

// StateSnapshot is the point-in-time read model served by the HTTP
// state endpoint and used to seed a newly-connected stream subscriber.
type StateSnapshot struct {
	ID        string                  `json:"id"`
	Turn      string                  `json:"turn"`
	Squares   [8][8]*rules.SquareView `json:"squares"`
	Captured  CapturedView            `json:"captured"`
	WhiteTime int64                   `json:"whiteTime,omitempty"`
	BlackTime int64                   `json:"blackTime,omitempty"`
	Unlimited bool                    `json:"unlimited"`
	PGN       string                  `json:"pgn"`
	MoveCount int                     `json:"moveCount"`
	Over      bool                    `json:"over"`
	Result    string                  `json:"result,omitempty"`
	HumanSide string                  `json:"humanSide,omitempty"`
	Models    ModelsView              `json:"models"`
}

// Snapshot renders the game's current state for the HTTP layer under a
// single read lock.
func (g *Game) Snapshot() StateSnapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var humanSide string
	if color, ok := g.HumanSide(); ok {
		humanSide = colorCode(color)
	}

	return StateSnapshot{
		ID:   g.id,
		Turn: string(g.board.Turn()),
		Squares: g.board.ToJSON(),
		Captured: CapturedView{
			White: pieceNames(g.board.Captured(rules.White)),
			Black: pieceNames(g.board.Captured(rules.Black)),
		},
		WhiteTime: g.whiteTimeMs,
		BlackTime: g.blackTimeMs,
		Unlimited: g.clock.Unlimited,
		PGN:       g.hist.Movetext(),
		MoveCount: g.hist.Len(),
		Over:      g.result != "",
		Result:    g.result,
		HumanSide: humanSide,
		Models:    ModelsView{White: g.white.Model, Black: g.black.Model},
	}
}

// LegalMoves returns every square reachable, in one legal move, by the
// piece at from — the shape the board UI needs to highlight a single
// selected piece's destinations, not a full SAN move list.
func (g *Game) LegalMoves(from rules.Square) []rules.Square {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.board.LegalDestinations(from)
}
