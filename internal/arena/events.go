package arena

import "arena/internal/rules"

// StatusEvent is a human-readable phase announcement.
type StatusEvent struct {
	Message string `json:"message"`
}

// CapturedView mirrors rules.Board.Captured for both colors, rendered
// as piece-type name lists for the wire.
type CapturedView struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

// MoveView is the squares of a move in "e4"-style algebraic text.
type MoveView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// BoardEvent is a full board snapshot.
type BoardEvent struct {
	Squares  [8][8]*rules.SquareView `json:"squares"`
	Turn     string                  `json:"turn"`
	LastMove *MoveView               `json:"lastMove,omitempty"`
	Captured CapturedView            `json:"captured"`
}

// ClockEvent carries the millisecond remainders for both sides;
// omitted entirely (never emitted) for unlimited games.
type ClockEvent struct {
	WhiteTime int64 `json:"whiteTime"`
	BlackTime int64 `json:"blackTime"`
}

// ThinkingEvent is one incremental slice of reasoning text.
type ThinkingEvent struct {
	Color       string `json:"color"`
	Model       string `json:"model"`
	Text        string `json:"text"`
	Accumulated string `json:"accumulated"`
}

// ChatEvent reports one LLM attempt, successful or not.
type ChatEvent struct {
	Color      string  `json:"color"`
	Model      string  `json:"model"`
	Raw        string  `json:"raw"`
	Move       string  `json:"move"`
	Dialogue   *string `json:"dialogue,omitempty"`
	Thinking   string  `json:"thinking,omitempty"`
	Attempt    int     `json:"attempt"`
	MoveNumber int     `json:"moveNumber"`
}

// MoveEvent reports an accepted move.
type MoveEvent struct {
	Color      string  `json:"color"`
	Model      string  `json:"model"`
	Notation   string  `json:"notation"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	MoveNumber int     `json:"moveNumber"`
	Dialogue   *string `json:"dialogue,omitempty"`
}

// ErrorEvent reports a transient turn failure.
type ErrorEvent struct {
	Color      string `json:"color"`
	Model      string `json:"model"`
	Message    string `json:"message"`
	Attempt    int    `json:"attempt"`
	MaxRetries int    `json:"maxRetries"`
}

// GameOverEvent is the terminal event, always last.
type GameOverEvent struct {
	Result string `json:"result"`
	PGN    string `json:"pgn"`
}

// EmptyBoardView renders the starting position as a BoardEvent, for
// the registry to broadcast after a reset deletes the live Game.
func EmptyBoardView() BoardEvent {
	b := rules.NewBoard()
	return BoardEvent{
		Squares: b.ToJSON(),
		Turn:    string(b.Turn()),
	}
}
