// Package arena implements the Game Orchestrator: a turn loop that
// alternates between LLM and human movers over a single Board,
// enforcing clocks and a retry/forfeit policy, and emitting a typed
// event stream for its subscribers.
package arena

import (
	"time"

	"arena/internal/rules"
)

// Side describes one color's mover. A human side carries no model or
// credential; an LLM side always resolves to a concrete endpoint and
// credential before the Game starts (server defaults fill in anything
// the start request omitted). Model is empty when neither the request
// nor the server default names one.
type Side struct {
	Human      bool
	Model      string
	Endpoint   string
	Credential string
}

// ClockConfig is the per-game time control. Unlimited games never emit
// clock events and never end on time.
type ClockConfig struct {
	BaseTimeMs  int64
	IncrementMs int64
	Unlimited   bool
}

// Config bundles everything needed to start a Game.
type Config struct {
	ID         string
	White      Side
	Black      Side
	MaxRetries int
	Clock      ClockConfig
}

// EmitFunc delivers one event to every current subscriber of a Game's
// token. The orchestrator never blocks on delivery — fanout policy
// belongs to the registry/broadcaster, not here.
type EmitFunc func(kind string, payload any)

const maxPlies = 300 // 150 full moves per side, i.e. 300 plies

func colorName(c rules.Color) string {
	if c == rules.White {
		return "White"
	}
	return "Black"
}

func colorCode(c rules.Color) string {
	return string(c)
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}
