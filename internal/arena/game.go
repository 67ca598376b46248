package arena

import (
	"context"
	"sync"
	"time"

	"arena/internal/history"
	"arena/internal/llmclient"
	"arena/internal/rules"
)

// Game owns one Board and one History for the life of a session's
// match. A single background goroutine (started by Run) performs all
// mutation of board/history/clock; every other method either reads
// under a lock or hands data to that goroutine through a channel, per
// the single-writer-per-Game model.
type Game struct {
	id    string
	board *rules.Board
	hist  *history.History

	white, black Side
	maxRetries   int
	clock        ClockConfig

	llm     *llmclient.Client
	emit    EmitFunc

	mu            sync.RWMutex
	whiteTimeMs   int64
	blackTimeMs   int64
	turnStartedAt time.Time
	result        string
	finishedAt    *time.Time

	humanMoveCh chan string
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// New constructs a Game ready to Run. llm may be shared across many
// Games — its rate limiter and exchange log are process-wide.
func New(cfg Config, llm *llmclient.Client, emit EmitFunc) *Game {
	return &Game{
		id:          cfg.ID,
		board:       rules.NewBoard(),
		hist:        history.New(),
		white:       cfg.White,
		black:       cfg.Black,
		maxRetries:  cfg.MaxRetries,
		clock:       cfg.Clock,
		llm:         llm,
		emit:        emit,
		whiteTimeMs: cfg.Clock.BaseTimeMs,
		blackTimeMs: cfg.Clock.BaseTimeMs,
		humanMoveCh: make(chan string, 1),
		stopCh:      make(chan struct{}),
	}
}

// ID returns the game's internal identifier (distinct from the
// session token that maps to it).
func (g *Game) ID() string { return g.id }

func (g *Game) sideFor(c rules.Color) Side {
	if c == rules.White {
		return g.white
	}
	return g.black
}

// HumanSide reports which color, if any, is human-controlled.
func (g *Game) HumanSide() (rules.Color, bool) {
	if g.white.Human {
		return rules.White, true
	}
	if g.black.Human {
		return rules.Black, true
	}
	return rules.Color(0), false
}

// HumanTurnColor reports the color to move and whether that side is
// human-controlled right now — the HTTP layer uses this to route a
// bare {move} request to the correct color without the client having
// to name one.
func (g *Game) HumanTurnColor() (rules.Color, bool) {
	g.mu.RLock()
	turn := g.board.Turn()
	g.mu.RUnlock()
	return turn, g.sideFor(turn).Human
}

// IsOver reports whether the game has reached a terminal result.
func (g *Game) IsOver() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.result != ""
}

// FinishedAt returns when the game ended, if it has.
func (g *Game) FinishedAt() (time.Time, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.finishedAt == nil {
		return time.Time{}, false
	}
	return *g.finishedAt, true
}

// Stop aborts the game: any pending human-move wait is released, and
// if no result is set yet one is recorded so gameOver still fires with
// a meaningful message.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		g.mu.Lock()
		if g.result == "" {
			g.result = "Game stopped by user"
		}
		g.mu.Unlock()
		close(g.stopCh)
	})
}

// SubmitHumanMove validates san against the live position for color
// and, if legal, hands it to the waiting turn loop. The legality check
// runs on a copy so it never races the orchestrator's own mutation.
func (g *Game) SubmitHumanMove(color rules.Color, san string) error {
	g.mu.RLock()
	turn := g.board.Turn()
	over := g.result != ""
	cp := g.board.Copy()
	g.mu.RUnlock()

	if over {
		return ErrGameOver
	}
	if turn != color {
		return ErrNotYourTurn
	}
	if _, err := cp.Execute(san); err != nil {
		return err
	}

	select {
	case g.humanMoveCh <- san:
		return nil
	default:
		return ErrMoveInFlight
	}
}

// awaitHumanMove blocks until a move is submitted or the game is
// stopped, returning (san, aborted).
func (g *Game) awaitHumanMove(ctx context.Context) (string, bool) {
	select {
	case san := <-g.humanMoveCh:
		return san, false
	case <-g.stopCh:
		return "", true
	case <-ctx.Done():
		return "", true
	}
}

func (g *Game) aborted() bool {
	select {
	case <-g.stopCh:
		return true
	default:
		return false
	}
}
