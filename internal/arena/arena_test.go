package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"arena/internal/llmclient"
	"arena/internal/rules"
)

// eventLog is a thread-safe recorder used by every orchestrator test:
// Run() emits from its own goroutine while the test asserts from the
// caller's.
type eventLog struct {
	mu     sync.Mutex
	kinds  []string
	events map[string][]any
}

func newEventLog() *eventLog {
	return &eventLog{events: make(map[string][]any)}
}

func (l *eventLog) emit(kind string, payload any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kinds = append(l.kinds, kind)
	l.events[kind] = append(l.events[kind], payload)
}

func (l *eventLog) count(kind string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events[kind])
}

func (l *eventLog) last(kind string) (any, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	es := l.events[kind]
	if len(es) == 0 {
		return nil, false
	}
	return es[len(es)-1], true
}

func (l *eventLog) lastKind() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.kinds) == 0 {
		return ""
	}
	return l.kinds[len(l.kinds)-1]
}

func twoHumanConfig() Config {
	return Config{
		ID:         "g1",
		White:      Side{Human: true},
		Black:      Side{Human: true},
		MaxRetries: 3,
		Clock:      ClockConfig{Unlimited: true},
	}
}

// TestFoolsMateEndsWithExactlyOneGameOver drives a scripted human-vs-
// human checkmate and asserts gameOver fires exactly once and last.
func TestFoolsMateEndsWithExactlyOneGameOver(t *testing.T) {
	log := newEventLog()
	g := New(twoHumanConfig(), llmclient.New(nil, nil), log.emit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	moves := []struct {
		color rules.Color
		san   string
	}{
		{rules.White, "f3"},
		{rules.Black, "e5"},
		{rules.White, "g4"},
		{rules.Black, "Qh4"},
	}
	for _, mv := range moves {
		if err := waitAndSubmit(g, mv.color, mv.san); err != nil {
			t.Fatalf("submit %s: %v", mv.san, err)
		}
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("game did not finish")
	}

	if log.count("gameOver") != 1 {
		t.Fatalf("gameOver count = %d, want 1", log.count("gameOver"))
	}
	if log.lastKind() != "gameOver" {
		t.Fatalf("last event kind = %q, want gameOver", log.lastKind())
	}
	ev, _ := log.last("gameOver")
	over := ev.(GameOverEvent)
	if over.Result == "" {
		t.Fatal("gameOver result empty")
	}
}

// waitAndSubmit retries SubmitHumanMove briefly since the turn loop's
// awaitHumanMove select isn't guaranteed to be listening the instant
// Run() flips whose move it is.
func waitAndSubmit(g *Game, color rules.Color, san string) error {
	deadline := time.Now().Add(time.Second)
	var err error
	for time.Now().Before(deadline) {
		if err = g.SubmitHumanMove(color, san); err == nil {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
	return err
}

// TestStopReleasesWaitingHumanTurn confirms Stop unblocks a game that
// is parked waiting on a human move and still emits a single gameOver.
func TestStopReleasesWaitingHumanTurn(t *testing.T) {
	log := newEventLog()
	g := New(twoHumanConfig(), llmclient.New(nil, nil), log.emit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	g.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not release the turn loop")
	}
	if log.count("gameOver") != 1 {
		t.Fatalf("gameOver count = %d, want 1", log.count("gameOver"))
	}
}

// TestSubmitHumanMoveRejectsWrongTurn checks the synchronous validation
// path independent of the turn loop.
func TestSubmitHumanMoveRejectsWrongTurn(t *testing.T) {
	g := New(twoHumanConfig(), llmclient.New(nil, nil), func(string, any) {})
	if err := g.SubmitHumanMove(rules.Black, "e5"); err != ErrNotYourTurn {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
}

// TestSubmitHumanMoveRejectsIllegalSAN checks illegal moves never reach
// the rendezvous channel.
func TestSubmitHumanMoveRejectsIllegalSAN(t *testing.T) {
	g := New(twoHumanConfig(), llmclient.New(nil, nil), func(string, any) {})
	if err := g.SubmitHumanMove(rules.White, "e5"); err == nil {
		t.Fatal("expected an error for an illegal opening move")
	}
}

// stubLLMServer returns an httptest.Server that streams a single SSE
// chunk containing content, mimicking the OpenAI-compatible wire
// format the client expects.
func stubLLMServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		payload := map[string]any{
			"choices": []map[string]any{
				{"delta": map[string]any{"content": content}},
			},
		}
		b, _ := json.Marshal(payload)
		fmt.Fprintf(w, "data: %s\n\n", b)
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

// TestForfeitAfterMaxRetries drives an LLM side that only ever offers
// an illegal move and checks the opponent is awarded the game once the
// retry budget is exhausted.
func TestForfeitAfterMaxRetries(t *testing.T) {
	srv := stubLLMServer(t, `{"move": "e5"}`) // illegal as White's first move
	defer srv.Close()

	log := newEventLog()
	cfg := Config{
		ID:         "g2",
		White:      Side{Model: "test-model", Endpoint: srv.URL, Credential: "x"},
		Black:      Side{Human: true},
		MaxRetries: 2,
		Clock:      ClockConfig{Unlimited: true},
	}
	g := New(cfg, llmclient.New(nil, nil), log.emit)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	g.Run(ctx)

	if log.count("gameOver") != 1 {
		t.Fatalf("gameOver count = %d, want 1", log.count("gameOver"))
	}
	ev, _ := log.last("gameOver")
	over := ev.(GameOverEvent)
	if over.Result == "" {
		t.Fatal("expected a non-empty forfeit result")
	}
	// MaxRetries: 2 should spend exactly two attempts (two chat events,
	// two error events), not three.
	if chatCount := log.count("chat"); chatCount != 2 {
		t.Fatalf("chat count = %d, want 2", chatCount)
	}
	if errCount := log.count("error"); errCount != 2 {
		t.Fatalf("error count = %d, want 2", errCount)
	}
}

// TestClockDebitedByElapsedTimePlusIncrement checks debitClockLocked's
// arithmetic directly: same package, so the unexported method is
// reachable without standing up a full turn loop.
func TestClockDebitedByElapsedTimePlusIncrement(t *testing.T) {
	cfg := Config{
		ID:    "g3",
		White: Side{Human: true},
		Black: Side{Human: true},
		Clock: ClockConfig{BaseTimeMs: 10000, IncrementMs: 500},
	}
	g := New(cfg, llmclient.New(nil, nil), func(string, any) {})

	g.mu.Lock()
	g.turnStartedAt = time.Now().Add(-1200 * time.Millisecond)
	g.debitClockLocked(rules.White)
	white := g.whiteTimeMs
	g.mu.Unlock()

	// 10000 - ~1200 + 500 = ~9300, allow scheduling slack.
	if white > 9350 || white < 9250 {
		t.Fatalf("whiteTimeMs = %d, want ~9300", white)
	}
}

// TestClockIncrementNotCreditedOnFlagFall checks that a mover who
// overruns their remaining time isn't bailed out by their own
// increment: the deduction must flag-fall before the increment would
// ever apply.
func TestClockIncrementNotCreditedOnFlagFall(t *testing.T) {
	cfg := Config{
		ID:    "g3b",
		White: Side{Human: true},
		Black: Side{Human: true},
		Clock: ClockConfig{BaseTimeMs: 1000, IncrementMs: 2000},
	}
	g := New(cfg, llmclient.New(nil, nil), func(string, any) {})

	g.mu.Lock()
	g.turnStartedAt = time.Now().Add(-1500 * time.Millisecond)
	g.debitClockLocked(rules.White)
	white := g.whiteTimeMs
	g.mu.Unlock()

	// 1000 - ~1500 is already <= 0; the 2000ms increment must not be
	// added on top of it.
	if white > 0 {
		t.Fatalf("whiteTimeMs = %d, want <= 0 (increment should not rescue a flag-fall)", white)
	}
}

// TestSnapshotReflectsCommittedMove exercises the read path end to end
// against a single scripted move.
func TestSnapshotReflectsCommittedMove(t *testing.T) {
	log := newEventLog()
	g := New(twoHumanConfig(), llmclient.New(nil, nil), log.emit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)
	defer g.Stop()

	if err := waitAndSubmit(g, rules.White, "e4"); err != nil {
		t.Fatalf("submit e4: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if g.Snapshot().MoveCount == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	snap := g.Snapshot()
	if snap.MoveCount != 1 {
		t.Fatalf("MoveCount = %d, want 1", snap.MoveCount)
	}
	if snap.Turn != string(rules.Black) {
		t.Fatalf("Turn = %q, want black", snap.Turn)
	}
}
