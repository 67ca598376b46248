package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"arena/internal/arena"
	"arena/internal/llmclient"
)

func newTestRegistry() *Registry {
	return New(llmclient.New(nil, nil), "letmein")
}

func TestIssueTokenCreatesGamelessSession(t *testing.T) {
	r := newTestRegistry()
	token := r.IssueToken()
	s, ok := r.Session(token)
	if !ok {
		t.Fatal("session not found after IssueToken")
	}
	if s.game != nil {
		t.Fatal("expected no game attached yet")
	}
}

func TestStartGameRejectsUnknownToken(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.StartGame("nope", arena.Config{}); err != ErrUnknownToken {
		t.Fatalf("err = %v, want ErrUnknownToken", err)
	}
}

func TestStartGameRejectsSecondGameWhileFirstLive(t *testing.T) {
	r := newTestRegistry()
	token := r.IssueToken()
	cfg := arena.Config{
		White: arena.Side{Human: true},
		Black: arena.Side{Human: true},
		Clock: arena.ClockConfig{Unlimited: true},
	}
	if _, err := r.StartGame(token, cfg); err != nil {
		t.Fatalf("first StartGame: %v", err)
	}
	defer r.StopGame(token)

	if _, err := r.StartGame(token, cfg); err != ErrGameInProgress {
		t.Fatalf("err = %v, want ErrGameInProgress", err)
	}
}

func TestSubscribeReceivesBroadcastEvents(t *testing.T) {
	r := newTestRegistry()
	token := r.IssueToken()
	cfg := arena.Config{
		White: arena.Side{Human: true},
		Black: arena.Side{Human: true},
		Clock: arena.ClockConfig{Unlimited: true},
	}
	if _, err := r.StartGame(token, cfg); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	defer r.StopGame(token)

	ch, unsubscribe, err := r.Subscribe(token)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsubscribe()

	select {
	case ev := <-ch:
		if ev.Kind == "" {
			t.Fatal("expected a non-empty event kind")
		}
	case <-time.After(time.Second):
		t.Fatal("no event received from a freshly started game")
	}
}

func TestReapDropsLongIdleGamelessSession(t *testing.T) {
	r := newTestRegistry()
	token := r.IssueToken()

	r.mu.RLock()
	s := r.sessions[token]
	r.mu.RUnlock()
	s.mu.Lock()
	s.CreatedAt = time.Now().Add(-2 * IdleSessionTTL)
	s.mu.Unlock()

	r.reapOnce()
	if r.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after reaping a long-idle gameless session", r.Len())
	}
}

func TestReapKeepsRecentlyFinishedGame(t *testing.T) {
	r := newTestRegistry()
	token := r.IssueToken()
	cfg := arena.Config{
		White: arena.Side{Human: true},
		Black: arena.Side{Human: true},
		Clock: arena.ClockConfig{Unlimited: true},
	}
	g, err := r.StartGame(token, cfg)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	g.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && !g.IsOver() {
		time.Sleep(time.Millisecond)
	}

	r.reapOnce()
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (a just-finished game is within FinishedGameTTL)", r.Len())
	}
}

func TestResetGameDetachesGameAndBroadcastsEmptyBoard(t *testing.T) {
	r := newTestRegistry()
	token := r.IssueToken()
	cfg := arena.Config{
		White: arena.Side{Human: true},
		Black: arena.Side{Human: true},
		Clock: arena.ClockConfig{Unlimited: true},
	}
	if _, err := r.StartGame(token, cfg); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	ch, unsubscribe, err := r.Subscribe(token)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer unsubscribe()

	if err := r.ResetGame(token); err != nil {
		t.Fatalf("ResetGame: %v", err)
	}

	s, ok := r.Session(token)
	if !ok {
		t.Fatal("session vanished after reset")
	}
	if s.game != nil {
		t.Fatal("expected Game to be nil after reset")
	}

	sawBoard := false
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev.Kind == "board" {
				sawBoard = true
			}
		default:
		}
		if sawBoard {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !sawBoard {
		t.Fatal("expected a board event broadcast after reset")
	}

	if _, err := r.StartGame(token, cfg); err != nil {
		t.Fatalf("StartGame after reset should succeed: %v", err)
	}
}

func TestCooldownTrackerBlocksWithinWindow(t *testing.T) {
	c := NewCooldownTracker(20*time.Minute, "bypass-pw")
	if err := c.Check("tok-a", true, ""); err != nil {
		t.Fatalf("first shared-credential start should succeed: %v", err)
	}
	if err := c.Check("tok-a", true, ""); err == nil {
		t.Fatal("second shared-credential start within window should be rejected")
	}
	if err := c.Check("tok-a", true, "bypass-pw"); err != nil {
		t.Fatalf("bypass password should lift the cooldown: %v", err)
	}
	if err := c.Check("tok-a", false, ""); err != nil {
		t.Fatalf("a caller-supplied credential should never cooldown: %v", err)
	}
}

func TestCooldownTrackerIsPerToken(t *testing.T) {
	c := NewCooldownTracker(20*time.Minute, "")
	if err := c.Check("tok-a", true, ""); err != nil {
		t.Fatalf("first shared-credential start for tok-a should succeed: %v", err)
	}
	if err := c.Check("tok-b", true, ""); err != nil {
		t.Fatalf("a different token's first shared-credential start should not be blocked by tok-a's: %v", err)
	}
	if err := c.Check("tok-a", true, ""); err == nil {
		t.Fatal("tok-a's second shared-credential start within window should still be rejected")
	}
}

func TestModelCacheServesFromCacheWithinTTL(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(modelsResponse{
			Data: []struct {
				ID string `json:"id"`
			}{{ID: "model-b"}, {ID: "model-a"}},
		})
	}))
	defer srv.Close()

	cache := NewModelCache(time.Minute)
	apiURL := srv.URL + "/chat/completions"
	models, err := cache.List(apiURL, "cred")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(models) != 2 || models[0].ID != "model-a" {
		t.Fatalf("models = %v, want sorted by id", models)
	}
	if _, err := cache.List(apiURL, "cred"); err != nil {
		t.Fatalf("second List: %v", err)
	}
	if hits != 1 {
		t.Fatalf("hits = %d, want 1 (second call should be served from cache)", hits)
	}
}

func TestDeriveModelsURLStripsChatCompletionsSuffix(t *testing.T) {
	got, err := DeriveModelsURL("https://api.example.com/v1/chat/completions")
	if err != nil {
		t.Fatalf("DeriveModelsURL: %v", err)
	}
	if want := "https://api.example.com/v1/models"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
