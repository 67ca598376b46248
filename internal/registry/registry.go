// Package registry owns the session/subscriber bookkeeping the HTTP
// layer needs on top of a bare *arena.Game: token issuance, per-token
// event fanout to any number of SSE subscribers, idle reaping of
// abandoned or long-finished games, a shared-credential cooldown, and
// a short-lived model-list cache.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"arena/internal/arena"
	"arena/internal/llmclient"
)

const (
	// ReapInterval is how often the idle reaper sweeps sessions.
	ReapInterval = 5 * time.Minute
	// FinishedGameTTL is how long a finished game's session is kept
	// around before the reaper drops it (covers clients that are slow
	// to fetch the final state or replay the PGN).
	FinishedGameTTL = 1 * time.Hour
	// IdleSessionTTL covers sessions that were issued a token but never
	// started a game.
	IdleSessionTTL = 1 * time.Hour

	// EventBuffer is the per-subscriber channel depth; a subscriber
	// slower than this drops events rather than stalling the game.
	EventBuffer = 32
)

// Event is one broadcast unit: Kind names the SSE event type, Payload
// is marshaled to JSON as the event's data.
type Event struct {
	Kind    string
	Payload any
}

// Session is one issued token's bookkeeping: the live game (nil until
// started) and its subscriber set. game is mutated under mu by
// StartGame/ResetGame; callers outside this package must go
// through Game() rather than reaching into the struct directly.
type Session struct {
	Token     string
	CreatedAt time.Time
	game      *arena.Game
	cancel    context.CancelFunc
	mu        sync.Mutex
	subs      map[chan Event]struct{}
}

// Game returns the session's current live game, or nil if none has
// been started (or it was stopped/reset since).
func (s *Session) Game() *arena.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}

// Registry is the process-wide store of sessions. One Registry backs
// the whole server; it outlives any individual game.
type Registry struct {
	llm *llmclient.Client

	mu       sync.RWMutex
	sessions map[string]*Session

	cooldown *CooldownTracker
	models   *ModelCache
}

// New returns an empty Registry. llm is shared by every game started
// through it, so its rate limiter and exchange log stay process-wide.
func New(llm *llmclient.Client, bypassPassword string) *Registry {
	return &Registry{
		llm:      llm,
		sessions: make(map[string]*Session),
		cooldown: NewCooldownTracker(20*time.Minute, bypassPassword),
		models:   NewModelCache(5 * time.Minute),
	}
}

// IssueToken creates a new session with no game attached yet and
// returns its opaque bearer token.
func (r *Registry) IssueToken() string {
	token := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = &Session{
		Token:     token,
		CreatedAt: time.Now(),
		subs:      make(map[chan Event]struct{}),
	}
	return token
}

// Session looks up a session by token.
func (r *Registry) Session(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return s, ok
}

// Cooldown exposes the shared-credential cooldown tracker to the HTTP
// layer's start-game validation.
func (r *Registry) Cooldown() *CooldownTracker { return r.cooldown }

// Models exposes the model-list cache to the HTTP layer.
func (r *Registry) Models() *ModelCache { return r.models }

// StartGame attaches a fresh Game to an existing, gameless session and
// launches its turn loop. Returns ErrGameInProgress if the session's
// current game is still running (sessions are one-game-at-a-time); a
// finished or stopped game is replaced.
func (r *Registry) StartGame(token string, cfg arena.Config) (*arena.Game, error) {
	r.mu.RLock()
	s, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownToken
	}

	s.mu.Lock()
	if s.game != nil && !s.game.IsOver() {
		s.mu.Unlock()
		return nil, ErrGameInProgress
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := arena.New(cfg, r.llm, s.broadcast)
	s.game = g
	s.cancel = cancel
	s.mu.Unlock()

	go g.Run(ctx)
	return g, nil
}

// StopGame stops a session's live game, if any.
func (r *Registry) StopGame(token string) error {
	s, ok := r.Session(token)
	if !ok {
		return ErrUnknownToken
	}
	s.mu.Lock()
	g := s.game
	cancel := s.cancel
	s.mu.Unlock()
	if g == nil {
		return ErrNoGame
	}
	g.Stop()
	if cancel != nil {
		cancel()
	}
	return nil
}

// ResetGame stops a session's live game, if any, and detaches it
// entirely so the next StartGame call starts fresh — unlike StopGame,
// subscribers are told the game is gone via a reset status and an
// empty board, rather than left holding the last gameOver event.
func (r *Registry) ResetGame(token string) error {
	s, ok := r.Session(token)
	if !ok {
		return ErrUnknownToken
	}
	s.mu.Lock()
	g := s.game
	cancel := s.cancel
	s.mu.Unlock()
	if g == nil {
		return ErrNoGame
	}

	g.Stop()
	if cancel != nil {
		cancel()
	}

	s.mu.Lock()
	s.game = nil
	s.cancel = nil
	s.mu.Unlock()

	s.broadcast("status", arena.StatusEvent{Message: "Game reset"})
	s.broadcast("board", arena.EmptyBoardView())
	return nil
}

// Subscribe registers a new SSE subscriber for token and returns the
// channel it should range over, plus an unsubscribe func the caller
// must invoke when the connection closes.
func (r *Registry) Subscribe(token string) (<-chan Event, func(), error) {
	s, ok := r.Session(token)
	if !ok {
		return nil, nil, ErrUnknownToken
	}
	ch := make(chan Event, EventBuffer)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()
	unsubscribe := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
	return ch, unsubscribe, nil
}

// broadcast is the Session's arena.EmitFunc: a non-blocking fanout to
// every current subscriber.
func (s *Session) broadcast(kind string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- Event{Kind: kind, Payload: payload}:
		default:
			// Subscriber too slow; it will catch up from the next
			// state snapshot rather than block the game.
		}
	}
}

// Reap runs until ctx is canceled, periodically dropping sessions
// whose game finished more than FinishedGameTTL ago, or that never
// started a game within IdleSessionTTL.
func (r *Registry) Reap(ctx context.Context) {
	ticker := time.NewTicker(ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reapOnce()
		}
	}
}

func (r *Registry) reapOnce() {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		s.mu.Lock()
		g := s.game
		createdAt := s.CreatedAt
		s.mu.Unlock()

		if g == nil {
			if now.Sub(createdAt) > IdleSessionTTL {
				delete(r.sessions, token)
			}
			continue
		}
		if finishedAt, over := g.FinishedAt(); over && now.Sub(finishedAt) > FinishedGameTTL {
			delete(r.sessions, token)
		}
	}
}

// StopAll stops every session's live game. Used on server shutdown so
// no orchestrator goroutine is left running once the listener closes.
func (r *Registry) StopAll() {
	r.mu.RLock()
	games := make([]*arena.Game, 0, len(r.sessions))
	cancels := make([]context.CancelFunc, 0, len(r.sessions))
	for _, s := range r.sessions {
		s.mu.Lock()
		if s.game != nil {
			games = append(games, s.game)
			cancels = append(cancels, s.cancel)
		}
		s.mu.Unlock()
	}
	r.mu.RUnlock()

	for i, g := range games {
		g.Stop()
		if cancels[i] != nil {
			cancels[i]()
		}
	}
}

// Len reports the number of live sessions, for diagnostics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
