package registry

import (
	"fmt"
	"sync"
	"time"
)

// CooldownTracker enforces a per-token spacing window between games
// that use the server's own shared LLM credential, rather than one a
// client supplied itself, so one token can't monopolize a shared API
// key's rate limit. An operator-held bypass password lifts it for
// trusted callers (demos, the operator console).
type CooldownTracker struct {
	window time.Duration
	bypass string

	mu      sync.Mutex
	lastUse map[string]time.Time
}

// NewCooldownTracker returns a tracker enforcing window between a
// token's shared-credential game starts. An empty bypass disables the
// bypass entirely (no password can lift the cooldown).
func NewCooldownTracker(window time.Duration, bypass string) *CooldownTracker {
	return &CooldownTracker{window: window, bypass: bypass, lastUse: make(map[string]time.Time)}
}

// CooldownError reports that a shared-credential start was rejected,
// carrying the remaining wait so the HTTP layer can fill the 429
// payload's remainingMs field without reparsing an error string.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("shared credential cooldown active, retry in %s", e.Remaining.Round(time.Second))
}

// Check reports whether token may start a game using the shared
// credential now. usesSharedCredential should be false whenever the
// caller supplied its own endpoint/credential — those never cooldown.
// A non-nil error is always a *CooldownError.
func (c *CooldownTracker) Check(token string, usesSharedCredential bool, providedBypass string) error {
	if !usesSharedCredential {
		return nil
	}
	if c.bypass != "" && providedBypass == c.bypass {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if last, ok := c.lastUse[token]; ok {
		if remaining := c.window - now.Sub(last); remaining > 0 {
			return &CooldownError{Remaining: remaining}
		}
	}
	c.lastUse[token] = now
	return nil
}
