// Package pending tracks outstanding confirmation requests.
//
// Every time a channel enters a standby state the transmitter issues a fresh
// request token and embeds it in the status payload. A receiver echoes the
// token back in its confirmation; resolving it here ties the confirmation to
// the channel the standby was issued for. Tokens for a channel are revoked
// the moment it leaves standby, so late confirmations resolve to nothing and
// are dropped — the expected steady-state outcome, not an error.
package pending

import (
	"sync"

	"github.com/google/uuid"
)

// Tracker maps outstanding request ids to channel ids.
//
// All methods are thread-safe.
type Tracker struct {
	mu       sync.Mutex
	requests map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{requests: make(map[string]int)}
}

// Issue creates a globally unique request id bound to the given channel.
func (t *Tracker) Issue(channelID int) string {
	id := uuid.NewString()

	t.mu.Lock()
	t.requests[id] = channelID
	t.mu.Unlock()

	return id
}

// Resolve looks up the channel a request id was issued for.
// Unknown ids return ok=false: stale and duplicate confirmations are
// expected, callers drop them silently.
func (t *Tracker) Resolve(requestID string) (channelID int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	channelID, ok = t.requests[requestID]
	return channelID, ok
}

// RevokeForChannel removes every outstanding request mapped to a channel.
// Called whenever a channel leaves a standby state, regardless of where it
// is going.
func (t *Tracker) RevokeForChannel(channelID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, ch := range t.requests {
		if ch == channelID {
			delete(t.requests, id)
		}
	}
}

// Len returns the number of outstanding requests.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}
