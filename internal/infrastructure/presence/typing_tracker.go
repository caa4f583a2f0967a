package presence

import (
	"context"
	"sync"
	"time"
)

// Tracker holds ephemeral "who is typing" state: a TTL map keyed by
// conversation and participant. Nothing here survives a restart, and nothing
// needs to — clients re-signal on the next keystroke.
type Tracker struct {
	entries map[string]time.Time // conversationID + "\x00" + participant key -> expiry
	ttl     time.Duration
	mutex   sync.Mutex
}

func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &Tracker{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

func key(conversationID, participantKey string) string {
	return conversationID + "\x00" + participantKey
}

// Start records a typing signal; repeat calls refresh the expiry, so clients
// can re-signal cheaply on every keystroke burst.
func (t *Tracker) Start(conversationID, participantKey string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.entries[key(conversationID, participantKey)] = time.Now().Add(t.ttl)
}

// Stop clears the signal immediately.
func (t *Tracker) Stop(conversationID, participantKey string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	delete(t.entries, key(conversationID, participantKey))
}

// Typing returns the participant keys currently typing in a conversation,
// pruning anything past its expiry on the way.
func (t *Tracker) Typing(conversationID string) []string {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := time.Now()
	prefix := conversationID + "\x00"

	var active []string
	for k, expiry := range t.entries {
		if now.After(expiry) {
			delete(t.entries, k)
			continue
		}
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			active = append(active, k[len(prefix):])
		}
	}

	return active
}

// StartJanitor sweeps expired entries so abandoned conversations do not pin
// memory. Modeled on the rate limiter's cleanup routine.
func (t *Tracker) StartJanitor(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(t.ttl * 10)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (t *Tracker) sweep() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := time.Now()
	for k, expiry := range t.entries {
		if now.After(expiry) {
			delete(t.entries, k)
		}
	}
}
