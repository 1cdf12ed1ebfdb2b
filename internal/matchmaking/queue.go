// Package matchmaking implements the single FIFO queue (C6) that pairs two
// waiting connections into a new room.
package matchmaking

import (
	"sync"

	"duotaire/internal/registry"
	"duotaire/internal/room"
)

// Waiter is a single queued request, parameterized over whatever identity
// the caller's transport layer uses for a connection (the gateway passes a
// *gateway.Connection; tests pass a plain struct).
type Waiter struct {
	SessionID string
	Name      string
	// Alive reports whether the waiter's connection is still open. A dead
	// waiter is skipped rather than matched (spec.md §4.6).
	Alive func() bool
	// Bind is invoked with the freshly created room.Engine once this waiter
	// is paired as the host, so the caller's transport layer (the gateway)
	// can attach its connection to seat 0. Never called for a waiter that is
	// matched away without ever being paired, or for the requester side of
	// FindMatch, which binds itself directly off the returned MatchResult.
	Bind func(*room.Engine)
}

// Queue is a FIFO of waiters plus the registry it asks to build rooms.
type Queue struct {
	mu      sync.Mutex
	waiting []Waiter
	reg     *registry.Registry
}

// New creates a matchmaking Queue backed by reg.
func New(reg *registry.Registry) *Queue {
	return &Queue{reg: reg}
}

// MatchResult reports the outcome of a FindMatch call: either the sender
// was enqueued (QueuePosition set) or paired into a brand new room.
type MatchResult struct {
	Enqueued      bool
	QueuePosition int

	Engine  *room.Engine
	IsHost  bool
}

// FindMatch implements find_match (spec.md §4.6): pair the sender with the
// oldest still-alive waiter, skipping over dead ones; if none are
// available, enqueue the sender instead. bind is recorded on the Waiter so
// that if a later caller pairs with this one, its transport layer can be
// attached to the new room's host seat.
func (q *Queue) FindMatch(sessionID, name string, alive func() bool, bind func(*room.Engine), cfg room.Config, notify room.Notify) (MatchResult, error) {
	q.mu.Lock()
	for len(q.waiting) > 0 {
		host := q.waiting[0]
		q.waiting = q.waiting[1:]
		if !host.Alive() {
			continue
		}
		q.mu.Unlock()

		engine, err := q.reg.CreateRoom(host.SessionID, host.Name, cfg, notify)
		if err != nil {
			return MatchResult{}, err
		}
		if err := engine.JoinGuest(sessionID, name); err != nil {
			return MatchResult{}, err
		}
		if host.Bind != nil {
			host.Bind(engine)
		}
		return MatchResult{Engine: engine, IsHost: false}, nil
	}

	q.waiting = append(q.waiting, Waiter{SessionID: sessionID, Name: name, Alive: alive, Bind: bind})
	position := len(q.waiting)
	q.mu.Unlock()

	return MatchResult{Enqueued: true, QueuePosition: position}, nil
}

// CancelMatchmaking removes sessionID from the queue, if present
// (cancel_matchmaking or disconnect while queued).
func (q *Queue) CancelMatchmaking(sessionID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, w := range q.waiting {
		if w.SessionID == sessionID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}

// Len returns the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
