// Package registry implements the Room Registry (C5): code generation,
// lookup by code, and disposal/sweep of stale rooms.
package registry

import (
	"crypto/rand"
	"errors"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"duotaire/internal/room"
)

// codeAlphabet is spec.md §6's 32-glyph alphabet: no I, O, 0, 1.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

const (
	defaultSweepInterval = 60 * time.Second
	defaultWaitingTTL    = 30 * time.Minute
	recentlyDisposedSize = 256
	maxCodeAttempts      = 16
)

// ErrUnknownCode is returned by JoinByCode when no room matches.
var ErrUnknownCode = errors.New("registry: unknown room code")

// ErrCodeExhausted is returned by CreateRoom if the alphabet's codespace
// could not yield a free code after maxCodeAttempts collisions.
var ErrCodeExhausted = errors.New("registry: could not allocate a room code")

// Registry owns every live room, keyed by its 6-character code.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room.Engine

	// recentlyDisposed keeps a bounded memory of just-freed codes so a
	// disposed code is not immediately reissued to a brand new room while an
	// in-flight message for the old room might still be racing through a
	// gateway goroutine (see SPEC_FULL.md §4.9).
	recentlyDisposed *lru.Cache[string, struct{}]

	sweepInterval time.Duration
	waitingTTL    time.Duration
	done          chan struct{}
	stopOnce      sync.Once
}

// New creates a Registry and starts its background sweep.
func New() *Registry {
	cache, _ := lru.New[string, struct{}](recentlyDisposedSize)
	r := &Registry{
		rooms:            make(map[string]*room.Engine),
		recentlyDisposed: cache,
		sweepInterval:    defaultSweepInterval,
		waitingTTL:       defaultWaitingTTL,
		done:             make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// CreateRoom allocates a fresh code, builds a room.Engine for it with
// hostSessionID seated as the host, and registers it.
func (r *Registry) CreateRoom(hostSessionID, hostName string, cfg room.Config, notify room.Notify) (*room.Engine, error) {
	r.mu.Lock()
	code, err := r.allocateCodeLocked()
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	engine := room.New(code, hostSessionID, hostName, cfg, notify)
	r.rooms[code] = engine
	r.mu.Unlock()

	log.Printf("[Registry] room %s created by session %s", code, hostSessionID)
	return engine, nil
}

// allocateCodeLocked must be called with r.mu held.
func (r *Registry) allocateCodeLocked() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[code]; taken {
			continue
		}
		if r.recentlyDisposed.Contains(code) {
			continue
		}
		return code, nil
	}
	return "", ErrCodeExhausted
}

// randomCode draws codeLength glyphs uniformly from codeAlphabet. The
// alphabet has exactly 32 = 2^5 glyphs, so masking five bits off a
// crypto/rand byte is exact, not merely rejection-sampled-unbiased.
func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[b&0x1F]
	}
	return string(out), nil
}

// JoinByCode normalizes code (uppercased, with all whitespace removed) and
// returns its room.Engine, or ErrUnknownCode.
func (r *Registry) JoinByCode(code string) (*room.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	engine, ok := r.rooms[normalizeCode(code)]
	if !ok {
		return nil, ErrUnknownCode
	}
	return engine, nil
}

func normalizeCode(code string) string {
	out := make([]byte, 0, len(code))
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// Dispose cancels a room's timers (via Engine.Stop) and drops the
// registry's only reference to it, so it becomes collectible. The code is
// remembered briefly to avoid immediate reissue.
func (r *Registry) Dispose(code string) {
	r.mu.Lock()
	engine, ok := r.rooms[code]
	if ok {
		delete(r.rooms, code)
		r.recentlyDisposed.Add(code, struct{}{})
	}
	r.mu.Unlock()

	if ok {
		engine.Stop()
		log.Printf("[Registry] room %s disposed", code)
	}
}

// Count returns the number of live rooms, for /health reporting.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Stop halts the background sweep. Rooms themselves are not stopped; the
// caller is expected to have already drained gameplay before shutdown.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

func (r *Registry) sweepLoop() {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.sweepStaleWaitingRooms()
		case <-r.done:
			return
		}
	}
}

// sweepStaleWaitingRooms drops rooms still waiting for a guest whose
// createdAt is older than waitingTTL (spec.md §3 Lifecycle, §4.5).
//
// The registry lock only ever guards the O(1) map snapshot below; every
// engine.Snapshot() call (a channel round-trip into that room's actor) runs
// after the lock is released, so a slow or busy room actor never blocks
// CreateRoom/JoinByCode for every other room (spec.md §5).
func (r *Registry) sweepStaleWaitingRooms() {
	cutoff := time.Now().Add(-r.waitingTTL)

	r.mu.Lock()
	candidates := make(map[string]*room.Engine, len(r.rooms))
	for code, engine := range r.rooms {
		candidates[code] = engine
	}
	r.mu.Unlock()

	stale := make(map[string]*room.Engine)
	for code, engine := range candidates {
		if engine.IsClosed() {
			stale[code] = engine
			continue
		}
		snap, err := engine.Snapshot()
		if err != nil {
			continue
		}
		if snap.Phase == "waiting" && engine.CreatedAt().Before(cutoff) {
			stale[code] = engine
		}
	}

	r.mu.Lock()
	for code := range stale {
		delete(r.rooms, code)
		r.recentlyDisposed.Add(code, struct{}{})
	}
	r.mu.Unlock()

	for code, engine := range stale {
		engine.Stop()
		log.Printf("[Registry] sweep dropped stale waiting room %s (older than %s)", code, r.waitingTTL)
	}
}
