package room

import "time"

// tick is delivered by the engine's ticker on the same actor goroutine as
// every other mutation, so it never races a client intent (spec.md §4.4:
// "a timer firing is just another intent, never a preemptive mutation").
//
// Turn-clock accumulation is silent: it never bumps stateVersion or
// broadcasts, since a per-second chatter update over a counter clients can
// already derive from turnStartedAt would violate the spirit of P4 without
// adding information. ZAP expiry is a real state transition and does both.
func (e *Engine) tick(now time.Time) {
	r := e.room
	if r.Phase != PhasePlaying {
		e.lastTick = now
		return
	}

	elapsed := now.Sub(e.lastTick)
	e.lastTick = now
	if elapsed > 0 {
		if cp := r.CurrentPlayerRecord(); cp != nil {
			cp.Timer += elapsed
		}
	}

	if r.ZapActive && !now.Before(r.ZapDeadline) {
		r.ZapActive = false
		r.BumpVersion()
		e.broadcastStateUpdate(nil)
	}
}
