package room

// SourceType identifies where a play_card move takes its card from.
type SourceType byte

const (
	SourceDrawn SourceType = iota
	SourceCenter
)

// DestType identifies where a play_card move places its card.
type DestType byte

const (
	DestFoundation DestType = iota
	DestCenter
	DestOpponentDiscard
	DestOwnDiscard
)

// IntentKind enumerates the messages the engine accepts: the five
// client-facing intents from spec.md §6 plus four internal ones (onLeave
// from the connection adapter, joinGuest and snapshot from the
// registry/matchmaking layer, and timerTick, which handle accepts as a
// no-op because the engine's ticker calls tick directly).
type IntentKind byte

const (
	IntentDrawCard IntentKind = iota
	IntentPlayCard
	IntentSequenceMove
	IntentZap
	IntentRequestState
	intentOnLeave
	intentTimerTick
	intentJoinGuest
	intentSnapshot
)

// Intent is a single message submitted to a room's actor loop. Only the
// fields relevant to Kind are read. The lowercase fields are internal
// plumbing for intents that never cross the wire (guest-join, bookkeeping
// snapshots) and are never set by callers outside this package.
type Intent struct {
	Kind      IntentKind
	SessionID string

	// play_card
	FromType SourceType
	FromIdx  int
	ToType   DestType
	ToIdx    int

	// sequence_move
	FromCenter    int
	FromCardIndex int
	ToCenter      int

	// request_state: the client's last known stateVersion, so the engine can
	// answer with a Delta instead of a full Snapshot when possible. Zero
	// means "no base known", which always yields a full Snapshot.
	BaseVersion uint64

	// intentJoinGuest
	guestName string

	// intentSnapshot: handle() writes the room's current snapshot through
	// this pointer before returning.
	snapshotOut *Snapshot
}
