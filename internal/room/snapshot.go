package room

import "duotaire/card"

// PlayerView is the wire-facing projection of a Player. DrawnCard is only
// populated when the snapshot is being built for that player's own viewer;
// the opponent's view always carries an empty DrawnCard.
type PlayerView struct {
	Index        int      `json:"index"`
	Name         string   `json:"name"`
	DeckSize     int      `json:"deckSize"`
	DiscardPile  []string `json:"discardPile"`
	DrawnCard    string   `json:"drawnCard,omitempty"`
	Connected    bool     `json:"connected"`
}

// FoundationView is the wire-facing projection of a Foundation.
type FoundationView struct {
	Suit  string   `json:"suit"`
	Cards []string `json:"cards"`
}

// LastMoveInfo describes the most recent accepted mutation, carried
// alongside a state_update so a client can animate it without guessing.
type LastMoveInfo struct {
	Card string `json:"card"`
	Kind string `json:"kind"`
}

// Snapshot is the full wire view of a room's state, per spec.md §6's state
// snapshot shape.
type Snapshot struct {
	RoomCode      string         `json:"roomCode"`
	Phase         string         `json:"phase"`
	CurrentPlayer int            `json:"currentPlayer"`
	Winner        int            `json:"winner"`
	StateVersion  uint64         `json:"stateVersion"`
	Players       [2]PlayerView  `json:"players"`
	CenterPiles   [5][]string    `json:"centerPiles"`
	Foundations   [4]FoundationView `json:"foundations"`
}

func stackCodes(s card.Stack) []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Code()
	}
	return out
}

// buildSnapshot renders r's state for viewerIndex's eyes. Pass -1 for a
// neutral view (both drawnCards omitted) used by registry bookkeeping.
func buildSnapshot(r *Room, viewerIndex int) Snapshot {
	snap := Snapshot{
		RoomCode:      r.Code,
		Phase:         r.Phase.String(),
		CurrentPlayer: r.CurrentPlayer,
		Winner:        r.Winner,
		StateVersion:  r.StateVersion,
	}
	for i, p := range r.Players {
		if p == nil {
			continue
		}
		pv := PlayerView{
			Index:       p.Index,
			Name:        p.Name,
			DeckSize:    p.Deck.Len(),
			DiscardPile: stackCodes(p.Discard),
			Connected:   p.Connected,
		}
		if i == r.CurrentPlayer && r.DrawnCard != card.CardInvalid && i == viewerIndex {
			pv.DrawnCard = r.DrawnCard.Code()
		}
		snap.Players[i] = pv
	}
	for i, pile := range r.CenterPiles {
		snap.CenterPiles[i] = stackCodes(pile)
	}
	for i, f := range r.Foundations {
		snap.Foundations[i] = FoundationView{Suit: f.Suit.String(), Cards: stackCodes(f.Cards)}
	}
	return snap
}

// Delta carries only the fields of a Snapshot that changed since BaseVersion,
// for a client that is a few versions behind. Nil pointers/fields mean
// "unchanged since the base". A delta that cannot be computed against a
// client's base (too old, fallen out of the ring) is not built at all — the
// caller falls back to a full Snapshot instead.
type Delta struct {
	RoomCode     string             `json:"roomCode"`
	BaseVersion  uint64             `json:"baseVersion"`
	StateVersion uint64             `json:"stateVersion"`
	Phase        *string            `json:"phase,omitempty"`
	CurrentPlayer *int              `json:"currentPlayer,omitempty"`
	Winner       *int               `json:"winner,omitempty"`
	Players      [2]*PlayerView     `json:"players,omitempty"`
	CenterPiles  [5]*[]string       `json:"centerPiles,omitempty"`
	Foundations  [4]*FoundationView `json:"foundations,omitempty"`
	LastMove     *LastMoveInfo      `json:"lastMove,omitempty"`
}

// deltaRing retains the last n full snapshots taken after each mutation, so
// a delta can be built against any base version still in the window.
type deltaRing struct {
	entries []Snapshot
	cap     int
}

func newDeltaRing(n int) *deltaRing {
	return &deltaRing{entries: make([]Snapshot, 0, n), cap: n}
}

func (d *deltaRing) push(s Snapshot) {
	d.entries = append(d.entries, s)
	if len(d.entries) > d.cap {
		d.entries = d.entries[len(d.entries)-d.cap:]
	}
}

func (d *deltaRing) find(version uint64) (Snapshot, bool) {
	for _, s := range d.entries {
		if s.StateVersion == version {
			return s, true
		}
	}
	return Snapshot{}, false
}

// buildDelta diffs base (an older snapshot from this seat's ring) against
// current (the fresh snapshot for the same seat), returning false if base is
// not in the ring and the caller should send a full snapshot instead.
func (d *deltaRing) buildDelta(baseVersion uint64, current Snapshot) (Delta, bool) {
	base, ok := d.find(baseVersion)
	if !ok {
		return Delta{}, false
	}
	delta := Delta{
		RoomCode:     current.RoomCode,
		BaseVersion:  baseVersion,
		StateVersion: current.StateVersion,
	}
	if base.Phase != current.Phase {
		v := current.Phase
		delta.Phase = &v
	}
	if base.CurrentPlayer != current.CurrentPlayer {
		v := current.CurrentPlayer
		delta.CurrentPlayer = &v
	}
	if base.Winner != current.Winner {
		v := current.Winner
		delta.Winner = &v
	}
	for i := range current.Players {
		if !playerViewEqual(base.Players[i], current.Players[i]) {
			v := current.Players[i]
			delta.Players[i] = &v
		}
	}
	for i := range current.CenterPiles {
		if !stringsEqual(base.CenterPiles[i], current.CenterPiles[i]) {
			v := current.CenterPiles[i]
			delta.CenterPiles[i] = &v
		}
	}
	for i := range current.Foundations {
		if !foundationViewEqual(base.Foundations[i], current.Foundations[i]) {
			v := current.Foundations[i]
			delta.Foundations[i] = &v
		}
	}
	return delta, true
}

func playerViewEqual(a, b PlayerView) bool {
	if a.Index != b.Index || a.Name != b.Name || a.DeckSize != b.DeckSize ||
		a.DrawnCard != b.DrawnCard || a.Connected != b.Connected {
		return false
	}
	return stringsEqual(a.DiscardPile, b.DiscardPile)
}

func foundationViewEqual(a, b FoundationView) bool {
	if a.Suit != b.Suit {
		return false
	}
	return stringsEqual(a.Cards, b.Cards)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EventKind enumerates the outbound message families the engine emits via
// Notify, per spec.md §6's outbound message list (the subset owned by the
// room engine rather than the registry/matchmaking layer).
type EventKind byte

const (
	EventGameStarted EventKind = iota
	EventPlayerJoined
	EventStateUpdate
	EventCardDrawn
	EventOpponentDrew
	EventGameOver
	EventPlayerLeft
	EventError
)

// Event is a single outbound notification produced synchronously inside
// the engine's actor loop. TargetIndex selects which seat receives it: -1
// means both seats receive an identical copy (e.g. game_over), otherwise
// only that seat.
type Event struct {
	Kind        EventKind
	RoomCode    string
	TargetIndex int

	Snapshot *Snapshot
	Delta    *Delta
	LastMove *LastMoveInfo

	Card        string
	DeckSize    int
	PlayerIndex int
	PlayerID    string
	Winner      int
	Reason      string
	Message     string
}
