package room

import (
	"time"

	"duotaire/card"
)

// zapPenaltyCards is the number of cards ApplyZapPenalty moves from a
// zapped player's own discard back onto their own deck (spec.md §9 open
// question, resolved in SPEC_FULL.md §4.10).
const zapPenaltyCards = 2

// zapWindowDuration is the grace period opened by a successful foundation
// play (spec.md §4.3).
const zapWindowDuration = 3000 * time.Millisecond

// handle is the engine's dispatch point for submitted intents. It runs on
// the actor goroutine, which is also where tick applies timer mutations.
func (e *Engine) handle(i Intent) error {
	switch i.Kind {
	case IntentDrawCard:
		return e.handleDrawCard(i)
	case IntentPlayCard:
		return e.handlePlayCard(i)
	case IntentSequenceMove:
		return e.handleSequenceMove(i)
	case IntentZap:
		return e.handleZap(i)
	case IntentRequestState:
		return e.handleRequestState(i)
	case intentOnLeave:
		return e.handleOnLeave(i)
	case intentJoinGuest:
		return e.handleJoinGuest(i)
	case intentSnapshot:
		if i.snapshotOut != nil {
			*i.snapshotOut = buildSnapshot(e.room, -1)
		}
		return nil
	case intentTimerTick:
		return nil
	}
	return nil
}

func closeZapWindow(r *Room) {
	r.ZapActive = false
}

// recordSnapshotHistory pushes each seat's current viewer-specific snapshot
// into its own delta ring. Called once per accepted mutation (after the
// matching BumpVersion) so a later request_state can diff against it.
func (e *Engine) recordSnapshotHistory() {
	r := e.room
	for seat := 0; seat < 2; seat++ {
		if r.PlayerByIndex(seat) == nil {
			continue
		}
		e.history[seat].push(buildSnapshot(r, seat))
	}
}

// broadcastStateUpdate pushes the post-mutation state to both seats, each
// getting a viewer-specific snapshot (drawnCard visible only to its owner),
// and records it in that seat's delta ring.
func (e *Engine) broadcastStateUpdate(lastMove *LastMoveInfo) {
	r := e.room
	e.recordSnapshotHistory()
	for seat := 0; seat < 2; seat++ {
		if r.PlayerByIndex(seat) == nil {
			continue
		}
		snap := buildSnapshot(r, seat)
		e.notify(Event{Kind: EventStateUpdate, RoomCode: r.Code, TargetIndex: seat, Snapshot: &snap, LastMove: lastMove})
	}
}

func (e *Engine) broadcastGameOver(reason string) {
	e.notify(Event{Kind: EventGameOver, RoomCode: e.room.Code, TargetIndex: -1, Winner: e.room.Winner, Reason: reason})
}

// handleDrawCard implements the draw_card intent (spec.md §4.3).
func (e *Engine) handleDrawCard(i Intent) error {
	r := e.room
	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	p := r.PlayerBySession(i.SessionID)
	if p == nil {
		return ErrUnknownSession
	}
	if p.Index != r.CurrentPlayer {
		return ErrOutOfTurn
	}
	if r.DrawnCard != card.CardInvalid {
		return invalidMove("a card is already drawn")
	}
	if p.Deck.Len() == 0 && !recycleDiscard(p) {
		return invalidMove("no cards to draw")
	}
	c, ok := p.Deck.Pop()
	if !ok {
		return invalidMove("no cards to draw")
	}
	r.DrawnCard = c
	closeZapWindow(r)
	r.BumpVersion()
	e.recordSnapshotHistory()

	e.notify(Event{Kind: EventCardDrawn, RoomCode: r.Code, TargetIndex: p.Index, Card: c.Code(), DeckSize: p.Deck.Len()})
	oppIdx := 1 - p.Index
	if r.PlayerByIndex(oppIdx) != nil {
		e.notify(Event{Kind: EventOpponentDrew, RoomCode: r.Code, TargetIndex: oppIdx, PlayerIndex: p.Index, DeckSize: p.Deck.Len()})
	}
	return nil
}

// recycleDiscard implements the deck recycle policy (spec.md §4.3,
// resolved in SPEC_FULL.md §4.10): every discard card except the current
// top is reversed back into the (empty) deck, so the oldest discarded card
// becomes the next one drawn. Returns false if there are fewer than two
// discard cards to work with.
func recycleDiscard(p *Player) bool {
	if p.Discard.Len() < 2 {
		return false
	}
	top, _ := p.Discard.Pop()
	rest := p.Discard
	p.Discard = card.Stack{top}
	for j := len(rest) - 1; j >= 0; j-- {
		p.Deck.Push(rest[j])
	}
	return true
}

// handlePlayCard implements the play_card intent (spec.md §4.3).
func (e *Engine) handlePlayCard(i Intent) error {
	r := e.room
	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	p := r.PlayerBySession(i.SessionID)
	if p == nil {
		return ErrUnknownSession
	}
	if p.Index != r.CurrentPlayer {
		return ErrOutOfTurn
	}

	var c card.Card
	switch i.FromType {
	case SourceDrawn:
		if r.DrawnCard == card.CardInvalid {
			return invalidMove("no drawn card")
		}
		c = r.DrawnCard
	case SourceCenter:
		if i.FromIdx < 0 || i.FromIdx >= len(r.CenterPiles) {
			return invalidMove("center index out of range")
		}
		c = r.CenterPiles[i.FromIdx].Top()
		if c == card.CardInvalid {
			return invalidMove("center pile is empty")
		}
	default:
		return invalidMove("unknown source")
	}

	var kind string
	switch i.ToType {
	case DestFoundation:
		if i.ToIdx < 0 || i.ToIdx >= len(r.Foundations) {
			return invalidMove("foundation index out of range")
		}
		f := r.Foundations[i.ToIdx]
		if !card.CanPlaceOnFoundation(c, f.Suit, f.Cards.Top()) {
			return invalidMove("illegal foundation placement")
		}
		kind = "foundation"
	case DestCenter:
		if i.ToIdx < 0 || i.ToIdx >= len(r.CenterPiles) {
			return invalidMove("center index out of range")
		}
		if i.FromType == SourceCenter && i.FromIdx == i.ToIdx {
			return invalidMove("source and destination are the same pile")
		}
		if !card.CanPlaceOnCenter(c, r.CenterPiles[i.ToIdx].Top()) {
			return invalidMove("illegal center placement")
		}
		kind = "center"
	case DestOpponentDiscard:
		opp := r.OpponentOfCurrent()
		if opp == nil || !card.CanPlaceOnOpponentDiscard(c, opp.Discard.Top()) {
			return invalidMove("illegal opponent discard placement")
		}
		kind = "opponentDiscard"
	case DestOwnDiscard:
		if i.FromType != SourceDrawn {
			return invalidMove("ownDiscard requires the drawn card")
		}
		kind = "ownDiscard"
	default:
		return invalidMove("unknown destination")
	}

	// Commit: remove from source.
	switch i.FromType {
	case SourceDrawn:
		r.DrawnCard = card.CardInvalid
	case SourceCenter:
		r.CenterPiles[i.FromIdx].Pop()
	}

	// The act of applying any move closes a prior ZAP window before this
	// move's own effect (spec.md §4.3 tie-break rule).
	closeZapWindow(r)

	switch i.ToType {
	case DestFoundation:
		r.Foundations[i.ToIdx].Cards.Push(c)
		r.ZapActive = true
		r.ZapDeadline = time.Now().Add(zapWindowDuration)
	case DestCenter:
		r.CenterPiles[i.ToIdx].Push(c)
	case DestOpponentDiscard:
		r.OpponentOfCurrent().Discard.Push(c)
	case DestOwnDiscard:
		p.Discard.Push(c)
	}
	r.LastMoveCard = c
	r.LastMoveKind = kind

	if i.ToType == DestOwnDiscard {
		r.HasMovedThisTurn = false
		r.CurrentPlayer = 1 - r.CurrentPlayer
		r.TurnStartedAt = time.Now()
	} else {
		r.HasMovedThisTurn = true
	}

	r.BumpVersion()

	if r.CheckAllFoundationsComplete() {
		r.Phase = PhaseFinished
		r.Winner = p.Index
	}

	e.broadcastStateUpdate(&LastMoveInfo{Card: c.Code(), Kind: kind})
	if r.Phase == PhaseFinished {
		e.broadcastGameOver("All foundations complete")
		e.requestDispose()
	}
	return nil
}

// handleSequenceMove implements the sequence_move intent (spec.md §4.3): a
// contiguous, valid run is spliced from one center pile onto another.
func (e *Engine) handleSequenceMove(i Intent) error {
	r := e.room
	if r.Phase != PhasePlaying {
		return ErrNotPlaying
	}
	p := r.PlayerBySession(i.SessionID)
	if p == nil {
		return ErrUnknownSession
	}
	if p.Index != r.CurrentPlayer {
		return ErrOutOfTurn
	}
	if i.FromCenter < 0 || i.FromCenter >= len(r.CenterPiles) || i.ToCenter < 0 || i.ToCenter >= len(r.CenterPiles) {
		return invalidMove("center index out of range")
	}
	if i.FromCenter == i.ToCenter {
		return invalidMove("source and destination piles must be distinct")
	}
	src := r.CenterPiles[i.FromCenter]
	if i.FromCardIndex < 0 || i.FromCardIndex >= len(src) {
		return invalidMove("card index out of range")
	}
	run := src[i.FromCardIndex:]
	if !card.ValidRun(card.Stack(run)) {
		return invalidMove("not a valid descending, alternating-color run")
	}
	if !card.CanPlaceOnCenter(run[0], r.CenterPiles[i.ToCenter].Top()) {
		return invalidMove("run cannot be placed on destination pile")
	}

	moved, ok := r.CenterPiles[i.FromCenter].SplitFrom(i.FromCardIndex)
	if !ok {
		return invalidMove("card index out of range")
	}
	r.CenterPiles[i.ToCenter].PushAll(moved)

	closeZapWindow(r)
	r.LastMoveCard = moved.Top()
	r.LastMoveKind = "sequence"
	r.HasMovedThisTurn = true
	r.BumpVersion()

	e.broadcastStateUpdate(&LastMoveInfo{Card: moved.Top().Code(), Kind: "sequence"})
	return nil
}

// handleZap implements the zap intent (spec.md §4.3).
func (e *Engine) handleZap(i Intent) error {
	r := e.room
	if !r.ZapActive {
		return ErrNoZapWindow
	}
	p := r.PlayerBySession(i.SessionID)
	if p == nil {
		return ErrUnknownSession
	}
	if p.Index == r.CurrentPlayer {
		return invalidMove("the current player cannot zap their own move")
	}
	if time.Now().After(r.ZapDeadline) {
		r.ZapActive = false
		return ErrNoZapWindow
	}

	target := r.CurrentPlayerRecord()
	ApplyZapPenalty(target)
	r.ZapActive = false
	r.BumpVersion()

	e.broadcastStateUpdate(nil)
	return nil
}

// ApplyZapPenalty moves up to zapPenaltyCards cards from the top of p's own
// discard back onto p's own deck, preserving LIFO order: the card that was
// on top of the discard becomes the new top of the deck.
func ApplyZapPenalty(p *Player) {
	n := zapPenaltyCards
	if p.Discard.Len() < n {
		n = p.Discard.Len()
	}
	moved := make(card.Stack, 0, n)
	for j := 0; j < n; j++ {
		c, ok := p.Discard.Pop()
		if !ok {
			break
		}
		moved = append(moved, c)
	}
	for j := len(moved) - 1; j >= 0; j-- {
		p.Deck.Push(moved[j])
	}
}

// handleRequestState implements request_state: it never fails and never
// mutates state. If the requester supplies a BaseVersion still present in
// its seat's delta ring, the response is a Delta against it; otherwise a
// full Snapshot is sent (always true for a client's very first request).
func (e *Engine) handleRequestState(i Intent) error {
	r := e.room
	p := r.PlayerBySession(i.SessionID)
	if p == nil {
		return nil
	}
	current := buildSnapshot(r, p.Index)
	if i.BaseVersion != 0 {
		if delta, ok := e.history[p.Index].buildDelta(i.BaseVersion, current); ok {
			e.notify(Event{Kind: EventStateUpdate, RoomCode: r.Code, TargetIndex: p.Index, Delta: &delta})
			return nil
		}
	}
	e.notify(Event{Kind: EventStateUpdate, RoomCode: r.Code, TargetIndex: p.Index, Snapshot: &current})
	return nil
}

// handleOnLeave implements the synthetic on_leave intent (spec.md §5).
func (e *Engine) handleOnLeave(i Intent) error {
	r := e.room
	p := r.PlayerBySession(i.SessionID)
	if p == nil {
		return nil
	}
	p.Connected = false
	e.notify(Event{Kind: EventPlayerLeft, RoomCode: r.Code, TargetIndex: -1, PlayerID: i.SessionID})

	switch r.Phase {
	case PhaseWaiting:
		e.requestDispose()
	case PhasePlaying:
		r.Phase = PhaseFinished
		r.Winner = 1 - p.Index
		r.BumpVersion()
		e.recordSnapshotHistory()
		e.broadcastGameOver("Opponent disconnected")
		e.requestDispose()
	}
	return nil
}

// handleJoinGuest seats the second player, deals, and starts the game.
func (e *Engine) handleJoinGuest(i Intent) error {
	r := e.room
	if r.Phase != PhaseWaiting {
		return invalidMove("room already in progress")
	}
	if r.IsFull() {
		return invalidMove("room is full")
	}
	r.seatGuest(i.SessionID, i.guestName, e.rng)
	e.recordSnapshotHistory()

	e.notify(Event{Kind: EventPlayerJoined, RoomCode: r.Code, TargetIndex: -1, PlayerID: i.SessionID})
	for seat := 0; seat < 2; seat++ {
		snap := buildSnapshot(r, seat)
		e.notify(Event{Kind: EventGameStarted, RoomCode: r.Code, TargetIndex: seat, Snapshot: &snap})
	}
	return nil
}
