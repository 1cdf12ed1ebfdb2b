package room

import (
	"testing"

	"duotaire/card"
)

func TestRecycleDiscardReversesOrderPreservingTop(t *testing.T) {
	p := &Player{
		Discard: card.Stack{
			card.New(card.Spade, 2),  // oldest
			card.New(card.Heart, 3),
			card.New(card.Club, 4), // top (showing)
		},
	}
	if ok := recycleDiscard(p); !ok {
		t.Fatalf("expected recycle to succeed with 3 discard cards")
	}
	if p.Discard.Len() != 1 || p.Discard.Top().Code() != "4C" {
		t.Fatalf("expected discard to retain only its former top, got %v", stackCodes(p.Discard))
	}
	// The oldest discarded card (2S) becomes the next one drawn, i.e. the
	// top of the deck.
	if got := p.Deck.Top().Code(); got != "2S" {
		t.Fatalf("expected 2S on top of recycled deck, got %s", got)
	}
	if p.Deck.Len() != 2 {
		t.Fatalf("expected 2 cards recycled into the deck, got %d", p.Deck.Len())
	}
}

func TestRecycleDiscardFailsWithFewerThanTwoCards(t *testing.T) {
	one := &Player{Discard: card.Stack{card.New(card.Spade, 5)}}
	if recycleDiscard(one) {
		t.Fatalf("expected recycle to fail with only 1 discard card")
	}
	zero := &Player{}
	if recycleDiscard(zero) {
		t.Fatalf("expected recycle to fail with 0 discard cards")
	}
}

func TestDrawCardRecyclesWhenDeckEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.JoinGuest("guest-session", "Guest"); err != nil {
		t.Fatalf("JoinGuest err: %v", err)
	}
	e.room.Players[0].Deck = nil
	e.room.Players[0].Discard = card.Stack{
		card.New(card.Spade, 9),
		card.New(card.Heart, 10),
		card.New(card.Club, 11),
	}

	if err := e.SubmitIntent(Intent{Kind: IntentDrawCard, SessionID: "host-session"}); err != nil {
		t.Fatalf("draw_card err: %v", err)
	}
	// JC stays on the discard as its top; 9S, the oldest recycled card, is
	// the next one drawn.
	if e.room.DrawnCard.Code() != "9S" {
		t.Fatalf("expected drawn card 9S (the oldest recycled discard), got %s", e.room.DrawnCard.Code())
	}
}

func TestDrawCardFailsWithEmptyDeckAndSingleDiscard(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.JoinGuest("guest-session", "Guest"); err != nil {
		t.Fatalf("JoinGuest err: %v", err)
	}
	e.room.Players[0].Deck = nil
	e.room.Players[0].Discard = card.Stack{card.New(card.Spade, 9)}

	if err := e.SubmitIntent(Intent{Kind: IntentDrawCard, SessionID: "host-session"}); err == nil {
		t.Fatalf("expected draw_card to fail with only one discard card and an empty deck")
	}
}

func TestPlayCardRejectsDoubleSubmission(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.JoinGuest("guest-session", "Guest"); err != nil {
		t.Fatalf("JoinGuest err: %v", err)
	}
	e.room.Players[0].Deck = card.Stack{card.New(card.Spade, 2), card.New(card.Spade, 1)}
	if err := e.SubmitIntent(Intent{Kind: IntentDrawCard, SessionID: "host-session"}); err != nil {
		t.Fatalf("draw_card err: %v", err)
	}
	in := Intent{Kind: IntentPlayCard, SessionID: "host-session", FromType: SourceDrawn, ToType: DestFoundation, ToIdx: 0}
	if err := e.SubmitIntent(in); err != nil {
		t.Fatalf("first play_card err: %v", err)
	}
	// Resubmitting the identical intent is a no-op: the precondition
	// (drawnCard present) no longer holds.
	versionBefore := e.room.StateVersion
	if err := e.SubmitIntent(in); err == nil {
		t.Fatalf("expected the replayed play_card to fail its precondition")
	}
	if e.room.StateVersion != versionBefore {
		t.Fatalf("expected stateVersion unchanged by the replayed intent")
	}
}

func TestWinDetectionOnAllFoundationsComplete(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.JoinGuest("guest-session", "Guest"); err != nil {
		t.Fatalf("JoinGuest err: %v", err)
	}
	for i, s := range card.Suits {
		maxRank := byte(13)
		if i == 0 {
			// Foundation 0 (Spade) is left one card short of complete; the
			// test plays the missing King to trigger the win.
			maxRank = 12
		}
		cards := make(card.Stack, 0, maxRank)
		for rank := byte(1); rank <= maxRank; rank++ {
			cards = append(cards, card.New(s, rank))
		}
		e.room.Foundations[i].Cards = cards
	}
	// Give seat 0 the last king of spades as their drawn card and play it.
	e.room.DrawnCard = card.New(card.Spade, 13)
	if err := e.SubmitIntent(Intent{
		Kind: IntentPlayCard, SessionID: "host-session",
		FromType: SourceDrawn, ToType: DestFoundation, ToIdx: 0,
	}); err != nil {
		t.Fatalf("play_card err: %v", err)
	}
	if e.room.Phase != PhaseFinished {
		t.Fatalf("expected phase finished once all foundations complete")
	}
	if e.room.Winner != 0 {
		t.Fatalf("expected winner seat 0, got %d", e.room.Winner)
	}
}
