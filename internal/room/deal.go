package room

import (
	"math/rand"
	"time"

	"duotaire/card"
)

// deal shuffles a fresh 52-card deck and distributes it: two cards to each
// of the five center piles (10 cards, dealt pile-by-pile), then 21 cards to
// the host's deck and 21 to the guest's deck. This is a pure function of the
// shuffle order, so replaying the same seed reproduces the same deal.
func deal(r *Room, rng *rand.Rand) {
	deck := card.Deck()
	card.Shuffle(rng, deck)

	idx := 0
	for i := range r.CenterPiles {
		r.CenterPiles[i] = card.Stack{deck[idx], deck[idx+1]}
		idx += 2
	}

	host := r.PlayerByIndex(0)
	guest := r.PlayerByIndex(1)
	host.Deck = append(card.Stack{}, deck[idx:idx+21]...)
	idx += 21
	guest.Deck = append(card.Stack{}, deck[idx:idx+21]...)
	idx += 21
}

// seatGuest seats sessionID/name as the guest (index 1), deals the game, and
// transitions the room to PhasePlaying. Called the moment the second player
// joins.
func (r *Room) seatGuest(sessionID, name string, rng *rand.Rand) {
	r.Players[1] = &Player{
		Index:     1,
		SessionID: sessionID,
		Name:      name,
		Connected: true,
	}
	deal(r, rng)
	r.Phase = PhasePlaying
	r.CurrentPlayer = 0
	r.TurnStartedAt = time.Now()
	r.BumpVersion()
}
