package gateway

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"duotaire/internal/room"
)

func TestEventTypeNameCoversEveryKind(t *testing.T) {
	cases := map[room.EventKind]string{
		room.EventGameStarted:  "game_started",
		room.EventPlayerJoined: "player_joined",
		room.EventStateUpdate:  "state_update",
		room.EventCardDrawn:    "card_drawn",
		room.EventOpponentDrew: "opponent_drew",
		room.EventGameOver:     "game_over",
		room.EventPlayerLeft:   "player_left",
		room.EventError:        "error",
	}
	for kind, want := range cases {
		if got := eventTypeName(kind); got != want {
			t.Fatalf("eventTypeName(%v) = %q, want %q", kind, got, want)
		}
	}
}

func TestBuildOutboundCarriesEventFields(t *testing.T) {
	snap := &room.Snapshot{RoomCode: "ABCDEF", Phase: "playing"}
	ev := room.Event{
		Kind:        room.EventCardDrawn,
		RoomCode:    "ABCDEF",
		TargetIndex: 0,
		Snapshot:    snap,
		Card:        "AS",
		DeckSize:    20,
		PlayerIndex: 0,
	}

	got := buildOutbound(ev)
	want := outboundMessage{
		Type:        "card_drawn",
		RoomCode:    "ABCDEF",
		State:       snap,
		Card:        "AS",
		DeckSize:    20,
		PlayerIndex: 0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("buildOutbound mismatch (-want +got):\n%s", diff)
	}
}

func TestIsCriticalEventOnlyGameStartedAndGameOver(t *testing.T) {
	for kind := room.EventGameStarted; kind <= room.EventError; kind++ {
		want := kind == room.EventGameStarted || kind == room.EventGameOver
		if got := isCriticalEvent(kind); got != want {
			t.Fatalf("isCriticalEvent(%v) = %v, want %v", kind, got, want)
		}
	}
}

func TestParseSourceType(t *testing.T) {
	if got := parseSourceType("center"); got != room.SourceCenter {
		t.Fatalf("parseSourceType(center) = %v, want SourceCenter", got)
	}
	if got := parseSourceType("drawn"); got != room.SourceDrawn {
		t.Fatalf("parseSourceType(drawn) = %v, want SourceDrawn", got)
	}
	if got := parseSourceType(""); got != room.SourceDrawn {
		t.Fatalf("parseSourceType(\"\") = %v, want SourceDrawn default", got)
	}
}

func TestParseDestType(t *testing.T) {
	cases := map[string]room.DestType{
		"foundation":      room.DestFoundation,
		"center":          room.DestCenter,
		"opponentDiscard": room.DestOpponentDiscard,
		"ownDiscard":      room.DestOwnDiscard,
		"":                room.DestCenter,
	}
	for in, want := range cases {
		if got := parseDestType(in); got != want {
			t.Fatalf("parseDestType(%q) = %v, want %v", in, got, want)
		}
	}
}
