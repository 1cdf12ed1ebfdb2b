package gateway

import (
	"encoding/json"
	"testing"

	"duotaire/internal/matchmaking"
	"duotaire/internal/registry"
	"duotaire/internal/room"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	reg := registry.New()
	t.Cleanup(reg.Stop)
	mm := matchmaking.New(reg)
	return New(reg, mm)
}

func newTestConnection(g *Gateway, id string) *Connection {
	return &Connection{
		ID:        id,
		SessionID: id,
		Send:      make(chan []byte, 2),
		Gateway:   g,
	}
}

func TestSendDropsNonCriticalUnderBackPressure(t *testing.T) {
	g := newTestGateway(t)
	c := newTestConnection(g, "conn-1")

	c.send([]byte("a"), false)
	c.send([]byte("b"), false)
	c.send([]byte("c"), false) // buffer is full (cap 2), dropped since non-critical

	if len(c.Send) != 2 {
		t.Fatalf("expected buffer to stay at 2, got %d", len(c.Send))
	}
	first := <-c.Send
	if string(first) != "a" {
		t.Fatalf("expected oldest message preserved, got %q", first)
	}
}

func TestSendEvictsOldestForCriticalUnderBackPressure(t *testing.T) {
	g := newTestGateway(t)
	c := newTestConnection(g, "conn-1")

	c.send([]byte("a"), false)
	c.send([]byte("b"), false)
	c.send([]byte("critical"), true) // buffer full, must not be dropped

	if len(c.Send) != 2 {
		t.Fatalf("expected buffer to stay at 2, got %d", len(c.Send))
	}
	first := <-c.Send
	second := <-c.Send
	if string(first) != "b" {
		t.Fatalf("expected the oldest message to have been evicted, got %q first", first)
	}
	if string(second) != "critical" {
		t.Fatalf("expected the critical message to survive eviction, got %q as last queued", second)
	}
}

func TestBindSeatAndConnAtRouteCorrectly(t *testing.T) {
	g := newTestGateway(t)
	host := newTestConnection(g, "host")
	guest := newTestConnection(g, "guest")

	g.bindSeat("ABCDEF", 0, host)
	g.bindSeat("ABCDEF", 1, guest)

	if g.connAt("ABCDEF", 0) != host {
		t.Fatalf("expected seat 0 to route to host")
	}
	if g.connAt("ABCDEF", 1) != guest {
		t.Fatalf("expected seat 1 to route to guest")
	}
	if g.connAt("ABCDEF", 2) != nil {
		t.Fatalf("expected an out-of-range seat to return nil")
	}

	g.unbindSeat("ABCDEF", host)
	if g.connAt("ABCDEF", 0) != nil {
		t.Fatalf("expected seat 0 to be cleared after unbind")
	}
	if g.connAt("ABCDEF", 1) != guest {
		t.Fatalf("expected seat 1 to be untouched by unbinding seat 0")
	}
}

func TestOnRoomEventRoutesByTargetIndex(t *testing.T) {
	g := newTestGateway(t)
	host := newTestConnection(g, "host")
	guest := newTestConnection(g, "guest")
	g.bindSeat("ABCDEF", 0, host)
	g.bindSeat("ABCDEF", 1, guest)

	g.onRoomEvent(room.Event{Kind: room.EventCardDrawn, RoomCode: "ABCDEF", TargetIndex: 0, Card: "AS"})

	select {
	case data := <-host.Send:
		var msg outboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Card != "AS" {
			t.Fatalf("expected card AS, got %q", msg.Card)
		}
	default:
		t.Fatalf("expected host to receive the targeted event")
	}

	if len(guest.Send) != 0 {
		t.Fatalf("expected guest to receive nothing for a seat-targeted event")
	}
}

func TestOnRoomEventBroadcastsToBothSeats(t *testing.T) {
	g := newTestGateway(t)
	host := newTestConnection(g, "host")
	guest := newTestConnection(g, "guest")
	g.bindSeat("ABCDEF", 0, host)
	g.bindSeat("ABCDEF", 1, guest)

	g.onRoomEvent(room.Event{Kind: room.EventGameOver, RoomCode: "ABCDEF", TargetIndex: -1, Winner: 0})

	if len(host.Send) != 1 || len(guest.Send) != 1 {
		t.Fatalf("expected both seats to receive the broadcast event")
	}
}
