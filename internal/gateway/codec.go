package gateway

import (
	"duotaire/internal/room"
)

// inboundFrame is the union of every inbound message shape from spec.md §6.
// Fields irrelevant to a given Type are simply left at their zero value.
type inboundFrame struct {
	Type string `json:"type"`

	GameMode   string `json:"game_mode,omitempty"`
	RoomCode   string `json:"room_code,omitempty"`
	PlayerName string `json:"playerName,omitempty"`

	FromType  string `json:"fromType,omitempty"`
	FromIndex int    `json:"fromIndex,omitempty"`
	ToType    string `json:"toType,omitempty"`
	ToIndex   int    `json:"toIndex,omitempty"`

	FromCenter    int `json:"fromCenter,omitempty"`
	FromCardIndex int `json:"fromCardIndex,omitempty"`
	ToCenter      int `json:"toCenter,omitempty"`

	BaseVersion uint64 `json:"baseVersion,omitempty"`
}

// outboundMessage is the union of every outbound message shape. Only the
// fields relevant to Type are populated; `omitempty` keeps the wire frame
// small.
type outboundMessage struct {
	Type string `json:"type"`

	RoomCode      string             `json:"room_code,omitempty"`
	PlayerID      string             `json:"player_id,omitempty"`
	QueuePosition int                `json:"queue_position,omitempty"`
	State         *room.Snapshot     `json:"state,omitempty"`
	Delta         *room.Delta        `json:"delta,omitempty"`
	LastMove      *room.LastMoveInfo `json:"lastMove,omitempty"`
	Card          string             `json:"card,omitempty"`
	DeckSize      int                `json:"deckSize,omitempty"`
	PlayerIndex   int                `json:"playerIndex,omitempty"`
	Winner        int                `json:"winner,omitempty"`
	Reason        string             `json:"reason,omitempty"`
	Message       string             `json:"message,omitempty"`
}

func eventTypeName(k room.EventKind) string {
	switch k {
	case room.EventGameStarted:
		return "game_started"
	case room.EventPlayerJoined:
		return "player_joined"
	case room.EventStateUpdate:
		return "state_update"
	case room.EventCardDrawn:
		return "card_drawn"
	case room.EventOpponentDrew:
		return "opponent_drew"
	case room.EventGameOver:
		return "game_over"
	case room.EventPlayerLeft:
		return "player_left"
	case room.EventError:
		return "error"
	default:
		return "unknown"
	}
}

func buildOutbound(ev room.Event) outboundMessage {
	return outboundMessage{
		Type:        eventTypeName(ev.Kind),
		RoomCode:    ev.RoomCode,
		PlayerID:    ev.PlayerID,
		State:       ev.Snapshot,
		Delta:       ev.Delta,
		LastMove:    ev.LastMove,
		Card:        ev.Card,
		DeckSize:    ev.DeckSize,
		PlayerIndex: ev.PlayerIndex,
		Winner:      ev.Winner,
		Reason:      ev.Reason,
		Message:     ev.Message,
	}
}

// isCriticalEvent reports whether ev must never be dropped under
// back-pressure (spec.md §5: "must never drop a game_over or the initial
// game_started snapshot").
func isCriticalEvent(k room.EventKind) bool {
	return k == room.EventGameStarted || k == room.EventGameOver
}

func parseSourceType(s string) room.SourceType {
	if s == "center" {
		return room.SourceCenter
	}
	return room.SourceDrawn
}

func parseDestType(s string) room.DestType {
	switch s {
	case "foundation":
		return room.DestFoundation
	case "opponentDiscard":
		return room.DestOpponentDiscard
	case "ownDiscard":
		return room.DestOwnDiscard
	default:
		return room.DestCenter
	}
}
