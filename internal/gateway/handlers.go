package gateway

import (
	"duotaire/internal/registry"
	"duotaire/internal/room"
)

// handleFrame dispatches a decoded inboundFrame to the matching handler,
// per spec.md §6's inbound message table.
func (c *Connection) handleFrame(f inboundFrame) {
	switch f.Type {
	case "create_room":
		c.handleCreateRoom(f)
	case "join_room":
		c.handleJoinRoom(f)
	case "leave_room":
		c.handleLeaveRoom()
	case "find_match":
		c.handleFindMatch(f)
	case "cancel_matchmaking":
		c.Gateway.mm.CancelMatchmaking(c.SessionID)
		c.sendMessage(outboundMessage{Type: "matchmaking_cancelled"})
	case "draw_card":
		c.submitRoomIntent(room.Intent{Kind: room.IntentDrawCard, SessionID: c.SessionID})
	case "play_card":
		c.submitRoomIntent(room.Intent{
			Kind:      room.IntentPlayCard,
			SessionID: c.SessionID,
			FromType:  parseSourceType(f.FromType),
			FromIdx:   f.FromIndex,
			ToType:    parseDestType(f.ToType),
			ToIdx:     f.ToIndex,
		})
	case "sequence_move":
		c.submitRoomIntent(room.Intent{
			Kind:          room.IntentSequenceMove,
			SessionID:     c.SessionID,
			FromCenter:    f.FromCenter,
			FromCardIndex: f.FromCardIndex,
			ToCenter:      f.ToCenter,
		})
	case "zap":
		c.submitRoomIntent(room.Intent{Kind: room.IntentZap, SessionID: c.SessionID})
	case "request_state":
		c.submitRoomIntent(room.Intent{Kind: room.IntentRequestState, SessionID: c.SessionID, BaseVersion: f.BaseVersion})
	default:
		c.sendError("unknown message type: " + f.Type)
	}
}

func (c *Connection) handleCreateRoom(f inboundFrame) {
	if _, _, engine := c.roomState(); engine != nil {
		c.sendError("already in a room")
		return
	}

	name := f.PlayerName
	if name == "" {
		name = "Host"
	}

	engine, err := c.Gateway.reg.CreateRoom(c.SessionID, name, room.Config{}, c.Gateway.onRoomEvent)
	if err != nil {
		c.sendError("could not create room: " + err.Error())
		return
	}
	c.bindRoom(engine.Code(), 0, true, engine)
	c.sendMessage(outboundMessage{Type: "room_created", RoomCode: engine.Code(), PlayerID: c.SessionID})
}

func (c *Connection) handleJoinRoom(f inboundFrame) {
	if _, _, engine := c.roomState(); engine != nil {
		c.sendError("already in a room")
		return
	}

	engine, err := c.Gateway.reg.JoinByCode(f.RoomCode)
	if err != nil {
		if err == registry.ErrUnknownCode {
			c.sendError("no room with that code")
		} else {
			c.sendError("could not join room: " + err.Error())
		}
		return
	}

	name := f.PlayerName
	if name == "" {
		name = "Guest"
	}
	if err := engine.JoinGuest(c.SessionID, name); err != nil {
		c.sendError("could not join room: " + err.Error())
		return
	}
	c.bindRoom(engine.Code(), 1, false, engine)
	c.sendMessage(outboundMessage{Type: "room_joined", RoomCode: engine.Code(), PlayerID: c.SessionID})
}

func (c *Connection) handleLeaveRoom() {
	code, _, engine := c.roomState()
	if engine == nil {
		return
	}
	engine.OnLeave(c.SessionID)
	c.Gateway.unbindSeat(code, c)
	c.Gateway.checkDispose(code, engine)

	c.mu.Lock()
	c.RoomCode = ""
	c.Engine = nil
	c.mu.Unlock()
}

func (c *Connection) handleFindMatch(f inboundFrame) {
	if _, _, engine := c.roomState(); engine != nil {
		c.sendError("already in a room")
		return
	}

	name := f.PlayerName
	if name == "" {
		name = "Player"
	}

	bind := func(engine *room.Engine) {
		c.bindRoom(engine.Code(), 0, true, engine)
	}
	result, err := c.Gateway.mm.FindMatch(c.SessionID, name, c.alive, bind, room.Config{}, c.Gateway.onRoomEvent)
	if err != nil {
		c.sendError("could not find a match: " + err.Error())
		return
	}
	if result.Enqueued {
		c.sendMessage(outboundMessage{Type: "matchmaking_waiting", QueuePosition: result.QueuePosition})
		return
	}

	c.bindRoom(result.Engine.Code(), 1, false, result.Engine)
	c.sendMessage(outboundMessage{Type: "room_joined", RoomCode: result.Engine.Code(), PlayerID: c.SessionID})
}

// alive reports whether c is still the live connection for its session, for
// matchmaking.Waiter.Alive.
func (c *Connection) alive() bool {
	c.Gateway.mu.Lock()
	_, ok := c.Gateway.connections[c.ID]
	c.Gateway.mu.Unlock()
	return ok
}

// submitRoomIntent forwards a gameplay intent to the bound room, if any,
// reporting any rejection back to the sender as an error frame.
func (c *Connection) submitRoomIntent(in room.Intent) {
	_, _, engine := c.roomState()
	if engine == nil {
		c.sendError("not currently in a room")
		return
	}
	if err := engine.SubmitIntent(in); err != nil {
		c.sendError(err.Error())
	}
}
