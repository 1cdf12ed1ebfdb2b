// Package gateway implements the Connection Adapter (C7): it translates
// inbound WebSocket frames into room.Intent values and serializes outbound
// room.Event values back to JSON frames.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"duotaire/internal/matchmaking"
	"duotaire/internal/registry"
	"duotaire/internal/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	sendBufferSize = 256
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	writeWait      = 10 * time.Second
	maxFrameBytes  = 65536
)

// Connection is a single WebSocket client. SessionID is the opaque
// transport handle spec.md's Player record carries as sessionId.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	Gateway   *Gateway

	mu       sync.Mutex
	RoomCode string
	Engine   *room.Engine
	Seat     int
	IsHost   bool
}

// Gateway owns every live connection and routes room broadcasts to the
// right seat.
type Gateway struct {
	mu          sync.Mutex
	connections map[string]*Connection
	seatConns   map[string][2]*Connection

	reg       *registry.Registry
	mm        *matchmaking.Queue
	startedAt time.Time
}

// New creates a Gateway wired to reg and mm.
func New(reg *registry.Registry, mm *matchmaking.Queue) *Gateway {
	return &Gateway{
		connections: make(map[string]*Connection),
		seatConns:   make(map[string][2]*Connection),
		reg:         reg,
		mm:          mm,
		startedAt:   time.Now(),
	}
}

// HandleWebSocket upgrades the HTTP request and starts the connection's
// read/write pumps.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Gateway] upgrade error: %v", err)
		return
	}

	id := uuid.NewString()
	c := &Connection{
		ID:        id,
		SessionID: id,
		Conn:      conn,
		Send:      make(chan []byte, sendBufferSize),
		Gateway:   g,
	}

	g.mu.Lock()
	g.connections[id] = c
	g.mu.Unlock()

	log.Printf("[Gateway] client connected: %s, total: %d", id, g.connectionCount())

	go c.writePump()
	go c.readPump()
}

func (g *Gateway) connectionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.connections)
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameBytes)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Gateway] read error on %s: %v", c.ID, err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var f inboundFrame
		if err := json.Unmarshal(data, &f); err != nil {
			c.sendError("invalid message format")
			continue
		}
		c.handleFrame(f)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// send enqueues data on the connection's outbound buffer. Under
// back-pressure non-critical messages are dropped; a critical message
// instead evicts the oldest queued message to make room (spec.md §5).
func (c *Connection) send(data []byte, critical bool) {
	select {
	case c.Send <- data:
		return
	default:
	}
	if !critical {
		return
	}
	select {
	case <-c.Send:
	default:
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) sendMessage(msg outboundMessage) {
	c.sendMessageCritical(msg, msg.Type == "game_started" || msg.Type == "game_over")
}

func (c *Connection) sendMessageCritical(msg outboundMessage, critical bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Gateway] marshal error for %s: %v", msg.Type, err)
		return
	}
	c.send(data, critical)
}

func (c *Connection) sendError(message string) {
	c.sendMessage(outboundMessage{Type: "error", Message: message})
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	delete(g.connections, c.ID)
	g.mu.Unlock()

	c.mu.Lock()
	engine, code := c.Engine, c.RoomCode
	c.mu.Unlock()

	if engine != nil {
		engine.OnLeave(c.SessionID)
	}
	g.mm.CancelMatchmaking(c.SessionID)
	if code != "" {
		g.unbindSeat(code, c)
		g.checkDispose(code, engine)
	}

	log.Printf("[Gateway] client disconnected: %s, total: %d", c.ID, g.connectionCount())
}

// checkDispose tears the room down via the registry once its engine has
// asked to be disposed (game over, or the host left before a guest ever
// joined) — spec.md §3's lifecycle and §5's "timers cancelled on dispose".
func (g *Gateway) checkDispose(code string, engine *room.Engine) {
	if engine == nil {
		return
	}
	if engine.ShouldDispose() {
		g.reg.Dispose(code)
	}
}

// bindSeat records that seat is currently served by c for room code, so
// onRoomEvent can route broadcasts to it.
func (g *Gateway) bindSeat(code string, seat int, c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	seats := g.seatConns[code]
	seats[seat] = c
	g.seatConns[code] = seats
}

// bindRoom attaches c to engine at seat, both on the connection itself and
// in the gateway's seat routing table.
func (c *Connection) bindRoom(code string, seat int, isHost bool, engine *room.Engine) {
	c.mu.Lock()
	c.RoomCode = code
	c.Seat = seat
	c.IsHost = isHost
	c.Engine = engine
	c.mu.Unlock()
	c.Gateway.bindSeat(code, seat, c)
}

func (c *Connection) roomState() (code string, seat int, engine *room.Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.RoomCode, c.Seat, c.Engine
}

func (g *Gateway) unbindSeat(code string, c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	seats, ok := g.seatConns[code]
	if !ok {
		return
	}
	for i, existing := range seats {
		if existing == c {
			seats[i] = nil
		}
	}
	g.seatConns[code] = seats
}

func (g *Gateway) connAt(code string, seat int) *Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	if seat < 0 || seat > 1 {
		return nil
	}
	return g.seatConns[code][seat]
}

// onRoomEvent is the single room.Notify callback shared by every room: it
// routes each Event by RoomCode/TargetIndex to the bound Connection(s).
func (g *Gateway) onRoomEvent(ev room.Event) {
	msg := buildOutbound(ev)
	critical := isCriticalEvent(ev.Kind)
	if ev.TargetIndex < 0 {
		for seat := 0; seat < 2; seat++ {
			if c := g.connAt(ev.RoomCode, seat); c != nil {
				c.sendMessageCritical(msg, critical)
			}
		}
	} else if c := g.connAt(ev.RoomCode, ev.TargetIndex); c != nil {
		c.sendMessageCritical(msg, critical)
	}

	if ev.Kind == room.EventGameOver {
		if engine, err := g.reg.JoinByCode(ev.RoomCode); err == nil {
			g.checkDispose(ev.RoomCode, engine)
		}
	}
}
