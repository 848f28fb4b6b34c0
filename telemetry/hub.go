// Package telemetry streams a running physics.World's body transforms to
// connected websocket clients after every step. SPEC_FULL.md §3 frames this
// as the concrete edge the spec's "debug drawing is out of scope" boundary
// draws: the hub ships positions, not pixels, leaving rendering to whatever
// is on the other end of the socket.
package telemetry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bresilla/muli/physics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeTimeout = 5 * time.Second

// BodySnapshot is the wire shape of one body's state in a Frame.
type BodySnapshot struct {
	ID       uint32  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Angle    float64 `json:"angle"`
	Sleeping bool    `json:"sleeping"`
}

// Frame is one JSON message broadcast to every connected client.
type Frame struct {
	WorldID string         `json:"worldId"`
	Step    uint64         `json:"step"`
	Bodies  []BodySnapshot `json:"bodies"`
}

// client wraps one accepted websocket connection and its outbound queue,
// following the common gorilla/websocket hub pattern of a buffered send
// channel drained by a single writer goroutine per connection.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frames produced by Broadcast out to every registered client. It
// holds no reference to a physics.World directly — the caller drives
// Broadcast once per World.Step, keeping the CORE free of any telemetry
// dependency per SPEC_FULL.md §2.
type Hub struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]*client
	step    uint64
}

// NewHub builds an empty Hub. A nil logger falls back to slog.Default().
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{log: log, clients: make(map[uuid.UUID]*client)}
}

// ServeHTTP upgrades the request to a websocket and registers the resulting
// connection as a client until it disconnects or its send queue overflows.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("telemetry.upgrade failed", "err", err)
		return
	}
	c := &client{id: uuid.New(), conn: conn, send: make(chan []byte, 16)}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Info("telemetry.client connected", "client", c.id)

	go h.writePump(c)
	go h.readPump(c)
}

// readPump drains (and discards) any client messages purely to detect
// disconnects, the minimal reader a gorilla/websocket server side needs to
// notice a closed connection.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
	h.log.Info("telemetry.client disconnected", "client", c.id)
}

// Broadcast snapshots w's bodies into one Frame and pushes it, as JSON, to
// every connected client. A client whose send queue is already full is
// dropped rather than blocking the simulation loop on a slow reader.
func (h *Hub) Broadcast(w *physics.World) {
	h.step++
	bodies := w.Bodies()
	frame := Frame{WorldID: w.ID(), Step: h.step, Bodies: make([]BodySnapshot, len(bodies))}
	for i, b := range bodies {
		t := b.Transform()
		frame.Bodies[i] = BodySnapshot{
			ID:       b.ID(),
			X:        t.Position.X,
			Y:        t.Position.Y,
			Angle:    t.Rotation.Angle(),
			Sleeping: b.IsSleeping(),
		}
	}

	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("telemetry.marshal failed", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Error("telemetry.client send queue full, dropping", "client", id)
			delete(h.clients, id)
			close(c.send)
		}
	}
}

// Clients reports the number of currently connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
