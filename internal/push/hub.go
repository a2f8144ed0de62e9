package push

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"bookhub/internal/metrics"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow all origins (configure in prod)
}

// Event is a real-time booking event pushed to a connected user.
type Event struct {
	Type      string `json:"type"`
	BookingID int64  `json:"booking_id"`
	Message   string `json:"message"`
}

const EventBookingUpdate = "booking_update"

// connection represents a single WebSocket client
type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub manages active connections by user id. Delivery is at-most-once:
// no connection means no delivery, a slow client loses the event.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64]*connection // userID -> connection
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*connection),
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.connections[c.userID]; ok {
		close(existing.send)
	}
	h.connections[c.userID] = c
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.connections[c.userID]; ok && existing == c {
		delete(h.connections, c.userID)
		close(c.send)
	}
}

// Notify pushes a booking event to the receiver if connected. Absence
// of a live connection is silently ignored.
func (h *Hub) Notify(receiverID int64, message string, bookingID int64) {
	data, err := json.Marshal(&Event{
		Type:      EventBookingUpdate,
		BookingID: bookingID,
		Message:   message,
	})
	if err != nil {
		return
	}

	// The read lock is held across the send: register closes a replaced
	// connection's channel only under the write lock, so the channel
	// cannot be closed mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.connections[receiverID]
	if !ok {
		return
	}

	select {
	case c.send <- data:
		metrics.IncPush(true)
	default:
		// Client too slow — skip
		metrics.IncPush(false)
	}
}

// Upgrade upgrades the request and runs the connection loops, blocking
// until the client disconnects.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, userID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.serve(conn, userID)
	return nil
}

func (h *Hub) serve(conn *websocket.Conn, userID int64) {
	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 256),
	}

	h.register(c)

	go h.writePump(c)
	h.readPump(c) // blocks until disconnect
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Clients only listen; inbound frames are drained for pong handling.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
