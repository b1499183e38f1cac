package live

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

type connection struct {
	operatorID int64
	conn       *websocket.Conn
	send       chan []byte
	topics     map[string]bool
}

// Hub fans progress events out to websocket clients by topic.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	closed      bool
	log         *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		connections: make(map[*connection]struct{}),
		log:         log,
	}
}

func (h *Hub) register(c *connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.connections[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
}

// Publish sends an event to every client subscribed to topic. Slow clients
// drop events rather than block the publisher.
func (h *Hub) Publish(topic string, event *Event) int {
	event.Topic = topic
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("live event marshal failed", zap.String("topic", topic), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.connections {
		if !c.topics[topic] {
			continue
		}
		select {
		case c.send <- data:
			delivered++
		default:
			h.log.Debug("live client too slow, event dropped", zap.Int64("operator_id", c.operatorID), zap.String("topic", topic))
		}
	}
	return delivered
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*connection, 0, len(h.connections))
	for c := range h.connections {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.conn.Close()
	}
}

// ServeWS runs the read and write loops for conn; it blocks until the client
// disconnects or the hub is closed.
func (h *Hub) ServeWS(conn *websocket.Conn, operatorID int64) {
	c := &connection{
		operatorID: operatorID,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		topics:     make(map[string]bool),
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	h.log.Debug("live client connected", zap.Int64("operator_id", operatorID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(c)
	}()
	h.readPump(c)
	<-done
	h.log.Debug("live client disconnected", zap.Int64("operator_id", operatorID))
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Debug("live read error", zap.Int64("operator_id", c.operatorID), zap.Error(err))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.reply(c, errorEvent("INVALID_JSON"))
			continue
		}

		switch msg.Type {
		case "subscribe":
			if !validTopic(msg.Topic) {
				h.reply(c, errorEvent("INVALID_TOPIC"))
				continue
			}
			h.mu.Lock()
			c.topics[msg.Topic] = true
			h.mu.Unlock()
			h.reply(c, &Event{Type: EventSubscribed, Topic: msg.Topic})
		case "unsubscribe":
			h.mu.Lock()
			delete(c.topics, msg.Topic)
			h.mu.Unlock()
			h.reply(c, &Event{Type: EventUnsubscribed, Topic: msg.Topic})
		case "ping":
			h.reply(c, &Event{Type: EventPong})
		default:
			h.reply(c, errorEvent("UNKNOWN_TYPE"))
		}
	}
}

func (h *Hub) reply(c *connection, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func validTopic(topic string) bool {
	for _, prefix := range []string{"delivery_note:", "order:", "project:"} {
		if rest, ok := strings.CutPrefix(topic, prefix); ok && rest != "" {
			return true
		}
	}
	return false
}
