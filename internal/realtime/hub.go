package realtime

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/events"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
)

const (
	broadcastBuffer = 64
	writeTimeout    = 3 * time.Second
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Hub fans complaint events out to connected consoles.
type Hub struct {
	register   chan Conn
	unregister chan Conn
	broadcast  chan []byte
	done       chan struct{}
	clients    map[Conn]bool
	count      atomic.Int64

	logger  *zap.Logger
	metrics *observability.Metrics
}

// Message is the JSON frame sent to clients.
type Message struct {
	Type      events.EventType `json:"type"`
	SubjectID string           `json:"complaint_id"`
	Actor     events.Actor     `json:"actor"`
	Timestamp time.Time        `json:"timestamp"`
	Data      interface{}      `json:"data"`
}

// NewHub builds an idle hub; call Run to start it.
func NewHub(logger *zap.Logger, metrics *observability.Metrics) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan Conn),
		unregister: make(chan Conn),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[Conn]bool),
		logger:     logger,
		metrics:    metrics,
	}
}

// Run owns the client set until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				_ = c.Close()
				delete(h.clients, c)
			}
			h.setCount()
			return
		case c := <-h.register:
			h.clients[c] = true
			h.setCount()
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				_ = c.Close()
				h.setCount()
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.logger.Debug("dropping live-feed client", zap.Error(err))
					delete(h.clients, c)
					_ = c.Close()
				}
			}
			h.setCount()
		}
	}
}

// Register adds a connection. It is a no-op once the hub stopped.
func (h *Hub) Register(c Conn) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(c Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a frame for every client. Frames are dropped when the queue is full.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		h.logger.Warn("live-feed queue full; frame dropped")
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// HandleEvent is an events.EventHandler pushing complaint events to clients.
func (h *Hub) HandleEvent(_ context.Context, event events.Event) error {
	frame, err := json.Marshal(Message{
		Type:      event.Type,
		SubjectID: event.SubjectID,
		Actor:     event.Actor,
		Timestamp: event.Timestamp,
		Data:      event.Payload,
	})
	if err != nil {
		return err
	}
	h.Broadcast(frame)
	return nil
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	h.metrics.SetWSClients(len(h.clients))
}
