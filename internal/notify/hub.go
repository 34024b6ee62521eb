// Package notify pushes analysis run completions to websocket subscribers.
package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

// RunEvent is the message broadcast after each completed analysis run.
type RunEvent struct {
	RunID           string    `json:"run_id"`
	GeneratedAt     time.Time `json:"generated_at"`
	TotalRecords    int       `json:"total_records"`
	AnalyzedRecords int       `json:"analyzed_records"`
	SlowMoving      int       `json:"slow_moving"`
	Overstocked     int       `json:"overstocked"`
	DeadStock       int       `json:"dead_stock"`
	ErrorCount      int       `json:"error_count"`
}

// Hub owns the subscriber set. All writes happen on the Run goroutine, so
// connections never see concurrent writers.
type Hub struct {
	log      logrus.FieldLogger
	upgrader websocket.Upgrader

	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan RunEvent
	done       chan struct{}
}

// NewHub creates a hub. Run must be started before handling connections.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		register:   make(chan *websocket.Conn, 16),
		unregister: make(chan *websocket.Conn, 16),
		broadcast:  make(chan RunEvent, 64),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	clients := make(map[*websocket.Conn]bool)

	for {
		select {
		case conn := <-h.register:
			clients[conn] = true
			h.log.WithField("subscribers", len(clients)).Debug("websocket client registered")

		case conn := <-h.unregister:
			if clients[conn] {
				delete(clients, conn)
				conn.Close()
			}

		case event := <-h.broadcast:
			for conn := range clients {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteJSON(event); err != nil {
					h.log.WithError(err).Debug("dropping websocket client")
					delete(clients, conn)
					conn.Close()
				}
			}

		case <-h.done:
			for conn := range clients {
				conn.Close()
			}
			return
		}
	}
}

// Stop shuts the hub down and closes all connections.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues an event for all subscribers. Never blocks the caller;
// the event is dropped when the queue is full.
func (h *Hub) Broadcast(event RunEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("notification queue full, dropping run event")
	}
}

// ServeHTTP upgrades the request and subscribes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	// Reader loop only detects close; subscribers do not send payloads.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case h.unregister <- conn:
				case <-h.done:
				}
				return
			}
		}
	}()
}
