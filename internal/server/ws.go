package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/weiting/handcount/internal/gesture"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Broadcaster pushes committed gesture snapshots to WebSocket clients.
// Unlike a polling loop, it only writes when the pipeline commits, so
// idle clients see no traffic between gestures.
type Broadcaster struct {
	state   *gesture.State
	logger  *zap.Logger
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewBroadcaster creates a Broadcaster over the shared gesture state.
func NewBroadcaster(state *gesture.State, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		state:   state,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP handles WebSocket upgrade requests. Each new client is sent
// the current snapshot immediately, then receives one message per
// commit.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if b.state != nil {
		if msg, err := json.Marshal(b.state.Read()); err == nil {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
	}

	b.mu.Lock()
	b.clients[conn] = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, conn)
		b.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Publish sends a committed snapshot to all connected clients. The
// pipeline's commit hook calls this.
func (b *Broadcaster) Publish(snap gesture.Snapshot) {
	msg, err := json.Marshal(snap)
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for conn := range b.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.logger.Debug("websocket write failed", zap.Error(err))
		}
	}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
