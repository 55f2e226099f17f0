// Package notify delivers render-trigger events to viewers over websockets.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/domain"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
)

// ErrBufferFull is returned when a connection's send buffer is full.
var ErrBufferFull = errors.New("send buffer full")

// Connection is one websocket stream bound to a viewer.
type Connection struct {
	ID       string
	ViewerID string
	Conn     *websocket.Conn
	Send     chan []byte
	mu       sync.Mutex
}

type viewerMessage struct {
	viewerID string
	data     []byte
}

// Hub fans change events out to every connection of a viewer.
type Hub struct {
	// Connections indexed by connection ID
	connections map[string]*Connection

	// viewer id -> set of connection IDs
	viewers map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *viewerMessage
	done       chan struct{}

	log *logger.Logger
	mu  sync.RWMutex
}

// NewHub creates a hub. Call Run to start delivering.
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{
		connections: make(map[string]*Connection),
		viewers:     make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *viewerMessage, 256),
		done:        make(chan struct{}),
		log:         log,
	}
}

// Run is the hub's main loop. It returns when ctx is cancelled, closing
// every connection's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for id, conn := range h.connections {
			close(conn.Send)
			delete(h.connections, id)
		}
		h.viewers = make(map[string]map[string]bool)
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if h.viewers[conn.ViewerID] == nil {
				h.viewers[conn.ViewerID] = make(map[string]bool)
			}
			h.viewers[conn.ViewerID][conn.ID] = true
			h.mu.Unlock()
			h.log.Debug("stream registered", logger.Fields{"connection_id": conn.ID, "viewer_id": conn.ViewerID})

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if ids := h.viewers[conn.ViewerID]; ids != nil {
					delete(ids, conn.ID)
					if len(ids) == 0 {
						delete(h.viewers, conn.ViewerID)
					}
				}
				close(conn.Send)
			}
			h.mu.Unlock()
			h.log.Debug("stream unregistered", logger.Fields{"connection_id": conn.ID})

		case msg := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.viewers[msg.viewerID] {
				conn, ok := h.connections[connID]
				if !ok {
					continue
				}
				select {
				case conn.Send <- msg.data:
				default:
					h.log.Warn("stream buffer full, closing", logger.Fields{"connection_id": connID})
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NewConnection creates a connection for viewerID. ws may be nil for
// in-process subscribers that only read Send.
func (h *Hub) NewConnection(ws *websocket.Conn, viewerID string) *Connection {
	return &Connection{
		ID:       uuid.New().String(),
		ViewerID: viewerID,
		Conn:     ws,
		Send:     make(chan []byte, 256),
	}
}

// Register adds conn to the hub.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
	}
}

// Unregister removes conn and closes its send channel.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Notify queues ev for every stream of viewerID. Events are dropped when the
// hub is stopped or its queue is full; they are render triggers, not state.
func (h *Hub) Notify(viewerID string, ev domain.ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to encode change event", logger.Fields{"error": err.Error()})
		return
	}
	select {
	case h.broadcast <- &viewerMessage{viewerID: viewerID, data: data}:
	case <-h.done:
	default:
		h.log.Warn("change event dropped", logger.Fields{"viewer_id": viewerID, "type": string(ev.Type)})
	}
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HasActiveConnections reports whether viewerID has any stream open.
func (h *Hub) HasActiveConnections(viewerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.viewers[viewerID]) > 0
}

// WriteMessage writes to the websocket with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

func (c *Connection) Close() error {
	return c.Conn.Close()
}
