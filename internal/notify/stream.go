package notify

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
)

// StreamConfig holds the websocket timings.
type StreamConfig struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64
}

// Server upgrades viewer stream requests and pumps hub events to them.
type Server struct {
	cfg         StreamConfig
	hub         *Hub
	knownViewer func(id string) bool
	upgrader    websocket.Upgrader
	log         *logger.Logger
}

// NewServer creates a stream server. knownViewer rejects unknown viewer ids
// before the upgrade.
func NewServer(cfg StreamConfig, h *Hub, knownViewer func(id string) bool, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		cfg:         cfg,
		hub:         h,
		knownViewer: knownViewer,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleStream serves GET /v1/viewers/:id/stream.
func (s *Server) HandleStream(c echo.Context) error {
	viewerID := c.Param("id")
	if s.knownViewer != nil && !s.knownViewer(viewerID) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "viewer not found"})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.Warn("failed to upgrade websocket", logger.Fields{"error": err.Error()})
		return err
	}

	conn := s.hub.NewConnection(ws, viewerID)
	s.hub.Register(conn)

	if s.cfg.MaxMessageSize > 0 {
		ws.SetReadLimit(s.cfg.MaxMessageSize)
	}

	go s.writePump(conn)
	go s.readPump(conn)
	return nil
}

// readPump drains the client side; streams are server-to-client only, so
// reading just keeps the deadline and close handshake alive.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("websocket error", logger.Fields{"connection_id": conn.ID, "error": err.Error()})
			}
			return
		}
	}
}

func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				// Hub closed the channel
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.log.Warn("failed to write message", logger.Fields{"connection_id": conn.ID, "error": err.Error()})
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
