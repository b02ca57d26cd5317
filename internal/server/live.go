package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Scanner dashboards are served from phones and kiosk browsers on the
	// hostel network, not from this origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans scan events out to connected scanner dashboards.
type Hub struct {
	clients    map[*liveClient]struct{}
	register   chan *liveClient
	unregister chan *liveClient
	broadcast  chan []byte
	done       chan struct{}
	logger     *zap.Logger
}

var _ service.Broadcaster = (*Hub)(nil)

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*liveClient]struct{}),
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Info("Scanner feed client connected", zap.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer, drop it rather than stall the feed.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// add hands a client to Run. Connections arriving after shutdown are
// closed instead of blocking forever on the register channel.
func (h *Hub) add(c *liveClient) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// remove detaches a client; a no-op once Run has exited, Run already closed
// every registered client on the way out.
func (h *Hub) remove(c *liveClient) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// BroadcastScan implements service.Broadcaster. It never blocks the scan
// request path.
func (h *Hub) BroadcastScan(ev service.ScanFeedEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to marshal scan event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("Scan feed backlogged, event dropped")
	}
}

type liveClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *liveClient) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// The feed is one-way. Reads only notice disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) writePump() {
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

// handleScannerLive upgrades a staff connection to the live scan feed.
func (s *Server) handleScannerLive(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := &liveClient{hub: s.hub, conn: conn, send: make(chan []byte, clientSendSize)}
	s.hub.add(client)

	go client.writePump()
	go client.readPump()
}
