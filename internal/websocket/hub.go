package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"pettycash/internal/identity"
	"pettycash/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served to any origin, the token query param gates access.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event is a change notification pushed to connected clients.
type Event struct {
	Type        string      `json:"type"`
	RequesterID string      `json:"requester_id,omitempty"`
	Data        interface{} `json:"data"`
	At          time.Time   `json:"at"`
}

// Client represents a single connected WebSocket client
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Session *identity.Session
}

// canSee reports whether the client may receive evt. Reviewers, accountants and
// admins see every request; everyone else only their own.
func (c *Client) canSee(evt Event) bool {
	if c.Session == nil {
		return false
	}
	if model.HasCapability(c.Session.Role, model.CapReviewRequests) || model.HasCapability(c.Session.Role, model.CapDisburseRequests) {
		return true
	}
	return evt.RequesterID != "" && evt.RequesterID == c.Session.UserID.String()
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
	log        *zap.Logger
}

// NewHub initializes a new WS Hub instance
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		log:        log,
	}
}

// Publish queues an event for delivery. It never blocks; events are dropped
// when the queue is full.
func (h *Hub) Publish(eventType, requesterID string, data interface{}) {
	evt := Event{Type: eventType, RequesterID: requesterID, Data: data, At: time.Now().UTC()}
	select {
	case h.broadcast <- evt:
	default:
		h.log.Warn("websocket broadcast queue full, dropping event", zap.String("type", eventType))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run starts the core dispatch loop for WebSocket events. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Debug("websocket client connected", zap.String("user_id", client.Session.UserID.String()))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.log.Debug("websocket client disconnected")
			}
			h.mu.Unlock()
		case evt := <-h.broadcast:
			message, err := json.Marshal(evt)
			if err != nil {
				h.log.Error("failed to encode websocket event", zap.Error(err))
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !client.canSee(evt) {
					continue
				}
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// writePump handles writing messages from the Hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed, and
// unregisters the client once the peer goes away.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		_ = c.Conn.Close()
	}()
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("websocket read failed", zap.Error(err))
			}
			break
		}
	}
}

// SessionResolver turns a bearer token into a verified session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*identity.Session, error)
}

// ServeWs authenticates the token query param and upgrades the connection.
func ServeWs(hub *Hub, c *gin.Context, resolver SessionResolver) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.log.Info("websocket connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	sess, err := resolver.ResolveSession(c.Request.Context(), tokenString)
	if err != nil || !sess.Valid() {
		hub.log.Info("websocket connection rejected: invalid token", zap.Error(err))
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	if !model.HasCapability(sess.Role, model.CapViewOwnRequests) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 256), Session: sess}
	select {
	case hub.register <- client:
	case <-hub.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
