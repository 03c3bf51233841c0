// Package livereload pushes reload notifications to open browser tabs over a
// websocket while the views tree changes during development.
package livereload

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/demoapp/internal/logging"
	"github.com/conneroisu/demoapp/internal/validation"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Messages queued per client before it is dropped as too slow.
	sendBuffer = 16
)

// MessageTypeFullReload tells the client to reload the whole page.
const MessageTypeFullReload = "full_reload"

// Message is the JSON payload sent to clients.
type Message struct {
	Type      string    `json:"type"`
	Paths     []string  `json:"paths,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HubConfig configures origin checks.
type HubConfig struct {
	// AllowedOrigins lists extra host[:port] values accepted besides the
	// request's own host.
	AllowedOrigins []string
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub owns the set of connected clients.
type Hub struct {
	config HubConfig
	logger logging.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool

	register   chan *client
	unregister chan *client
	broadcast  chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHub returns a hub. It accepts clients once Run is started.
func NewHub(config HubConfig, logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		config:     config,
		logger:     logger.WithComponent("livereload"),
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 8),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run services registrations and broadcasts until ctx is cancelled, then
// disconnects every client and waits for their goroutines.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		h.cancel()
		h.mu.Lock()
		h.closed = true
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		h.wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(ctx, "client connected", "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug(ctx, "client disconnected", "clients", n)

		case message := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Slow client; drop it rather than block the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. It never blocks; when the queue is
// full or the hub has stopped the message is dropped.
func (h *Hub) Broadcast(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error(h.ctx, err, "encoding reload message")
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.ctx.Done():
	default:
		h.logger.Warn(h.ctx, nil, "broadcast queue full, dropping message", "type", msg.Type)
	}
}

// Reload asks every client to reload the page.
func (h *Hub) Reload(paths ...string) {
	h.Broadcast(Message{Type: MessageTypeFullReload, Paths: paths})
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin, ok := h.checkOrigin(r)
	if !ok {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{origin},
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	// The write pump is counted before the hub can see the client, so Run
	// never waits on a group that is still growing.
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	select {
	case h.register <- c:
	case <-h.ctx.Done():
		h.wg.Done()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go h.writePump(c)
}

// checkOrigin accepts the request's own host and the configured extras. It
// returns the origin host for the upgrade's origin patterns.
func (h *Hub) checkOrigin(r *http.Request) (string, bool) {
	host, err := validation.OriginHost(r.Header.Get("Origin"), r.Host, h.config.AllowedOrigins)
	if err != nil {
		h.logger.Debug(r.Context(), "rejected websocket origin", "reason", err.Error())
		return "", false
	}
	return host, true
}

// writePump delivers queued messages and pings. Clients never send data, so
// CloseRead handles the read side and reports when the peer goes away.
func (h *Hub) writePump(c *client) {
	defer h.wg.Done()

	ctx := c.conn.CloseRead(h.ctx)
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		select {
		case h.unregister <- c:
		case <-h.ctx.Done():
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				h.logger.Debug(ctx, "websocket write failed", "error", err.Error())
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
