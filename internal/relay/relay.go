// Package relay mirrors hotkey notifications to local websocket clients.
package relay

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeDeadline = 5 * time.Second
	// readDeadline allows about three missed pings.
	readDeadline = 90 * time.Second
	pingInterval = 30 * time.Second
	// Clients only send control frames.
	maxReadMessageSize = 1024
	clientBuffer       = 32
)

var upgrader = websocket.Upgrader{
	// The relay binds to loopback.
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Message is the JSON frame sent to clients.
type Message struct {
	Type   string `json:"type"` // "hello" or "hotkey"
	Client string `json:"client,omitempty"`
	ID     uint32 `json:"id,omitempty"`
	Hotkey string `json:"hotkey,omitempty"`
	State  string `json:"state,omitempty"`
}

type Options struct {
	// Addr defaults to 127.0.0.1:0.
	Addr   string
	Logger zerolog.Logger
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan Message
	done chan struct{}
}

// Hub accepts websocket clients on /ws and fans messages out to all of them.
// A slow client loses messages rather than delaying the others.
type Hub struct {
	opts Options
	log  zerolog.Logger

	mu      sync.RWMutex
	clients map[uuid.UUID]*client

	server *http.Server
	url    string

	closeOnce sync.Once
}

func NewHub(opts Options) *Hub {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:0"
	}
	return &Hub{
		opts:    opts,
		log:     opts.Logger.With().Str("component", "relay").Logger(),
		clients: make(map[uuid.UUID]*client),
	}
}

// Start listens on the configured address. It must be called once.
func (h *Hub) Start(ctx context.Context) error {
	if h.server != nil {
		return fmt.Errorf("relay: already started")
	}

	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return fmt.Errorf("relay: listen: %w", err)
	}
	h.url = fmt.Sprintf("ws://%s/ws", ln.Addr().String())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	h.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.log.Error().Err(err).Msg("Relay server error")
		}
	}()

	h.log.Info().Str("url", h.url).Msg("Relay started")
	return nil
}

// Stop closes every client and shuts the server down. Safe to call more than
// once.
func (h *Hub) Stop() error {
	var stopErr error
	h.closeOnce.Do(func() {
		h.mu.Lock()
		clients := h.clients
		h.clients = make(map[uuid.UUID]*client)
		h.mu.Unlock()

		for _, c := range clients {
			c.conn.Close()
		}

		if h.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.server.Shutdown(ctx); err != nil {
				stopErr = fmt.Errorf("relay: shutdown: %w", err)
			}
		}
		h.log.Info().Msg("Relay stopped")
	})
	return stopErr
}

// URL is the websocket URL clients connect to, empty before Start.
func (h *Hub) URL() string { return h.url }

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.log.Debug().Str("client", c.id.String()).Msg("Client too slow, message dropped")
		}
	}
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Upgrade failed")
		return
	}
	conn.SetReadLimit(maxReadMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan Message, clientBuffer),
		done: make(chan struct{}),
	}
	c.send <- Message{Type: "hello", Client: c.id.String()}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.log.Info().Str("client", c.id.String()).Str("remote", conn.RemoteAddr().String()).Msg("Client connected")

	go h.writeLoop(c)

	defer func() {
		close(c.done)
		h.remove(c)
		conn.Close()
		h.log.Info().Str("client", c.id.String()).Msg("Client disconnected")
	}()

	// Drain reads so control frames (pong, close) are processed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("client", c.id.String()).Msg("Read error")
			}
			return
		}
	}
}

// writeLoop is the only writer for c.conn.
func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("client", c.id.String()).Msg("Write failed, closing client")
				c.conn.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
}
