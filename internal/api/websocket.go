package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"soul-harvest/internal/command"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	wsSendBuffer   = 16
	wsWriteTimeout = 5 * time.Second
	wsMaxMessage   = 512
)

// wsMessage is the envelope for every frame sent to clients.
type wsMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// commandReply answers one inbound text command.
type commandReply struct {
	OK    bool   `json:"ok"`
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// wsClient is one connection. Only its writer goroutine writes to conn.
type wsClient struct {
	id       string
	conn     *websocket.Conn
	ip       string
	readOnly bool // Token missing while the hub requires one

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// trySend queues msg without blocking. False when full or closed.
func (c *wsClient) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// WebSocketHub fans snapshots out to clients and routes their text
// commands through a command.Handler.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	nextID  atomic.Uint64

	wsLimiter  *WebSocketRateLimiter
	commands   *command.Handler
	adminToken string
	upgrader   websocket.Upgrader

	dropped atomic.Uint64
}

// NewWebSocketHub creates a hub. commands may be nil, in which case
// inbound messages are ignored. With adminToken set, only connections that
// present it (header or ?token=) may send commands; others just watch.
func NewWebSocketHub(commands *command.Handler, allowedOrigins []string, adminToken string) *WebSocketHub {
	h := &WebSocketHub{
		clients:    make(map[*wsClient]struct{}),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		commands:   commands,
		adminToken: adminToken,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || IsAllowedOrigin(origin, allowedOrigins) {
				// Non-browser clients send no Origin
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues event for every client. Slow clients miss messages
// rather than stalling the hub.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(wsMessage{Event: event, Data: data})
	if err != nil {
		log.Printf("⚠️ WebSocket broadcast marshal failed: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.trySend(msg) {
			h.dropped.Add(1)
		}
	}
}

// Run broadcasts the latest snapshot hz times per second until ctx is done,
// then disconnects every client.
func (h *WebSocketHub) Run(ctx context.Context, engine EngineInterface, hz int) {
	if hz <= 0 {
		hz = 10
	}
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			snap := engine.Snapshot()
			if snap == nil || snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence
			h.Broadcast("game:state", snap)
		}
	}
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
	}
}

// HandleWebSocket upgrades the request and serves the connection.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if total := h.ClientCount(); total >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", total)
		RecordConnectionRejected("ws_total_limit")
		writeError(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		writeError(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}
	conn.SetReadLimit(wsMaxMessage)

	c := &wsClient{
		id:       fmt.Sprintf("ws-%d", h.nextID.Add(1)),
		conn:     conn,
		ip:       ip,
		readOnly: !h.authorized(r),
		send:     make(chan []byte, wsSendBuffer),
	}
	h.register(c)

	go h.writeLoop(c)
	h.readLoop(r.Context(), c)
}

func (h *WebSocketHub) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return true
	}
	tok := requestToken(r)
	if tok == "" {
		tok = r.URL.Query().Get("token")
	}
	return subtle.ConstantTimeCompare([]byte(tok), []byte(h.adminToken)) == 1
}

func (h *WebSocketHub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("📱 Client %s connected from %s (%d total)", c.id, c.ip, count)
	UpdateWSConnections(count)
}

func (h *WebSocketHub) unregister(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.close()
	h.wsLimiter.Release(c.ip)
	log.Printf("📱 Client %s disconnected (%d remaining)", c.id, count)
	UpdateWSConnections(count)
}

func (h *WebSocketHub) writeLoop(c *wsClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.unregister(c)
			return
		}
		IncrementWSMessages("out")
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop handles inbound text commands until the connection closes.
func (h *WebSocketHub) readLoop(ctx context.Context, c *wsClient) {
	defer h.unregister(c)

	for {
		kind, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.TextMessage || h.commands == nil {
			continue
		}
		IncrementWSMessages("in")

		if c.readOnly {
			data, _ := json.Marshal(wsMessage{Event: "command:reply", Data: commandReply{Error: "unauthorized"}})
			c.trySend(data)
			continue
		}

		reply := commandReply{OK: true}
		// Limits follow the IP so reconnecting does not refill the bucket
		out, err := h.commands.Process(ctx, "ws:"+c.ip, string(message))
		if err != nil {
			reply = commandReply{Error: err.Error()}
		} else {
			reply.Reply = out
		}
		data, _ := json.Marshal(wsMessage{Event: "command:reply", Data: reply})
		if !c.trySend(data) {
			h.dropped.Add(1)
		}
	}
}
