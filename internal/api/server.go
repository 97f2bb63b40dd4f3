package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"soul-harvest/internal/command"
	"soul-harvest/internal/config"
)

// ServerConfig wires the API server.
type ServerConfig struct {
	Engine   EngineInterface
	Frames   FrameSource      // Optional
	Commands *command.Handler // Optional; websocket commands are ignored without it
	Server   config.ServerConfig
}

// Server is the HTTP API server with WebSocket support.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	broadcastHz int

	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	hubDone    chan struct{}
}

// NewServer creates the API server.
//
// Background workers do NOT start until Start is called, so tests can
// construct the server and exercise Router() with httptest.
func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		engine:      cfg.Engine,
		broadcastHz: cfg.Server.BroadcastHz,
		wsHub:       NewWebSocketHub(cfg.Commands, cfg.Server.CORSOrigins, cfg.Server.AdminToken),
		rateLimiter: NewIPRateLimiter(RateLimitConfig{
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Burst:             cfg.Server.Burst,
		}),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      cfg.Engine,
		Frames:      cfg.Frames,
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.Server.CORSOrigins,
		AdminToken:  cfg.Server.AdminToken,
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.hubDone = make(chan struct{})

	return s
}

// Start runs the websocket broadcaster and listens on the configured port.
// It returns once the listener fails or Shutdown is called.
func (s *Server) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("api server already started")
	}
	go func() {
		defer close(s.hubDone)
		s.wsHub.Run(s.ctx, s.engine, s.broadcastHz)
	}()

	addr := s.httpServer.Addr
	log.Printf("🌐 API server starting on %s", addr)
	log.Printf("🔌 WebSocket: ws://localhost%s/ws", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub exposes the websocket hub.
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, disconnects websocket clients and
// releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	if s.started.Load() {
		<-s.hubDone
	}
	err := s.httpServer.Shutdown(ctx)
	s.rateLimiter.Stop()
	return err
}
