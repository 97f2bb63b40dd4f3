package api

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"soul-harvest/internal/game"
)

// EngineInterface defines the engine methods used by the API.
// *game.Engine satisfies it; tests use a fake.
type EngineInterface interface {
	// Submit runs a command on the simulation goroutine and waits
	Submit(ctx context.Context, cmd game.Command) (game.CommandResult, error)
	// Snapshot returns the latest published frame (nil before the first)
	Snapshot() *game.GameSnapshot
}

// FrameSource encodes the latest rendered frame. *render.Canvas satisfies it.
type FrameSource interface {
	EncodePNG() ([]byte, error)
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine: fakeEngine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the simulation (required)
	Engine EngineInterface

	// Frames serves /api/frame.png. Optional; the route answers 404 without it.
	Frames FrameSource

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to localhost on any port.
	CORSOrigins []string

	// AdminToken guards the mutating routes when set.
	AdminToken string

	// CommandTimeout bounds each Submit. Defaults to 2s.
	CommandTimeout time.Duration

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

type routerHandlers struct {
	engine  EngineInterface
	frames  FrameSource
	limiter *IPRateLimiter
	timeout time.Duration
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// It has no side effects beyond the rate limiter's cleanup goroutine when
// none is supplied: no listeners are opened, so it is safe with httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", AdminTokenHeader},
		AllowCredentials: false,
	}))

	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	h := &routerHandlers{
		engine:  cfg.Engine,
		frames:  cfg.Frames,
		limiter: rateLimiter,
		timeout: timeout,
	}

	r.Get("/health", h.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)
		r.Get("/frame.png", h.handleGetFrame)

		r.Group(func(r chi.Router) {
			r.Use(AdminTokenMiddleware(cfg.AdminToken))

			r.Post("/pause", h.handlePause)
			r.Post("/zombies", h.handleSpawnZombie)
			r.Delete("/zombies", h.handleClearZombies)
			r.Post("/upgrades/{kind}", h.handlePurchaseUpgrade)
			r.Post("/area", h.handleSelectArea)
		})
	})

	return r
}
