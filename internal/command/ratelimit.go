package command

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter implements per-client command rate limiting
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimit
	config  RateLimitConfig

	stopOnce sync.Once
	stop     chan struct{}
}

type clientLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	PerSecond float64       // Sustained commands per second
	Burst     int           // Commands allowed back to back
	IdleTTL   time.Duration // Forget clients idle this long
}

// DefaultRateLimitConfig for text commands
var DefaultRateLimitConfig = RateLimitConfig{
	PerSecond: 2,
	Burst:     5,
	IdleTTL:   5 * time.Minute,
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = DefaultRateLimitConfig.PerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimitConfig.Burst
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig.IdleTTL
	}
	rl := &RateLimiter{
		clients: make(map[string]*clientLimit),
		config:  cfg,
		stop:    make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow checks if a client can execute a command
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[client]
	if !ok {
		c = &clientLimit{limiter: rate.NewLimiter(rate.Limit(rl.config.PerSecond), rl.config.Burst)}
		rl.clients[client] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

// evictIdle removes clients not seen since now-IdleTTL.
func (rl *RateLimiter) evictIdle(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.config.IdleTTL)
	removed := 0
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}
