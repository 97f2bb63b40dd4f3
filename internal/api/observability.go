package api

import (
	"errors"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game"
)

// Metrics with bounded cardinality (no per-entity or per-client labels)
var (
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_frame_duration_seconds",
		Help:    "Time spent in one displayed frame (input, steps, render)",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.0167, 0.025, 0.05, 0.1},
	})

	stepsPerFrame = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_steps_per_frame",
		Help:    "Fixed steps run per displayed frame",
		Buckets: []float64{0, 1, 2, 3, 4, 5},
	})

	entityCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_entities",
		Help: "Active entities by kind",
	}, []string{"kind"}) // Bounded: "walker", "zombie", "particle"

	performanceLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_performance_level",
		Help: "Current performance level (0=high, 1=medium, 2=low)",
	})

	framesPerSecond = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_fps",
		Help: "Measured frames per second",
	})

	walkersDefeated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_walkers_defeated_total",
		Help: "Walkers defeated by zombies",
	})

	soulsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_souls_awarded_total",
		Help: "Souls awarded for defeats",
	})

	spawnRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_zombie_spawn_rejected_total",
		Help: "Zombie spawns refused at the cap or while paused",
	})

	renderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_render_failures_total",
		Help: "Render calls that returned an error or panicked",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter, origin check or auth",
	}, []string{"reason"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "WebSocket messages by direction",
	}, []string{"direction"}) // Bounded: "out", "in"
)

// EngineMetrics reports simulation measurements to Prometheus.
// It implements game.MetricsSink.
type EngineMetrics struct{}

var _ game.MetricsSink = EngineMetrics{}

func (EngineMetrics) ObserveFrame(d time.Duration, steps int) {
	frameDuration.Observe(d.Seconds())
	stepsPerFrame.Observe(float64(steps))
}

func (EngineMetrics) SetPopulation(walkers, zombies, particles int) {
	entityCount.WithLabelValues("walker").Set(float64(walkers))
	entityCount.WithLabelValues("zombie").Set(float64(zombies))
	entityCount.WithLabelValues("particle").Set(float64(particles))
}

func (EngineMetrics) SetPerformance(level game.PerformanceLevel, fps float64) {
	performanceLevel.Set(float64(level))
	framesPerSecond.Set(fps)
}

func (EngineMetrics) WalkerDefeated(souls float64) {
	walkersDefeated.Inc()
	soulsAwarded.Add(souls)
}

func (EngineMetrics) SpawnRejected() { spawnRejected.Inc() }

func (EngineMetrics) RenderFailed() { renderFailures.Inc() }

// RecordConnectionRejected increments the rejection counter.
// reason must be a fixed string, never client input.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one message in direction "in" or "out".
func IncrementWSMessages(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}

// requestMetrics records latency per chi route pattern.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				endpoint = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}

// DebugHandler serves pprof, Prometheus metrics and a health check.
func DebugHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// StartDebugServer starts the internal observability server.
// It binds to loopback unless ALLOW_DEBUG_EXTERNAL=true, since pprof
// endpoints are expensive enough to DoS the simulation.
func StartDebugServer(cfg config.ObservabilityConfig) *http.Server {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	addr := cfg.ListenAddr
	if !isLoopback(addr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Println("⚠️ Debug server forced to localhost for security")
		addr = "127.0.0.1:6060"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           DebugHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", addr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", addr)
		log.Printf("   - metrics: http://%s/metrics", addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return srv
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
