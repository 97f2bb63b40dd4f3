package game

import (
	"log"
	"time"

	"soul-harvest/internal/config"
)

// PerformanceLevel is the discrete runtime performance classification.
type PerformanceLevel uint8

const (
	LevelHigh PerformanceLevel = iota
	LevelMedium
	LevelLow
)

// String returns a human-readable level name
func (l PerformanceLevel) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	case LevelLow:
		return "low"
	default:
		return "unknown"
	}
}

// LevelChangeFunc is notified on every level transition.
type LevelChangeFunc func(from, to PerformanceLevel)

// Classify maps FPS and average frame time to a level.
// Both signals must clear a tier's bar for that tier to apply.
func Classify(cfg config.PerformanceConfig, fps float64, avg time.Duration) PerformanceLevel {
	switch {
	case fps >= cfg.HighFPS && avg <= cfg.HighFrameTime:
		return LevelHigh
	case fps >= cfg.MediumFPS && avg <= cfg.MediumFrameTime:
		return LevelMedium
	default:
		return LevelLow
	}
}

// PerformanceMonitor tracks frame pacing and publishes culling policy.
// Time is injected through RecordFrame so tests never touch the wall clock.
type PerformanceMonitor struct {
	cfg config.PerformanceConfig

	// Ring buffer of recent frame times
	frameTimes []time.Duration
	head       int
	count      int
	sum        time.Duration

	lastFrame    time.Duration
	hasLastFrame bool
	windowStart  time.Duration
	windowFrames int

	fps        float64
	level      PerformanceLevel
	thresholds config.LevelThresholds

	subscribers []LevelChangeFunc

	entityCount   int
	particleCount int
	renderCalls   int
	transitions   uint64
}

// PerformanceStats is a read-only view for snapshots and metrics.
type PerformanceStats struct {
	Level            PerformanceLevel `json:"-"`
	LevelName        string           `json:"level"`
	FPS              float64          `json:"fps"`
	AverageFrameTime time.Duration    `json:"averageFrameTimeNs"`
	EntityCount      int              `json:"entityCount"`
	ParticleCount    int              `json:"particleCount"`
	RenderCalls      int              `json:"renderCalls"`
	CullEntities     bool             `json:"cullEntities"`
	MaxEntities      int              `json:"maxEntities"`
	MaxParticles     int              `json:"maxParticles"`
	UpdateFrequency  float64          `json:"updateFrequency"`
	Transitions      uint64           `json:"transitions"`
}

// NewPerformanceMonitor starts at HIGH with HIGH thresholds.
func NewPerformanceMonitor(cfg config.PerformanceConfig) *PerformanceMonitor {
	window := cfg.Window
	if window <= 0 {
		window = 60
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second
	}
	return &PerformanceMonitor{
		cfg:        cfg,
		frameTimes: make([]time.Duration, window),
		level:      LevelHigh,
		thresholds: cfg.High,
	}
}

// Subscribe registers fn for level transitions.
func (m *PerformanceMonitor) Subscribe(fn LevelChangeFunc) {
	m.subscribers = append(m.subscribers, fn)
}

// RecordFrame records one displayed frame at time now.
// FPS and the level are recomputed once per SampleInterval.
func (m *PerformanceMonitor) RecordFrame(now time.Duration) {
	if !m.hasLastFrame {
		m.hasLastFrame = true
		m.lastFrame = now
		m.windowStart = now
		return
	}

	m.push(now - m.lastFrame)
	m.lastFrame = now
	m.windowFrames++

	elapsed := now - m.windowStart
	if elapsed < m.cfg.SampleInterval {
		return
	}

	m.fps = float64(m.windowFrames) / elapsed.Seconds()
	m.windowFrames = 0
	m.windowStart = now
	m.renderCalls = 0

	m.setLevel(Classify(m.cfg, m.fps, m.AverageFrameTime()))
}

func (m *PerformanceMonitor) push(d time.Duration) {
	if m.count == len(m.frameTimes) {
		m.sum -= m.frameTimes[m.head]
	} else {
		m.count++
	}
	m.frameTimes[m.head] = d
	m.sum += d
	m.head = (m.head + 1) % len(m.frameTimes)
}

// SetLevel forces a level. Transitions are edge-triggered like sampled ones.
func (m *PerformanceMonitor) SetLevel(level PerformanceLevel) {
	m.setLevel(level)
}

func (m *PerformanceMonitor) setLevel(level PerformanceLevel) {
	if level == m.level {
		return
	}
	from := m.level
	m.level = level
	m.transitions++

	switch level {
	case LevelHigh:
		m.thresholds = m.cfg.High
	case LevelMedium:
		m.thresholds = m.cfg.Medium
	default:
		m.thresholds = m.cfg.Low
	}

	log.Printf("📉 Performance level %s -> %s (fps=%.1f avg=%v)", from, level, m.fps, m.AverageFrameTime())
	for _, fn := range m.subscribers {
		fn(from, level)
	}
}

// ReportCounts stores the latest entity and particle counts.
func (m *PerformanceMonitor) ReportCounts(entities, particles int) {
	m.entityCount = entities
	m.particleCount = particles
}

// RecordRenderCall counts one render; the counter resets with every FPS sample.
func (m *PerformanceMonitor) RecordRenderCall() {
	m.renderCalls++
}

// AverageFrameTime returns the mean over the rolling window.
func (m *PerformanceMonitor) AverageFrameTime() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.sum / time.Duration(m.count)
}

func (m *PerformanceMonitor) FPS() float64                  { return m.fps }
func (m *PerformanceMonitor) Level() PerformanceLevel       { return m.level }
func (m *PerformanceMonitor) ShouldCullEntities() bool      { return m.thresholds.CullEntities }
func (m *PerformanceMonitor) ShouldCullParticles() bool     { return m.thresholds.CullParticles }
func (m *PerformanceMonitor) MaxEntities() int              { return m.thresholds.MaxEntities }
func (m *PerformanceMonitor) MaxParticles() int             { return m.thresholds.MaxParticles }
func (m *PerformanceMonitor) ShouldUseReducedQuality() bool { return m.level == LevelLow }
func (m *PerformanceMonitor) ShouldSkipEffects() bool       { return m.level == LevelLow }

// EntityUpdateFrequency is the fraction of entities updated per step.
func (m *PerformanceMonitor) EntityUpdateFrequency() float64 {
	switch m.level {
	case LevelHigh:
		return m.cfg.HighUpdateFrequency
	case LevelMedium:
		return m.cfg.MediumUpdateFrequency
	default:
		return m.cfg.LowUpdateFrequency
	}
}

// Stats returns a copy of the monitor state.
func (m *PerformanceMonitor) Stats() PerformanceStats {
	return PerformanceStats{
		Level:            m.level,
		LevelName:        m.level.String(),
		FPS:              m.fps,
		AverageFrameTime: m.AverageFrameTime(),
		EntityCount:      m.entityCount,
		ParticleCount:    m.particleCount,
		RenderCalls:      m.renderCalls,
		CullEntities:     m.thresholds.CullEntities,
		MaxEntities:      m.thresholds.MaxEntities,
		MaxParticles:     m.thresholds.MaxParticles,
		UpdateFrequency:  m.EntityUpdateFrequency(),
		Transitions:      m.transitions,
	}
}
