package game

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"soul-harvest/internal/config"
)

// Particle is a short-lived visual spark. It never affects gameplay.
type Particle struct {
	Position Vector2
	Velocity Vector2
	Life     time.Duration // Remaining
	MaxLife  time.Duration
	Color    string
	Size     float64
}

// Alpha fades linearly with remaining life.
func (p *Particle) Alpha() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	return clamp(float64(p.Life)/float64(p.MaxLife), 0, 1)
}

func resetParticle(p *Particle) {
	*p = Particle{}
}

// ParticleSystem owns pooled defeat bursts. Bursts are suppressed entirely
// when the monitor asks to skip effects, and capped while particle culling
// is on.
type ParticleSystem struct {
	cfg     config.PopulationConfig
	monitor *PerformanceMonitor
	rng     *rand.Rand

	pool *Pool[*Particle]
	live []*Particle

	suppressed uint64
}

// NewParticleSystem builds the particle pool.
func NewParticleSystem(cfg config.PopulationConfig, monitor *PerformanceMonitor, rng *rand.Rand) (*ParticleSystem, error) {
	pool, err := NewPool(func() *Particle { return &Particle{} }, resetParticle, cfg.ParticlePoolInitial, cfg.ParticlePoolMax)
	if err != nil {
		return nil, fmt.Errorf("particle pool: %w", err)
	}
	return &ParticleSystem{
		cfg:     cfg,
		monitor: monitor,
		rng:     rng,
		pool:    pool,
		live:    make([]*Particle, 0, cfg.ParticlePoolInitial),
	}, nil
}

// Burst emits a radial spray at p.
func (s *ParticleSystem) Burst(p Vector2, color string) int {
	if s.monitor.ShouldSkipEffects() {
		s.suppressed++
		return 0
	}

	n := s.cfg.ParticlesPerDefeat
	if s.monitor.ShouldCullParticles() {
		if room := s.monitor.MaxParticles() - len(s.live); room < n {
			n = room
		}
	}
	if n <= 0 {
		s.suppressed++
		return 0
	}

	for i := 0; i < n; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		speed := 40 + s.rng.Float64()*80

		pt := s.pool.Get()
		pt.Position = p
		pt.Velocity = Vec(math.Cos(angle)*speed, math.Sin(angle)*speed)
		pt.MaxLife = s.cfg.ParticleLife
		pt.Life = s.cfg.ParticleLife
		pt.Color = color
		pt.Size = 2 + s.rng.Float64()*3
		s.live = append(s.live, pt)
	}
	return n
}

// Update moves and ages particles, releasing expired ones.
func (s *ParticleSystem) Update(dt time.Duration) {
	secs := dt.Seconds()
	kept := s.live[:0]
	for _, p := range s.live {
		p.Life -= dt
		if p.Life <= 0 {
			s.pool.Release(p)
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Scale(secs))
		p.Velocity = p.Velocity.Scale(0.92)
		kept = append(kept, p)
	}
	for i := len(kept); i < len(s.live); i++ {
		s.live[i] = nil
	}
	s.live = kept
}

// Live returns the active particles. Callers must not retain the slice.
func (s *ParticleSystem) Live() []*Particle {
	return s.live
}

func (s *ParticleSystem) Count() int {
	return len(s.live)
}

// Clear releases every particle.
func (s *ParticleSystem) Clear() {
	for i, p := range s.live {
		s.live[i] = nil
		s.pool.Release(p)
	}
	s.live = s.live[:0]
}

// Pool exposes the particle pool for inspection.
func (s *ParticleSystem) Pool() *Pool[*Particle] {
	return s.pool
}

// Suppressed counts bursts dropped by performance policy.
func (s *ParticleSystem) Suppressed() uint64 {
	return s.suppressed
}
