package game

import (
	"fmt"
	"math/rand"
	"time"

	"soul-harvest/internal/config"
)

// WalkerManager keeps the walker population near its target, runs the
// wander AI and recycles defeated walkers through its pool.
type WalkerManager struct {
	cfg           config.PopulationConfig
	width, height float64
	areas         AreaSource
	rng           *rand.Rand
	ids           *idSource

	pool    *Pool[*Walker]
	walkers []*Walker
	active  []*Walker // scratch for Active()

	target     int
	spawnTimer time.Duration

	spawned uint64
	retired uint64
}

// WalkerStats are population counters.
type WalkerStats struct {
	Live    int       `json:"live"`
	Target  int       `json:"target"`
	Spawned uint64    `json:"spawned"`
	Retired uint64    `json:"retired"`
	Pool    PoolStats `json:"pool"`
}

// NewWalkerManager creates a manager for a width x height field.
func NewWalkerManager(cfg config.PopulationConfig, world config.WorldConfig, areas AreaSource, rng *rand.Rand, ids *idSource) (*WalkerManager, error) {
	pool, err := NewPool(
		func() *Walker {
			w := &Walker{}
			resetWalker(w)
			return w
		},
		resetWalker,
		cfg.WalkerPoolInitial, cfg.WalkerPoolMax,
	)
	if err != nil {
		return nil, fmt.Errorf("walker pool: %w", err)
	}

	return &WalkerManager{
		cfg:     cfg,
		width:   world.Width,
		height:  world.Height,
		areas:   areas,
		rng:     rng,
		ids:     ids,
		pool:    pool,
		walkers: make([]*Walker, 0, cfg.WalkerTarget),
		target:  cfg.WalkerTarget,
	}, nil
}

// Update advances the population by one fixed step of dt.
func (m *WalkerManager) Update(dt time.Duration) {
	m.retire()

	m.spawnTimer += dt
	if len(m.walkers) < m.target && m.spawnTimer >= m.cfg.WalkerSpawnInterval {
		m.spawnOnEdge()
		m.spawnTimer = 0
	}

	secs := dt.Seconds()
	for _, w := range m.walkers {
		if !w.Active {
			continue
		}
		if !w.skip {
			m.wander(w, dt)
		}
		w.Integrate(secs)
		m.keepInField(w)
	}
}

// retire removes inactive walkers from the live list, then pools them.
func (m *WalkerManager) retire() {
	kept := m.walkers[:0]
	var dead []*Walker
	for _, w := range m.walkers {
		if w.Active {
			kept = append(kept, w)
		} else {
			dead = append(dead, w)
		}
	}
	for i := len(kept); i < len(m.walkers); i++ {
		m.walkers[i] = nil
	}
	m.walkers = kept

	for _, w := range dead {
		m.pool.Release(w)
		m.retired++
	}
}

func (m *WalkerManager) wander(w *Walker, dt time.Duration) {
	w.RetargetTimer += dt
	if w.RetargetTimer >= w.RetargetInterval || w.Position.Distance(w.Target) < m.cfg.ArriveDistance {
		m.retarget(w)
	}
	m.steer(w)
}

func (m *WalkerManager) steer(w *Walker) {
	to := w.Target.Sub(w.Position)
	if to.Length() <= m.cfg.StopDistance {
		w.Steer(Vector2{})
		return
	}
	w.Steer(to.Normalize().Scale(w.Speed))
}

func (m *WalkerManager) retarget(w *Walker) {
	margin := m.cfg.WanderMargin
	w.Target = Vec(
		m.randBetween(margin, m.width-margin),
		m.randBetween(margin, m.height-margin),
	)
	w.RetargetTimer = 0
	w.RetargetInterval = m.randDuration(m.cfg.RetargetMin, m.cfg.RetargetMax)
}

// keepInField clamps to [size/2, dim-size/2] and forces a retarget on contact.
func (m *WalkerManager) keepInField(w *Walker) {
	half := w.Size / 2
	x := clamp(w.Position.X, half, m.width-half)
	y := clamp(w.Position.Y, half, m.height-half)
	if x != w.Position.X || y != w.Position.Y {
		w.Position = Vec(x, y)
		m.retarget(w)
		m.steer(w)
	}
}

func (m *WalkerManager) spawnOnEdge() *Walker {
	margin := m.cfg.WalkerSpawnMargin
	var p Vector2
	switch m.rng.Intn(4) {
	case 0: // top
		p = Vec(m.rng.Float64()*m.width, -margin)
	case 1: // right
		p = Vec(m.width+margin, m.rng.Float64()*m.height)
	case 2: // bottom
		p = Vec(m.rng.Float64()*m.width, m.height+margin)
	default: // left
		p = Vec(-margin, m.rng.Float64()*m.height)
	}
	return m.SpawnAt(p)
}

// SpawnAt places a walker at p with the current area's stats.
func (m *WalkerManager) SpawnAt(p Vector2) *Walker {
	area := m.areas.CurrentArea()

	w := m.pool.Get()
	w.ID = m.ids.Next()
	w.Active = true
	w.Position = p
	w.Size = m.cfg.WalkerSize
	w.BaseSpeed = area.WalkerSpeed
	w.Speed = area.WalkerSpeed * (1 + (m.rng.Float64()*2-1)*m.cfg.SpeedJitter)
	w.Health = area.WalkerHealth
	w.MaxHealth = area.WalkerHealth
	w.SoulValue = area.SoulMultiplier
	w.AreaLevel = area.ID
	w.Color = m.pickColor(area)
	m.retarget(w)

	m.walkers = append(m.walkers, w)
	m.spawned++
	return w
}

// RefreshArea moves live walkers onto the current area without respawning.
// Health keeps its fraction and speed keeps its spawn jitter.
func (m *WalkerManager) RefreshArea() int {
	area := m.areas.CurrentArea()
	changed := 0
	for _, w := range m.walkers {
		if !w.Active || w.AreaLevel == area.ID {
			continue
		}
		frac := w.HealthFraction()
		jitter := 1.0
		if w.BaseSpeed > 0 {
			jitter = w.Speed / w.BaseSpeed
		}

		w.MaxHealth = area.WalkerHealth
		w.Health = frac * area.WalkerHealth
		if w.Health <= 0 {
			w.Health = area.WalkerHealth
		}
		w.BaseSpeed = area.WalkerSpeed
		w.Speed = area.WalkerSpeed * jitter
		w.SoulValue = area.SoulMultiplier
		w.AreaLevel = area.ID
		w.Color = m.pickColor(area)
		changed++
	}
	return changed
}

func (m *WalkerManager) pickColor(area config.AreaConfig) string {
	if len(area.WalkerColors) == 0 {
		return ""
	}
	return area.WalkerColors[m.rng.Intn(len(area.WalkerColors))]
}

func (m *WalkerManager) randBetween(lo, hi float64) float64 {
	if hi <= lo {
		return (lo + hi) / 2
	}
	return lo + m.rng.Float64()*(hi-lo)
}

func (m *WalkerManager) randDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(m.rng.Int63n(int64(hi-lo)+1))
}

// Active returns the active walkers. The slice is reused by the next call.
func (m *WalkerManager) Active() []*Walker {
	m.active = m.active[:0]
	for _, w := range m.walkers {
		if w.Active {
			m.active = append(m.active, w)
		}
	}
	return m.active
}

// Walkers returns the live list, including walkers awaiting retirement.
func (m *WalkerManager) Walkers() []*Walker {
	return m.walkers
}

// SetTargetCount changes the standing population target.
func (m *WalkerManager) SetTargetCount(n int) {
	if n < 0 {
		n = 0
	}
	m.target = n
}

func (m *WalkerManager) TargetCount() int {
	return m.target
}

// Clear deactivates and pools every walker.
func (m *WalkerManager) Clear() {
	for _, w := range m.walkers {
		w.Active = false
	}
	m.retire()
}

// Pool exposes the walker pool for inspection.
func (m *WalkerManager) Pool() *Pool[*Walker] {
	return m.pool
}

func (m *WalkerManager) Stats() WalkerStats {
	return WalkerStats{
		Live:    len(m.walkers),
		Target:  m.target,
		Spawned: m.spawned,
		Retired: m.retired,
		Pool:    m.pool.Stats(),
	}
}
