package game

import (
	"fmt"
	"math/rand"
	"time"

	"soul-harvest/internal/config"
)

// ZombieManager spawns zombies on request, steers each one at its nearest
// walker and resolves their attacks.
type ZombieManager struct {
	cfg           config.PopulationConfig
	width, height float64
	baseSoul      float64

	collab  Collaborators
	attacks *AttackSystem
	attack  AttackConfig
	rng     *rand.Rand
	ids     *idSource

	pool    *Pool[*Zombie]
	zombies []*Zombie

	onDefeat func(DefeatEvent)

	spawned  uint64
	rejected uint64
	defeats  uint64
}

// ZombieStats are population counters.
type ZombieStats struct {
	Live       int       `json:"live"`
	Max        int       `json:"max"`
	Spawned    uint64    `json:"spawned"`
	Rejected   uint64    `json:"rejected"`
	Defeats    uint64    `json:"defeats"`
	Multiplier float64   `json:"speedMultiplier"`
	Pool       PoolStats `json:"pool"`
}

// NewZombieManager validates the attack profile and builds the pool.
func NewZombieManager(cfg config.PopulationConfig, combat config.CombatConfig, world config.WorldConfig,
	attacks *AttackSystem, collab Collaborators, rng *rand.Rand, ids *idSource) (*ZombieManager, error) {

	attack, err := NewAttackConfig(combat.Damage, combat.Range, combat.Cooldown)
	if err != nil {
		return nil, err
	}
	pool, err := NewPool(
		func() *Zombie {
			z := &Zombie{}
			resetZombie(z)
			return z
		},
		resetZombie,
		cfg.ZombiePoolInitial, cfg.ZombiePoolMax,
	)
	if err != nil {
		return nil, fmt.Errorf("zombie pool: %w", err)
	}

	return &ZombieManager{
		cfg:      cfg,
		width:    world.Width,
		height:   world.Height,
		baseSoul: combat.BaseSoul,
		collab:   collab,
		attacks:  attacks,
		attack:   attack,
		rng:      rng,
		ids:      ids,
		pool:     pool,
		zombies:  make([]*Zombie, 0, cfg.ZombiePoolInitial),
	}, nil
}

// OnDefeat registers the walker-defeated event handler.
func (m *ZombieManager) OnDefeat(fn func(DefeatEvent)) {
	m.onDefeat = fn
}

// Spawn places a zombie at p, clamped into the field. It returns false
// without side effects when the population is at its cap.
func (m *ZombieManager) Spawn(p Vector2) bool {
	if len(m.zombies) >= m.collab.Upgrades.MaxZombies() {
		m.rejected++
		return false
	}

	margin := m.cfg.ZombieSpawnMargin
	p = Vec(clamp(p.X, margin, m.width-margin), clamp(p.Y, margin, m.height-margin))

	z := m.pool.Get()
	z.ID = m.ids.Next()
	z.Active = true
	z.Position = p
	z.Size = m.cfg.ZombieSize
	z.SeekRange = m.cfg.ZombieSeekRange
	z.BaseSpeed = m.cfg.ZombieBaseSpeed
	z.Speed = z.BaseSpeed * m.collab.Upgrades.ZombieSpeedMultiplier()

	m.zombies = append(m.zombies, z)
	m.spawned++
	return true
}

// Update runs one step of seek and attack against the given walker snapshot.
// now is the simulation clock used for cooldowns.
func (m *ZombieManager) Update(dt time.Duration, walkers []*Walker, now time.Duration) {
	secs := dt.Seconds()
	for _, z := range m.zombies {
		if !z.Active {
			continue
		}
		if z.skip {
			// No rescan this step, but never keep a stale target
			if t := z.Target; t != nil && (!t.Active || z.Position.DistanceSq(t.Position) > z.SeekRange*z.SeekRange) {
				z.Target = nil
			}
			z.Integrate(secs)
			continue
		}

		z.Target = nearestWalker(z, walkers)
		if z.Target == nil {
			z.Steer(Vector2{})
			z.Integrate(secs)
			continue
		}

		z.Steer(z.Target.Position.Sub(z.Position).Normalize().Scale(z.Speed))

		// One attempt per zombie per step, against the chosen target only.
		target := z.Target
		wasActive := target.Active
		hit, defeated := m.attacks.PerformAttack(z, target, m.attack, now)
		if hit && defeated && wasActive {
			m.reward(target)
			z.Target = nil
		}

		z.Integrate(secs)
	}
}

// nearestWalker is a linear scan with strict <, so among equidistant
// walkers the first in slice order wins.
func nearestWalker(z *Zombie, walkers []*Walker) *Walker {
	var best *Walker
	var bestSq float64
	rangeSq := z.SeekRange * z.SeekRange
	for _, w := range walkers {
		if !w.Active {
			continue
		}
		d := z.Position.DistanceSq(w.Position)
		if d > rangeSq {
			continue
		}
		if best == nil || d < bestSq {
			best, bestSq = w, d
		}
	}
	return best
}

func (m *ZombieManager) reward(w *Walker) {
	area := m.collab.Areas.CurrentArea()
	m.collab.Ledger.AwardSouls(m.baseSoul, area.SoulMultiplier)
	m.collab.Ledger.IncrementWalkersDefeated()
	m.defeats++

	if m.onDefeat == nil {
		return
	}
	color := w.Color
	if len(area.WalkerColors) > 0 {
		color = area.WalkerColors[m.rng.Intn(len(area.WalkerColors))]
	}
	m.onDefeat(DefeatEvent{
		Position: w.Position,
		Color:    color,
		Souls:    m.baseSoul * area.SoulMultiplier,
		Area:     area.ID,
	})
}

// ApplySpeedMultiplier re-reads the upgrade multiplier into every live zombie.
func (m *ZombieManager) ApplySpeedMultiplier() {
	mult := m.collab.Upgrades.ZombieSpeedMultiplier()
	for _, z := range m.zombies {
		z.Speed = z.BaseSpeed * mult
	}
}

// Clear removes every zombie and returns how many were removed.
func (m *ZombieManager) Clear() int {
	n := len(m.zombies)
	for i, z := range m.zombies {
		m.zombies[i] = nil
		m.pool.Release(z)
	}
	m.zombies = m.zombies[:0]
	return n
}

// Count returns the number of live zombies.
func (m *ZombieManager) Count() int {
	return len(m.zombies)
}

// Zombies returns the live list. Callers must not retain it across steps.
func (m *ZombieManager) Zombies() []*Zombie {
	return m.zombies
}

// AttackConfig returns the validated attack profile.
func (m *ZombieManager) AttackConfig() AttackConfig {
	return m.attack
}

// SetAttackConfig swaps the attack profile after validation.
func (m *ZombieManager) SetAttackConfig(cfg AttackConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.attack = cfg
	return nil
}

func (m *ZombieManager) Stats() ZombieStats {
	return ZombieStats{
		Live:       len(m.zombies),
		Max:        m.collab.Upgrades.MaxZombies(),
		Spawned:    m.spawned,
		Rejected:   m.rejected,
		Defeats:    m.defeats,
		Multiplier: m.collab.Upgrades.ZombieSpeedMultiplier(),
		Pool:       m.pool.Stats(),
	}
}
