package game

import "time"

// Walker is an autonomous wanderer and the zombies' prey.
type Walker struct {
	Entity

	Speed     float64
	BaseSpeed float64
	Target    Vector2

	Health    float64
	MaxHealth float64
	SoulValue float64
	AreaLevel int
	Color     string

	// Time since the last retarget, and the rolled interval until the next.
	RetargetTimer    time.Duration
	RetargetInterval time.Duration
}

// TakeDamage subtracts amount and deactivates the walker when health
// reaches zero. Only the call that crosses zero returns true; inactive
// walkers ignore further damage.
func (w *Walker) TakeDamage(amount float64) bool {
	if !w.Active || amount <= 0 {
		return false
	}
	w.Health -= amount
	if w.Health > 0 {
		return false
	}
	w.Health = 0
	w.Active = false
	w.Velocity, w.nudge = Vector2{}, Vector2{}
	return true
}

// HealthFraction is Health/MaxHealth in [0,1].
func (w *Walker) HealthFraction() float64 {
	if w.MaxHealth <= 0 {
		return 0
	}
	return clamp(w.Health/w.MaxHealth, 0, 1)
}

func resetWalker(w *Walker) {
	w.resetBody()
	w.Speed = 0
	w.BaseSpeed = 0
	w.Target = Vector2{}
	w.Health = 0
	w.MaxHealth = 0
	w.SoulValue = 0
	w.AreaLevel = 0
	w.Color = ""
	w.RetargetTimer = 0
	w.RetargetInterval = 0
}

// idSource hands out entity IDs. Owned by the engine.
type idSource struct {
	next uint64
}

func (s *idSource) Next() uint64 {
	s.next++
	return s.next
}
