package game

import "time"

// Zombie is a player-spawned hunter. Zombies have no natural death; they
// leave only when the population is cleared.
type Zombie struct {
	Entity

	BaseSpeed float64
	Speed     float64
	SeekRange float64

	// Target is nil or an active walker within SeekRange, rescanned every step.
	Target *Walker

	lastAttack  time.Duration
	hasAttacked bool
}

// LastAttack returns the simulation time of the previous attack, if any.
func (z *Zombie) LastAttack() (time.Duration, bool) {
	return z.lastAttack, z.hasAttacked
}

// MarkAttack stamps the cooldown.
func (z *Zombie) MarkAttack(now time.Duration) {
	z.lastAttack = now
	z.hasAttacked = true
}

func resetZombie(z *Zombie) {
	z.resetBody()
	z.BaseSpeed = 0
	z.Speed = 0
	z.SeekRange = 0
	z.Target = nil
	z.lastAttack = 0
	z.hasAttacked = false
}
