package game

import "time"

// Entity is the shared body of every simulated object.
// Active=false marks logical death: the entity is no longer updated,
// rendered or targeted, and may be recycled through a pool.
type Entity struct {
	ID       uint64
	Position Vector2
	Velocity Vector2
	Size     float64
	Active   bool

	// Culling state, owned by EntityCuller.
	priority    float64
	hasPriority bool
	skip        bool

	// Collision pushes carried into later steps so steering does not
	// overwrite them. Decays by nudgeRetain per integration.
	nudge Vector2
}

// nudgeRetain is the share of the carried collision push kept each step.
const nudgeRetain = 0.95

// Body returns the entity itself. Types that embed Entity satisfy HasBody.
func (e *Entity) Body() *Entity {
	return e
}

// Integrate advances position by velocity over dt seconds.
func (e *Entity) Integrate(dt float64) {
	e.Position = e.Position.Add(e.Velocity.Scale(dt))
	e.nudge = e.nudge.Scale(nudgeRetain)
	if e.nudge.LengthSq() < 1e-6 {
		e.nudge = Vector2{}
	}
}

// Push adds a collision impulse to velocity now and carries it into the
// following steps.
func (e *Entity) Push(v Vector2) {
	e.Velocity = e.Velocity.Add(v)
	e.nudge = e.nudge.Add(v)
}

// Steer sets velocity to the desired heading plus any carried push.
func (e *Entity) Steer(desired Vector2) {
	e.Velocity = desired.Add(e.nudge)
}

// resetBody restores the pooled-reuse invariants: zero motion, active.
func (e *Entity) resetBody() {
	e.Position = Vector2{}
	e.Velocity = Vector2{}
	e.nudge = Vector2{}
	e.Active = true
	e.priority = 0
	e.hasPriority = false
	e.skip = false
}

// Priority returns the culling priority, or def if none was set.
func (e *Entity) Priority(def float64) float64 {
	if !e.hasPriority {
		return def
	}
	return e.priority
}

// Skipped reports whether the current step's update plan skips this entity.
func (e *Entity) Skipped() bool {
	return e.skip
}

// =============================================================================
// CAPABILITIES
// =============================================================================

// HasBody is anything with position, size and an active flag.
type HasBody interface {
	Body() *Entity
}

// Damageable can receive attacks.
// TakeDamage reports whether this call moved the target from alive to defeated.
type Damageable interface {
	HasBody
	TakeDamage(amount float64) bool
}

// Attacker carries a cooldown stamp on the simulation clock.
type Attacker interface {
	HasBody
	LastAttack() (at time.Duration, ok bool)
	MarkAttack(now time.Duration)
}
