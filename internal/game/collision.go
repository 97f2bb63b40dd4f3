package game

import (
	"math"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game/spatial"
)

// CollisionSystem applies separation forces and play-field containment.
// Separation is a velocity nudge repeated every step, never a position snap.
type CollisionSystem struct {
	cfg  config.CollisionConfig
	grid *spatial.SpatialGrid

	// Scratch, reused every call
	pushes []Vector2
}

// NewCollisionSystem builds the broad-phase grid for a worldW x worldH field.
func NewCollisionSystem(cfg config.CollisionConfig, worldW, worldH float64) *CollisionSystem {
	if cfg.FrameSeconds <= 0 {
		cfg.FrameSeconds = 1.0 / 60.0
	}
	return &CollisionSystem{
		cfg:  cfg,
		grid: spatial.NewSpatialGrid(worldW, worldH, cfg.GridCellSize, 256),
	}
}

// ApplySeparation pushes overlapping active entities apart.
// Pairs closer than (sizeA+sizeB)/2 + buffer each contribute a unit push
// weighted by (min-d)/min; the average is scaled by force*FrameSeconds and
// added to velocity. All pushes are computed from positions before any
// velocity changes, so iteration order does not matter.
func ApplySeparation[T HasBody](c *CollisionSystem, entities []T, force float64) {
	n := len(entities)
	if n < 2 {
		return
	}

	c.grid.Clear()
	maxSize := 0.0
	for i, e := range entities {
		b := e.Body()
		if !b.Active {
			continue
		}
		c.grid.Insert(uint32(i), b.Position.X, b.Position.Y)
		maxSize = math.Max(maxSize, b.Size)
	}

	if cap(c.pushes) < n {
		c.pushes = make([]Vector2, n)
	}
	c.pushes = c.pushes[:n]

	buffer := c.cfg.SeparationBuffer
	for i, e := range entities {
		a := e.Body()
		c.pushes[i] = Vector2{}
		if !a.Active {
			continue
		}

		var sum Vector2
		neighbours := 0
		radius := (a.Size+maxSize)/2 + buffer
		for _, j := range c.grid.QueryRadius(a.Position.X, a.Position.Y, radius) {
			if int(j) == i {
				continue
			}
			b := entities[j].Body()
			minDist := (a.Size+b.Size)/2 + buffer
			d := a.Position.Distance(b.Position)
			if d >= minDist || minDist <= 0 {
				continue
			}

			var dir Vector2
			if d == 0 {
				dir = coincidentAxis(a, b)
			} else {
				dir = a.Position.Sub(b.Position).Scale(1 / d)
			}
			sum = sum.Add(dir.Scale((minDist - d) / minDist))
			neighbours++
		}
		if neighbours > 0 {
			c.pushes[i] = sum.Scale(1 / float64(neighbours))
		}
	}

	k := force * c.cfg.FrameSeconds
	for i, e := range entities {
		if p := c.pushes[i]; !p.IsZero() {
			e.Body().Push(p.Scale(k))
		}
	}
}

// coincidentAxis splits two entities at the same point along X, lower ID left.
func coincidentAxis(a, b *Entity) Vector2 {
	if a.ID < b.ID {
		return Vec(-1, 0)
	}
	return Vec(1, 0)
}

// ApplyBoundaryCollision keeps e inside [size/2, dim-size/2] on both axes.
// Inside the soft margin an inward force grows with penetration depth;
// at the hard edge position is clamped and outward velocity removed.
func (c *CollisionSystem) ApplyBoundaryCollision(e HasBody, width, height, bounceForce float64) {
	b := e.Body()
	if !b.Active {
		return
	}
	half := b.Size / 2
	soft := c.cfg.SoftMargin

	push := Vec(
		c.softPush(b.Position.X, half, width, soft, bounceForce),
		c.softPush(b.Position.Y, half, height, soft, bounceForce),
	)
	if !push.IsZero() {
		b.Push(push)
	}

	b.Position.X, b.Velocity.X = hardEdge(b.Position.X, b.Velocity.X, half, width-half)
	b.Position.Y, b.Velocity.Y = hardEdge(b.Position.Y, b.Velocity.Y, half, height-half)
	// A carried push never drives into a wall already reached
	_, b.nudge.X = hardEdge(b.Position.X, b.nudge.X, half, width-half)
	_, b.nudge.Y = hardEdge(b.Position.Y, b.nudge.Y, half, height-half)
}

func (c *CollisionSystem) softPush(pos, half, dim, soft, bounce float64) float64 {
	if soft <= 0 {
		return 0
	}
	var push float64
	if depth := (half + soft) - pos; depth > 0 {
		push += bounce * math.Min(1, depth/soft) * c.cfg.FrameSeconds
	}
	if depth := pos - (dim - half - soft); depth > 0 {
		push -= bounce * math.Min(1, depth/soft) * c.cfg.FrameSeconds
	}
	return push
}

func hardEdge(pos, vel, lo, hi float64) (float64, float64) {
	if lo > hi {
		return clamp(pos, lo, hi), 0
	}
	if pos <= lo {
		pos = lo
		if vel < 0 {
			vel = 0
		}
	}
	if pos >= hi {
		pos = hi
		if vel > 0 {
			vel = 0
		}
	}
	return pos, vel
}

// AreColliding reports whether two active bodies overlap.
func AreColliding(a, b HasBody) bool {
	ab, bb := a.Body(), b.Body()
	if !ab.Active || !bb.Active {
		return false
	}
	return CollisionDistance(a, b) < 0
}

// CollisionDistance is the gap between two bodies; negative means overlap.
func CollisionDistance(a, b HasBody) float64 {
	ab, bb := a.Body(), b.Body()
	return ab.Position.Distance(bb.Position) - (ab.Size+bb.Size)/2
}

// GridStats exposes broad-phase occupancy from the last separation pass.
func (c *CollisionSystem) GridStats() spatial.GridStats {
	return c.grid.Stats()
}
