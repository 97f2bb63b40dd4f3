package game

import (
	"math"
	"math/rand"
	"sort"

	"soul-harvest/internal/config"
)

// EntityCuller bounds per-step work by choosing which active entities get a
// full update. Culling never removes entities from their population.
type EntityCuller struct {
	cfg     config.CullingConfig
	monitor *PerformanceMonitor
	rng     *rand.Rand

	// Reused across calls to avoid per-step allocation
	scored []scoredIndex
}

type scoredIndex struct {
	idx   int
	score float64
}

// NewEntityCuller wires the culler to the monitor it takes policy from.
func NewEntityCuller(cfg config.CullingConfig, monitor *PerformanceMonitor, rng *rand.Rand) *EntityCuller {
	return &EntityCuller{
		cfg:     cfg,
		monitor: monitor,
		rng:     rng,
	}
}

// Cull returns the entities that should be simulated this step.
// maxCount <= 0 means "use the monitor's cap". The result never exceeds
// max(maxCount, monitor cap) and is the full active set when that fits.
// The returned slice may alias entities.
func Cull[T HasBody](c *EntityCuller, entities []T, viewportW, viewportH float64, maxCount int) []T {
	if !c.monitor.ShouldCullEntities() && maxCount <= 0 {
		return entities
	}

	limit := c.monitor.MaxEntities()
	if maxCount > 0 {
		limit = maxCount
	}

	active := make([]T, 0, len(entities))
	for _, e := range entities {
		if e.Body().Active {
			active = append(active, e)
		}
	}
	if len(active) <= limit {
		return active
	}

	// First pass: viewport plus margin
	m := c.cfg.ViewportMargin
	visible := active[:0]
	for _, e := range active {
		p := e.Body().Position
		if p.X >= -m && p.X <= viewportW+m && p.Y >= -m && p.Y <= viewportH+m {
			visible = append(visible, e)
		}
	}
	if len(visible) <= limit {
		return visible
	}

	// Second pass: keep the highest scoring
	center := Vec(viewportW/2, viewportH/2)
	maxDist := math.Hypot(viewportW/2+m, viewportH/2+m)
	c.scored = c.scored[:0]
	for i, e := range visible {
		b := e.Body()
		closeness := 1.0
		if maxDist > 0 {
			closeness = 1 - math.Min(1, b.Position.Distance(center)/maxDist)
		}
		score := c.cfg.DistanceWeight*closeness + c.cfg.PriorityWeight*b.Priority(c.cfg.DefaultPriority)
		c.scored = append(c.scored, scoredIndex{idx: i, score: score})
	}
	sort.SliceStable(c.scored, func(i, j int) bool {
		return c.scored[i].score > c.scored[j].score
	})

	out := make([]T, 0, limit)
	for _, s := range c.scored[:limit] {
		out = append(out, visible[s.idx])
	}
	return out
}

// ShouldSkipUpdate rolls whether e sits out this step.
// At full update frequency nothing is skipped and no randomness is consumed.
func (c *EntityCuller) ShouldSkipUpdate(e HasBody, viewportW, viewportH float64) bool {
	freq := c.monitor.EntityUpdateFrequency()
	if freq >= 1.0 {
		return false
	}
	if c.rng.Float64() < 1-freq {
		return true
	}

	dist := e.Body().Position.Distance(Vec(viewportW/2, viewportH/2))
	if dist > c.cfg.DistanceThreshold {
		p := math.Min(c.cfg.MaxDistanceSkip, (dist-c.cfg.DistanceThreshold)/c.cfg.DistanceFalloff)
		return c.rng.Float64() < p
	}
	return false
}

// SetEntityPriority stores a culling priority clamped to [0,1].
func (c *EntityCuller) SetEntityPriority(e HasBody, value float64) {
	b := e.Body()
	b.priority = clamp(value, 0, 1)
	b.hasPriority = true
}

// Plan marks every entity's skip flag for the coming step.
// Entities not selected by Cull are skipped outright.
func (c *EntityCuller) Plan(entities []HasBody, viewportW, viewportH float64) (updated int) {
	kept := Cull(c, entities, viewportW, viewportH, 0)
	if len(kept) == len(entities) {
		for _, e := range entities {
			b := e.Body()
			b.skip = b.Active && c.ShouldSkipUpdate(e, viewportW, viewportH)
			if b.Active && !b.skip {
				updated++
			}
		}
		return updated
	}

	for _, e := range entities {
		e.Body().skip = true
	}
	for _, e := range kept {
		b := e.Body()
		b.skip = c.ShouldSkipUpdate(e, viewportW, viewportH)
		if !b.skip {
			updated++
		}
	}
	return updated
}
