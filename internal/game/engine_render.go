package game

import (
	"fmt"
	"log"
	"time"
)

// render publishes this frame's snapshot and hands it to the renderer.
// Render errors and panics are counted and logged, never propagated.
func (e *Engine) render(alpha float64) {
	snap := e.buildSnapshot(alpha)
	e.snapshots.Publish(snap)

	if e.renderer == nil {
		return
	}
	e.monitor.RecordRenderCall()
	if err := safeRender(e.renderer, snap); err != nil {
		e.renderFailures++
		e.metrics.RenderFailed()
		every := uint64(e.cfg.Loop.RenderLogEvery)
		if every == 0 || e.renderFailures%every == 1 {
			log.Printf("⚠️ Render failed (%d total): %v", e.renderFailures, err)
		}
	}
}

func safeRender(r Renderer, snap *GameSnapshot) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("renderer panic: %v", rec)
		}
	}()
	return r.Render(snap)
}

// buildSnapshot copies the visible state into fresh slices.
func (e *Engine) buildSnapshot(alpha float64) *GameSnapshot {
	limit := e.cfg.Loop.SnapshotLimit
	if limit <= 0 {
		limit = 2000
	}

	walkers := e.walkers.Walkers()
	zombies := e.zombies.Zombies()
	particles := e.particles.Live()

	snap := &GameSnapshot{
		Timestamp: time.Now(),
		Step:      e.steps,
		SimTime:   e.simTime,
		Alpha:     alpha,
		Paused:    e.paused,
		Width:     e.width,
		Height:    e.height,
		RNGSeed:   e.rngSeed,
		Walkers:   make([]WalkerSnapshot, 0, min(len(walkers), limit)),
		Zombies:   make([]ZombieSnapshot, 0, min(len(zombies), limit)),
		Particles: make([]ParticleSnapshot, 0, min(len(particles), limit)),
		Economy:   e.economy.State(),
	}

	for _, w := range walkers {
		if !w.Active {
			continue
		}
		if len(snap.Walkers) >= limit {
			snap.Truncated = true
			break
		}
		snap.Walkers = append(snap.Walkers, WalkerSnapshot{
			ID:        w.ID,
			X:         w.Position.X,
			Y:         w.Position.Y,
			Size:      w.Size,
			Health:    w.Health,
			MaxHealth: w.MaxHealth,
			Color:     w.Color,
			Area:      w.AreaLevel,
		})
	}
	for _, z := range zombies {
		if !z.Active {
			continue
		}
		if len(snap.Zombies) >= limit {
			snap.Truncated = true
			break
		}
		zs := ZombieSnapshot{ID: z.ID, X: z.Position.X, Y: z.Position.Y, Size: z.Size}
		if z.Target != nil && z.Target.Active {
			zs.TargetID = z.Target.ID
		}
		snap.Zombies = append(snap.Zombies, zs)
	}
	for _, p := range particles {
		if len(snap.Particles) >= limit {
			snap.Truncated = true
			break
		}
		snap.Particles = append(snap.Particles, ParticleSnapshot{
			X:     p.Position.X,
			Y:     p.Position.Y,
			Size:  p.Size,
			Color: p.Color,
			Alpha: p.Alpha(),
		})
	}

	if len(e.pendingDefeats) > 0 {
		snap.Defeats = e.pendingDefeats
		e.pendingDefeats = nil
	}

	snap.Stats = EngineStats{
		Steps:          e.steps,
		Frames:         e.frames,
		ClampedFrames:  e.clamped,
		RenderFailures: e.renderFailures,
		Updated:        e.updated,
		Performance:    e.monitor.Stats(),
		Walkers:        e.walkers.Stats(),
		Zombies:        e.zombies.Stats(),
		Attacks:        e.attacks.Stats(),
		Particles:      e.particles.Pool().Stats(),
	}
	return snap
}
