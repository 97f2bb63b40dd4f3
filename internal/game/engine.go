package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"soul-harvest/internal/config"
)

// FixedTimeStep is the size of one simulation step. It is an integer
// Duration so that any chunking of the same wall-clock span yields the
// same number of steps.
const FixedTimeStep = time.Second / 60

// Engine is the fixed-timestep driver. It owns every manager, pool and
// entity. Frame and the direct control methods must be called from one
// goroutine; other goroutines use Submit and Snapshot.
type Engine struct {
	cfg           config.AppConfig
	width, height float64
	maxSteps      int

	// Loop state
	lastTime    time.Duration
	hasLastTime bool
	accumulator time.Duration
	paused      bool
	simTime     time.Duration
	steps       uint64
	frames      uint64
	clamped     uint64
	updated     int

	rng     *rand.Rand
	rngSeed int64
	ids     idSource

	monitor   *PerformanceMonitor
	culler    *EntityCuller
	collision *CollisionSystem
	attacks   *AttackSystem
	walkers   *WalkerManager
	zombies   *ZombieManager
	particles *ParticleSystem

	economy  Economy
	renderer Renderer
	metrics  MetricsSink
	eventLog *EventLog

	queue     *commandQueue
	snapshots SnapshotBuffer

	// Scratch for the update plan
	bodies []HasBody

	pendingDefeats []DefeatEvent
	renderFailures uint64

	// Frame source (engine_run.go)
	runMu   sync.Mutex
	running bool
	stop    func()
	done    chan struct{}
}

// Option customises an Engine.
type Option func(*Engine)

// WithRenderer attaches a render surface.
func WithRenderer(r Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m MetricsSink) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithEventLog attaches a started event log.
func WithEventLog(l *EventLog) Option {
	return func(e *Engine) { e.eventLog = l }
}

// NewEngine wires every subsystem. cfg.World.Seed == 0 seeds from the clock.
func NewEngine(cfg config.AppConfig, economy Economy, opts ...Option) (*Engine, error) {
	if economy == nil {
		return nil, ErrNoEconomy
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	seed := cfg.World.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	e := &Engine{
		cfg:      cfg,
		width:    cfg.World.Width,
		height:   cfg.World.Height,
		maxSteps: cfg.Loop.MaxStepsPerFrame,
		rng:      rng,
		rngSeed:  seed,
		economy:  economy,
		metrics:  nopMetrics{},
		queue:    newCommandQueue(cfg.Loop.InputBuffer),
	}

	e.monitor = NewPerformanceMonitor(cfg.Performance)
	e.culler = NewEntityCuller(cfg.Culling, e.monitor, rng)
	e.collision = NewCollisionSystem(cfg.Collision, e.width, e.height)
	e.attacks = NewAttackSystem()

	collab := Collaborators{
		Ledger:   economy.Ledger(),
		Upgrades: economy.Upgrades(),
		Areas:    economy.Areas(),
	}

	var err error
	if e.walkers, err = NewWalkerManager(cfg.Population, cfg.World, collab.Areas, rng, &e.ids); err != nil {
		return nil, err
	}
	if e.zombies, err = NewZombieManager(cfg.Population, cfg.Combat, cfg.World, e.attacks, collab, rng, &e.ids); err != nil {
		return nil, err
	}
	if e.particles, err = NewParticleSystem(cfg.Population, e.monitor, rng); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(e)
	}

	e.zombies.OnDefeat(e.handleDefeat)
	e.monitor.Subscribe(func(from, to PerformanceLevel) {
		e.emit(EventTypeLevelChange, "", LevelPayload{From: from.String(), To: to.String(), FPS: e.monitor.FPS()})
	})

	return e, nil
}

// FrameResult reports what one displayed frame did.
type FrameResult struct {
	Steps   int
	Alpha   float64
	Paused  bool
	Clamped bool
	Dropped time.Duration // Backlog discarded by the catch-up clamp
}

// Frame advances the loop to wall-clock time now and renders once.
// Input is drained first; the pause toggle is always serviced.
func (e *Engine) Frame(now time.Duration) FrameResult {
	started := time.Now()

	if !e.hasLastTime {
		e.hasLastTime = true
		e.lastTime = now
	}
	delta := now - e.lastTime
	if delta < 0 {
		delta = 0
	}
	e.lastTime = now
	e.frames++

	e.queue.drain(func(cmd Command) {
		res := e.apply(cmd)
		if cmd.reply != nil {
			cmd.reply <- res
		}
	})

	var res FrameResult
	if !e.paused {
		e.accumulator += delta
		if ceiling := FixedTimeStep * time.Duration(e.maxSteps); e.accumulator > ceiling {
			res.Clamped = true
			res.Dropped = e.accumulator - ceiling
			e.accumulator = ceiling
			e.clamped++
		}
		for e.accumulator >= FixedTimeStep {
			e.step()
			e.accumulator -= FixedTimeStep
			res.Steps++
		}
		res.Alpha = float64(e.accumulator) / float64(FixedTimeStep)
	}
	res.Paused = e.paused

	e.monitor.RecordFrame(now)
	e.render(res.Alpha)

	e.metrics.ObserveFrame(time.Since(started), res.Steps)
	e.metrics.SetPerformance(e.monitor.Level(), e.monitor.FPS())
	e.metrics.SetPopulation(len(e.walkers.Active()), e.zombies.Count(), e.particles.Count())
	return res
}

// step runs one fixed simulation step in the required order.
func (e *Engine) step() {
	dt := FixedTimeStep
	e.simTime += dt
	e.steps++

	e.plan()

	e.walkers.Update(dt)

	defeatsBefore := len(e.pendingDefeats)
	e.zombies.Update(dt, e.walkers.Active(), e.simTime)

	walkers := e.walkers.Walkers()
	zombies := e.zombies.Zombies()
	ApplySeparation(e.collision, walkers, e.cfg.Collision.WalkerSeparation)
	ApplySeparation(e.collision, zombies, e.cfg.Collision.ZombieSeparation)
	for _, w := range walkers {
		e.collision.ApplyBoundaryCollision(w, e.width, e.height, e.cfg.Collision.BounceForce)
	}
	for _, z := range zombies {
		e.collision.ApplyBoundaryCollision(z, e.width, e.height, e.cfg.Collision.BounceForce)
	}

	e.particles.Update(dt)

	if len(e.pendingDefeats) > defeatsBefore {
		e.checkProgress()
	}

	e.monitor.ReportCounts(len(walkers)+len(zombies), e.particles.Count())
	e.emit(EventTypeStep, "", StepPayload{RNGSeed: e.rngSeed, Walkers: len(walkers), Zombies: len(zombies)})
}

// plan marks which entities get a full update this step.
func (e *Engine) plan() {
	e.bodies = e.bodies[:0]
	for _, w := range e.walkers.Walkers() {
		e.bodies = append(e.bodies, w)
	}
	for _, z := range e.zombies.Zombies() {
		e.bodies = append(e.bodies, z)
	}
	e.updated = e.culler.Plan(e.bodies, e.cfg.World.ViewportWidth, e.cfg.World.ViewportHeight)
	for i := range e.bodies {
		e.bodies[i] = nil
	}
}

func (e *Engine) handleDefeat(ev DefeatEvent) {
	e.pendingDefeats = append(e.pendingDefeats, ev)
	e.particles.Burst(ev.Position, ev.Color)
	e.metrics.WalkerDefeated(ev.Souls)
	e.emit(EventTypeWalkerDefeated, "", ev)
}

func (e *Engine) checkProgress() {
	from := e.economy.Areas().CurrentArea().ID
	if !e.economy.CheckProgress() {
		return
	}
	to := e.economy.Areas().CurrentArea().ID
	n := e.walkers.RefreshArea()
	log.Printf("🗺️ Area unlocked: %d -> %d (%d walkers refreshed)", from, to, n)
	e.emit(EventTypeAreaChange, "", AreaPayload{From: from, To: to, Automatic: true})
}

func (e *Engine) emit(t EventType, source string, payload interface{}) {
	if e.eventLog == nil {
		return
	}
	e.eventLog.EmitSimple(t, e.steps, e.simTime, source, payload)
}

// =============================================================================
// DIRECT CONTROL (simulation goroutine only)
// =============================================================================

// TogglePause flips the pause state and returns the new value.
func (e *Engine) TogglePause() bool {
	e.paused = !e.paused
	if e.paused {
		log.Printf("⏸️ Simulation paused at step %d", e.steps)
	} else {
		log.Printf("▶️ Simulation resumed at step %d", e.steps)
	}
	e.emit(EventTypePause, "", PausePayload{Paused: e.paused})
	return e.paused
}

// Paused reports the pause state.
func (e *Engine) Paused() bool {
	return e.paused
}

// SpawnZombie spawns at p. It returns false while paused or at the cap.
func (e *Engine) SpawnZombie(p Vector2) bool {
	if e.paused {
		e.metrics.SpawnRejected()
		return false
	}
	return e.spawnZombie(p, "")
}

func (e *Engine) spawnZombie(p Vector2, source string) bool {
	payload := SpawnPayload{X: p.X, Y: p.Y, Max: e.economy.Upgrades().MaxZombies()}
	if !e.zombies.Spawn(p) {
		payload.Count = e.zombies.Count()
		e.metrics.SpawnRejected()
		e.emit(EventTypeSpawnRejected, source, payload)
		return false
	}
	payload.Count = e.zombies.Count()
	e.emit(EventTypeZombieSpawn, source, payload)
	return true
}

// PurchaseUpgrade buys one level and applies it to live zombies immediately.
func (e *Engine) PurchaseUpgrade(kind string) (int, error) {
	if e.paused {
		return 0, ErrPaused
	}
	level, err := e.economy.PurchaseUpgrade(kind)
	if err != nil {
		return level, err
	}
	e.zombies.ApplySpeedMultiplier()
	log.Printf("⬆️ Upgrade %s -> level %d", kind, level)
	e.emit(EventTypeUpgrade, "", UpgradePayload{Kind: kind, Level: level})
	return level, nil
}

// SelectArea switches to an unlocked area and refreshes live walkers.
func (e *Engine) SelectArea(id int) error {
	if e.paused {
		return ErrPaused
	}
	from := e.economy.Areas().CurrentArea().ID
	if err := e.economy.SelectArea(id); err != nil {
		return err
	}
	e.walkers.RefreshArea()
	e.emit(EventTypeAreaChange, "", AreaPayload{From: from, To: id})
	return nil
}

// ApplyUpgrades re-reads upgrade levels into live zombies.
func (e *Engine) ApplyUpgrades() {
	e.zombies.ApplySpeedMultiplier()
}

// RefreshArea re-reads the current area into live walkers.
func (e *Engine) RefreshArea() int {
	return e.walkers.RefreshArea()
}

// ClearZombies removes every zombie.
func (e *Engine) ClearZombies() int {
	n := e.zombies.Clear()
	if n > 0 {
		log.Printf("🧹 Cleared %d zombies", n)
	}
	return n
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (e *Engine) Walkers() *WalkerManager      { return e.walkers }
func (e *Engine) Zombies() *ZombieManager      { return e.zombies }
func (e *Engine) Particles() *ParticleSystem   { return e.particles }
func (e *Engine) Monitor() *PerformanceMonitor { return e.monitor }
func (e *Engine) Culler() *EntityCuller        { return e.culler }
func (e *Engine) Collision() *CollisionSystem  { return e.collision }
func (e *Engine) Attacks() *AttackSystem       { return e.attacks }
func (e *Engine) SimTime() time.Duration       { return e.simTime }
func (e *Engine) Steps() uint64                { return e.steps }
func (e *Engine) Accumulator() time.Duration   { return e.accumulator }
func (e *Engine) Seed() int64                  { return e.rngSeed }

// Snapshot returns the latest published frame. Safe from any goroutine.
func (e *Engine) Snapshot() *GameSnapshot {
	return e.snapshots.Latest()
}
