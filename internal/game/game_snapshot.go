package game

import (
	"sync/atomic"
	"time"
)

// WalkerSnapshot is an immutable copy of walker state for rendering
type WalkerSnapshot struct {
	ID        uint64  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Size      float64 `json:"size"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	Color     string  `json:"color"`
	Area      int     `json:"area"`
}

// ZombieSnapshot is an immutable copy of zombie state for rendering
type ZombieSnapshot struct {
	ID       uint64  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	TargetID uint64  `json:"targetId,omitempty"`
}

// ParticleSnapshot is an immutable particle for rendering
type ParticleSnapshot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	Color string  `json:"color"`
	Alpha float64 `json:"alpha"`
}

// EngineStats aggregates subsystem counters.
type EngineStats struct {
	Steps          uint64           `json:"steps"`
	Frames         uint64           `json:"frames"`
	ClampedFrames  uint64           `json:"clampedFrames"`
	RenderFailures uint64           `json:"renderFailures"`
	Updated        int              `json:"updatedLastStep"`
	Performance    PerformanceStats `json:"performance"`
	Walkers        WalkerStats      `json:"walkers"`
	Zombies        ZombieStats      `json:"zombies"`
	Attacks        AttackStats      `json:"attacks"`
	Particles      PoolStats        `json:"particles"`
}

// GameSnapshot is a complete immutable game state for one displayed frame.
// Once published it is never mutated, so any goroutine may read it.
type GameSnapshot struct {
	Sequence  uint64        `json:"sequence"`
	Timestamp time.Time     `json:"timestamp"`
	Step      uint64        `json:"step"`
	SimTime   time.Duration `json:"simTimeNs"`
	Alpha     float64       `json:"alpha"`
	Paused    bool          `json:"paused"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	RNGSeed   int64         `json:"rngSeed"`

	Walkers   []WalkerSnapshot   `json:"walkers"`
	Zombies   []ZombieSnapshot   `json:"zombies"`
	Particles []ParticleSnapshot `json:"particles"`
	Truncated bool               `json:"truncated"`

	// Defeats since the previous snapshot, for one-shot visual and audio cues
	Defeats []DefeatEvent `json:"defeats"`

	Economy EconomyState `json:"economy"`
	Stats   EngineStats  `json:"stats"`
}

// SnapshotBuffer publishes the latest snapshot for lock-free readers.
type SnapshotBuffer struct {
	latest   atomic.Pointer[GameSnapshot]
	sequence atomic.Uint64
}

// Publish stamps snap with the next sequence number and makes it current.
// The caller must not touch snap afterwards.
func (b *SnapshotBuffer) Publish(snap *GameSnapshot) {
	snap.Sequence = b.sequence.Add(1)
	b.latest.Store(snap)
}

// Latest returns the most recent snapshot, or nil before the first frame.
func (b *SnapshotBuffer) Latest() *GameSnapshot {
	return b.latest.Load()
}
