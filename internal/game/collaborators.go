package game

import (
	"time"

	"soul-harvest/internal/config"
)

// Ledger receives soul awards and tracks defeats.
type Ledger interface {
	AwardSouls(base, multiplier float64)
	IncrementWalkersDefeated()
	Souls() float64
	WalkersDefeated() int
	SpendSouls(amount float64) bool
}

// UpgradeSource supplies the upgrade-derived zombie stats.
type UpgradeSource interface {
	ZombieSpeedMultiplier() float64
	MaxZombies() int
}

// AreaSource supplies the active area's walker stats.
type AreaSource interface {
	CurrentArea() config.AreaConfig
}

// Collaborators bundles the external state the managers read and write.
type Collaborators struct {
	Ledger   Ledger
	Upgrades UpgradeSource
	Areas    AreaSource
}

// Renderer draws one immutable snapshot per displayed frame.
// Errors are logged by the engine and never stop the loop.
type Renderer interface {
	Render(snap *GameSnapshot) error
}

// MetricsSink receives per-frame measurements. The engine calls it from the
// simulation goroutine only.
type MetricsSink interface {
	ObserveFrame(d time.Duration, steps int)
	SetPopulation(walkers, zombies, particles int)
	SetPerformance(level PerformanceLevel, fps float64)
	WalkerDefeated(souls float64)
	SpawnRejected()
	RenderFailed()
}

// Economy groups the collaborators the purchase and area commands need.
// Implementations live outside the core.
type Economy interface {
	Ledger() Ledger
	Upgrades() UpgradeSource
	Areas() AreaSource
	PurchaseUpgrade(kind string) (level int, err error)
	SelectArea(id int) error
	CheckProgress() (changed bool)
	Version() uint64
	State() EconomyState
}

// EconomyState is the persisted and displayed economy summary.
type EconomyState struct {
	Souls           float64            `json:"souls" yaml:"souls"`
	WalkersDefeated int                `json:"walkersDefeated" yaml:"walkersDefeated"`
	CurrentArea     int                `json:"currentArea" yaml:"currentArea"`
	AreaName        string             `json:"areaName" yaml:"-"`
	Upgrades        map[string]int     `json:"upgrades" yaml:"upgrades"`
	NextCosts       map[string]float64 `json:"nextCosts" yaml:"-"`
	MaxZombies      int                `json:"maxZombies" yaml:"-"`
	SpeedMultiplier float64            `json:"speedMultiplier" yaml:"-"`
	Version         uint64             `json:"version" yaml:"-"`
}

// DefeatEvent describes one walker defeat for visual collaborators.
type DefeatEvent struct {
	Position Vector2 `json:"position"`
	Color    string  `json:"color"`
	Souls    float64 `json:"souls"`
	Area     int     `json:"area"`
}

type nopMetrics struct{}

func (nopMetrics) ObserveFrame(time.Duration, int)          {}
func (nopMetrics) SetPopulation(int, int, int)              {}
func (nopMetrics) SetPerformance(PerformanceLevel, float64) {}
func (nopMetrics) WalkerDefeated(float64)                   {}
func (nopMetrics) SpawnRejected()                           {}
func (nopMetrics) RenderFailed()                            {}
