package economy

import (
	"fmt"
	"math"
	"sort"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game"
)

// Upgrade kinds.
const (
	UpgradeZombieSpeed    = "zombie_speed"
	UpgradeZombieCapacity = "zombie_capacity"
)

const (
	baseMaxZombies      = 10
	zombiesPerLevel     = 5
	speedBonusPerLevel  = 0.2
	baseSpeedMultiplier = 1.0
)

// Upgrades tracks purchased levels per kind.
type Upgrades struct {
	tracks  map[string]config.UpgradeConfig
	levels  map[string]int
	version *uint64
}

// NewUpgrades creates level-zero tracks.
func NewUpgrades(cfg config.UpgradesConfig, version *uint64) *Upgrades {
	if version == nil {
		version = new(uint64)
	}
	return &Upgrades{
		tracks: map[string]config.UpgradeConfig{
			UpgradeZombieSpeed:    cfg.ZombieSpeed,
			UpgradeZombieCapacity: cfg.ZombieCapacity,
		},
		levels: map[string]int{
			UpgradeZombieSpeed:    0,
			UpgradeZombieCapacity: 0,
		},
		version: version,
	}
}

// ZombieSpeedMultiplier is 1 + 0.2 per speed level.
func (u *Upgrades) ZombieSpeedMultiplier() float64 {
	return baseSpeedMultiplier + speedBonusPerLevel*float64(u.levels[UpgradeZombieSpeed])
}

// MaxZombies is 10 + 5 per capacity level.
func (u *Upgrades) MaxZombies() int {
	return baseMaxZombies + zombiesPerLevel*u.levels[UpgradeZombieCapacity]
}

// Level returns the current level of kind.
func (u *Upgrades) Level(kind string) int {
	return u.levels[kind]
}

// Cost returns the price of the next level: base * growth^level, rounded down.
func (u *Upgrades) Cost(kind string) (float64, error) {
	track, ok := u.tracks[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUpgrade, kind)
	}
	return math.Floor(track.BaseCost * math.Pow(track.Growth, float64(u.levels[kind]))), nil
}

// Purchase spends the next level's cost from ledger.
func (u *Upgrades) Purchase(kind string, ledger game.Ledger) (int, error) {
	track, ok := u.tracks[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUpgrade, kind)
	}
	level := u.levels[kind]
	if track.MaxLevel > 0 && level >= track.MaxLevel {
		return level, fmt.Errorf("%w: %s is level %d", ErrMaxLevel, kind, level)
	}
	cost, _ := u.Cost(kind)
	if !ledger.SpendSouls(cost) {
		return level, fmt.Errorf("%w: %s costs %.0f, have %.0f", ErrInsufficientSouls, kind, cost, ledger.Souls())
	}
	u.levels[kind] = level + 1
	*u.version++
	return level + 1, nil
}

// Kinds returns the known upgrade kinds in stable order.
func (u *Upgrades) Kinds() []string {
	kinds := make([]string, 0, len(u.tracks))
	for k := range u.tracks {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Levels returns a copy of every level.
func (u *Upgrades) Levels() map[string]int {
	out := make(map[string]int, len(u.levels))
	for k, v := range u.levels {
		out[k] = v
	}
	return out
}

// NextCosts returns the next price for every kind.
func (u *Upgrades) NextCosts() map[string]float64 {
	out := make(map[string]float64, len(u.tracks))
	for k := range u.tracks {
		out[k], _ = u.Cost(k)
	}
	return out
}

func (u *Upgrades) restore(levels map[string]int) {
	for k, v := range levels {
		track, ok := u.tracks[k]
		if !ok || v < 0 {
			continue
		}
		if track.MaxLevel > 0 && v > track.MaxLevel {
			v = track.MaxLevel
		}
		u.levels[k] = v
	}
}
