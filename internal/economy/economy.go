// Package economy implements the soul ledger, upgrade tracks and area
// progression the simulation core reads and writes.
//
// Everything here is owned by the simulation goroutine once the engine
// starts; restore saved state before that.
package economy

import (
	"errors"
	"fmt"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game"
)

var (
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrMaxLevel          = errors.New("upgrade at max level")
	ErrInsufficientSouls = errors.New("insufficient souls")
	ErrUnknownArea       = errors.New("unknown area")
	ErrAreaLocked        = errors.New("area locked")
)

// Economy bundles the ledger, upgrades and areas behind game.Economy.
type Economy struct {
	ledger   *Ledger
	upgrades *Upgrades
	areas    *Areas
	version  uint64
}

var _ game.Economy = (*Economy)(nil)

// New builds an economy from configuration.
func New(upgrades config.UpgradesConfig, areas []config.AreaConfig) (*Economy, error) {
	e := &Economy{}
	a, err := NewAreas(areas, &e.version)
	if err != nil {
		return nil, err
	}
	e.ledger = NewLedger(&e.version)
	e.upgrades = NewUpgrades(upgrades, &e.version)
	e.areas = a
	return e, nil
}

func (e *Economy) Ledger() game.Ledger          { return e.ledger }
func (e *Economy) Upgrades() game.UpgradeSource { return e.upgrades }
func (e *Economy) Areas() game.AreaSource       { return e.areas }

// Tracks returns the concrete upgrade tracks.
func (e *Economy) Tracks() *Upgrades { return e.upgrades }

// AreaTable returns the concrete area table.
func (e *Economy) AreaTable() *Areas { return e.areas }

// PurchaseUpgrade spends souls on one level of kind.
func (e *Economy) PurchaseUpgrade(kind string) (int, error) {
	return e.upgrades.Purchase(kind, e.ledger)
}

// SelectArea switches to an unlocked area.
func (e *Economy) SelectArea(id int) error {
	return e.areas.Select(id, e.ledger.WalkersDefeated())
}

// CheckProgress advances to a newly unlocked area. Returns true on change.
func (e *Economy) CheckProgress() bool {
	return e.areas.CheckProgress(e.ledger.WalkersDefeated())
}

// Version increases on every change; persistence watches it.
func (e *Economy) Version() uint64 {
	return e.version
}

// State returns a summary for snapshots and saves.
func (e *Economy) State() game.EconomyState {
	area := e.areas.CurrentArea()
	return game.EconomyState{
		Souls:           e.ledger.Souls(),
		WalkersDefeated: e.ledger.WalkersDefeated(),
		CurrentArea:     area.ID,
		AreaName:        area.Name,
		Upgrades:        e.upgrades.Levels(),
		NextCosts:       e.upgrades.NextCosts(),
		MaxZombies:      e.upgrades.MaxZombies(),
		SpeedMultiplier: e.upgrades.ZombieSpeedMultiplier(),
		Version:         e.version,
	}
}

// Restore loads saved values. Unknown upgrade kinds are ignored and an
// unknown area falls back to the first one.
func (e *Economy) Restore(s game.EconomyState) error {
	if s.Souls < 0 || s.WalkersDefeated < 0 {
		return fmt.Errorf("restore: negative counters (souls=%v defeated=%d)", s.Souls, s.WalkersDefeated)
	}
	e.ledger.restore(s.Souls, s.WalkersDefeated)
	e.upgrades.restore(s.Upgrades)
	e.areas.restore(s.CurrentArea, s.WalkersDefeated)
	e.version++
	return nil
}
