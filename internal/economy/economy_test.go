package economy

import (
	"errors"
	"testing"

	"soul-harvest/internal/config"
	"soul-harvest/internal/game"
)

func newEconomy(t *testing.T) *Economy {
	t.Helper()
	e, err := New(config.DefaultUpgrades(), config.DefaultAreas())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestDerivedUpgradeValues(t *testing.T) {
	e := newEconomy(t)
	if got := e.Upgrades().MaxZombies(); got != 10 {
		t.Errorf("MaxZombies = %d, want 10", got)
	}
	if got := e.Upgrades().ZombieSpeedMultiplier(); got != 1.0 {
		t.Errorf("multiplier = %v, want 1.0", got)
	}

	e.Ledger().AwardSouls(1000, 1)
	for i := 0; i < 2; i++ {
		if _, err := e.PurchaseUpgrade(UpgradeZombieSpeed); err != nil {
			t.Fatalf("purchase speed: %v", err)
		}
	}
	if _, err := e.PurchaseUpgrade(UpgradeZombieCapacity); err != nil {
		t.Fatalf("purchase capacity: %v", err)
	}
	if got := e.Upgrades().MaxZombies(); got != 15 {
		t.Errorf("MaxZombies = %d, want 15", got)
	}
	if got := e.Upgrades().ZombieSpeedMultiplier(); got < 1.3999 || got > 1.4001 {
		t.Errorf("multiplier = %v, want 1.4", got)
	}
}

func TestUpgradeCostGrowth(t *testing.T) {
	e := newEconomy(t)
	tracks := e.Tracks()

	c0, _ := tracks.Cost(UpgradeZombieSpeed)
	if c0 != 10 {
		t.Errorf("level 0 cost = %v, want 10", c0)
	}
	e.Ledger().AwardSouls(10, 1)
	if _, err := e.PurchaseUpgrade(UpgradeZombieSpeed); err != nil {
		t.Fatal(err)
	}
	c1, _ := tracks.Cost(UpgradeZombieSpeed)
	if c1 != 15 {
		t.Errorf("level 1 cost = %v, want 15", c1)
	}
	if e.Ledger().Souls() != 0 {
		t.Errorf("souls = %v, want 0", e.Ledger().Souls())
	}
}

func TestPurchaseErrors(t *testing.T) {
	e := newEconomy(t)

	if _, err := e.PurchaseUpgrade("laser_eyes"); !errors.Is(err, ErrUnknownUpgrade) {
		t.Errorf("expected ErrUnknownUpgrade, got %v", err)
	}
	if _, err := e.PurchaseUpgrade(UpgradeZombieCapacity); !errors.Is(err, ErrInsufficientSouls) {
		t.Errorf("expected ErrInsufficientSouls, got %v", err)
	}
	if e.Tracks().Level(UpgradeZombieCapacity) != 0 {
		t.Error("failed purchase must not change level")
	}
}

func TestMaxLevel(t *testing.T) {
	cfg := config.DefaultUpgrades()
	cfg.ZombieSpeed.MaxLevel = 1
	e, err := New(cfg, config.DefaultAreas())
	if err != nil {
		t.Fatal(err)
	}
	e.Ledger().AwardSouls(1e6, 1)
	if _, err := e.PurchaseUpgrade(UpgradeZombieSpeed); err != nil {
		t.Fatal(err)
	}
	if _, err := e.PurchaseUpgrade(UpgradeZombieSpeed); !errors.Is(err, ErrMaxLevel) {
		t.Errorf("expected ErrMaxLevel, got %v", err)
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger(nil)
	l.AwardSouls(1, 2.5)
	if l.Souls() != 2.5 {
		t.Errorf("souls = %v", l.Souls())
	}
	if l.SpendSouls(3) {
		t.Error("overspend allowed")
	}
	if !l.SpendSouls(2.5) || l.Souls() != 0 {
		t.Error("exact spend failed")
	}
	l.IncrementWalkersDefeated()
	if l.WalkersDefeated() != 1 {
		t.Errorf("defeated = %d", l.WalkersDefeated())
	}
}

func TestAreaSelectAndProgress(t *testing.T) {
	e := newEconomy(t)
	if e.Areas().CurrentArea().ID != 1 {
		t.Fatalf("start area = %d", e.Areas().CurrentArea().ID)
	}

	if err := e.SelectArea(2); !errors.Is(err, ErrAreaLocked) {
		t.Errorf("expected ErrAreaLocked, got %v", err)
	}
	if err := e.SelectArea(99); !errors.Is(err, ErrUnknownArea) {
		t.Errorf("expected ErrUnknownArea, got %v", err)
	}

	for i := 0; i < 100; i++ {
		e.Ledger().IncrementWalkersDefeated()
	}
	if !e.CheckProgress() {
		t.Fatal("expected progress to area 2")
	}
	if e.Areas().CurrentArea().ID != 2 {
		t.Errorf("area = %d, want 2", e.Areas().CurrentArea().ID)
	}
	if e.CheckProgress() {
		t.Error("progress should fire once per unlock")
	}

	// Going back manually sticks until the next unlock
	if err := e.SelectArea(1); err != nil {
		t.Fatal(err)
	}
	e.Ledger().IncrementWalkersDefeated()
	if e.CheckProgress() || e.Areas().CurrentArea().ID != 1 {
		t.Error("manual selection was overridden")
	}
}

func TestVersionBumpsOnChange(t *testing.T) {
	e := newEconomy(t)
	v0 := e.Version()
	e.Ledger().AwardSouls(1, 1)
	if e.Version() <= v0 {
		t.Error("award did not bump version")
	}
	v1 := e.Version()
	e.Ledger().AwardSouls(0, 1)
	if e.Version() != v1 {
		t.Error("zero award bumped version")
	}
}

func TestRestore(t *testing.T) {
	e := newEconomy(t)
	err := e.Restore(game.EconomyState{
		Souls:           42,
		WalkersDefeated: 150,
		CurrentArea:     2,
		Upgrades:        map[string]int{UpgradeZombieCapacity: 2, "bogus": 9},
	})
	if err != nil {
		t.Fatal(err)
	}
	s := e.State()
	if s.Souls != 42 || s.WalkersDefeated != 150 || s.CurrentArea != 2 {
		t.Errorf("state = %+v", s)
	}
	if s.MaxZombies != 20 {
		t.Errorf("MaxZombies = %d, want 20", s.MaxZombies)
	}
	if _, ok := s.Upgrades["bogus"]; ok {
		t.Error("unknown upgrade restored")
	}

	// Locked saved area falls back to the first
	if err := e.Restore(game.EconomyState{CurrentArea: 3, WalkersDefeated: 10}); err != nil {
		t.Fatal(err)
	}
	if e.Areas().CurrentArea().ID != 1 {
		t.Errorf("area = %d, want 1", e.Areas().CurrentArea().ID)
	}
	if err := e.Restore(game.EconomyState{Souls: -1}); err == nil {
		t.Error("expected error for negative souls")
	}
}
