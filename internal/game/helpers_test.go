package game

import (
	"errors"
	"math/rand"
	"testing"

	"soul-harvest/internal/config"
)

// fakeEconomy implements every collaborator with plain fields.
type fakeEconomy struct {
	souls      float64
	defeated   int
	awards     int
	maxZombies int
	speedMult  float64
	area       config.AreaConfig
	version    uint64

	purchases  []string
	progressAt int // CheckProgress switches to nextArea once defeated reaches this
	nextArea   config.AreaConfig
}

func newFakeEconomy() *fakeEconomy {
	return &fakeEconomy{
		maxZombies: 10,
		speedMult:  1.0,
		area:       config.DefaultAreas()[0],
	}
}

func (f *fakeEconomy) AwardSouls(base, mult float64) { f.souls += base * mult; f.awards++; f.version++ }
func (f *fakeEconomy) IncrementWalkersDefeated()     { f.defeated++; f.version++ }
func (f *fakeEconomy) Souls() float64                { return f.souls }
func (f *fakeEconomy) WalkersDefeated() int          { return f.defeated }
func (f *fakeEconomy) SpendSouls(a float64) bool {
	if a > f.souls {
		return false
	}
	f.souls -= a
	return true
}
func (f *fakeEconomy) ZombieSpeedMultiplier() float64 { return f.speedMult }
func (f *fakeEconomy) MaxZombies() int                { return f.maxZombies }
func (f *fakeEconomy) CurrentArea() config.AreaConfig { return f.area }

func (f *fakeEconomy) Ledger() Ledger          { return f }
func (f *fakeEconomy) Upgrades() UpgradeSource { return f }
func (f *fakeEconomy) Areas() AreaSource       { return f }

func (f *fakeEconomy) PurchaseUpgrade(kind string) (int, error) {
	if kind != "zombie_speed" {
		return 0, errors.New("unknown upgrade")
	}
	f.purchases = append(f.purchases, kind)
	f.speedMult += 0.2
	return len(f.purchases), nil
}

func (f *fakeEconomy) SelectArea(id int) error {
	for _, a := range config.DefaultAreas() {
		if a.ID == id {
			f.area = a
			return nil
		}
	}
	return errors.New("unknown area")
}

func (f *fakeEconomy) CheckProgress() bool {
	if f.progressAt > 0 && f.defeated >= f.progressAt && f.area.ID != f.nextArea.ID {
		f.area = f.nextArea
		return true
	}
	return false
}

func (f *fakeEconomy) Version() uint64 { return f.version }

func (f *fakeEconomy) State() EconomyState {
	return EconomyState{
		Souls:           f.souls,
		WalkersDefeated: f.defeated,
		CurrentArea:     f.area.ID,
		MaxZombies:      f.maxZombies,
		SpeedMultiplier: f.speedMult,
		Version:         f.version,
	}
}

// testConfig is the default config with a fixed seed and no ambient walkers.
func testConfig() config.AppConfig {
	cfg := config.Default()
	cfg.World.Seed = 42
	cfg.Population.WalkerTarget = 0
	return cfg
}

func newTestEngine(t *testing.T, cfg config.AppConfig, opts ...Option) (*Engine, *fakeEconomy) {
	t.Helper()
	econ := newFakeEconomy()
	e, err := NewEngine(cfg, econ, opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, econ
}

func newTestMonitor() *PerformanceMonitor {
	return NewPerformanceMonitor(config.DefaultPerformance())
}

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}
