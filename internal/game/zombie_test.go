package game

import (
	"testing"
)

func newTestZombies(t *testing.T) (*ZombieManager, *fakeEconomy) {
	t.Helper()
	cfg := testConfig()
	econ := newFakeEconomy()
	collab := Collaborators{Ledger: econ, Upgrades: econ, Areas: econ}
	m, err := NewZombieManager(cfg.Population, cfg.Combat, cfg.World, NewAttackSystem(), collab, newTestRand(), &idSource{})
	if err != nil {
		t.Fatalf("NewZombieManager: %v", err)
	}
	return m, econ
}

func TestZombieCap(t *testing.T) {
	m, econ := newTestZombies(t)
	accepted := 0
	for i := 0; i < 12; i++ {
		if m.Spawn(Vec(400, 300)) {
			accepted++
		}
	}
	if accepted != 10 || m.Count() != 10 {
		t.Fatalf("accepted=%d count=%d, want 10", accepted, m.Count())
	}
	if s := m.Stats(); s.Rejected != 2 || s.Max != 10 {
		t.Errorf("stats = %+v", s)
	}

	econ.maxZombies = 15
	if !m.Spawn(Vec(400, 300)) {
		t.Error("spawn refused after capacity upgrade")
	}
}

func TestZombieSpawnClamped(t *testing.T) {
	m, _ := newTestZombies(t)
	m.Spawn(Vec(-100, 5000))
	z := m.Zombies()[0]
	if z.Position != Vec(10, 590) {
		t.Errorf("position = %v, want (10,590)", z.Position)
	}
	if z.Speed != 60 || z.SeekRange != 200 {
		t.Errorf("speed=%v seek=%v", z.Speed, z.SeekRange)
	}
}

func TestZombieSeeksNearest(t *testing.T) {
	m, _ := newTestZombies(t)
	m.Spawn(Vec(400, 300))
	z := m.Zombies()[0]

	far := walkerAt(1, 450, 300)
	near := walkerAt(2, 370, 300)
	outOfRange := walkerAt(3, 401, 550)
	m.Update(FixedTimeStep, []*Walker{far, outOfRange, near}, FixedTimeStep)

	if z.Target != near {
		t.Fatalf("target = %v, want walker 2", z.Target)
	}
	if z.Velocity.X >= 0 || z.Velocity.Y != 0 {
		t.Errorf("velocity %v should point at the target", z.Velocity)
	}
	if speed := z.Velocity.Length(); speed < 59.999 || speed > 60.001 {
		t.Errorf("speed = %v", speed)
	}
}

// Ties are order-dependent: the strict < scan keeps the first walker in
// slice order. This pins current behaviour; callers must not rely on it.
func TestZombieTieGoesToFirst(t *testing.T) {
	m, _ := newTestZombies(t)
	m.Spawn(Vec(400, 300))
	a, b := walkerAt(1, 350, 300), walkerAt(2, 450, 300)
	m.Update(FixedTimeStep, []*Walker{b, a}, FixedTimeStep)
	if got := m.Zombies()[0].Target; got != b {
		t.Errorf("target = %d, want the first equidistant walker", got.ID)
	}
}

func TestZombieIdlesWithoutPrey(t *testing.T) {
	m, _ := newTestZombies(t)
	m.Spawn(Vec(400, 300))
	z := m.Zombies()[0]
	z.Velocity = Vec(10, 10)
	m.Update(FixedTimeStep, []*Walker{walkerAt(1, 10, 10)}, FixedTimeStep)
	if z.Target != nil || !z.Velocity.IsZero() {
		t.Errorf("target=%v velocity=%v", z.Target, z.Velocity)
	}
}

func TestSkippedZombieDropsStaleTarget(t *testing.T) {
	m, _ := newTestZombies(t)
	m.Spawn(Vec(400, 300))
	z := m.Zombies()[0]
	w := walkerAt(1, 450, 300)
	w.Health = 100

	m.Update(FixedTimeStep, []*Walker{w}, FixedTimeStep)
	if z.Target != w {
		t.Fatalf("target = %v, want walker 1", z.Target)
	}

	w.Active = false
	z.skip = true
	m.Update(FixedTimeStep, []*Walker{w}, 2*FixedTimeStep)
	if z.Target != nil {
		t.Errorf("skipped step kept an inactive target")
	}

	// Out of seek range is stale too
	w.Active = true
	z.skip = false
	m.Update(FixedTimeStep, []*Walker{w}, 3*FixedTimeStep)
	w.Position = Vec(790, 590)
	z.skip = true
	m.Update(FixedTimeStep, []*Walker{w}, 4*FixedTimeStep)
	if z.Target != nil {
		t.Errorf("skipped step kept a target %v away", z.Position.Distance(w.Position))
	}
}

func TestZombieOneAttackPerStep(t *testing.T) {
	m, _ := newTestZombies(t)
	m.Spawn(Vec(400, 300))
	a, b := walkerAt(1, 405, 300), walkerAt(2, 395, 300)
	a.Health, b.Health = 100, 100

	m.Update(FixedTimeStep, []*Walker{a, b}, FixedTimeStep)
	damaged := 0
	for _, w := range []*Walker{a, b} {
		if w.Health < 100 {
			damaged++
		}
	}
	if damaged != 1 {
		t.Errorf("%d walkers damaged in one step, want 1", damaged)
	}
}

func TestZombieRewardsOnce(t *testing.T) {
	m, econ := newTestZombies(t)
	var events []DefeatEvent
	m.OnDefeat(func(ev DefeatEvent) { events = append(events, ev) })

	m.Spawn(Vec(400, 300))
	w := walkerAt(1, 410, 300)
	w.Health = 10

	now := FixedTimeStep
	for i := 0; i < 120; i++ {
		m.Update(FixedTimeStep, []*Walker{w}, now)
		now += FixedTimeStep
	}

	if w.Active {
		t.Fatal("walker survived")
	}
	if econ.souls != 1 || econ.defeated != 1 || econ.awards != 1 {
		t.Errorf("souls=%v defeated=%d awards=%d, want one reward", econ.souls, econ.defeated, econ.awards)
	}
	if len(events) != 1 || events[0].Souls != 1 || events[0].Area != 1 {
		t.Errorf("events = %+v", events)
	}
	if m.Zombies()[0].Target != nil {
		t.Error("zombie kept a defeated target")
	}
}

func TestZombieRewardUsesAreaMultiplier(t *testing.T) {
	m, econ := newTestZombies(t)
	econ.area.SoulMultiplier = 5
	m.Spawn(Vec(400, 300))
	w := walkerAt(1, 410, 300)
	w.Health = 1
	m.Update(FixedTimeStep, []*Walker{w}, FixedTimeStep)
	if econ.souls != 5 {
		t.Errorf("souls = %v, want 5", econ.souls)
	}
}

func TestZombieSpeedMultiplier(t *testing.T) {
	m, econ := newTestZombies(t)
	m.Spawn(Vec(100, 100))
	econ.speedMult = 1.4
	m.ApplySpeedMultiplier()
	if got := m.Zombies()[0].Speed; got < 83.999 || got > 84.001 {
		t.Errorf("speed = %v, want 84", got)
	}
	m.Spawn(Vec(200, 200))
	if got := m.Zombies()[1].Speed; got < 83.999 || got > 84.001 {
		t.Errorf("new zombie speed = %v, want 84", got)
	}
}

func TestZombieClear(t *testing.T) {
	m, _ := newTestZombies(t)
	for i := 0; i < 4; i++ {
		m.Spawn(Vec(100, 100))
	}
	if n := m.Clear(); n != 4 || m.Count() != 0 {
		t.Errorf("cleared %d, count %d", n, m.Count())
	}
	if !m.Spawn(Vec(100, 100)) {
		t.Error("spawn after clear failed")
	}
}
