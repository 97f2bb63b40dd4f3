package game

import (
	"errors"
	"testing"
	"time"
)

func zombieAt(id uint64, x, y float64) *Zombie {
	return &Zombie{Entity: Entity{ID: id, Position: Vec(x, y), Size: 24, Active: true}, BaseSpeed: 60, Speed: 60, SeekRange: 200}
}

func TestNewAttackConfigRejectsNegative(t *testing.T) {
	for _, c := range []AttackConfig{
		{Damage: -1},
		{Range: -1},
		{Cooldown: -time.Millisecond},
	} {
		if _, err := NewAttackConfig(c.Damage, c.Range, c.Cooldown); !errors.Is(err, ErrInvalidAttackConfig) {
			t.Errorf("%+v: err = %v", c, err)
		}
	}
	if _, err := NewAttackConfig(0, 0, 0); err != nil {
		t.Errorf("zero config rejected: %v", err)
	}
}

func TestAttackCooldown(t *testing.T) {
	s := NewAttackSystem()
	cfg := AttackConfig{Damage: 10, Range: 5, Cooldown: 500 * time.Millisecond}
	z, w := zombieAt(1, 100, 100), walkerAt(2, 110, 100)

	steps := []struct {
		at       time.Duration
		hit      bool
		defeated bool
	}{
		{0, true, false},
		{100 * time.Millisecond, false, false},
		{499 * time.Millisecond, false, false},
		{500 * time.Millisecond, true, true},
		{1000 * time.Millisecond, false, false}, // target already defeated
	}
	for _, st := range steps {
		hit, defeated := s.PerformAttack(z, w, cfg, st.at)
		if hit != st.hit || defeated != st.defeated {
			t.Errorf("t=%v: hit=%v defeated=%v, want %v/%v", st.at, hit, defeated, st.hit, st.defeated)
		}
	}
	if w.Active || w.Health != 0 {
		t.Errorf("walker not defeated: active=%v health=%v", w.Active, w.Health)
	}
	if got := s.Stats(); got.Attempts != 5 || got.Hits != 2 || got.Defeats != 1 {
		t.Errorf("stats = %+v", got)
	}
}

func TestAttackOutOfRange(t *testing.T) {
	s := NewAttackSystem()
	cfg := AttackConfig{Damage: 10, Range: 5, Cooldown: time.Second}
	z, w := zombieAt(1, 100, 100), walkerAt(2, 128, 100)

	// reach = 5 + (24+20)/2 = 27
	if hit, _ := s.PerformAttack(z, w, cfg, 0); hit {
		t.Error("hit beyond reach")
	}
	if _, ok := z.LastAttack(); ok {
		t.Error("missed attack stamped the cooldown")
	}
	w.Position = Vec(127, 100)
	if hit, _ := s.PerformAttack(z, w, cfg, 0); !hit {
		t.Error("missed at exactly reach")
	}
}

func TestAttackInactiveParties(t *testing.T) {
	s := NewAttackSystem()
	cfg := AttackConfig{Damage: 10, Range: 5}
	z, w := zombieAt(1, 100, 100), walkerAt(2, 100, 100)
	z.Active = false
	if s.CanAttack(z, w, cfg, 0) {
		t.Error("inactive attacker can attack")
	}
	z.Active, w.Active = true, false
	if s.CanAttack(z, w, cfg, 0) {
		t.Error("inactive target can be attacked")
	}
}

// stampProbe records the attacker's cooldown state at the moment damage lands.
type stampProbe struct {
	Entity
	attacker Attacker
	sawStamp bool
}

func (p *stampProbe) TakeDamage(float64) bool {
	_, p.sawStamp = p.attacker.LastAttack()
	return false
}

func TestCooldownStampedBeforeDamage(t *testing.T) {
	s := NewAttackSystem()
	z := zombieAt(1, 0, 0)
	probe := &stampProbe{Entity: Entity{ID: 2, Size: 20, Active: true}, attacker: z}
	if hit, _ := s.PerformAttack(z, probe, AttackConfig{Damage: 1, Range: 1}, time.Second); !hit {
		t.Fatal("expected hit")
	}
	if !probe.sawStamp {
		t.Error("damage landed before the cooldown was stamped")
	}
}

func TestWalkerTakeDamage(t *testing.T) {
	w := walkerAt(1, 0, 0)
	w.Velocity = Vec(3, 4)

	if w.TakeDamage(0) || w.TakeDamage(-5) {
		t.Error("non-positive damage reported a defeat")
	}
	if w.TakeDamage(10) || w.Health != 10 {
		t.Errorf("partial damage: health=%v", w.Health)
	}
	if !w.TakeDamage(25) {
		t.Fatal("lethal damage did not report defeat")
	}
	if w.Health != 0 || w.Active || !w.Velocity.IsZero() {
		t.Errorf("defeated walker state: %+v", w)
	}
	if w.TakeDamage(10) {
		t.Error("second defeat reported")
	}
}
