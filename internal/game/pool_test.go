package game

import (
	"errors"
	"testing"
)

type pooledThing struct {
	Entity
	resets int
}

func newThingPool(t *testing.T, initial, max int) *Pool[*pooledThing] {
	t.Helper()
	p, err := NewPool(
		func() *pooledThing { return &pooledThing{Entity: Entity{Active: true}} },
		func(x *pooledThing) { x.resetBody(); x.resets++ },
		initial, max,
	)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return p
}

func TestNewPoolRejectsInitialAboveMax(t *testing.T) {
	_, err := NewPool(func() int { return 0 }, func(int) {}, 5, 2)
	if !errors.Is(err, ErrInvalidPool) {
		t.Fatalf("expected ErrInvalidPool, got %v", err)
	}
}

func TestNewPoolPrepopulates(t *testing.T) {
	p := newThingPool(t, 4, 10)
	if p.Len() != 4 {
		t.Errorf("Len = %d, want 4", p.Len())
	}
	if s := p.Stats(); s.Created != 4 {
		t.Errorf("created = %d, want 4", s.Created)
	}
}

func TestPoolLIFOReuse(t *testing.T) {
	p := newThingPool(t, 0, 10)
	w := p.Get()
	w.Position = Vec(5, 5)
	w.Active = false

	p.Release(w)
	got := p.Get()
	if got != w {
		t.Fatal("expected the released instance back")
	}
	if !got.Active || !got.Position.IsZero() || !got.Velocity.IsZero() {
		t.Errorf("reset invariants violated: %+v", got.Entity)
	}
}

func TestPoolGetBeyondMaxAllocates(t *testing.T) {
	p := newThingPool(t, 1, 1)
	a := p.Get()
	b := p.Get()
	if a == b {
		t.Fatal("expected distinct instances")
	}
	p.Release(a)
	p.Release(b)
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1 (max)", p.Len())
	}
	if s := p.Stats(); s.Dropped != 1 {
		t.Errorf("dropped = %d, want 1", s.Dropped)
	}
	if b.resets != 1 {
		t.Error("dropped instance should still be reset")
	}
}

func TestPoolConservation(t *testing.T) {
	const max = 8
	p := newThingPool(t, 3, max)
	var out []*pooledThing

	// Deterministic mix of gets and releases, never more than max outstanding.
	for i := 0; i < 500; i++ {
		if (i*7)%3 != 0 && len(out) < max {
			x := p.Get()
			if !x.Active || !x.Position.IsZero() {
				t.Fatalf("step %d: got unreset object %+v", i, x.Entity)
			}
			x.Position = Vec(float64(i), 1)
			x.Active = false
			out = append(out, x)
		} else if len(out) > 0 {
			x := out[len(out)-1]
			out = out[:len(out)-1]
			p.Release(x)
		}
		if p.Len() < 0 || p.Len() > max {
			t.Fatalf("step %d: pool size %d outside [0,%d]", i, p.Len(), max)
		}
	}
}
