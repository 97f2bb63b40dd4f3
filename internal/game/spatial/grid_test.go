package spatial

import (
	"math"
	"math/rand"
	"testing"
)

func TestQueryRadiusFindsEverythingInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewSpatialGrid(800, 600, 64, 200)

	type pt struct{ x, y float64 }
	pts := make([]pt, 200)
	for i := range pts {
		// Include points off the field on every side
		pts[i] = pt{rng.Float64()*900 - 50, rng.Float64()*700 - 50}
		g.Insert(uint32(i), pts[i].x, pts[i].y)
	}

	for q := 0; q < 50; q++ {
		cx, cy := rng.Float64()*900-50, rng.Float64()*700-50
		r := 10 + rng.Float64()*80

		found := make(map[uint32]bool)
		for _, id := range g.QueryRadius(cx, cy, r) {
			found[id] = true
		}
		for i, p := range pts {
			if math.Hypot(p.x-cx, p.y-cy) <= r && !found[uint32(i)] {
				t.Fatalf("query (%.1f,%.1f r=%.1f) missed point %d at (%.1f,%.1f)", cx, cy, r, i, p.x, p.y)
			}
		}
	}
}

func TestQueryFarOutsideWorld(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10, 4)
	g.Insert(1, -100, -100)
	got := g.QueryRadius(-100, -100, 5)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected [1], got %v", got)
	}
}

func TestClearKeepsNothing(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10, 4)
	g.Insert(1, 5, 5)
	g.Insert(2, 50, 50)
	if g.Len() != 2 {
		t.Fatalf("Len = %d", g.Len())
	}
	g.Clear()
	if g.Len() != 0 || len(g.QueryRadius(50, 50, 100)) != 0 {
		t.Error("grid not empty after Clear")
	}
	if s := g.Stats(); s.NonEmptyCells != 0 || s.TotalCells != 100 {
		t.Errorf("unexpected stats %+v", s)
	}
}
