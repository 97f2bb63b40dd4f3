package game

import (
	"math"
	"testing"
)

func TestVectorNormalizeZero(t *testing.T) {
	if v := (Vector2{}).Normalize(); !v.IsZero() {
		t.Errorf("Normalize(0) = %+v", v)
	}
	v := Vec(3, 4).Normalize()
	if math.Abs(v.Length()-1) > 1e-12 {
		t.Errorf("unit length = %v", v.Length())
	}
	if d := Vec(0, 0).Distance(Vec(3, 4)); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestVectorArithmetic(t *testing.T) {
	a, b := Vec(1, 2), Vec(4, 6)
	if got := b.Sub(a); got != Vec(3, 4) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Add(b).Scale(2); got != Vec(10, 16) {
		t.Errorf("Add.Scale = %v", got)
	}
	if a.DistanceSq(b) != 25 || Vec(3, 4).LengthSq() != 25 {
		t.Errorf("squared forms disagree")
	}
}
