package geom

import "testing"

func TestNewBoxNormalizesCorners(t *testing.T) {
	b := NewBox(Vec3{X: 10, Y: -2, Z: 5}, Vec3{X: -4, Y: 8, Z: 5})
	if b.Min != (Vec3{X: -4, Y: -2, Z: 5}) {
		t.Fatalf("min=%+v", b.Min)
	}
	if b.Max != (Vec3{X: 10, Y: 8, Z: 5}) {
		t.Fatalf("max=%+v", b.Max)
	}
}

func TestBoxContainsIsInclusive(t *testing.T) {
	b := NewBox(Vec3{X: 0, Y: 0, Z: 0}, Vec3{X: 4, Y: 4, Z: 4})
	inside := []Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 4, Y: 4, Z: 4},
		{X: 2, Y: 4, Z: 0},
		{X: 1.5, Y: 3.25, Z: 2},
	}
	for _, p := range inside {
		if !b.Contains(p) {
			t.Fatalf("expected %+v inside %+v", p, b)
		}
	}
	outside := []Vec3{
		{X: -0.001, Y: 0, Z: 0},
		{X: 4.001, Y: 4, Z: 4},
		{X: 2, Y: 5, Z: 2},
	}
	for _, p := range outside {
		if b.Contains(p) {
			t.Fatalf("expected %+v outside %+v", p, b)
		}
	}
}

func TestVec3BlockFloorsNegative(t *testing.T) {
	got := Vec3{X: -0.5, Y: 64.9, Z: 3}.Block()
	if got != (Vec3i{X: -1, Y: 64, Z: 3}) {
		t.Fatalf("Block()=%+v", got)
	}
}
