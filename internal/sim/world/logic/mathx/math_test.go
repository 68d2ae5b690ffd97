package mathx

import "testing"

func TestFloorDivAndMod(t *testing.T) {
	if got := FloorDiv(-1, 16); got != -1 {
		t.Fatalf("FloorDiv(-1,16)=%d", got)
	}
	if got := FloorDiv(16, 16); got != 1 {
		t.Fatalf("FloorDiv(16,16)=%d", got)
	}
	if got := Mod(-1, 16); got != 15 {
		t.Fatalf("Mod(-1,16)=%d", got)
	}
}

func TestRandDeterministic(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 100; i++ {
		if a.Uint64() != b.Uint64() {
			t.Fatalf("streams diverged at %d", i)
		}
	}
}

func TestRandBounds(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64 out of range: %v", f)
		}
		n := r.Intn(5)
		if n < 0 || n >= 5 {
			t.Fatalf("Intn out of range: %d", n)
		}
	}
	if r.Intn(0) != 0 {
		t.Fatalf("Intn(0) should be 0")
	}
}

func TestFloorDivNegativeBoundaries(t *testing.T) {
	for _, tc := range []struct{ a, q, m int }{{-16, -1, 0}, {-17, -2, 15}, {-32, -2, 0}, {31, 1, 15}} {
		if q, m := FloorDiv(tc.a, 16), Mod(tc.a, 16); q != tc.q || m != tc.m {
			t.Fatalf("a=%d q=%d m=%d", tc.a, q, m)
		}
	}
}

func TestHashStable(t *testing.T) {
	if Hash2(1, 3, -4) != Hash2(1, 3, -4) || Hash3(1, 3, 64, -4) != Hash3(1, 3, 64, -4) {
		t.Fatalf("hash not stable")
	}
	if Hash2(1, 3, -4) == Hash2(2, 3, -4) || Hash2(1, 3, -4) == Hash2(1, -4, 3) {
		t.Fatalf("hash ignores inputs")
	}
}
