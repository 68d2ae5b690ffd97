package lottery

import (
	"math/rand"
	"testing"

	"chaoticweather.ai/internal/sim/world/logic/mathx"
)

func entries(n int, p float64) []Entry[int] {
	out := make([]Entry[int], n)
	for i := range out {
		out[i] = Entry[int]{Item: i, Probability: p}
	}
	return out
}

func TestDrawAllOnesNoCapReturnsEveryItem(t *testing.T) {
	got := Draw[int](mathx.NewRand(1), entries(20, 1.0), 0)
	if len(got) != 20 {
		t.Fatalf("len=%d want 20", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order changed without a cap: got[%d]=%d", i, v)
		}
	}
}

func TestDrawAllZerosReturnsEmpty(t *testing.T) {
	got := Draw[int](mathx.NewRand(1), entries(20, 0), 0)
	if len(got) != 0 {
		t.Fatalf("len=%d want 0", len(got))
	}
}

func TestDrawCapTruncatesExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for round := 0; round < 50; round++ {
		got := Draw[int](rng, entries(26, 1.0), 14)
		if len(got) != 14 {
			t.Fatalf("len=%d want 14", len(got))
		}
		seen := map[int]bool{}
		for _, v := range got {
			if seen[v] {
				t.Fatalf("duplicate %d", v)
			}
			seen[v] = true
		}
	}
}

func TestDrawCapSubsamplesUniformly(t *testing.T) {
	rng := mathx.NewRand(5)
	hits := make([]int, 10)
	for i := 0; i < 5000; i++ {
		for _, v := range Draw[int](rng, entries(10, 1.0), 1) {
			hits[v]++
		}
	}
	// Each item should win roughly 500 times; list position must not matter.
	for i, h := range hits {
		if h < 350 || h > 650 {
			t.Fatalf("item %d won %d times", i, h)
		}
	}
}

func TestDrawDeterministicForSeed(t *testing.T) {
	a := Draw[int](mathx.NewRand(3), entries(26, 0.5), 14)
	b := Draw[int](mathx.NewRand(3), entries(26, 0.5), 14)
	if len(a) != len(b) {
		t.Fatalf("len mismatch %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("mismatch at %d", i)
		}
	}
}

func TestPickOneAtMostOne(t *testing.T) {
	es := []Entry[string]{{Item: "a", Probability: 0.5}, {Item: "b", Probability: 0.5}}
	rng := mathx.NewRand(11)
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		v, ok := PickOne(rng, es)
		if !ok {
			t.Fatalf("probabilities sum to 1, draw must hit")
		}
		counts[v]++
	}
	if counts["a"] < 800 || counts["b"] < 800 {
		t.Fatalf("skewed counts: %v", counts)
	}
	if _, ok := PickOne[string](rng, nil); ok {
		t.Fatalf("empty list must miss")
	}
}

func TestFirstMatchHonoursCaps(t *testing.T) {
	fm := NewFirstMatch([]CappedRule[string]{
		{Item: "gold", Max: 1, Probability: 1},
		{Item: "iron_block", Max: 2, Probability: 1},
		{Item: "iron_ore", Max: 5, Probability: 1},
	})
	rng := mathx.NewRand(2)
	var got []string
	for i := 0; i < 12; i++ {
		if v, ok := fm.Pick(rng); ok {
			got = append(got, v)
		}
	}
	want := []string{"gold", "iron_block", "iron_block", "iron_ore", "iron_ore", "iron_ore", "iron_ore", "iron_ore"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if _, ok := fm.Pick(rng); ok {
		t.Fatalf("capped rules fired again")
	}
	if fm.Count(1) != 2 {
		t.Fatalf("iron_block count=%d", fm.Count(1))
	}
}
