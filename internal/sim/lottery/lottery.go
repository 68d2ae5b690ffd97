// Package lottery implements independent-trial selection with a uniform cap,
// plus the two single-outcome variants used by crater and loot generation.
package lottery

// Rand is the random source every draw is threaded through.
// *math/rand.Rand and *mathx.Rand both satisfy it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type Entry[T any] struct {
	Item        T
	Probability float64
}

// Draw runs one Bernoulli trial per entry in list order. When max > 0 and
// more than max trials succeed, the successes are shuffled and the first max
// are kept, so truncation is uniform rather than by list position.
func Draw[T any](rng Rand, entries []Entry[T], max int) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if rng.Float64() < e.Probability {
			out = append(out, e.Item)
		}
	}
	if max > 0 && len(out) > max {
		Shuffle(rng, out)
		out = out[:max]
	}
	return out
}

// PickOne walks a single uniform draw over the cumulative probabilities.
// At most one entry wins; if the probabilities sum below 1 the draw can miss.
func PickOne[T any](rng Rand, entries []Entry[T]) (T, bool) {
	var zero T
	if len(entries) == 0 {
		return zero, false
	}
	roll := rng.Float64()
	var acc float64
	for _, e := range entries {
		acc += e.Probability
		if roll < acc {
			return e.Item, true
		}
	}
	return zero, false
}

// Shuffle is Fisher-Yates over rng.
func Shuffle[T any](rng Rand, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

// Perm returns a shuffled [0,n).
func Perm(rng Rand, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	Shuffle(rng, p)
	return p
}
