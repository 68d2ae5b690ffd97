package lottery

// CappedRule is one entry of an ordered first-match list with a running cap.
type CappedRule[T any] struct {
	Item        T
	Max         int
	Probability float64
}

// FirstMatch evaluates an ordered rule list repeatedly, tracking how many
// times each rule has fired. A rule whose cap is reached is skipped without
// consuming a draw.
type FirstMatch[T any] struct {
	rules  []CappedRule[T]
	counts []int
}

func NewFirstMatch[T any](rules []CappedRule[T]) *FirstMatch[T] {
	return &FirstMatch[T]{
		rules:  append([]CappedRule[T](nil), rules...),
		counts: make([]int, len(rules)),
	}
}

func (f *FirstMatch[T]) Pick(rng Rand) (T, bool) {
	var zero T
	for i, r := range f.rules {
		if f.counts[i] >= r.Max {
			continue
		}
		if rng.Float64() < r.Probability {
			f.counts[i]++
			return r.Item, true
		}
	}
	return zero, false
}

// Count reports how many times the rule at index i has fired.
func (f *FirstMatch[T]) Count(i int) int {
	if i < 0 || i >= len(f.counts) {
		return 0
	}
	return f.counts[i]
}
