package mathx

// Rand is a splitmix64 stream. The zero value is usable; seed it with NewRand
// for reproducible runs.
type Rand struct {
	state uint64
}

func NewRand(seed int64) *Rand {
	return &Rand{state: uint64(seed)}
}

func (r *Rand) Uint64() uint64 {
	r.state += 0x9e3779b97f4a7c15
	return finalize(r.state)
}

// Float64 returns a value in [0,1).
func (r *Rand) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Intn returns a value in [0,n). n <= 0 returns 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint64() % uint64(n))
}
