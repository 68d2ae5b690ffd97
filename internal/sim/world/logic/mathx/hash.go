// Package mathx holds the integer and hashing helpers shared by terrain
// generation and the seeded random source.
package mathx

// FloorDiv rounds toward negative infinity. b must be positive.
func FloorDiv(a, b int) int {
	if a >= 0 {
		return a / b
	}
	return -((-a + b - 1) / b)
}

// Mod is always in [0, b). b must be positive.
func Mod(a, b int) int {
	return a - FloorDiv(a, b)*b
}

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// finalize is the splitmix64 output mix.
func finalize(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func lane(v int) uint64 { return uint64(uint32(int32(v))) }

// Hash2 is a stable per-column hash.
func Hash2(seed int64, x, z int) uint64 {
	v := uint64(seed) ^ lane(x)*0x9e3779b97f4a7c15 ^ lane(z)*0xbf58476d1ce4e5b9
	return finalize(v + 0x9e3779b97f4a7c15)
}

// Hash3 is a stable per-block hash.
func Hash3(seed int64, x, y, z int) uint64 {
	v := uint64(seed) ^ lane(x)*0x9e3779b97f4a7c15 ^ lane(y)*0xc2b2ae3d27d4eb4f ^ lane(z)*0xbf58476d1ce4e5b9
	return finalize(v + 0x9e3779b97f4a7c15)
}
