// Package gen holds the pure, seed-driven terrain functions: biome regions,
// surface height and ore cluster placement.
package gen

import "chaoticweather.ai/internal/sim/world/logic/mathx"

// Biomes in generation order. The last three are icy.
var Biomes = []string{
	"PLAINS",
	"FOREST",
	"DESERT",
	"SNOWY_PLAINS",
	"ICE_SPIKES",
	"FROZEN_PEAKS",
}

// BiomeAt is constant over regionSize x regionSize squares.
func BiomeAt(seed int64, x, z, regionSize int) string {
	if regionSize <= 0 {
		regionSize = 1
	}
	h := mathx.Hash2(seed, mathx.FloorDiv(x, regionSize), mathx.FloorDiv(z, regionSize))
	return Biomes[h%uint64(len(Biomes))]
}

// SurfaceHeight is bilinear value noise over a 16-block lattice: base plus
// [0, amp].
func SurfaceHeight(seed int64, x, z, base, amp int) int {
	if amp <= 0 {
		return base
	}
	const grid = 16
	gx, gz := mathx.FloorDiv(x, grid), mathx.FloorDiv(z, grid)
	fx, fz := mathx.Mod(x, grid), mathx.Mod(z, grid)
	corner := func(cx, cz int) int {
		return int(mathx.Hash2(seed, cx, cz) % uint64(amp+1))
	}
	top := corner(gx, gz)*(grid-fx) + corner(gx+1, gz)*fx
	bot := corner(gx, gz+1)*(grid-fx) + corner(gx+1, gz+1)*fx
	return base + (top*(grid-fz)+bot*fz)/(grid*grid)
}

func WithinSpawnClear(x, z, radius int) bool {
	if radius <= 0 {
		return false
	}
	dx, dz, r := int64(x), int64(z), int64(radius)
	return dx*dx+dz*dz <= r*r
}

// ScalePermille scales base (out of 1000) by scale/1000, capped at 1000.
// A non-positive scale means 1000.
func ScalePermille(base uint64, scale int) uint64 {
	if scale <= 0 {
		return base
	}
	return min((base*uint64(scale)+500)/1000, 1000)
}

// InCluster reports whether (x, z) falls in one of the round clusters
// scattered one per grid cell with probability probPermille.
func InCluster(seed int64, x, z, grid, radius int, probPermille uint64) bool {
	if grid <= 0 || radius <= 0 || probPermille == 0 {
		return false
	}
	gx, gz := mathx.FloorDiv(x, grid), mathx.FloorDiv(z, grid)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			cgx, cgz := gx+dx, gz+dz
			h := mathx.Hash2(seed, cgx, cgz)
			if h%1000 >= probPermille {
				continue
			}
			cx := cgx*grid + int((h>>10)%uint64(grid))
			cz := cgz*grid + int((h>>20)%uint64(grid))
			if (x-cx)*(x-cx)+(z-cz)*(z-cz) <= radius*radius {
				return true
			}
		}
	}
	return false
}
