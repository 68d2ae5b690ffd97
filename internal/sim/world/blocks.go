package world

import (
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/world/terrain/store"
)

func (w *World) MinY() int { return w.chunks.MinY() }
func (w *World) MaxY() int { return w.chunks.MaxY() }

func (w *World) Block(p geom.Vec3i) string {
	return w.chunks.GetBlock(p.X, p.Y, p.Z)
}

func (w *World) SetBlock(p geom.Vec3i, material string) {
	w.SetBlockFor(p, material, "")
}

// SetBlockFor writes a block and audits the change with reason. Replacing a
// container or crop drops its state.
func (w *World) SetBlockFor(p geom.Vec3i, material, reason string) {
	prev, ok := w.chunks.SetBlock(p.X, p.Y, p.Z, material)
	if !ok || prev == material {
		return
	}
	if prev == containerBlock {
		delete(w.containers, p)
	}
	if _, ok := w.crops[p]; ok {
		delete(w.crops, p)
	}
	w.auditSetBlock(p, prev, material, reason)
}

// HighestSolidY skips air, liquids and crops.
func (w *World) HighestSolidY(x, z int) (int, bool) {
	return w.chunks.TopY(x, z, solid)
}

func (w *World) Biome(p geom.Vec3i) string {
	return w.chunks.BiomeAt(p.X, p.Z)
}

func solid(m string) bool {
	if m == store.Air || m == "WATER" || m == "LAVA" {
		return false
	}
	_, isCrop := cropMaxAge[m]
	return !isCrop
}
