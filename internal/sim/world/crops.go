package world

import (
	"fmt"

	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/world/logic/mathx"
)

var cropMaxAge = map[string]int{
	"WHEAT":            7,
	"CARROTS":          7,
	"POTATOES":         7,
	"BEETROOTS":        3,
	"NETHER_WART":      3,
	"COCOA":            2,
	"SWEET_BERRY_BUSH": 3,
}

type crop struct {
	kind string
	age  int
}

// PlantCrop places a fresh crop of kind at p.
func (w *World) PlantCrop(p geom.Vec3i, kind string) error {
	if _, ok := cropMaxAge[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCrop, kind)
	}
	w.SetBlockFor(p, kind, "plant")
	if w.Block(p) != kind {
		return fmt.Errorf("world %s: cannot plant at %v", w.cfg.Name, p.ToArray())
	}
	w.crops[p] = &crop{kind: kind, age: 0}
	return nil
}

// CropAge returns the growth stage of the crop at p.
func (w *World) CropAge(p geom.Vec3i) (int, bool) {
	c, ok := w.crops[p]
	if !ok {
		return 0, false
	}
	return c.age, true
}

// GrowCrops advances every unripe crop whose column lies within radius
// blocks of spawn on both horizontal axes. Ages saturate at the kind's
// maximum.
func (w *World) GrowCrops(radius, stages int) int {
	if stages <= 0 {
		return 0
	}
	n := 0
	for p, c := range w.crops {
		if mathx.AbsInt(p.X-w.spawn.X) > radius || mathx.AbsInt(p.Z-w.spawn.Z) > radius {
			continue
		}
		ripe := cropMaxAge[c.kind]
		if c.age >= ripe {
			continue
		}
		c.age += stages
		if c.age > ripe {
			c.age = ripe
		}
		n++
	}
	return n
}

func (w *World) plantSpawnFarm(side int) {
	x0 := w.spawn.X + 4
	for dx := 0; dx < side; dx++ {
		for dz := 0; dz < side; dz++ {
			ground := geom.Vec3i{X: x0 + dx, Y: w.spawn.Y - 1, Z: w.spawn.Z + dz}
			w.SetBlockFor(ground, "FARMLAND", "spawn_farm")
			_ = w.PlantCrop(ground.Add(geom.Vec3i{Y: 1}), "WHEAT")
		}
	}
}
