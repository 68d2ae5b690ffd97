// Package crater carves layered impact craters into a block grid.
package crater

import (
	"fmt"

	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/loot"
	"chaoticweather.ai/internal/sim/lottery"
)

// Terrain is the block grid the generator writes into. Y outside
// [MinY, MaxY) is never read or written.
type Terrain interface {
	Block(p geom.Vec3i) string
	SetBlock(p geom.Vec3i, material string)
	MinY() int
	MaxY() int
	// PlaceContainer returns the inventory of the container block at p.
	PlaceContainer(p geom.Vec3i) (loot.Inventory, error)
}

// AttributedTerrain is implemented by terrains that record why a block
// changed. The generator tags its writes with the profile name.
type AttributedTerrain interface {
	SetBlockFor(p geom.Vec3i, material, reason string)
}

type Generator struct {
	Terrain Terrain
	World   string
	Effects effects.Sink
	Loot    loot.Engine
}

type Result struct {
	Profile string        `json:"profile"`
	Center  geom.Vec3i    `json:"center"`
	Changed int           `json:"changed"`
	Ores    int           `json:"ores"`
	Chest   *geom.Vec3i   `json:"chest,omitempty"`
	Loot    []loot.Placed `json:"loot,omitempty"`
}

// Carve runs the full recipe: clear the columns above the impact, cut the
// tapering cavity, seed ores, apply the outer rim, scatter decor and drop the
// loot chest. Cells that fall outside the world's vertical bounds are skipped.
func (g *Generator) Carve(center geom.Vec3i, p Profile, rng lottery.Rand) (Result, error) {
	if p.Radius <= 0 || p.Depth <= 0 {
		return Result{}, fmt.Errorf("%w: %s: radius %d depth %d", ErrInvalidProfile, p.Name, p.Radius, p.Depth)
	}
	c := &carver{t: g.Terrain, minY: g.Terrain.MinY(), maxY: g.Terrain.MaxY(), reason: "crater:" + p.Name}
	c.at, _ = g.Terrain.(AttributedTerrain)
	res := Result{Profile: p.Name, Center: center}

	c.clearAbove(center, p.Radius)
	c.cavity(center, p, rng)
	res.Ores = c.seedOres(center, p, rng)
	if p.OuterRim != nil {
		c.outerRim(center, p.Radius, *p.OuterRim, rng)
	}
	g.decor(center, p, rng)

	if p.HasLootChest {
		at := center.Add(geom.Vec3i{Y: 1 - p.Depth})
		if c.inBounds(at.Y) {
			c.set(at, Chest)
			inv, err := g.Terrain.PlaceContainer(at)
			if err != nil {
				res.Changed = c.changed
				return res, fmt.Errorf("crater %s: place chest: %w", p.Name, err)
			}
			placed, err := g.Loot.Fill(inv, rng)
			if err != nil {
				res.Changed = c.changed
				return res, fmt.Errorf("crater %s: fill chest: %w", p.Name, err)
			}
			res.Chest = &at
			res.Loot = placed
		}
	}
	res.Changed = c.changed
	return res, nil
}

func (g *Generator) decor(center geom.Vec3i, p Profile, rng lottery.Rand) {
	if g.Effects == nil || p.DecorCount <= 0 {
		return
	}
	r := float64(p.Radius)
	base := center.ToVec3()
	for i := 0; i < p.DecorCount; i++ {
		off := geom.Vec3{X: rng.Float64()*r*2 - r, Y: 1, Z: rng.Float64()*r*2 - r}
		g.Effects.Emit(effects.Particle(g.World, base.Add(off), p.DecorParticle, 10))
	}
}

type carver struct {
	t       Terrain
	at      AttributedTerrain
	reason  string
	minY    int
	maxY    int
	changed int
}

func (c *carver) inBounds(y int) bool { return y >= c.minY && y < c.maxY }

func (c *carver) set(p geom.Vec3i, m string) {
	if !c.inBounds(p.Y) {
		return
	}
	if c.t.Block(p) == m {
		return
	}
	if c.at != nil {
		c.at.SetBlockFor(p, m, c.reason)
	} else {
		c.t.SetBlock(p, m)
	}
	c.changed++
}

func (c *carver) clearAbove(center geom.Vec3i, radius int) {
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if geom.HorizontalDist(dx, dz) > float64(radius) {
				continue
			}
			for y := center.Y + 1; y < c.maxY; y++ {
				c.set(geom.Vec3i{X: center.X + dx, Y: y, Z: center.Z + dz}, Air)
			}
		}
	}
}

func (c *carver) cavity(center geom.Vec3i, p Profile, rng lottery.Rand) {
	for dy := 0; dy >= -p.Depth; dy-- {
		lr := p.Radius + dy
		if lr < 0 {
			break
		}
		for dx := -lr; dx <= lr; dx++ {
			for dz := -lr; dz <= lr; dz++ {
				d := geom.HorizontalDist(dx, dz)
				if d > float64(lr) {
					continue
				}
				at := geom.Vec3i{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz}
				if !c.inBounds(at.Y) {
					continue
				}
				if dy == 0 && !allowed(p.SurfaceWhitelist, c.t.Block(at)) {
					continue
				}
				if d > float64(lr-1) {
					c.set(at, pick(rng, p.RimMaterials))
					if p.RimOverlay != "" && rng.Float64() < p.RimOverlayChance {
						c.set(at.Add(geom.Vec3i{Y: 1}), p.RimOverlay)
					}
					continue
				}
				switch {
				case dy == 0:
					c.set(at, Air)
				case dy > -p.Depth:
					c.set(at, pick(rng, p.CoreMaterials))
				default:
					c.set(at, pick(rng, p.FloorMaterials))
				}
			}
		}
	}
}

func (c *carver) seedOres(center geom.Vec3i, p Profile, rng lottery.Rand) int {
	if len(p.Ores) == 0 {
		return 0
	}
	fm := lottery.NewFirstMatch(p.Ores)
	n := 0
	for dx := -p.Radius; dx <= p.Radius; dx++ {
		for dz := -p.Radius; dz <= p.Radius; dz++ {
			if geom.HorizontalDist(dx, dz) > float64(p.Radius) {
				continue
			}
			at := geom.Vec3i{X: center.X + dx, Y: center.Y - rng.Intn(p.Depth), Z: center.Z + dz}
			if ore, ok := fm.Pick(rng); ok && c.inBounds(at.Y) {
				c.set(at, ore)
				n++
			}
		}
	}
	return n
}

func (c *carver) outerRim(center geom.Vec3i, radius int, rim OuterRim, rng lottery.Rand) {
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			d := geom.HorizontalDist(dx, dz)
			if d > float64(radius) || d <= float64(radius-rim.Width) {
				continue
			}
			at := geom.Vec3i{X: center.X + dx, Y: center.Y, Z: center.Z + dz}
			c.set(at, rim.Material)
			if rim.Overlay != "" && rng.Float64() < rim.OverlayChance {
				c.set(at.Add(geom.Vec3i{Y: 1}), rim.Overlay)
			}
		}
	}
}

func pick(rng lottery.Rand, entries []lottery.Entry[string]) string {
	if m, ok := lottery.PickOne(rng, entries); ok {
		return m
	}
	return entries[len(entries)-1].Item
}

func allowed(list []string, m string) bool {
	if len(list) == 0 {
		return true
	}
	for _, x := range list {
		if x == m {
			return true
		}
	}
	return false
}
