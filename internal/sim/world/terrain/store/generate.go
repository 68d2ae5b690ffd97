package store

import (
	"chaoticweather.ai/internal/sim/world/logic/mathx"
	genpkg "chaoticweather.ai/internal/sim/world/terrain/gen"
)

func (s *ChunkStore) BiomeAt(x, z int) string {
	if s.Gen.Biome != "" {
		return s.Gen.Biome
	}
	return genpkg.BiomeAt(s.Gen.Seed, x, z, s.Gen.BiomeRegionSize)
}

// SurfaceAt is the generated ground height of a column, before any edits.
func (s *ChunkStore) SurfaceAt(x, z int) int {
	g := s.Gen
	var y int
	if genpkg.WithinSpawnClear(x, z, g.SpawnClearRadius) {
		y = g.SeaLevel + 2
	} else {
		y = genpkg.SurfaceHeight(g.Seed+11, x, z, g.SeaLevel-2, g.SurfaceAmp)
		if s.BiomeAt(x, z) == "FROZEN_PEAKS" {
			y += g.SurfaceAmp
		}
	}
	if y < g.MinY+1 {
		y = g.MinY + 1
	}
	if top := g.MinY + g.Height - 2; y > top {
		y = top
	}
	return y
}

func (s *ChunkStore) GenerateChunk(ch *Chunk) {
	g := s.Gen
	bedrock := s.Palette.ID("BEDROCK")
	stone := s.Palette.ID("STONE")
	water := s.Palette.ID("WATER")
	ice := s.Palette.ID("ICE")

	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			wx := ch.CX*ChunkSize + x
			wz := ch.CZ*ChunkSize + z
			biome := s.BiomeAt(wx, wz)
			surface := s.SurfaceAt(wx, wz)
			top, fill := s.Palette.ID(topBlock(biome)), s.Palette.ID(fillBlock(biome))
			icy := biome == "SNOWY_PLAINS" || biome == "ICE_SPIKES" || biome == "FROZEN_PEAKS"

			for y := ch.MinY; y < ch.MinY+ch.Height; y++ {
				var b uint16
				switch {
				case y == g.MinY:
					b = bedrock
				case y < surface-3:
					b = stone
					if ore := s.oreAt(wx, y, wz, surface); ore != "" {
						b = s.Palette.ID(ore)
					}
				case y < surface:
					b = fill
				case y == surface:
					b = top
				case y == g.SeaLevel && icy:
					b = ice
				case y <= g.SeaLevel:
					b = water
				}
				ch.Blocks[ch.index(x, y, z)] = b
			}
		}
	}
}

func (s *ChunkStore) oreAt(x, y, z, surface int) string {
	g := s.Gen
	roll := mathx.Hash3(g.Seed+999, x, y, z) % 1000
	switch {
	case y < surface-16 && roll < 40 && genpkg.InCluster(g.Seed+101, x, z, 96, 2, genpkg.ScalePermille(200, g.OreClusterProbScalePermille)):
		return "DIAMOND_ORE"
	case roll < 120 && genpkg.InCluster(g.Seed+102, x, z, 64, 3, genpkg.ScalePermille(450, g.OreClusterProbScalePermille)):
		return "IRON_ORE"
	case roll < 200 && genpkg.InCluster(g.Seed+104, x, z, 48, 4, genpkg.ScalePermille(650, g.OreClusterProbScalePermille)):
		return "COAL_ORE"
	}
	return ""
}

func topBlock(biome string) string {
	switch biome {
	case "DESERT":
		return "SAND"
	case "SNOWY_PLAINS", "FROZEN_PEAKS":
		return "SNOW_BLOCK"
	case "ICE_SPIKES":
		return "PACKED_ICE"
	default:
		return "GRASS_BLOCK"
	}
}

func fillBlock(biome string) string {
	switch biome {
	case "DESERT":
		return "SAND"
	case "FROZEN_PEAKS":
		return "STONE"
	default:
		return "DIRT"
	}
}
