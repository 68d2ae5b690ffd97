package store

import (
	"sort"

	"chaoticweather.ai/internal/sim/world/logic/mathx"
)

func (s *ChunkStore) MinY() int { return s.Gen.MinY }

// MaxY is exclusive.
func (s *ChunkStore) MaxY() int { return s.Gen.MinY + s.Gen.Height }

func (s *ChunkStore) InBounds(x, y, z int) bool {
	if y < s.MinY() || y >= s.MaxY() {
		return false
	}
	if s.Gen.BoundaryR > 0 {
		if x < -s.Gen.BoundaryR || x > s.Gen.BoundaryR || z < -s.Gen.BoundaryR || z > s.Gen.BoundaryR {
			return false
		}
	}
	return true
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

// GetBlock returns the material at (x, y, z). Out of bounds reads as air.
func (s *ChunkStore) GetBlock(x, y, z int) string {
	if !s.InBounds(x, y, z) {
		return Air
	}
	ch := s.GetOrGenChunk(mathx.FloorDiv(x, ChunkSize), mathx.FloorDiv(z, ChunkSize))
	return s.Palette.Name(ch.Get(mathx.Mod(x, ChunkSize), y, mathx.Mod(z, ChunkSize)))
}

// SetBlock writes material and returns the previous one. Out of bounds
// writes are dropped and report ok=false.
func (s *ChunkStore) SetBlock(x, y, z int, material string) (prev string, ok bool) {
	if !s.InBounds(x, y, z) {
		return Air, false
	}
	ch := s.GetOrGenChunk(mathx.FloorDiv(x, ChunkSize), mathx.FloorDiv(z, ChunkSize))
	lx, lz := mathx.Mod(x, ChunkSize), mathx.Mod(z, ChunkSize)
	prev = s.Palette.Name(ch.Get(lx, y, lz))
	ch.Set(lx, y, lz, s.Palette.ID(material))
	return prev, true
}

// TopY returns the highest y in the column whose material passes solid.
func (s *ChunkStore) TopY(x, z int, solid func(material string) bool) (int, bool) {
	for y := s.MaxY() - 1; y >= s.MinY(); y-- {
		if solid(s.GetBlock(x, y, z)) {
			return y, true
		}
	}
	return 0, false
}

func (s *ChunkStore) GetOrGenChunk(cx, cz int) *Chunk {
	k := ChunkKey{CX: cx, CZ: cz}
	if ch, ok := s.Chunks[k]; ok {
		return ch
	}
	ch := newChunk(cx, cz, s.Gen.MinY, s.Gen.Height)
	s.GenerateChunk(ch)
	ch.dirty = true
	_ = ch.Digest()
	s.Chunks[k] = ch
	return ch
}
