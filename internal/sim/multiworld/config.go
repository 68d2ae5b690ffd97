package multiworld

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"chaoticweather.ai/internal/protocol"
	"chaoticweather.ai/internal/sim/world"
	"chaoticweather.ai/internal/sim/world/terrain/gen"
)

type Config struct {
	DefaultWorldID string      `yaml:"default_world_id"`
	Worlds         []WorldSpec `yaml:"worlds"`
}

type WorldSpec struct {
	ID         string `yaml:"id"`
	Type       string `yaml:"type"`
	SeedOffset int64  `yaml:"seed_offset"`
	BoundaryR  int    `yaml:"boundary_r"`
	MinY       int    `yaml:"min_y"`
	Height     int    `yaml:"height"`
	SeaLevel   int    `yaml:"sea_level"`
	SurfaceAmp int    `yaml:"surface_amp"`

	// Biome pins every column to one biome; empty means generated regions.
	Biome            string `yaml:"biome,omitempty"`
	BiomeRegionSize  int    `yaml:"biome_region_size"`
	SpawnClearRadius int    `yaml:"spawn_clear_radius"`

	DayTicks     int  `yaml:"day_ticks"`
	StartTime    int  `yaml:"start_time"`
	WeatherCycle bool `yaml:"weather_cycle"`
	SpawnFarm    int  `yaml:"spawn_farm"`
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("worlds.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		DefaultWorldID: "world",
		Worlds: []WorldSpec{
			{
				ID:               "world",
				Type:             "OVERWORLD",
				BoundaryR:        4000,
				Height:           128,
				SurfaceAmp:       8,
				BiomeRegionSize:  64,
				SpawnClearRadius: 24,
				DayTicks:         24000,
				WeatherCycle:     true,
				SpawnFarm:        6,
			},
			{
				ID:               "world_frozen",
				Type:             "FROZEN",
				SeedOffset:       1,
				BoundaryR:        2000,
				Height:           128,
				SurfaceAmp:       12,
				Biome:            "ICE_SPIKES",
				BiomeRegionSize:  64,
				SpawnClearRadius: 16,
				DayTicks:         24000,
				WeatherCycle:     true,
			},
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.DefaultWorldID = strings.TrimSpace(c.DefaultWorldID)
	for i := range c.Worlds {
		w := &c.Worlds[i]
		w.ID = strings.TrimSpace(w.ID)
		w.Biome = strings.ToUpper(strings.TrimSpace(w.Biome))
		if strings.TrimSpace(w.Type) == "" {
			w.Type = strings.ToUpper(w.ID)
		}
		if w.Height <= 0 {
			w.Height = 128
		}
		if w.DayTicks <= 0 {
			w.DayTicks = 24000
		}
		if w.BiomeRegionSize <= 0 {
			w.BiomeRegionSize = 64
		}
	}
	if c.DefaultWorldID == "" && len(c.Worlds) > 0 {
		c.DefaultWorldID = c.Worlds[0].ID
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if len(c.Worlds) == 0 {
		return fmt.Errorf("worlds must not be empty")
	}
	known := map[string]bool{}
	for _, b := range gen.Biomes {
		known[b] = true
	}
	seen := map[string]bool{}
	for _, w := range c.Worlds {
		if w.ID == "" {
			return fmt.Errorf("world id must not be empty")
		}
		if seen[w.ID] {
			return fmt.Errorf("duplicate world id: %s", w.ID)
		}
		seen[w.ID] = true
		if w.BoundaryR <= 0 {
			return fmt.Errorf("world %s boundary_r must be > 0", w.ID)
		}
		if w.SurfaceAmp < 0 {
			return fmt.Errorf("world %s surface_amp must be >= 0", w.ID)
		}
		if w.SeaLevel != 0 && (w.SeaLevel < w.MinY || w.SeaLevel >= w.MinY+w.Height) {
			return fmt.Errorf("world %s sea_level must be in [min_y, min_y+height)", w.ID)
		}
		if w.Biome != "" && !known[w.Biome] {
			return fmt.Errorf("world %s unknown biome %q", w.ID, w.Biome)
		}
		if w.StartTime < 0 || w.StartTime >= w.DayTicks {
			return fmt.Errorf("world %s start_time must be in [0, day_ticks)", w.ID)
		}
		if w.SpawnFarm < 0 || w.SpawnFarm > w.SpawnClearRadius {
			return fmt.Errorf("world %s spawn_farm must be in [0, spawn_clear_radius]", w.ID)
		}
	}
	if !seen[c.DefaultWorldID] {
		return fmt.Errorf("default_world_id %q not found in worlds", c.DefaultWorldID)
	}
	return nil
}

func (c Config) Manifest() []protocol.WorldRef {
	out := make([]protocol.WorldRef, 0, len(c.Worlds))
	for _, w := range c.Worlds {
		out = append(out, protocol.WorldRef{
			WorldID:   w.ID,
			WorldType: w.Type,
			Biome:     w.Biome,
			BoundaryR: w.BoundaryR,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorldID < out[j].WorldID })
	return out
}

func (c Config) WorldSpecByID(id string) (WorldSpec, bool) {
	for _, w := range c.Worlds {
		if w.ID == id {
			return w, true
		}
	}
	return WorldSpec{}, false
}

// WorldConfig derives the world settings for spec from the server seed.
func (w WorldSpec) WorldConfig(seed int64) world.Config {
	return world.Config{
		Name:             w.ID,
		Seed:             seed + w.SeedOffset,
		MinY:             w.MinY,
		Height:           w.Height,
		SeaLevel:         w.SeaLevel,
		SurfaceAmp:       w.SurfaceAmp,
		BoundaryR:        w.BoundaryR,
		BiomeRegionSize:  w.BiomeRegionSize,
		Biome:            w.Biome,
		SpawnClearRadius: w.SpawnClearRadius,
		DayTicks:         w.DayTicks,
		StartTime:        w.StartTime,
		WeatherCycle:     w.WeatherCycle,
		SpawnFarm:        w.SpawnFarm,
	}
}
