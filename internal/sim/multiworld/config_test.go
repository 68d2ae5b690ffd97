package multiworld

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_WorldsYAML(t *testing.T) {
	cfg, err := Load("../../../configs/worlds.yaml")
	if err != nil {
		t.Fatalf("load worlds.yaml: %v", err)
	}
	if cfg.DefaultWorldID != "world" || len(cfg.Worlds) != 2 {
		t.Fatalf("cfg=%+v", cfg)
	}
	frozen, ok := cfg.WorldSpecByID("world_frozen")
	if !ok || frozen.Biome != "ICE_SPIKES" || frozen.SeedOffset != 1 {
		t.Fatalf("frozen=%+v ok=%v", frozen, ok)
	}
	wc := frozen.WorldConfig(1337)
	if wc.Name != "world_frozen" || wc.Seed != 1338 || wc.StartTime != 6000 {
		t.Fatalf("world config=%+v", wc)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	m := cfg.Manifest()
	if len(m) != 2 || m[0].WorldID != "world" || m[1].WorldID != "world_frozen" {
		t.Fatalf("manifest=%+v", m)
	}
}

func TestConfigNormalize_FillsDefaults(t *testing.T) {
	cfg := Config{Worlds: []WorldSpec{{ID: " mine ", BoundaryR: 64, Biome: "desert"}}}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	cfg.Normalize()
	w := cfg.Worlds[0]
	if cfg.DefaultWorldID != "mine" || w.ID != "mine" || w.Type != "MINE" || w.Biome != "DESERT" {
		t.Fatalf("normalized=%+v", cfg)
	}
	if w.Height != 128 || w.DayTicks != 24000 || w.BiomeRegionSize != 64 {
		t.Fatalf("missing defaults: %+v", w)
	}
}

func TestConfigValidate_Rejects(t *testing.T) {
	base := func() Config {
		return Config{DefaultWorldID: "a", Worlds: []WorldSpec{{ID: "a", BoundaryR: 64}}}
	}
	cases := map[string]func(c *Config){
		"no worlds":      func(c *Config) { c.Worlds = nil },
		"duplicate":      func(c *Config) { c.Worlds = append(c.Worlds, c.Worlds[0]) },
		"boundary":       func(c *Config) { c.Worlds[0].BoundaryR = 0 },
		"biome":          func(c *Config) { c.Worlds[0].Biome = "MUSHROOM_FIELDS" },
		"start time":     func(c *Config) { c.Worlds[0].StartTime = 24000 },
		"sea level":      func(c *Config) { c.Worlds[0].SeaLevel = 500 },
		"spawn farm":     func(c *Config) { c.Worlds[0].SpawnFarm = 4 },
		"default world":  func(c *Config) { c.DefaultWorldID = "b" },
		"negative ampl.": func(c *Config) { c.Worlds[0].SurfaceAmp = -1 },
	}
	for name, mod := range cases {
		c := base()
		mod(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoad_ReportsFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "worlds.yaml")
	if err := os.WriteFile(p, []byte("worlds:\n  - id: a\n    boundary_r: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(p)
	if err == nil || !strings.HasPrefix(err.Error(), "worlds.yaml: ") {
		t.Fatalf("err=%v", err)
	}
}
