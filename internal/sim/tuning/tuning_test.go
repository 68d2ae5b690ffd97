package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesTypeAndChanceKeys(t *testing.T) {
	path := writeConfig(t, `
random_events:
  enabled: true
  meteor_shower: false
  meteor_shower_chance: 0.0
  meteor_impact: true
  meteor_impact_chance: 1.0
  volcano: true
  volcano_chance: 0.25
  min_interval_ticks: 100
  max_interval_ticks: 200
events:
  rain_effects: false
disabled_worlds: [world_nether, " world_the_end ", world_nether]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	re := cfg.RandomEvents
	if !re.Enabled || re.MinIntervalTicks != 100 || re.MaxIntervalTicks != 200 {
		t.Fatalf("random_events=%+v", re)
	}
	if got := re.Incident("meteor_shower"); got.Enabled || got.Chance != 0 {
		t.Fatalf("meteor_shower=%+v", got)
	}
	if got := re.Incident("meteor_impact"); !got.Enabled || got.Chance != 1 {
		t.Fatalf("meteor_impact=%+v", got)
	}
	if got := re.Incident("volcano"); !got.Enabled || got.Chance != 0.25 {
		t.Fatalf("volcano=%+v", got)
	}
	// Untouched keys keep their defaults.
	if got := re.Incident("aurora_storm"); !got.Enabled || got.Chance != 0.2 {
		t.Fatalf("aurora_storm=%+v", got)
	}
	if cfg.Events.RainEffects {
		t.Fatalf("rain_effects should be false")
	}
	if !cfg.Events.ThunderstormEffects || cfg.Events.EffectDurationTicks != 1200 {
		t.Fatalf("events defaults lost: %+v", cfg.Events)
	}
	if len(cfg.DisabledWorlds) != 2 || !cfg.WorldDisabled("world_the_end") || cfg.WorldDisabled("world") {
		t.Fatalf("disabled_worlds=%v", cfg.DisabledWorlds)
	}
}

func TestLoadRejectsBadChance(t *testing.T) {
	path := writeConfig(t, "random_events:\n  hailstorm_chance: 1.5\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "hailstorm_chance") {
		t.Fatalf("err=%v", err)
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	path := writeConfig(t, "regions:\n  backend: redis\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNormalizeIntervals(t *testing.T) {
	path := writeConfig(t, "random_events:\n  min_interval_ticks: 500\n  max_interval_ticks: 10\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RandomEvents.MaxIntervalTicks != 500 {
		t.Fatalf("max=%d", cfg.RandomEvents.MaxIntervalTicks)
	}
}

func TestEmptyPathIsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickRateHz != 20 || cfg.Loot.Cap != 14 || cfg.Regions.Backend != "yaml" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if len(cfg.RandomEvents.Kinds()) != 6 {
		t.Fatalf("kinds=%v", cfg.RandomEvents.Kinds())
	}
}

func TestLoad_ShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load("../../../configs/config.yml")
	if err != nil {
		t.Fatalf("load config.yml: %v", err)
	}
	def := Defaults()
	def.Normalize()
	for _, k := range def.RandomEvents.Kinds() {
		if cfg.RandomEvents.Incident(k) != def.RandomEvents.Incident(k) {
			t.Fatalf("%s: shipped=%+v default=%+v", k, cfg.RandomEvents.Incident(k), def.RandomEvents.Incident(k))
		}
	}
	if cfg.Events != def.Events || cfg.Regions != def.Regions || cfg.Loot != def.Loot {
		t.Fatalf("shipped config drifted from defaults: %+v", cfg)
	}
}
