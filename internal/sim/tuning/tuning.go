package tuning

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	TickRateHz     int          `yaml:"tick_rate_hz"`
	RandomEvents   RandomEvents `yaml:"random_events"`
	Events         Events       `yaml:"events"`
	DisabledWorlds []string     `yaml:"disabled_worlds"`
	Regions        Regions      `yaml:"regions"`
	Loot           Loot         `yaml:"loot"`
}

type Incident struct {
	Enabled bool
	Chance  float64
}

// RandomEvents is the random_events block. Besides the fixed keys it accepts
// `<type>: bool` and `<type>_chance: float` pairs for any incident type.
type RandomEvents struct {
	Enabled          bool
	MinIntervalTicks int
	MaxIntervalTicks int
	Incidents        map[string]Incident
}

type Events struct {
	RainEffects                    bool    `yaml:"rain_effects"`
	RainEffectsProbability         float64 `yaml:"rain_effects_probability"`
	PlantGrowthEnhancement         bool    `yaml:"plant_growth_enhancement"`
	ThunderstormEffects            bool    `yaml:"thunderstorm_effects"`
	ThunderstormEffectsProbability float64 `yaml:"thunderstorm_effects_probability"`
	CooldownTicks                  int     `yaml:"cooldown_ticks"`
	EffectDurationTicks            int     `yaml:"effect_duration_ticks"`
}

type Regions struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type Loot struct {
	Cap int `yaml:"cap"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config.yml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config.yml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		TickRateHz: 20,
		RandomEvents: RandomEvents{
			Enabled:          true,
			MinIntervalTicks: 12000,
			MaxIntervalTicks: 18000,
			Incidents: map[string]Incident{
				"meteor_shower":   {Enabled: true, Chance: 0.1},
				"meteor_impact":   {Enabled: true, Chance: 0.1},
				"treasure_meteor": {Enabled: true, Chance: 0.05},
				"hurricane_winds": {Enabled: true, Chance: 0.15},
				"hailstorm":       {Enabled: true, Chance: 0.2},
				"aurora_storm":    {Enabled: true, Chance: 0.2},
			},
		},
		Events: Events{
			RainEffects:                    true,
			RainEffectsProbability:         0.5,
			PlantGrowthEnhancement:         true,
			ThunderstormEffects:            true,
			ThunderstormEffectsProbability: 0.5,
			CooldownTicks:                  12000,
			EffectDurationTicks:            1200,
		},
		Regions: Regions{Backend: "yaml", Path: "data/restricted_regions.yml"},
		Loot:    Loot{Cap: 14},
	}
}

func (c *Config) Normalize() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 20
	}
	re := &c.RandomEvents
	if re.MinIntervalTicks <= 0 {
		re.MinIntervalTicks = 12000
	}
	if re.MaxIntervalTicks < re.MinIntervalTicks {
		re.MaxIntervalTicks = re.MinIntervalTicks
	}
	if re.Incidents == nil {
		re.Incidents = map[string]Incident{}
	}
	if c.Events.CooldownTicks < 0 {
		c.Events.CooldownTicks = 0
	}
	if c.Events.EffectDurationTicks <= 0 {
		c.Events.EffectDurationTicks = 1200
	}
	c.Regions.Backend = strings.ToLower(strings.TrimSpace(c.Regions.Backend))
	if c.Regions.Backend == "" {
		c.Regions.Backend = "yaml"
	}
	if c.Loot.Cap <= 0 {
		c.Loot.Cap = 14
	}
	seen := map[string]bool{}
	out := c.DisabledWorlds[:0]
	for _, w := range c.DisabledWorlds {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	c.DisabledWorlds = out
}

func (c Config) Validate() error {
	for _, k := range c.RandomEvents.Kinds() {
		inc := c.RandomEvents.Incidents[k]
		if inc.Chance < 0 || inc.Chance > 1 {
			return fmt.Errorf("random_events.%s_chance must be in [0,1], got %v", k, inc.Chance)
		}
	}
	if p := c.Events.RainEffectsProbability; p < 0 || p > 1 {
		return fmt.Errorf("events.rain_effects_probability must be in [0,1], got %v", p)
	}
	if p := c.Events.ThunderstormEffectsProbability; p < 0 || p > 1 {
		return fmt.Errorf("events.thunderstorm_effects_probability must be in [0,1], got %v", p)
	}
	switch c.Regions.Backend {
	case "yaml", "sqlite":
	default:
		return fmt.Errorf("regions.backend must be yaml or sqlite, got %q", c.Regions.Backend)
	}
	if strings.TrimSpace(c.Regions.Path) == "" {
		return fmt.Errorf("regions.path is required")
	}
	return nil
}

// WorldDisabled reports whether name is listed in disabled_worlds.
func (c Config) WorldDisabled(name string) bool {
	for _, w := range c.DisabledWorlds {
		if w == name {
			return true
		}
	}
	return false
}

// Kinds lists the configured incident types, sorted.
func (r RandomEvents) Kinds() []string {
	out := make([]string, 0, len(r.Incidents))
	for k := range r.Incidents {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (r RandomEvents) Incident(kind string) Incident {
	return r.Incidents[kind]
}

func (r *RandomEvents) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("random_events: expected mapping, line %d", n.Line)
	}
	if r.Incidents == nil {
		r.Incidents = map[string]Incident{}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "enabled":
			err = val.Decode(&r.Enabled)
		case "min_interval_ticks":
			err = val.Decode(&r.MinIntervalTicks)
		case "max_interval_ticks":
			err = val.Decode(&r.MaxIntervalTicks)
		default:
			if kind, ok := strings.CutSuffix(key, "_chance"); ok {
				inc := r.Incidents[kind]
				err = val.Decode(&inc.Chance)
				r.Incidents[kind] = inc
			} else {
				inc := r.Incidents[key]
				err = val.Decode(&inc.Enabled)
				r.Incidents[key] = inc
			}
		}
		if err != nil {
			return fmt.Errorf("random_events.%s: %w", key, err)
		}
	}
	return nil
}

func (r RandomEvents) MarshalYAML() (any, error) {
	m := map[string]any{
		"enabled":            r.Enabled,
		"min_interval_ticks": r.MinIntervalTicks,
		"max_interval_ticks": r.MaxIntervalTicks,
	}
	for k, inc := range r.Incidents {
		m[k] = inc.Enabled
		m[k+"_chance"] = inc.Chance
	}
	return m, nil
}
