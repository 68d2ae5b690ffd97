package incidents

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"

	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/tuning"
)

type Kind string

const (
	MeteorShower   Kind = "meteor_shower"
	MeteorImpact   Kind = "meteor_impact"
	TreasureMeteor Kind = "treasure_meteor"
	HurricaneWinds Kind = "hurricane_winds"
	Hailstorm      Kind = "hailstorm"
	AuroraStorm    Kind = "aurora_storm"
)

type BiomeClass int

const (
	BiomeAny BiomeClass = iota
	BiomeIcy
)

// Evaluation order is significant: the first profile whose roll succeeds wins.
var order = []struct {
	kind  Kind
	biome BiomeClass
}{
	{MeteorShower, BiomeAny},
	{MeteorImpact, BiomeAny},
	{TreasureMeteor, BiomeAny},
	{HurricaneWinds, BiomeAny},
	{Hailstorm, BiomeIcy},
	{AuroraStorm, BiomeIcy},
}

// Profile is the per-type selection data for one dispatch cycle.
type Profile struct {
	Kind          Kind       `json:"kind"`
	Enabled       bool       `json:"enabled"`
	Chance        float64    `json:"chance"`
	Biome         BiomeClass `json:"biome"`
	CooldownTicks int        `json:"cooldown_ticks"`
}

// Eligible reports whether the profile may be rolled in the given biome.
func (p Profile) Eligible(icy bool) bool {
	return p.Enabled && (p.Biome == BiomeAny || icy)
}

// Profiles snapshots cfg into the ordered selection table.
func Profiles(cfg tuning.Config) []Profile {
	out := make([]Profile, len(order))
	for i, o := range order {
		inc := cfg.RandomEvents.Incident(string(o.kind))
		out[i] = Profile{
			Kind:          o.kind,
			Enabled:       inc.Enabled,
			Chance:        inc.Chance,
			Biome:         o.biome,
			CooldownTicks: cfg.Events.CooldownTicks,
		}
	}
	return out
}

// Kinds returns every incident type in evaluation order.
func Kinds() []Kind {
	out := make([]Kind, len(order))
	for i, o := range order {
		out[i] = o.kind
	}
	return out
}

var icyBiomes = map[string]struct{}{
	"ICE_SPIKES":   {},
	"SNOWY_PLAINS": {},
	"SNOWY_SLOPES": {},
	"FROZEN_PEAKS": {},
	"FROZEN_RIVER": {},
	"FROZEN_OCEAN": {},
}

func IsIcy(biome string) bool {
	_, ok := icyBiomes[biome]
	return ok
}

var (
	ErrUnknownIncident = errors.New("unknown incident")
	ErrUnknownWorld    = errors.New("unknown world")
	ErrWorldDisabled   = errors.New("incidents are disabled in this world")
	ErrNoActor         = errors.New("actor not present")
	ErrRestricted      = errors.New("incident is restricted here")
)

// UnknownIncidentError carries the closest known key, if any.
type UnknownIncidentError struct {
	Key        string
	Suggestion string
}

func (e *UnknownIncidentError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown incident %q (did you mean %q?)", e.Key, e.Suggestion)
	}
	return fmt.Sprintf("unknown incident %q", e.Key)
}

func (e *UnknownIncidentError) Unwrap() error { return ErrUnknownIncident }

// Suggest returns the known key closest to key by edit distance, or "" when
// none is close enough.
func Suggest(key string) string {
	key = regions.NormalizeKey(key)
	best, bestDist := "", -1
	for _, o := range order {
		cand := string(o.kind)
		dist := levenshtein.ComputeDistance(key, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
