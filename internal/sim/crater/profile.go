package crater

import (
	"errors"
	"fmt"

	"chaoticweather.ai/internal/sim/lottery"
)

var ErrInvalidProfile = errors.New("invalid crater profile")

const (
	Air   = "AIR"
	Chest = "CHEST"
	Smoke = "SMOKE_LARGE"
	Fire  = "FIRE"
)

// OuterRim is a second pass over the impact layer ring.
type OuterRim struct {
	// Width is how far in from Radius the ring reaches. Defaults to 1.
	Width         int
	Material      string
	Overlay       string
	OverlayChance float64
}

type Profile struct {
	Name   string
	Radius int
	Depth  int

	// Weighted alternatives; a draw that misses falls back to the last entry.
	RimMaterials   []lottery.Entry[string]
	CoreMaterials  []lottery.Entry[string]
	FloorMaterials []lottery.Entry[string]

	RimOverlay       string
	RimOverlayChance float64

	// SurfaceWhitelist limits which existing blocks the impact layer may
	// replace. Empty means any.
	SurfaceWhitelist []string

	Ores []lottery.CappedRule[string]

	OuterRim *OuterRim

	DecorCount    int
	DecorParticle string

	HasLootChest bool
}

// NewProfile validates p and fills defaults.
func NewProfile(p Profile) (Profile, error) {
	if p.Radius <= 0 {
		return Profile{}, fmt.Errorf("%w: %s: radius %d", ErrInvalidProfile, p.Name, p.Radius)
	}
	if p.Depth <= 0 {
		return Profile{}, fmt.Errorf("%w: %s: depth %d", ErrInvalidProfile, p.Name, p.Depth)
	}
	if len(p.RimMaterials) == 0 || len(p.CoreMaterials) == 0 || len(p.FloorMaterials) == 0 {
		return Profile{}, fmt.Errorf("%w: %s: rim, core and floor materials are required", ErrInvalidProfile, p.Name)
	}
	for _, r := range p.Ores {
		if r.Max < 0 || r.Probability < 0 || r.Probability > 1 {
			return Profile{}, fmt.Errorf("%w: %s: ore rule %q", ErrInvalidProfile, p.Name, r.Item)
		}
	}
	if p.OuterRim != nil {
		rim := *p.OuterRim
		if rim.Width <= 0 {
			rim.Width = 1
		}
		if rim.Material == "" {
			return Profile{}, fmt.Errorf("%w: %s: outer rim without material", ErrInvalidProfile, p.Name)
		}
		p.OuterRim = &rim
	}
	if p.DecorParticle == "" {
		p.DecorParticle = Smoke
	}
	return p, nil
}

func defaultOres() []lottery.CappedRule[string] {
	return []lottery.CappedRule[string]{
		{Item: "GOLD_BLOCK", Max: 1, Probability: 0.1},
		{Item: "IRON_BLOCK", Max: 2, Probability: 0.2},
		{Item: "IRON_ORE", Max: 5, Probability: 0.48},
	}
}

func base(name string, radius, depth int) Profile {
	return Profile{
		Name:   name,
		Radius: radius,
		Depth:  depth,
		RimMaterials: []lottery.Entry[string]{
			{Item: "NETHERRACK", Probability: 0.3},
			{Item: "BLACKSTONE", Probability: 0.7},
		},
		CoreMaterials: []lottery.Entry[string]{
			{Item: "MAGMA_BLOCK", Probability: 0.2},
			{Item: "NETHERRACK", Probability: 0.8},
		},
		FloorMaterials: []lottery.Entry[string]{
			{Item: "LAVA", Probability: 0.5},
			{Item: "OBSIDIAN", Probability: 0.5},
		},
		RimOverlay:       Fire,
		RimOverlayChance: 0.15,
		SurfaceWhitelist: []string{"GRASS_BLOCK", "DIRT", "STONE"},
		Ores:             defaultOres(),
		DecorCount:       40,
		DecorParticle:    Smoke,
	}
}

// MeteorImpact is the plain crater.
func MeteorImpact() Profile {
	return base("meteor_impact", 6, 4)
}

// TreasureMeteor is deeper, has a blackstone ring and a loot chest on the
// floor. It seeds no ores; the chest is the reward.
func TreasureMeteor() Profile {
	p := base("treasure_meteor", 6, 7)
	p.Ores = nil
	p.OuterRim = &OuterRim{Width: 1, Material: "BLACKSTONE", Overlay: Fire, OverlayChance: 0.3}
	p.HasLootChest = true
	return p
}
