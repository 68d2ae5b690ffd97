// Package ambient grants short buffs and debuffs to actors caught outside in
// rain or thunder, and speeds up crops near spawn while it storms.
package ambient

import (
	"log"

	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/incidents"
	"chaoticweather.ai/internal/sim/lottery"
	"chaoticweather.ai/internal/sim/timers"
	"chaoticweather.ai/internal/sim/tuning"
)

const (
	weatherPeriod = 200
	cropPeriod    = 600
	cropRadius    = 50
	exposedMinY   = 64
	healTicks     = 20
)

type World interface {
	Name() string
	Actors() []incidents.Actor
	HasStorm() bool
	IsThundering() bool
	// GrowCrops advances every unripe crop within radius blocks of spawn by
	// stages and returns how many grew.
	GrowCrops(radius, stages int) int
}

type Options struct {
	Worlds  func() []World
	Timers  *timers.Queue
	Rand    lottery.Rand
	Effects effects.Sink
	Logger  *log.Logger
	Config  func() tuning.Config
}

type grant struct {
	status  string
	message string
	// ticks overrides the configured effect duration when non-zero.
	ticks int
}

type family struct {
	tracker *Tracker
	active  func(World) bool
	enabled func(tuning.Events) bool
	chance  func(tuning.Events) float64
	grants  []grant
}

// Effects runs the rain, thunder and crop growth tasks.
type Effects struct {
	worlds func() []World
	q      *timers.Queue
	rng    lottery.Rand
	sink   effects.Sink
	logger *log.Logger
	cfg    func() tuning.Config

	rain    family
	thunder family
	tasks   []*timers.Task
}

func New(opts Options) *Effects {
	e := &Effects{
		worlds: opts.Worlds,
		q:      opts.Timers,
		rng:    opts.Rand,
		sink:   opts.Effects,
		logger: opts.Logger,
		cfg:    opts.Config,
	}
	if e.sink == nil {
		e.sink = effects.Nop{}
	}
	if e.cfg == nil {
		e.cfg = tuning.Defaults
	}
	if e.worlds == nil {
		e.worlds = func() []World { return nil }
	}
	e.rain = family{
		tracker: NewTracker("rain"),
		active:  World.HasStorm,
		enabled: func(ev tuning.Events) bool { return ev.RainEffects },
		chance:  func(ev tuning.Events) float64 { return ev.RainEffectsProbability },
		grants: []grant{
			{status: "SPEED", message: "events.rain_effects.speed"},
			{status: "STRENGTH", message: "events.rain_effects.increase_damage"},
			{status: "HEAL", message: "events.rain_effects.heal", ticks: healTicks},
			{status: "BLINDNESS", message: "events.rain_effects.blindness"},
		},
	}
	e.thunder = family{
		tracker: NewTracker("thunder"),
		active:  World.IsThundering,
		enabled: func(ev tuning.Events) bool { return ev.ThunderstormEffects },
		chance:  func(ev tuning.Events) float64 { return ev.ThunderstormEffectsProbability },
		grants: []grant{
			{status: "BLINDNESS", message: "events.thunderstorm_effects.blindness"},
			{status: "SLOWNESS", message: "events.thunderstorm_effects.slow"},
			{status: "STRENGTH", message: "events.thunderstorm_effects.increase_damage"},
		},
	}
	return e
}

func (e *Effects) Rain() *Tracker    { return e.rain.tracker }
func (e *Effects) Thunder() *Tracker { return e.thunder.tracker }

// Start arms the periodic tasks. The config is consulted on every pulse, so
// a reload can switch families on and off without re-arming.
func (e *Effects) Start() {
	e.Stop()
	e.tasks = append(e.tasks,
		e.q.Every(0, weatherPeriod, func() { e.pulse(&e.rain) }),
		e.q.Every(0, weatherPeriod, func() { e.pulse(&e.thunder) }),
		e.q.Every(0, cropPeriod, e.growCrops),
	)
}

// Stop cancels the periodic tasks and every pending release.
func (e *Effects) Stop() {
	for _, t := range e.tasks {
		t.Cancel()
	}
	e.tasks = nil
	e.rain.tracker.cancelReleases()
	e.thunder.tracker.cancelReleases()
}

func (e *Effects) pulse(f *family) {
	ev := e.cfg().Events
	if !f.enabled(ev) {
		return
	}
	now := e.q.Now()
	cooldown := uint64(ev.CooldownTicks)
	for _, w := range e.worlds() {
		actors := w.Actors()
		if !f.active(w) {
			for _, a := range actors {
				f.tracker.Release(a.ID)
			}
			continue
		}
		for _, a := range actors {
			if a.Pos.Y <= exposedMinY || f.tracker.Active(a.ID) {
				continue
			}
			if !f.tracker.Eligible(a.ID, now, cooldown) {
				continue
			}
			if e.rng.Float64() >= f.chance(ev) {
				continue
			}
			g := f.grants[e.rng.Intn(len(f.grants))]
			ticks := g.ticks
			if ticks == 0 {
				ticks = ev.EffectDurationTicks
			}
			e.sink.Emit(effects.Status(w.Name(), a.ID, g.status, ticks, 0))
			e.sink.Emit(effects.Message(w.Name(), a.ID, g.message))
			f.tracker.Activate(a.ID, now)
			id := a.ID
			f.tracker.scheduleRelease(id, e.q.After(uint64(ev.EffectDurationTicks), func() {
				f.tracker.Release(id)
			}))
		}
	}
}

// growStages is the crop growth per pulse. Thunder halves the doubled rate
// and the fractional stage is dropped.
func growStages(thundering bool) int {
	if thundering {
		return 0
	}
	return 2
}

func (e *Effects) growCrops() {
	if !e.cfg().Events.PlantGrowthEnhancement {
		return
	}
	for _, w := range e.worlds() {
		if !w.HasStorm() {
			continue
		}
		stages := growStages(w.IsThundering())
		if stages == 0 {
			continue
		}
		if n := w.GrowCrops(cropRadius, stages); n > 0 && e.logger != nil {
			e.logger.Printf("world %s: storm grew %d crops", w.Name(), n)
		}
	}
}
