// Package incidents decides which chaotic weather incident happens, where and
// how often, and runs the incident handlers.
//
// Everything here runs on the host tick goroutine. The busy flag is a plain
// bool for that reason.
package incidents

import (
	"fmt"
	"log"
	"sort"

	"chaoticweather.ai/internal/sim/crater"
	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/loot"
	"chaoticweather.ai/internal/sim/lottery"
	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/timers"
	"chaoticweather.ai/internal/sim/tuning"
)

type Actor struct {
	ID   string
	Name string
	Pos  geom.Vec3
}

// World is the host world as the scheduler sees it.
type World interface {
	crater.Terrain
	Name() string
	// Actors returns a snapshot; later joins and leaves do not affect it.
	Actors() []Actor
	Actor(id string) (Actor, bool)
	Biome(p geom.Vec3i) string
	HighestSolidY(x, z int) (int, bool)
	TimeOfDay() int
}

type Host interface {
	Worlds() []World
	World(name string) (World, bool)
}

type Restrictor interface {
	IsRestricted(key string, p geom.Vec3) bool
}

// State is the scheduler's mutable state. Only the scheduler's own timer
// callbacks change it.
type State struct {
	Busy bool
}

type Options struct {
	Host     Host
	Regions  Restrictor
	Timers   *timers.Queue
	Rand     lottery.Rand
	State    *State
	Effects  effects.Sink
	Loot     loot.Engine
	Logger   *log.Logger
	Config   func() tuning.Config
	// Craters overrides the built-in crater recipes per kind.
	Craters map[Kind]crater.Profile
}

// Outcome describes what one world did during a dispatch firing.
type Outcome struct {
	Tick  uint64 `json:"tick"`
	World string `json:"world"`
	Actor string `json:"actor,omitempty"`
	Kind  Kind   `json:"kind,omitempty"`
	Err   string `json:"error,omitempty"`
}

type Scheduler struct {
	host    Host
	regions Restrictor
	q       *timers.Queue
	rng     lottery.Rand
	state   *State
	sink    effects.Sink
	loot    loot.Engine
	logger  *log.Logger
	cfg     func() tuning.Config

	craters  map[Kind]crater.Profile
	handlers map[Kind]handler

	dispatch *timers.Task
	tasks    []*timers.Task
	last     []Outcome
}

type handler func(w World, a Actor) error

func New(opts Options) (*Scheduler, error) {
	if opts.Host == nil || opts.Timers == nil || opts.Rand == nil {
		return nil, fmt.Errorf("incidents: host, timers and rand are required")
	}
	s := &Scheduler{
		host:    opts.Host,
		regions: opts.Regions,
		q:       opts.Timers,
		rng:     opts.Rand,
		state:   opts.State,
		sink:    opts.Effects,
		loot:    opts.Loot,
		logger:  opts.Logger,
		cfg:     opts.Config,
	}
	if s.state == nil {
		s.state = &State{}
	}
	if s.sink == nil {
		s.sink = effects.Nop{}
	}
	if s.cfg == nil {
		s.cfg = tuning.Defaults
	}
	if s.loot.Cap == 0 {
		s.loot = loot.DefaultEngine()
	}

	s.craters = map[Kind]crater.Profile{}
	for k, p := range map[Kind]crater.Profile{MeteorImpact: crater.MeteorImpact(), TreasureMeteor: crater.TreasureMeteor()} {
		if custom, ok := opts.Craters[k]; ok {
			p = custom
		}
		vp, err := crater.NewProfile(p)
		if err != nil {
			return nil, err
		}
		s.craters[k] = vp
	}

	s.handlers = map[Kind]handler{
		MeteorShower:   s.meteorShower,
		MeteorImpact:   func(w World, a Actor) error { return s.meteor(w, a, MeteorImpact) },
		TreasureMeteor: func(w World, a Actor) error { return s.meteor(w, a, TreasureMeteor) },
		HurricaneWinds: s.hurricane,
		Hailstorm:      s.hailstorm,
		AuroraStorm:    s.aurora,
	}
	return s, nil
}

func (s *Scheduler) State() State { return *s.state }

// Last returns the outcomes of the most recent dispatch firing.
func (s *Scheduler) Last() []Outcome { return append([]Outcome(nil), s.last...) }

// Pending counts the scheduler's live timers.
func (s *Scheduler) Pending() int {
	s.prune()
	return len(s.tasks)
}

// Start arms the dispatch timer when random incidents are enabled. Calling it
// again re-arms with the current configuration; running incidents are kept.
func (s *Scheduler) Start() {
	if s.dispatch != nil {
		s.dispatch.Cancel()
		s.dispatch = nil
	}
	if !s.cfg().RandomEvents.Enabled {
		s.logf("random incidents disabled")
		return
	}
	s.arm()
}

// Stop cancels every timer the scheduler owns: dispatch, release and running
// incidents.
func (s *Scheduler) Stop() {
	for _, t := range s.tasks {
		t.Cancel()
	}
	s.tasks = nil
	s.dispatch = nil
}

func (s *Scheduler) arm() {
	s.dispatch = s.after(s.interval(), func() {
		s.arm()
		s.Dispatch()
	})
}

func (s *Scheduler) interval() uint64 {
	re := s.cfg().RandomEvents
	lo, hi := re.MinIntervalTicks, re.MaxIntervalTicks
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return uint64(lo + s.rng.Intn(hi-lo+1))
}

// Dispatch is one firing of the dispatch timer. While busy it does nothing.
// Otherwise worlds are visited in name order and the first one with an actor
// claims the cycle.
func (s *Scheduler) Dispatch() []Outcome {
	if s.state.Busy {
		return nil
	}
	cfg := s.cfg()
	profiles := Profiles(cfg)
	worlds := append([]World(nil), s.host.Worlds()...)
	sort.Slice(worlds, func(i, j int) bool { return worlds[i].Name() < worlds[j].Name() })

	var out []Outcome
	for _, w := range worlds {
		if s.state.Busy {
			break
		}
		if cfg.WorldDisabled(w.Name()) {
			continue
		}
		actors := w.Actors()
		if len(actors) == 0 {
			continue
		}
		a := actors[s.rng.Intn(len(actors))]
		s.state.Busy = true
		o := Outcome{Tick: s.q.Now(), World: w.Name(), Actor: a.ID}
		if kind, ok := s.selectKind(profiles, w, a); ok {
			o.Kind = kind
			if err := s.run(w, a, kind, false); err != nil {
				o.Err = err.Error()
				s.logf("world %s: %s failed: %v", w.Name(), kind, err)
			}
		}
		s.after(s.interval(), func() { s.state.Busy = false })
		out = append(out, o)
	}
	s.last = out
	return out
}

// Select evaluates the ordered incident rules for one actor without running
// anything.
func (s *Scheduler) Select(w World, a Actor) (Kind, bool) {
	return s.selectKind(Profiles(s.cfg()), w, a)
}

func (s *Scheduler) selectKind(profiles []Profile, w World, a Actor) (Kind, bool) {
	icy := IsIcy(w.Biome(a.Pos.Block()))
	for _, p := range profiles {
		if !p.Eligible(icy) || s.restricted(p.Kind, a.Pos) {
			continue
		}
		if s.rng.Float64() < p.Chance {
			return p.Kind, true
		}
	}
	return "", false
}

// Summon runs an incident for a specific actor, bypassing rolls and the busy
// flag.
func (s *Scheduler) Summon(worldName, actorID, key string) (Kind, error) {
	w, ok := s.host.World(worldName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownWorld, worldName)
	}
	if s.cfg().WorldDisabled(w.Name()) {
		return "", fmt.Errorf("%w: %s", ErrWorldDisabled, w.Name())
	}
	a, ok := w.Actor(actorID)
	if !ok {
		return "", fmt.Errorf("%w: %s in %s", ErrNoActor, actorID, w.Name())
	}
	kind := Kind(regions.NormalizeKey(key))
	if s.restricted(kind, a.Pos) {
		return kind, fmt.Errorf("%w: %s", ErrRestricted, kind)
	}
	if _, ok := s.handlers[kind]; !ok {
		return kind, &UnknownIncidentError{Key: key, Suggestion: Suggest(key)}
	}
	return kind, s.run(w, a, kind, true)
}

func (s *Scheduler) run(w World, a Actor, kind Kind, summoned bool) error {
	msg := "random_events." + string(kind)
	if summoned {
		msg = "random_events.summon_events." + string(kind)
	}
	s.sink.Emit(effects.Message(w.Name(), a.ID, msg))
	s.logf("world %s: %s for %s", w.Name(), kind, a.ID)
	return s.handlers[kind](w, a)
}

func (s *Scheduler) restricted(kind Kind, p geom.Vec3) bool {
	return s.regions != nil && s.regions.IsRestricted(string(kind), p)
}

func (s *Scheduler) after(delay uint64, fn func()) *timers.Task {
	t := s.q.After(delay, fn)
	s.track(t)
	return t
}

func (s *Scheduler) every(delay, period uint64, fn func(t *timers.Task)) *timers.Task {
	var t *timers.Task
	t = s.q.Every(delay, period, func() { fn(t) })
	s.track(t)
	return t
}

func (s *Scheduler) track(t *timers.Task) {
	s.prune()
	s.tasks = append(s.tasks, t)
}

func (s *Scheduler) prune() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Active() {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = live
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
