// Package multiworld hosts every configured world on one tick loop together
// with the incident scheduler, the ambient weather effects and the region
// index.
package multiworld

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"chaoticweather.ai/internal/protocol"
	"chaoticweather.ai/internal/sim/ambient"
	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/incidents"
	"chaoticweather.ai/internal/sim/loot"
	"chaoticweather.ai/internal/sim/lottery"
	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/timers"
	"chaoticweather.ai/internal/sim/tuning"
	"chaoticweather.ai/internal/sim/world"
	"chaoticweather.ai/internal/sim/world/logic/mathx"
)

var ErrStopped = errors.New("manager stopped")

const worldRequestTimeout = 3 * time.Second

type Options struct {
	Config Config
	Seed   int64
	Tuning tuning.Config
	// TuningPath is re-read by Reload. Empty keeps Tuning across reloads.
	TuningPath string
	Regions    *regions.Index
	Effects    effects.Sink
	Audit      world.AuditLogger
	Logger     *log.Logger
	Rand       lottery.Rand
}

// Manager is single-threaded: the worlds, timers, scheduler state and region
// index are only touched from the goroutine running Run (or the caller of
// StepOnce when Run is not used).
type Manager struct {
	cfg        Config
	tune       tuning.Config
	tuningPath string

	worlds map[string]*world.World
	names  []string

	q       *timers.Queue
	state   incidents.State
	sched   *incidents.Scheduler
	ambient *ambient.Effects
	regions *regions.Index
	logger  *log.Logger

	summonCh  chan summonReq
	regionCh  chan regionReq
	reloadCh  chan reloadReq
	stateCh   chan stateReq
	weatherCh chan weatherReq
	actorCh   chan actorReq

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewManager(opts Options) (*Manager, error) {
	cfg := opts.Config
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tune := opts.Tuning
	tune.Normalize()
	if err := tune.Validate(); err != nil {
		return nil, err
	}
	rng := opts.Rand
	if rng == nil {
		rng = mathx.NewRand(opts.Seed)
	}
	sink := opts.Effects
	if sink == nil {
		sink = effects.Nop{}
	}
	m := &Manager{
		cfg:        cfg,
		tune:       tune,
		tuningPath: opts.TuningPath,
		worlds:     map[string]*world.World{},
		q:          timers.New(),
		regions:    opts.Regions,
		logger:     opts.Logger,
		summonCh:   make(chan summonReq),
		regionCh:   make(chan regionReq),
		reloadCh:   make(chan reloadReq),
		stateCh:    make(chan stateReq),
		weatherCh:  make(chan weatherReq),
		actorCh:    make(chan actorReq),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if m.regions == nil {
		m.regions = regions.NewIndex(nil, opts.Logger)
	}
	for _, spec := range cfg.Worlds {
		w, err := world.New(spec.WorldConfig(opts.Seed))
		if err != nil {
			return nil, fmt.Errorf("world %s: %w", spec.ID, err)
		}
		if opts.Audit != nil {
			w.SetAuditLogger(opts.Audit)
		}
		m.worlds[spec.ID] = w
		m.names = append(m.names, spec.ID)
	}
	sort.Strings(m.names)

	eng := loot.DefaultEngine()
	if tune.Loot.Cap > 0 {
		eng.Cap = tune.Loot.Cap
	}
	sched, err := incidents.New(incidents.Options{
		Host:    m,
		Regions: m.regions,
		Timers:  m.q,
		Rand:    rng,
		State:   &m.state,
		Effects: sink,
		Loot:    eng,
		Logger:  subLogger(opts.Logger, "[incidents] "),
		Config:  m.tuning,
	})
	if err != nil {
		return nil, err
	}
	m.sched = sched
	m.ambient = ambient.New(ambient.Options{
		Worlds:  m.ambientWorlds,
		Timers:  m.q,
		Rand:    rng,
		Effects: sink,
		Logger:  subLogger(opts.Logger, "[ambient] "),
		Config:  m.tuning,
	})
	return m, nil
}

func subLogger(l *log.Logger, prefix string) *log.Logger {
	if l == nil {
		return nil
	}
	return log.New(l.Writer(), prefix, l.Flags())
}

func (m *Manager) tuning() tuning.Config { return m.tune }

func (m *Manager) Config() Config { return m.cfg }

// Worlds returns the hosted worlds in name order.
func (m *Manager) Worlds() []incidents.World {
	out := make([]incidents.World, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, m.worlds[n])
	}
	return out
}

func (m *Manager) World(name string) (incidents.World, bool) {
	w, ok := m.worlds[name]
	if !ok {
		return nil, false
	}
	return w, true
}

func (m *Manager) ambientWorlds() []ambient.World {
	out := make([]ambient.World, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, m.worlds[n])
	}
	return out
}

// Start arms the dispatch timer and the ambient tasks. Run calls it.
func (m *Manager) Start() {
	m.sched.Start()
	m.ambient.Start()
}

// StepOnce advances every world and then the timer queue by one tick.
func (m *Manager) StepOnce() uint64 {
	for _, n := range m.names {
		m.worlds[n].Step()
	}
	m.q.Advance()
	return m.q.Now()
}

func (m *Manager) shutdown() {
	m.sched.Stop()
	m.ambient.Stop()
	m.q.CancelAll()
}

// Run drives the tick loop until ctx is cancelled or Stop is called. Every
// pending timer is cancelled before it returns. Run must be called once.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.done)
	m.Start()
	defer m.shutdown()

	hz := m.tune.TickRateHz
	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()
	m.logf("running %d worlds at %d Hz", len(m.names), hz)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stop:
			return nil
		case req := <-m.summonCh:
			m.handleSummon(req)
		case req := <-m.regionCh:
			m.handleRegion(req)
		case req := <-m.reloadCh:
			req.Resp <- m.reload()
		case req := <-m.stateCh:
			req.Resp <- m.snapshot()
		case req := <-m.weatherCh:
			m.handleWeather(req)
		case req := <-m.actorCh:
			m.handleActor(req)
		case <-ticker.C:
			m.StepOnce()
		}
	}
}

func (m *Manager) Stop() { m.stopOnce.Do(func() { close(m.stop) }) }

// Done is closed once Run has returned and every timer is cancelled.
func (m *Manager) Done() <-chan struct{} { return m.done }

func (m *Manager) reload() error {
	if m.tuningPath != "" {
		cfg, err := tuning.Load(m.tuningPath)
		if err != nil {
			return err
		}
		if cfg.TickRateHz != m.tune.TickRateHz {
			m.logf("tick_rate_hz change to %d applies after restart", cfg.TickRateHz)
		}
		m.tune = cfg
	}
	m.sched.Start()
	if err := m.regions.Load(); err != nil {
		return err
	}
	m.logf("reloaded (random incidents enabled=%v)", m.tune.RandomEvents.Enabled)
	return nil
}

func (m *Manager) snapshot() protocol.StateMsg {
	out := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            m.q.Now(),
		Busy:            m.state.Busy,
		PendingTimers:   m.q.Len(),
		Worlds:          []protocol.WorldState{},
		Ambient: protocol.AmbientState{
			Rain:    m.ambient.Rain().ActiveIDs(),
			Thunder: m.ambient.Thunder().ActiveIDs(),
		},
	}
	for _, n := range m.names {
		w := m.worlds[n]
		out.Worlds = append(out.Worlds, protocol.WorldState{
			WorldID:   n,
			Weather:   string(w.Weather()),
			TimeOfDay: w.TimeOfDay(),
			Actors:    len(w.Actors()),
			Disabled:  m.tune.WorldDisabled(n),
		})
	}
	for _, k := range m.regions.Keys() {
		for _, r := range m.regions.Regions(k) {
			out.Regions = append(out.Regions, regionRef(k, r))
		}
	}
	for _, o := range m.sched.Last() {
		out.LastDispatch = append(out.LastDispatch, protocol.OutcomeRef{
			Tick:  o.Tick,
			World: o.World,
			Actor: o.Actor,
			Kind:  string(o.Kind),
			Error: o.Err,
		})
	}
	for _, p := range incidents.Profiles(m.tune) {
		out.Incidents = append(out.Incidents, protocol.IncidentState{
			Kind:    string(p.Kind),
			Enabled: p.Enabled,
			Chance:  p.Chance,
			IcyOnly: p.Biome == incidents.BiomeIcy,
		})
	}
	return out
}

func regionRef(key string, r regions.Region) protocol.RegionRef {
	return protocol.RegionRef{
		Key:   key,
		World: r.World,
		Pos1:  vecArray(r.Box.Min),
		Pos2:  vecArray(r.Box.Max),
	}
}

func vecArray(v geom.Vec3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
