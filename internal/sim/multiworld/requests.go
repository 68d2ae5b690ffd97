package multiworld

import (
	"context"
	"fmt"

	"chaoticweather.ai/internal/protocol"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/incidents"
	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/world"
)

type summonReq struct {
	World string
	Actor string
	Kind  string
	Resp  chan summonResp
}

type summonResp struct {
	Kind incidents.Kind
	Tick uint64
	Err  error
}

type regionReq struct {
	Key   string
	World string
	A, B  geom.Vec3
	Clear bool
	Resp  chan regionResp
}

type regionResp struct {
	Region regions.Region
	Err    error
}

type reloadReq struct {
	Resp chan error
}

type stateReq struct {
	Resp chan protocol.StateMsg
}

type weatherReq struct {
	World   string
	Weather world.Weather
	Ticks   uint64
	Resp    chan error
}

type actorOp int

const (
	actorJoin actorOp = iota
	actorMove
	actorLeave
)

type actorReq struct {
	Op    actorOp
	World string
	ID    string
	Name  string
	Pos   geom.Vec3
	Resp  chan actorResp
}

type actorResp struct {
	World string
	Actor incidents.Actor
	Err   error
}

// request hands req to the loop goroutine and waits for its reply.
func request[Req, Resp any](ctx context.Context, m *Manager, ch chan Req, req Req, resp chan Resp) (Resp, error) {
	var zero Resp
	ctx, cancel := context.WithTimeout(ctx, worldRequestTimeout)
	defer cancel()
	select {
	case ch <- req:
	case <-m.done:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case r := <-resp:
		return r, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Summon runs kind for actorID in worldName, bypassing chance rolls and the
// busy flag. It is safe to call from other goroutines.
func (m *Manager) Summon(ctx context.Context, worldName, actorID, kind string) (incidents.Kind, uint64, error) {
	resp := make(chan summonResp, 1)
	r, err := request(ctx, m, m.summonCh, summonReq{World: worldName, Actor: actorID, Kind: kind, Resp: resp}, resp)
	if err != nil {
		return "", 0, err
	}
	return r.Kind, r.Tick, r.Err
}

func (m *Manager) handleSummon(req summonReq) {
	kind, err := m.sched.Summon(req.World, req.Actor, req.Kind)
	req.Resp <- summonResp{Kind: kind, Tick: m.q.Now(), Err: err}
}

// AddRegion restricts key inside the box spanned by a and b. A persistence
// failure is returned together with the region, which stays enforced.
func (m *Manager) AddRegion(ctx context.Context, key, worldName string, a, b geom.Vec3) (regions.Region, error) {
	resp := make(chan regionResp, 1)
	r, err := request(ctx, m, m.regionCh, regionReq{Key: key, World: worldName, A: a, B: b, Resp: resp}, resp)
	if err != nil {
		return regions.Region{}, err
	}
	return r.Region, r.Err
}

func (m *Manager) ClearRegions(ctx context.Context, key string) error {
	resp := make(chan regionResp, 1)
	r, err := request(ctx, m, m.regionCh, regionReq{Key: key, Clear: true, Resp: resp}, resp)
	if err != nil {
		return err
	}
	return r.Err
}

func (m *Manager) handleRegion(req regionReq) {
	if req.Clear {
		req.Resp <- regionResp{Err: m.regions.Clear(req.Key)}
		return
	}
	r, err := m.regions.Add(req.Key, req.World, req.A, req.B)
	req.Resp <- regionResp{Region: r, Err: err}
}

// Reload re-reads the config file and the stored regions and re-arms the
// dispatch timer. A config that fails to load leaves the old one in place.
func (m *Manager) Reload(ctx context.Context) error {
	resp := make(chan error, 1)
	err, rerr := request(ctx, m, m.reloadCh, reloadReq{Resp: resp}, resp)
	if rerr != nil {
		return rerr
	}
	return err
}

func (m *Manager) State(ctx context.Context) (protocol.StateMsg, error) {
	resp := make(chan protocol.StateMsg, 1)
	return request(ctx, m, m.stateCh, stateReq{Resp: resp}, resp)
}

func (m *Manager) SetWeather(ctx context.Context, worldName string, wt world.Weather, ticks uint64) error {
	resp := make(chan error, 1)
	err, rerr := request(ctx, m, m.weatherCh, weatherReq{World: worldName, Weather: wt, Ticks: ticks, Resp: resp}, resp)
	if rerr != nil {
		return rerr
	}
	return err
}

func (m *Manager) handleWeather(req weatherReq) {
	w, ok := m.worlds[req.World]
	if !ok {
		req.Resp <- fmt.Errorf("%w: %s", incidents.ErrUnknownWorld, req.World)
		return
	}
	w.SetWeather(req.Weather, req.Ticks)
	m.logf("world %s: weather %s for %d ticks", req.World, req.Weather, req.Ticks)
	req.Resp <- nil
}

// Join adds an actor named name at the spawn of worldName, or of the
// default world when worldName is empty.
func (m *Manager) Join(ctx context.Context, worldName, name string) (string, incidents.Actor, error) {
	resp := make(chan actorResp, 1)
	r, err := request(ctx, m, m.actorCh, actorReq{Op: actorJoin, World: worldName, Name: name, Resp: resp}, resp)
	if err != nil {
		return "", incidents.Actor{}, err
	}
	return r.World, r.Actor, r.Err
}

func (m *Manager) Move(ctx context.Context, worldName, actorID string, pos geom.Vec3) error {
	resp := make(chan actorResp, 1)
	r, err := request(ctx, m, m.actorCh, actorReq{Op: actorMove, World: worldName, ID: actorID, Pos: pos, Resp: resp}, resp)
	if err != nil {
		return err
	}
	return r.Err
}

func (m *Manager) Leave(ctx context.Context, worldName, actorID string) error {
	resp := make(chan actorResp, 1)
	r, err := request(ctx, m, m.actorCh, actorReq{Op: actorLeave, World: worldName, ID: actorID, Resp: resp}, resp)
	if err != nil {
		return err
	}
	return r.Err
}

func (m *Manager) handleActor(req actorReq) {
	name := req.World
	if name == "" {
		name = m.cfg.DefaultWorldID
	}
	w, ok := m.worlds[name]
	if !ok {
		req.Resp <- actorResp{Err: fmt.Errorf("%w: %s", incidents.ErrUnknownWorld, name)}
		return
	}
	out := actorResp{World: name}
	switch req.Op {
	case actorJoin:
		out.Actor = w.Join(req.Name)
		m.logf("world %s: %s joined as %s", name, req.Name, out.Actor.ID)
	case actorMove:
		out.Err = w.Move(req.ID, req.Pos)
	case actorLeave:
		if !w.Leave(req.ID) {
			out.Err = fmt.Errorf("%w: %s", world.ErrUnknownActor, req.ID)
		}
	}
	req.Resp <- out
}
