package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"chaoticweather.ai/internal/protocol"
	"chaoticweather.ai/internal/sim/crater"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/incidents"
	"chaoticweather.ai/internal/sim/loot"
	"chaoticweather.ai/internal/sim/multiworld"
	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/world"
)

const adminRequestTimeout = 5 * time.Second

type adminServer struct {
	mgr    *multiworld.Manager
	logger *log.Logger
}

func (s *adminServer) register(mux *http.ServeMux) {
	mux.HandleFunc("/admin/v1/summon", s.local(s.handleSummon))
	mux.HandleFunc("/admin/v1/regions", s.local(s.handleRegions))
	mux.HandleFunc("/admin/v1/reload", s.local(s.handleReload))
	mux.HandleFunc("/admin/v1/state", s.local(s.handleState))
	mux.HandleFunc("/admin/v1/weather", s.local(s.handleWeather))
	mux.HandleFunc("/admin/v1/actors", s.local(s.handleActors))
}

// local rejects non-loopback callers and bounds the request by
// adminRequestTimeout.
func (s *adminServer) local(h func(ctx context.Context, rw http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), adminRequestTimeout)
		defer cancel()
		h(ctx, rw, r)
	}
}

func (s *adminServer) handleSummon(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req protocol.SummonReq
	if !decodeBody(rw, r, &req) {
		return
	}
	kind, tick, err := s.mgr.Summon(ctx, req.World, req.Actor, req.Kind)
	if err != nil {
		writeError(rw, err)
		return
	}
	s.logger.Printf("summoned %s for %s in %s", kind, req.Actor, req.World)
	writeJSON(rw, http.StatusOK, protocol.SummonResp{Kind: string(kind), Tick: tick})
}

func (s *adminServer) handleRegions(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req protocol.RegionReq
		if !decodeBody(rw, r, &req) {
			return
		}
		if strings.TrimSpace(req.Key) == "" {
			writeError(rw, fmt.Errorf("%w: key is required", errBadRequest))
			return
		}
		worldName := req.World
		if worldName == "" {
			worldName = s.mgr.Config().DefaultWorldID
		}
		reg, err := s.mgr.AddRegion(ctx, req.Key, worldName, vec(req.Pos1), vec(req.Pos2))
		persisted := true
		if errors.Is(err, regions.ErrPersistence) {
			// The region is enforced anyway; report the divergence.
			s.logger.Printf("region %s kept in memory only: %v", req.Key, err)
			persisted = false
		} else if err != nil {
			writeError(rw, err)
			return
		}
		writeJSON(rw, http.StatusOK, protocol.RegionResp{
			Region: protocol.RegionRef{
				Key:   regions.NormalizeKey(req.Key),
				World: reg.World,
				Pos1:  [3]float64{reg.Box.Min.X, reg.Box.Min.Y, reg.Box.Min.Z},
				Pos2:  [3]float64{reg.Box.Max.X, reg.Box.Max.Y, reg.Box.Max.Z},
			},
			Persisted: persisted,
		})
	case http.MethodDelete:
		key := strings.TrimSpace(r.URL.Query().Get("key"))
		if key == "" {
			writeError(rw, fmt.Errorf("%w: missing key", errBadRequest))
			return
		}
		err := s.mgr.ClearRegions(ctx, key)
		persisted := true
		if errors.Is(err, regions.ErrPersistence) {
			s.logger.Printf("region %s cleared in memory only: %v", key, err)
			persisted = false
		} else if err != nil {
			writeError(rw, err)
			return
		}
		writeJSON(rw, http.StatusOK, protocol.RegionClearResp{OK: true, Key: regions.NormalizeKey(key), Persisted: persisted})
	default:
		rw.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *adminServer) handleReload(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.mgr.Reload(ctx); err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"ok": true})
}

func (s *adminServer) handleState(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	st, err := s.mgr.State(ctx)
	if err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, st)
}

func (s *adminServer) handleWeather(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req protocol.WeatherReq
	if !decodeBody(rw, r, &req) {
		return
	}
	wt, err := world.ParseWeather(req.Weather)
	if err != nil {
		writeError(rw, err)
		return
	}
	if err := s.mgr.SetWeather(ctx, req.World, wt, req.Ticks); err != nil {
		writeError(rw, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "world": req.World, "weather": wt})
}

// handleActors joins (POST), moves (PUT) or removes (DELETE) an actor.
func (s *adminServer) handleActors(ctx context.Context, rw http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req protocol.JoinReq
		if !decodeBody(rw, r, &req) {
			return
		}
		worldName, a, err := s.mgr.Join(ctx, req.World, req.Name)
		if err != nil {
			writeError(rw, err)
			return
		}
		writeJSON(rw, http.StatusOK, protocol.JoinResp{
			World:   worldName,
			ActorID: a.ID,
			Pos:     [3]float64{a.Pos.X, a.Pos.Y, a.Pos.Z},
		})
	case http.MethodPut:
		var req protocol.MoveReq
		if !decodeBody(rw, r, &req) {
			return
		}
		if err := s.mgr.Move(ctx, req.World, req.ActorID, vec(req.Pos)); err != nil {
			writeError(rw, err)
			return
		}
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true})
	case http.MethodDelete:
		q := r.URL.Query()
		if err := s.mgr.Leave(ctx, q.Get("world"), q.Get("id")); err != nil {
			writeError(rw, err)
			return
		}
		writeJSON(rw, http.StatusOK, map[string]any{"ok": true})
	default:
		rw.WriteHeader(http.StatusMethodNotAllowed)
	}
}

var errBadRequest = errors.New("bad request")

// errorCode maps a sentinel error onto its wire code and HTTP status.
func errorCode(err error) (string, int) {
	var unknown *incidents.UnknownIncidentError
	switch {
	case errors.As(err, &unknown):
		return protocol.ErrUnknownIncident, http.StatusBadRequest
	case errors.Is(err, errBadRequest), errors.Is(err, world.ErrUnknownWeather):
		return protocol.ErrBadRequest, http.StatusBadRequest
	case errors.Is(err, incidents.ErrUnknownWorld):
		return protocol.ErrWorldNotFound, http.StatusNotFound
	case errors.Is(err, incidents.ErrWorldDisabled):
		return protocol.ErrWorldDisabled, http.StatusConflict
	case errors.Is(err, incidents.ErrNoActor), errors.Is(err, world.ErrUnknownActor):
		return protocol.ErrNoActor, http.StatusNotFound
	case errors.Is(err, incidents.ErrRestricted):
		return protocol.ErrRestricted, http.StatusForbidden
	case errors.Is(err, crater.ErrInvalidProfile):
		return protocol.ErrInvalidProfile, http.StatusInternalServerError
	case errors.Is(err, loot.ErrInventoryTooSmall):
		return protocol.ErrNoSpace, http.StatusInternalServerError
	case errors.Is(err, regions.ErrPersistence):
		return protocol.ErrPersistence, http.StatusInternalServerError
	case errors.Is(err, multiworld.ErrStopped), errors.Is(err, context.DeadlineExceeded):
		return protocol.ErrUnavailable, http.StatusServiceUnavailable
	default:
		return protocol.ErrInternal, http.StatusInternalServerError
	}
}

func writeError(rw http.ResponseWriter, err error) {
	code, status := errorCode(err)
	msg := protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         err.Error(),
	}
	var unknown *incidents.UnknownIncidentError
	if errors.As(err, &unknown) {
		msg.Suggestion = unknown.Suggestion
	}
	writeJSON(rw, status, msg)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func decodeBody(rw http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 64*1024))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(rw, http.StatusBadRequest, protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrProtoBadRequest,
			Message:         err.Error(),
		})
		return false
	}
	return true
}

func vec(a [3]float64) geom.Vec3 { return geom.Vec3{X: a[0], Y: a[1], Z: a[2]} }
