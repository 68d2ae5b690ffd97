package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"chaoticweather.ai/internal/protocol"
	"chaoticweather.ai/internal/sim/crater"
	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/incidents"
	"chaoticweather.ai/internal/sim/loot"
	"chaoticweather.ai/internal/sim/multiworld"
	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/tuning"
	"chaoticweather.ai/internal/sim/world"
	"chaoticweather.ai/internal/transport/observer"
)

func testLogger(t *testing.T) *log.Logger {
	t.Helper()
	return log.New(io.Discard, "", 0)
}

func startAdmin(t *testing.T, store regions.Store) (*httptest.Server, *multiworld.Manager) {
	t.Helper()
	tune := tuning.Defaults()
	tune.TickRateHz = 200
	tune.RandomEvents.Enabled = false
	tune.Events.RainEffects = false
	tune.Events.ThunderstormEffects = false

	cfg, err := multiworld.Load("")
	if err != nil {
		t.Fatal(err)
	}
	idx := regions.NewIndex(store, nil)
	mgr, err := multiworld.NewManager(multiworld.Options{Config: cfg, Seed: 7, Tuning: tune, Regions: idx})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = mgr.Run(ctx) }()

	mux := http.NewServeMux()
	(&adminServer{mgr: mgr, logger: testLogger(t)}).register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-mgr.Done()
	})
	return srv, mgr
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s decode: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func join(t *testing.T, base, worldName string) protocol.JoinResp {
	t.Helper()
	var jr protocol.JoinResp
	if code := do(t, http.MethodPost, base+"/admin/v1/actors", protocol.JoinReq{World: worldName, Name: "steve"}, &jr); code != 200 {
		t.Fatalf("join status=%d", code)
	}
	return jr
}

func TestAdmin_SummonAndErrors(t *testing.T) {
	srv, _ := startAdmin(t, nil)
	jr := join(t, srv.URL, "")
	if jr.World != "world" || jr.ActorID == "" {
		t.Fatalf("join=%+v", jr)
	}

	var ok protocol.SummonResp
	if code := do(t, http.MethodPost, srv.URL+"/admin/v1/summon", protocol.SummonReq{World: "world", Actor: jr.ActorID, Kind: "Meteor_Shower"}, &ok); code != 200 {
		t.Fatalf("summon status=%d", code)
	}
	if ok.Kind != "meteor_shower" {
		t.Fatalf("kind=%q", ok.Kind)
	}

	cases := []struct {
		name   string
		req    protocol.SummonReq
		status int
		code   string
	}{
		{"typo", protocol.SummonReq{World: "world", Actor: jr.ActorID, Kind: "meteor_showr"}, 400, protocol.ErrUnknownIncident},
		{"world", protocol.SummonReq{World: "nether", Actor: jr.ActorID, Kind: "meteor_shower"}, 404, protocol.ErrWorldNotFound},
		{"actor", protocol.SummonReq{World: "world", Actor: "ghost", Kind: "meteor_shower"}, 404, protocol.ErrNoActor},
	}
	for _, tc := range cases {
		var em protocol.ErrorMsg
		status := do(t, http.MethodPost, srv.URL+"/admin/v1/summon", tc.req, &em)
		if status != tc.status || em.Code != tc.code || em.Type != protocol.TypeError {
			t.Fatalf("%s: status=%d msg=%+v", tc.name, status, em)
		}
		if tc.name == "typo" && em.Suggestion != "meteor_shower" {
			t.Fatalf("suggestion=%q", em.Suggestion)
		}
	}
}

func TestAdmin_RejectsUnknownFields(t *testing.T) {
	srv, _ := startAdmin(t, nil)
	var em protocol.ErrorMsg
	status := do(t, http.MethodPost, srv.URL+"/admin/v1/summon", map[string]any{"world": "world", "bogus": 1}, &em)
	if status != 400 || em.Code != protocol.ErrProtoBadRequest {
		t.Fatalf("status=%d msg=%+v", status, em)
	}
}

func TestAdmin_RegionsRestrictSummon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yml")
	srv, _ := startAdmin(t, regions.NewYAMLStore(path))
	jr := join(t, srv.URL, "world")

	p := jr.Pos
	var rr protocol.RegionResp
	req := protocol.RegionReq{
		Key:   "Hailstorm",
		World: "world",
		Pos1:  [3]float64{p[0] + 5, p[1] + 5, p[2] + 5},
		Pos2:  [3]float64{p[0] - 5, p[1] - 5, p[2] - 5},
	}
	if code := do(t, http.MethodPost, srv.URL+"/admin/v1/regions", req, &rr); code != 200 {
		t.Fatalf("region status=%d", code)
	}
	if !rr.Persisted || rr.Region.Key != "hailstorm" || rr.Region.Pos1[0] != p[0]-5 {
		t.Fatalf("region=%+v", rr)
	}

	var em protocol.ErrorMsg
	status := do(t, http.MethodPost, srv.URL+"/admin/v1/summon", protocol.SummonReq{World: "world", Actor: jr.ActorID, Kind: "hailstorm"}, &em)
	if status != http.StatusForbidden || em.Code != protocol.ErrRestricted {
		t.Fatalf("status=%d msg=%+v", status, em)
	}

	// Persisted across a fresh store read.
	loaded, err := regions.NewYAMLStore(path).Load()
	if err != nil || len(loaded["hailstorm"]) != 1 {
		t.Fatalf("stored=%v err=%v", loaded, err)
	}

	if code := do(t, http.MethodDelete, srv.URL+"/admin/v1/regions?key=HAILSTORM", nil, nil); code != 200 {
		t.Fatalf("clear status=%d", code)
	}
	var st protocol.StateMsg
	if code := do(t, http.MethodGet, srv.URL+"/admin/v1/state", nil, &st); code != 200 {
		t.Fatalf("state status=%d", code)
	}
	if len(st.Regions) != 0 {
		t.Fatalf("regions after clear=%v", st.Regions)
	}
}

type failingStore struct{}

func (failingStore) Load() (map[string][]regions.Region, error) { return nil, nil }
func (failingStore) Append(string, regions.Region) error          { return errors.New("disk full") }
func (failingStore) Clear(string) error                           { return errors.New("disk full") }

func TestAdmin_RegionPersistenceFailureStillEnforced(t *testing.T) {
	srv, _ := startAdmin(t, failingStore{})
	var rr protocol.RegionResp
	req := protocol.RegionReq{Key: "aurora_storm", Pos1: [3]float64{0, 0, 0}, Pos2: [3]float64{1, 1, 1}}
	if code := do(t, http.MethodPost, srv.URL+"/admin/v1/regions", req, &rr); code != 200 {
		t.Fatalf("status=%d", code)
	}
	if rr.Persisted || rr.Region.World != "world" {
		t.Fatalf("resp=%+v", rr)
	}
	var st protocol.StateMsg
	do(t, http.MethodGet, srv.URL+"/admin/v1/state", nil, &st)
	if len(st.Regions) != 1 {
		t.Fatalf("regions=%v", st.Regions)
	}

	var cr protocol.RegionClearResp
	if code := do(t, http.MethodDelete, srv.URL+"/admin/v1/regions?key=Aurora_Storm", nil, &cr); code != 200 {
		t.Fatalf("clear status=%d", code)
	}
	if !cr.OK || cr.Persisted || cr.Key != "aurora_storm" {
		t.Fatalf("clear resp=%+v", cr)
	}
	st = protocol.StateMsg{}
	do(t, http.MethodGet, srv.URL+"/admin/v1/state", nil, &st)
	if len(st.Regions) != 0 {
		t.Fatalf("regions after clear=%v", st.Regions)
	}
}

func TestAdmin_WeatherAndActors(t *testing.T) {
	srv, _ := startAdmin(t, nil)

	var em protocol.ErrorMsg
	if status := do(t, http.MethodPost, srv.URL+"/admin/v1/weather", protocol.WeatherReq{World: "world", Weather: "snow", Ticks: 100}, &em); status != 400 || em.Code != protocol.ErrBadRequest {
		t.Fatalf("status=%d msg=%+v", status, em)
	}
	if status := do(t, http.MethodPost, srv.URL+"/admin/v1/weather", protocol.WeatherReq{World: "nether", Weather: "rain", Ticks: 100}, &em); status != 404 {
		t.Fatalf("unknown world status=%d", status)
	}
	if status := do(t, http.MethodPost, srv.URL+"/admin/v1/weather", protocol.WeatherReq{World: "world_frozen", Weather: "thunder", Ticks: 1000}, nil); status != 200 {
		t.Fatalf("weather status=%d", status)
	}
	var st protocol.StateMsg
	do(t, http.MethodGet, srv.URL+"/admin/v1/state", nil, &st)
	var got string
	for _, w := range st.Worlds {
		if w.WorldID == "world_frozen" {
			got = w.Weather
		}
	}
	if got != string(world.WeatherThunder) {
		t.Fatalf("weather=%q", got)
	}

	jr := join(t, srv.URL, "world_frozen")
	move := protocol.MoveReq{World: "world_frozen", ActorID: jr.ActorID, Pos: [3]float64{10, 70, 10}}
	if status := do(t, http.MethodPut, srv.URL+"/admin/v1/actors", move, nil); status != 200 {
		t.Fatalf("move status=%d", status)
	}
	leave := fmt.Sprintf("%s/admin/v1/actors?world=world_frozen&id=%s", srv.URL, jr.ActorID)
	if status := do(t, http.MethodDelete, leave, nil, nil); status != 200 {
		t.Fatalf("leave status=%d", status)
	}
	if status := do(t, http.MethodDelete, leave, nil, &em); status != 404 || em.Code != protocol.ErrNoActor {
		t.Fatalf("second leave status=%d msg=%+v", status, em)
	}
}

func TestAdmin_MethodAndLoopback(t *testing.T) {
	srv, mgr := startAdmin(t, nil)
	if status := do(t, http.MethodGet, srv.URL+"/admin/v1/summon", nil, nil); status != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", status)
	}

	mux := http.NewServeMux()
	(&adminServer{mgr: mgr, logger: testLogger(t)}).register(mux)
	req := httptest.NewRequest(http.MethodGet, "/admin/v1/state", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)
	if rw.Code != http.StatusForbidden {
		t.Fatalf("remote status=%d", rw.Code)
	}
}

func TestAdmin_Reload(t *testing.T) {
	srv, _ := startAdmin(t, nil)
	if status := do(t, http.MethodPost, srv.URL+"/admin/v1/reload", nil, nil); status != 200 {
		t.Fatalf("reload status=%d", status)
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{&incidents.UnknownIncidentError{Key: "x"}, protocol.ErrUnknownIncident, 400},
		{fmt.Errorf("wrap: %w", incidents.ErrWorldDisabled), protocol.ErrWorldDisabled, 409},
		{crater.ErrInvalidProfile, protocol.ErrInvalidProfile, 500},
		{loot.ErrInventoryTooSmall, protocol.ErrNoSpace, 500},
		{regions.ErrPersistence, protocol.ErrPersistence, 500},
		{multiworld.ErrStopped, protocol.ErrUnavailable, 503},
		{context.DeadlineExceeded, protocol.ErrUnavailable, 503},
		{errors.New("boom"), protocol.ErrInternal, 500},
	}
	for _, tc := range cases {
		code, status := errorCode(tc.err)
		if code != tc.code || status != tc.status {
			t.Fatalf("%v: code=%s status=%d", tc.err, code, status)
		}
		if !protocol.IsKnownCode(code) {
			t.Fatalf("unknown code %s", code)
		}
	}
}

func TestMetrics(t *testing.T) {
	_, mgr := startAdmin(t, nil)
	counts := newEffectCounter()
	counts.Emit(effects.Lightning("world", geom.Vec3{}))
	counts.Emit(effects.Lightning("world", geom.Vec3{X: 3}))
	hub := observer.NewHub(observer.Options{})

	rw := httptest.NewRecorder()
	metricsHandler(mgr, hub, counts)(rw, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rw.Body.String()
	for _, want := range []string{
		`chaoticweather_world_actors{world="world_frozen"} 0`,
		`chaoticweather_effects_total{world="world",kind="LIGHTNING"} 2`,
		"chaoticweather_observer_sessions 0",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}

func TestOpenRegionStore(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"yaml", "sqlite"} {
		store, closeFn, err := openRegionStore(tuning.Regions{Backend: backend, Path: filepath.Join(dir, backend, "regions.db")})
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		r := regions.Region{World: "world", Box: geom.NewBox(geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1})}
		if err := store.Append("hailstorm", r); err != nil {
			t.Fatalf("%s append: %v", backend, err)
		}
		got, err := store.Load()
		if err != nil || len(got["hailstorm"]) != 1 {
			t.Fatalf("%s load=%v err=%v", backend, got, err)
		}
		closeFn()
	}
	if _, _, err := openRegionStore(tuning.Regions{Backend: "redis", Path: filepath.Join(dir, "x")}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
