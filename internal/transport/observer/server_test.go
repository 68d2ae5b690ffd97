package observer

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chaoticweather.ai/internal/protocol"
	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/geom"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/observe" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if _, err := protocol.DecodeEnvelope(b); err != nil {
		t.Fatalf("envelope %s: %v", b, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}

func TestHub_StreamsEffects(t *testing.T) {
	hub := NewHub(Options{
		TickRateHz: 20,
		Manifest:   []protocol.WorldRef{{WorldID: "world"}, {WorldID: "world_frozen"}},
	})
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	all := dial(t, srv, "")
	frozen := dial(t, srv, "?world=world_frozen")

	var welcome protocol.WelcomeMsg
	readJSON(t, all, &welcome)
	if welcome.Type != protocol.TypeWelcome || welcome.TickRateHz != 20 || len(welcome.WorldManifest) != 2 {
		t.Fatalf("welcome=%+v", welcome)
	}
	readJSON(t, frozen, &welcome)
	if hub.Sessions() != 2 {
		t.Fatalf("sessions=%d", hub.Sessions())
	}

	hub.Emit(effects.Projectile("world", "FIREBALL", geom.Vec3{X: 1, Y: 100, Z: 2}, geom.Vec3{Y: -0.5}))
	hub.Emit(effects.Damage("world_frozen", "a1", 1))

	var first, second protocol.EffectMsg
	readJSON(t, all, &first)
	readJSON(t, all, &second)
	if first.Kind != "PROJECTILE" || first.Name != "FIREBALL" || first.Pos != [3]float64{1, 100, 2} || first.Vel[1] != -0.5 {
		t.Fatalf("first=%+v", first)
	}
	if second.Kind != "DAMAGE" || second.Actor != "a1" || second.Amount != 1 || second.Seq != first.Seq+1 {
		t.Fatalf("second=%+v", second)
	}

	var only protocol.EffectMsg
	readJSON(t, frozen, &only)
	if only.World != "world_frozen" || only.Kind != "DAMAGE" {
		t.Fatalf("filtered session got %+v", only)
	}
}

func TestHub_EmitWithoutSessions(t *testing.T) {
	hub := NewHub(Options{})
	for i := 0; i < 10; i++ {
		hub.Emit(effects.Message("world", "a1", "random_events.hailstorm"))
	}
	if hub.Sessions() != 0 || hub.Dropped() != 0 {
		t.Fatalf("sessions=%d dropped=%d", hub.Sessions(), hub.Dropped())
	}
}

func TestHub_SlowSessionDrops(t *testing.T) {
	hub := NewHub(Options{})
	s := hub.subscribe("")
	defer hub.unsubscribe(s)
	for i := 0; i < sessionBuffer+5; i++ {
		hub.Emit(effects.Lightning("world", geom.Vec3{}))
	}
	if hub.Dropped() != 5 {
		t.Fatalf("dropped=%d", hub.Dropped())
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.4:5000":  false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}
