// Package observer streams emitted effects to websocket clients. It is
// read-only: nothing a client sends reaches the simulation.
package observer

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"chaoticweather.ai/internal/protocol"
	"chaoticweather.ai/internal/sim/effects"
)

const sessionBuffer = 1024

type Options struct {
	Manifest   []protocol.WorldRef
	TickRateHz int
	Logger     *log.Logger
	// AllowRemote accepts non-loopback clients.
	AllowRemote bool
}

type session struct {
	world string
	out   chan []byte
}

// Hub is an effects.Sink. Emit never blocks: a session whose buffer is full
// misses the effect.
type Hub struct {
	opts Options
	log  *log.Logger

	upgrader websocket.Upgrader
	seq      atomic.Uint64
	dropped  atomic.Uint64

	mu       sync.Mutex
	sessions map[*session]struct{}
}

func NewHub(opts Options) *Hub {
	return &Hub{
		opts: opts,
		log:  opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		sessions: map[*session]struct{}{},
	}
}

func (h *Hub) Emit(e effects.Effect) {
	msg := protocol.EffectMsg{
		Type:            protocol.TypeEffect,
		ProtocolVersion: protocol.Version,
		Seq:             h.seq.Add(1),
		Kind:            string(e.Kind),
		World:           e.World,
		Actor:           e.Actor,
		Name:            e.Name,
		Pos:             [3]float64{e.Pos.X, e.Pos.Y, e.Pos.Z},
		Vel:             [3]float64{e.Vel.X, e.Vel.Y, e.Vel.Z},
		Count:           e.Count,
		Duration:        e.Duration,
		Amplifier:       e.Amplifier,
		Amount:          e.Amount,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.sessions) == 0 {
		return
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for s := range h.sessions {
		if s.world != "" && s.world != e.World {
			continue
		}
		select {
		case s.out <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

// Sessions counts connected observers.
func (h *Hub) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Dropped counts effects not delivered because a session was too slow.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) subscribe(world string) *session {
	s := &session{world: world, out: make(chan []byte, sessionBuffer)}
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

// Handler upgrades to a websocket, sends WELCOME and then every effect of
// the world named by the "world" query parameter (all worlds when empty).
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !h.opts.AllowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		s := h.subscribe(strings.TrimSpace(r.URL.Query().Get("world")))
		defer h.unsubscribe(s)

		welcome, _ := json.Marshal(protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			TickRateHz:      h.opts.TickRateHz,
			WorldManifest:   h.opts.Manifest,
		})
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, welcome); err != nil {
			return
		}
		if h.log != nil {
			h.log.Printf("observer connected from %s world=%q", r.RemoteAddr, s.world)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-s.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: only keeps control frames flowing and notices a close.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		// Best-effort wait for the writer to stop so it doesn't outlive conn.
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		if h.log != nil {
			h.log.Printf("observer %s disconnected", r.RemoteAddr)
		}
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

var _ effects.Sink = (*Hub)(nil)
