// Package effects is the fire-and-forget boundary for cosmetic and status
// side effects. Nothing here feeds back into incident decisions.
package effects

import (
	"sync"

	"chaoticweather.ai/internal/sim/geom"
)

type Kind string

const (
	KindSound      Kind = "SOUND"
	KindParticle   Kind = "PARTICLE"
	KindLightning  Kind = "LIGHTNING"
	KindProjectile Kind = "PROJECTILE"
	KindStatus     Kind = "STATUS"
	KindImpulse    Kind = "IMPULSE"
	KindDamage     Kind = "DAMAGE"
	KindMessage    Kind = "MESSAGE"
)

// Effect is a tagged record; which fields matter depends on Kind.
type Effect struct {
	Kind  Kind
	World string
	Actor string
	Pos   geom.Vec3
	Vel   geom.Vec3
	// Name is the sound, particle, projectile, status or message key.
	Name      string
	Count     int
	Duration  int
	Amplifier int
	Amount    float64
}

type Sink interface {
	Emit(e Effect)
}

type Nop struct{}

func (Nop) Emit(Effect) {}

// Fanout emits to every non-nil sink in order.
type Fanout []Sink

func (f Fanout) Emit(e Effect) {
	for _, s := range f {
		if s != nil {
			s.Emit(e)
		}
	}
}

// Recorder keeps every effect in memory. Used by tests and the admin state
// endpoint.
type Recorder struct {
	mu  sync.Mutex
	buf []Effect
	max int
}

// NewRecorder keeps the most recent max effects; max <= 0 keeps all.
func NewRecorder(max int) *Recorder { return &Recorder{max: max} }

func (r *Recorder) Emit(e Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf = append(r.buf, e)
	if r.max > 0 && len(r.buf) > r.max {
		r.buf = append(r.buf[:0], r.buf[len(r.buf)-r.max:]...)
	}
}

func (r *Recorder) All() []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Effect(nil), r.buf...)
}

func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.buf {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Filter returns the recorded effects of kind k.
func (r *Recorder) Filter(k Kind) []Effect {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Effect
	for _, e := range r.buf {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.buf = nil
	r.mu.Unlock()
}

func Sound(world string, at geom.Vec3, name string) Effect {
	return Effect{Kind: KindSound, World: world, Pos: at, Name: name}
}

func Particle(world string, at geom.Vec3, name string, count int) Effect {
	return Effect{Kind: KindParticle, World: world, Pos: at, Name: name, Count: count}
}

func Lightning(world string, at geom.Vec3) Effect {
	return Effect{Kind: KindLightning, World: world, Pos: at}
}

func Projectile(world string, name string, from, vel geom.Vec3) Effect {
	return Effect{Kind: KindProjectile, World: world, Name: name, Pos: from, Vel: vel}
}

func Status(world, actor, name string, durationTicks, amplifier int) Effect {
	return Effect{Kind: KindStatus, World: world, Actor: actor, Name: name, Duration: durationTicks, Amplifier: amplifier}
}

func Impulse(world, actor string, vel geom.Vec3) Effect {
	return Effect{Kind: KindImpulse, World: world, Actor: actor, Vel: vel}
}

func Damage(world, actor string, amount float64) Effect {
	return Effect{Kind: KindDamage, World: world, Actor: actor, Amount: amount}
}

func Message(world, actor, key string) Effect {
	return Effect{Kind: KindMessage, World: world, Actor: actor, Name: key}
}
