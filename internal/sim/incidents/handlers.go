package incidents

import (
	"fmt"
	"math"

	"chaoticweather.ai/internal/sim/crater"
	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/timers"
)

const (
	showerTicks        = 600
	showerPerTick      = 10
	impactMaxDelay     = 100
	impactDistance     = 60.0
	hurricaneSpeed     = 2.0
	hailPeriod         = 20
	hailPulses         = 10
	hailMinY           = 64
	auroraPeriod       = 100
	auroraPulses       = 12
	nightStart         = 13000
	nightEnd           = 23000
	auroraStatusTicks  = 100
	projectileFireball = "FIREBALL"
	projectileSnowball = "SNOWBALL"
)

// meteorShower rains harmless fireballs around the actor every tick.
func (s *Scheduler) meteorShower(w World, a Actor) error {
	elapsed := 0
	last := a
	s.every(0, 1, func(t *timers.Task) {
		if elapsed >= showerTicks {
			t.Cancel()
			return
		}
		if cur, ok := w.Actor(a.ID); ok {
			last = cur
		}
		for i := 0; i < showerPerTick; i++ {
			from := last.Pos.Add(geom.Vec3{
				X: float64(s.rng.Intn(40) - 20),
				Y: 30,
				Z: float64(s.rng.Intn(40) - 20),
			})
			angle := s.rng.Float64() * 2 * math.Pi
			speed := 0.4 + s.rng.Float64()*0.2
			vel := geom.Vec3{X: math.Cos(angle) * speed, Y: -0.5, Z: math.Sin(angle) * speed}
			s.sink.Emit(effects.Projectile(w.Name(), projectileFireball, from, vel))
		}
		elapsed++
	})
	return nil
}

// meteor strikes 60 blocks from the actor after a short random delay and
// carves the crater for kind.
func (s *Scheduler) meteor(w World, a Actor, kind Kind) error {
	profile, ok := s.craters[kind]
	if !ok {
		return fmt.Errorf("no crater profile for %s", kind)
	}
	delay := uint64(s.rng.Intn(impactMaxDelay))
	s.after(delay, func() {
		pos := a.Pos
		if cur, ok := w.Actor(a.ID); ok {
			pos = cur.Pos
		}
		angle := s.rng.Float64() * 2 * math.Pi
		x := int(math.Floor(pos.X + math.Cos(angle)*impactDistance))
		z := int(math.Floor(pos.Z + math.Sin(angle)*impactDistance))
		y, ok := w.HighestSolidY(x, z)
		if !ok {
			s.logf("world %s: %s at (%d,%d) hit an empty column", w.Name(), kind, x, z)
			return
		}
		center := geom.Vec3i{X: x, Y: y, Z: z}
		at := center.ToVec3()
		s.sink.Emit(effects.Lightning(w.Name(), at))
		s.sink.Emit(effects.Sound(w.Name(), at, "ENTITY_GENERIC_EXPLODE"))
		s.sink.Emit(effects.Particle(w.Name(), at, "EXPLOSION_HUGE", 20))

		g := &crater.Generator{Terrain: w, World: w.Name(), Effects: s.sink, Loot: s.loot}
		res, err := g.Carve(center, profile, s.rng)
		if err != nil {
			s.logf("world %s: %s crater at %v: %v", w.Name(), kind, center.ToArray(), err)
			return
		}
		s.logf("world %s: %s crater at %v changed=%d ores=%d loot=%d",
			w.Name(), kind, center.ToArray(), res.Changed, res.Ores, len(res.Loot))
	})
	return nil
}

func (s *Scheduler) hurricane(w World, a Actor) error {
	dir := geom.Vec3{X: s.rng.Float64() - 0.5, Z: s.rng.Float64() - 0.5}.Normalize()
	s.sink.Emit(effects.Impulse(w.Name(), a.ID, dir.Scale(hurricaneSpeed)))
	return nil
}

// hailstorm pelts the actor while they stay in an icy biome. Only actors
// above y=64 are hit.
func (s *Scheduler) hailstorm(w World, a Actor) error {
	pulses := 0
	s.every(0, hailPeriod, func(t *timers.Task) {
		cur, ok := w.Actor(a.ID)
		if !ok || !IsIcy(w.Biome(cur.Pos.Block())) || pulses >= hailPulses {
			t.Cancel()
			return
		}
		if cur.Pos.Y > hailMinY {
			s.sink.Emit(effects.Projectile(w.Name(), projectileSnowball, cur.Pos.Add(geom.Vec3{Y: 1}), geom.Vec3{}))
			s.sink.Emit(effects.Damage(w.Name(), cur.ID, 1))
		}
		pulses++
		if pulses >= hailPulses {
			t.Cancel()
		}
	})
	return nil
}

// aurora buffs every actor in the world on night pulses. Daytime pulses are
// skipped and do not count.
func (s *Scheduler) aurora(w World, _ Actor) error {
	pulses := 0
	s.every(0, auroraPeriod, func(t *timers.Task) {
		tod := w.TimeOfDay()
		if tod < nightStart || tod > nightEnd {
			return
		}
		for _, p := range w.Actors() {
			s.sink.Emit(effects.Status(w.Name(), p.ID, "SPEED", auroraStatusTicks, 1))
			s.sink.Emit(effects.Status(w.Name(), p.ID, "NIGHT_VISION", auroraStatusTicks, 0))
		}
		pulses++
		if pulses >= auroraPulses {
			t.Cancel()
		}
	})
	return nil
}
