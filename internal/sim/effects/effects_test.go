package effects

import (
	"testing"

	"chaoticweather.ai/internal/sim/geom"
)

func TestFanoutSkipsNilAndPreservesOrder(t *testing.T) {
	a := NewRecorder(0)
	b := NewRecorder(0)
	f := Fanout{a, nil, b, Nop{}}
	f.Emit(Lightning("world", geom.Vec3{X: 1}))
	f.Emit(Damage("world", "p1", 1))
	for _, r := range []*Recorder{a, b} {
		got := r.All()
		if len(got) != 2 || got[0].Kind != KindLightning || got[1].Kind != KindDamage {
			t.Fatalf("got %+v", got)
		}
	}
}

func TestRecorderKeepsMostRecent(t *testing.T) {
	r := NewRecorder(3)
	for i := 0; i < 5; i++ {
		r.Emit(Particle("world", geom.Vec3{}, "SMOKE", i))
	}
	got := r.All()
	if len(got) != 3 || got[0].Count != 2 || got[2].Count != 4 {
		t.Fatalf("got %+v", got)
	}
	if r.Count(KindParticle) != 3 || len(r.Filter(KindSound)) != 0 {
		t.Fatalf("count mismatch")
	}
	r.Reset()
	if len(r.All()) != 0 {
		t.Fatalf("reset failed")
	}
}
