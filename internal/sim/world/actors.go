package world

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/incidents"
)

// Join places a new actor one block above spawn.
func (w *World) Join(name string) incidents.Actor {
	a := incidents.Actor{
		ID:   uuid.NewString(),
		Name: name,
		Pos:  w.spawn.ToVec3().Add(geom.Vec3{X: 0.5, Z: 0.5}),
	}
	w.actors[a.ID] = a
	return a
}

func (w *World) Leave(id string) bool {
	if _, ok := w.actors[id]; !ok {
		return false
	}
	delete(w.actors, id)
	return true
}

func (w *World) Move(id string, pos geom.Vec3) error {
	a, ok := w.actors[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, id)
	}
	a.Pos = pos
	w.actors[id] = a
	return nil
}

func (w *World) Actor(id string) (incidents.Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// Actors returns a snapshot sorted by id.
func (w *World) Actors() []incidents.Actor {
	out := make([]incidents.Actor, 0, len(w.actors))
	for _, a := range w.actors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
