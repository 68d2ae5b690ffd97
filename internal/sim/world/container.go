package world

import (
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/loot"
)

const (
	containerBlock = "CHEST"
	ChestSlots     = 27
)

// Container is a chest inventory with fixed slots.
type Container struct {
	Pos   geom.Vec3i
	Slots []loot.Stack
}

func (c *Container) Size() int { return len(c.Slots) }

func (c *Container) SetSlot(i int, s loot.Stack) {
	if i < 0 || i >= len(c.Slots) {
		return
	}
	c.Slots[i] = s
}

// Items lists the occupied slots in slot order.
func (c *Container) Items() []loot.Placed {
	var out []loot.Placed
	for i, s := range c.Slots {
		if s.Item == "" || s.Count <= 0 {
			continue
		}
		out = append(out, loot.Placed{Slot: i, Stack: s})
	}
	return out
}

// PlaceContainer puts an empty chest at p, replacing whatever was there.
func (w *World) PlaceContainer(p geom.Vec3i) (loot.Inventory, error) {
	if w.Block(p) != containerBlock {
		w.SetBlockFor(p, containerBlock, "container")
	}
	c := &Container{Pos: p, Slots: make([]loot.Stack, ChestSlots)}
	w.containers[p] = c
	return c, nil
}

func (w *World) ContainerAt(p geom.Vec3i) (*Container, bool) {
	c, ok := w.containers[p]
	return c, ok
}
