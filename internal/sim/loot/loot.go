// Package loot fills containers from a table of independent drop chances.
package loot

import (
	"errors"
	"fmt"

	"chaoticweather.ai/internal/sim/lottery"
)

var ErrInventoryTooSmall = errors.New("inventory smaller than loot cap")

type Enchant struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

type EnchantOption struct {
	Enchant     Enchant
	Probability float64
}

type Entry struct {
	Item        string
	Min         int
	Max         int
	Probability float64
	// Enchants are alternatives; at most one is applied.
	Enchants []EnchantOption
}

type Stack struct {
	Item    string   `json:"item"`
	Count   int      `json:"count"`
	Enchant *Enchant `json:"enchant,omitempty"`
}

type Placed struct {
	Slot  int   `json:"slot"`
	Stack Stack `json:"stack"`
}

// Inventory is a fixed-size slot container owned by the host world.
type Inventory interface {
	Size() int
	SetSlot(slot int, s Stack)
}

type Engine struct {
	Table []Entry
	Cap   int
}

func (e Engine) Validate() error {
	if e.Cap <= 0 {
		return fmt.Errorf("loot: cap must be > 0, got %d", e.Cap)
	}
	for i, it := range e.Table {
		if it.Item == "" {
			return fmt.Errorf("loot: entry[%d] has empty item", i)
		}
		if it.Probability < 0 || it.Probability > 1 {
			return fmt.Errorf("loot: entry[%d] probability %v outside [0,1]", i, it.Probability)
		}
		if it.Min < 1 || it.Min > it.Max {
			return fmt.Errorf("loot: entry[%d] quantity range [%d,%d] invalid", i, it.Min, it.Max)
		}
		var sum float64
		for _, o := range it.Enchants {
			sum += o.Probability
		}
		if sum > 1+1e-9 {
			return fmt.Errorf("loot: entry[%d] enchant probabilities sum to %v", i, sum)
		}
	}
	return nil
}

// Fill selects at most Cap entries, rolls their quantities and enchants, and
// puts each into its own randomly chosen slot. Slots not chosen are left
// untouched.
func (e Engine) Fill(inv Inventory, rng lottery.Rand) ([]Placed, error) {
	size := inv.Size()
	if size < e.Cap {
		return nil, fmt.Errorf("%w: size %d < cap %d", ErrInventoryTooSmall, size, e.Cap)
	}

	pool := make([]lottery.Entry[int], len(e.Table))
	for i, it := range e.Table {
		pool[i] = lottery.Entry[int]{Item: i, Probability: it.Probability}
	}
	picked := lottery.Draw(rng, pool, e.Cap)

	slots := lottery.Perm(rng, size)
	out := make([]Placed, 0, len(picked))
	for i, idx := range picked {
		st := e.roll(e.Table[idx], rng)
		inv.SetSlot(slots[i], st)
		out = append(out, Placed{Slot: slots[i], Stack: st})
	}
	return out, nil
}

func (e Engine) roll(it Entry, rng lottery.Rand) Stack {
	st := Stack{Item: it.Item, Count: it.Min}
	if it.Max > it.Min {
		st.Count = it.Min + rng.Intn(it.Max-it.Min+1)
	}
	if len(it.Enchants) > 0 {
		opts := make([]lottery.Entry[Enchant], len(it.Enchants))
		for i, o := range it.Enchants {
			opts[i] = lottery.Entry[Enchant]{Item: o.Enchant, Probability: o.Probability}
		}
		if ench, ok := lottery.PickOne(rng, opts); ok {
			st.Enchant = &ench
		}
	}
	return st
}
