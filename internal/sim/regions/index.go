// Package regions keeps the per-incident restricted zones and persists them
// through a Store.
package regions

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"chaoticweather.ai/internal/sim/geom"
)

// ErrPersistence wraps every store failure. The in-memory set is kept when it
// is returned, so memory and storage may differ until the next successful
// write or Load.
var ErrPersistence = errors.New("region persistence failed")

type Region struct {
	World string
	Box   geom.Box
}

type Store interface {
	Load() (map[string][]Region, error)
	Append(key string, r Region) error
	Clear(key string) error
}

// NormalizeKey lower-cases and trims an incident key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Index is owned by a single goroutine (the host tick loop) and is not
// locked.
type Index struct {
	store  Store
	logger *log.Logger
	byKey  map[string][]Region
}

func NewIndex(store Store, logger *log.Logger) *Index {
	return &Index{store: store, logger: logger, byKey: map[string][]Region{}}
}

// IsRestricted ignores the world a region was recorded in.
func (ix *Index) IsRestricted(key string, p geom.Vec3) bool {
	for _, r := range ix.byKey[NormalizeKey(key)] {
		if r.Box.Contains(p) {
			return true
		}
	}
	return false
}

func (ix *Index) Add(key, world string, a, b geom.Vec3) (Region, error) {
	k := NormalizeKey(key)
	if k == "" {
		return Region{}, errors.New("empty incident key")
	}
	r := Region{World: world, Box: geom.NewBox(a, b)}
	ix.byKey[k] = append(ix.byKey[k], r)
	if ix.store == nil {
		return r, nil
	}
	if err := ix.store.Append(k, r); err != nil {
		err = fmt.Errorf("%w: append %s: %v", ErrPersistence, k, err)
		ix.logf("%v (in-memory set kept)", err)
		return r, err
	}
	return r, nil
}

func (ix *Index) Clear(key string) error {
	k := NormalizeKey(key)
	delete(ix.byKey, k)
	if ix.store == nil {
		return nil
	}
	if err := ix.store.Clear(k); err != nil {
		err = fmt.Errorf("%w: clear %s: %v", ErrPersistence, k, err)
		ix.logf("%v (in-memory set kept)", err)
		return err
	}
	return nil
}

// Load replaces the in-memory set with the stored one. On error the
// previous set stays in place.
func (ix *Index) Load() error {
	if ix.store == nil {
		ix.byKey = map[string][]Region{}
		return nil
	}
	m, err := ix.store.Load()
	if err != nil {
		return fmt.Errorf("load regions: %w", err)
	}
	next := make(map[string][]Region, len(m))
	n := 0
	for k, rs := range m {
		k = NormalizeKey(k)
		for _, r := range rs {
			r.Box = geom.NewBox(r.Box.Min, r.Box.Max)
			next[k] = append(next[k], r)
			n++
		}
	}
	ix.byKey = next
	ix.logf("loaded %d restricted regions across %d incident keys", n, len(next))
	return nil
}

func (ix *Index) Regions(key string) []Region {
	rs := ix.byKey[NormalizeKey(key)]
	return append([]Region(nil), rs...)
}

// Keys returns every key with at least one region, sorted.
func (ix *Index) Keys() []string {
	out := make([]string, 0, len(ix.byKey))
	for k, rs := range ix.byKey {
		if len(rs) > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (ix *Index) logf(format string, args ...any) {
	if ix.logger != nil {
		ix.logger.Printf(format, args...)
	}
}
