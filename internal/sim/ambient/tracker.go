package ambient

import (
	"sort"

	"chaoticweather.ai/internal/sim/timers"
)

// Tracker is the cooldown and active-set bookkeeping of one effect family.
// An actor stays active until its release callback fires, and becomes
// eligible again once the cooldown has elapsed since the last grant.
type Tracker struct {
	Name string

	lastApplied map[string]uint64
	active      map[string]struct{}
	releases    map[string]*timers.Task
}

func NewTracker(name string) *Tracker {
	return &Tracker{
		Name:        name,
		lastApplied: map[string]uint64{},
		active:      map[string]struct{}{},
		releases:    map[string]*timers.Task{},
	}
}

func (t *Tracker) Active(id string) bool {
	_, ok := t.active[id]
	return ok
}

func (t *Tracker) LastApplied(id string) (uint64, bool) {
	v, ok := t.lastApplied[id]
	return v, ok
}

// Eligible reports whether the cooldown has elapsed. An actor that never
// received a grant is always eligible.
func (t *Tracker) Eligible(id string, now, cooldown uint64) bool {
	last, ok := t.lastApplied[id]
	return !ok || now-last >= cooldown
}

func (t *Tracker) Activate(id string, now uint64) {
	t.active[id] = struct{}{}
	t.lastApplied[id] = now
}

// Release drops id from the active set and cancels its pending release. The
// cooldown stamp is kept.
func (t *Tracker) Release(id string) {
	delete(t.active, id)
	if task := t.releases[id]; task != nil {
		task.Cancel()
		delete(t.releases, id)
	}
}

// ActiveIDs is sorted.
func (t *Tracker) ActiveIDs() []string {
	out := make([]string, 0, len(t.active))
	for id := range t.active {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (t *Tracker) scheduleRelease(id string, task *timers.Task) {
	if old := t.releases[id]; old != nil {
		old.Cancel()
	}
	t.releases[id] = task
}

// cancelReleases cancels every pending release and empties the active set
// with it. Cooldown stamps are kept.
func (t *Tracker) cancelReleases() {
	for id, task := range t.releases {
		task.Cancel()
		delete(t.releases, id)
	}
	for id := range t.active {
		delete(t.active, id)
	}
}
