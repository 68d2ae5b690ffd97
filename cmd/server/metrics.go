package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"chaoticweather.ai/internal/sim/effects"
	"chaoticweather.ai/internal/sim/multiworld"
	"chaoticweather.ai/internal/transport/observer"
)

// effectCounter counts emitted effects per world and kind.
type effectCounter struct {
	mu     sync.Mutex
	counts map[[2]string]uint64
}

func newEffectCounter() *effectCounter {
	return &effectCounter{counts: map[[2]string]uint64{}}
}

func (c *effectCounter) Emit(e effects.Effect) {
	c.mu.Lock()
	c.counts[[2]string{e.World, string(e.Kind)}]++
	c.mu.Unlock()
}

func (c *effectCounter) snapshot() ([][2]string, map[[2]string]uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([][2]string, 0, len(c.counts))
	out := make(map[[2]string]uint64, len(c.counts))
	for k, v := range c.counts {
		keys = append(keys, k)
		out[k] = v
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys, out
}

func metricsHandler(mgr *multiworld.Manager, hub *observer.Hub, counts *effectCounter) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		st, err := mgr.State(ctx)
		if err != nil {
			http.Error(rw, err.Error(), http.StatusServiceUnavailable)
			return
		}
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP chaoticweather_tick Current server tick.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_tick gauge\n")
		fmt.Fprintf(rw, "chaoticweather_tick %d\n", st.Tick)

		busy := 0
		if st.Busy {
			busy = 1
		}
		fmt.Fprintf(rw, "# HELP chaoticweather_busy 1 while a random incident is in its busy window.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_busy gauge\n")
		fmt.Fprintf(rw, "chaoticweather_busy %d\n", busy)

		fmt.Fprintf(rw, "# HELP chaoticweather_pending_timers Scheduled tasks not yet fired.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_pending_timers gauge\n")
		fmt.Fprintf(rw, "chaoticweather_pending_timers %d\n", st.PendingTimers)

		fmt.Fprintf(rw, "# HELP chaoticweather_world_actors Actors present per world.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_world_actors gauge\n")
		for _, w := range st.Worlds {
			fmt.Fprintf(rw, "chaoticweather_world_actors{world=%q} %d\n", w.WorldID, w.Actors)
		}

		fmt.Fprintf(rw, "# HELP chaoticweather_ambient_tracked Actors under an ambient effect.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_ambient_tracked gauge\n")
		fmt.Fprintf(rw, "chaoticweather_ambient_tracked{effect=%q} %d\n", "rain", len(st.Ambient.Rain))
		fmt.Fprintf(rw, "chaoticweather_ambient_tracked{effect=%q} %d\n", "thunder", len(st.Ambient.Thunder))

		fmt.Fprintf(rw, "# HELP chaoticweather_regions Restricted regions per incident key.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_regions gauge\n")
		perKey := map[string]int{}
		for _, reg := range st.Regions {
			perKey[reg.Key]++
		}
		keys := make([]string, 0, len(perKey))
		for k := range perKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(rw, "chaoticweather_regions{key=%q} %d\n", k, perKey[k])
		}

		fmt.Fprintf(rw, "# HELP chaoticweather_effects_total Effects emitted.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_effects_total counter\n")
		ek, ev := counts.snapshot()
		for _, k := range ek {
			fmt.Fprintf(rw, "chaoticweather_effects_total{world=%q,kind=%q} %d\n", k[0], k[1], ev[k])
		}

		fmt.Fprintf(rw, "# HELP chaoticweather_observer_sessions Connected observers.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_observer_sessions gauge\n")
		fmt.Fprintf(rw, "chaoticweather_observer_sessions %d\n", hub.Sessions())

		fmt.Fprintf(rw, "# HELP chaoticweather_observer_dropped_total Effects dropped for slow observers.\n")
		fmt.Fprintf(rw, "# TYPE chaoticweather_observer_dropped_total counter\n")
		fmt.Fprintf(rw, "chaoticweather_observer_dropped_total %d\n", hub.Dropped())
	}
}
