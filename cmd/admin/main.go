package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	persistlog "chaoticweather.ai/internal/persistence/log"
	"chaoticweather.ai/internal/sim/world"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "state":
		stateCmd(args)
	case "summon":
		summonCmd(args)
	case "region":
		regionCmd(args)
	case "reload":
		reloadCmd(args)
	case "weather":
		weatherCmd(args)
	case "join":
		joinCmd(args)
	case "audit":
		auditCmd(args)
	case "db":
		dbCmd(args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <state|summon|region|reload|weather|join|audit|db> [flags]")
}

// auditCmd prints audit entries from the hourly files under <data>/audit.
func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world filter (optional)")
	sinceTick := fs.Uint64("since_tick", 0, "first tick (inclusive)")
	toTick := fs.Uint64("to_tick", 0, "last tick (inclusive, optional)")
	aabb := fs.String("aabb", "", "AABB filter: x1,y1,z1:x2,y2,z2 (optional)")
	_ = fs.Parse(args)

	var min, max [3]int
	if strings.TrimSpace(*aabb) != "" {
		var err error
		if min, max, err = parseAABB(*aabb); err != nil {
			fmt.Fprintln(os.Stderr, "aabb:", err)
			os.Exit(2)
		}
	}

	files, err := persistlog.Files(persistlog.AuditDir(*dataDir), "audit")
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	n := 0
	for _, path := range files {
		entries, err := persistlog.ReadAudit(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "audit:", err)
			os.Exit(1)
		}
		for _, e := range entries {
			if !auditMatch(e, *worldID, *sinceTick, *toTick, *aabb != "", min, max) {
				continue
			}
			printJSON(e)
			n++
		}
	}
	fmt.Fprintf(os.Stderr, "%d entries from %d files\n", n, len(files))
}

func auditMatch(e world.AuditEntry, worldID string, since, to uint64, useBox bool, min, max [3]int) bool {
	if worldID != "" && e.World != worldID {
		return false
	}
	if e.Tick < since || (to > 0 && e.Tick > to) {
		return false
	}
	return !useBox || withinAABB(e.Pos, min, max)
}

func withinAABB(pos [3]int, min, max [3]int) bool {
	return pos[0] >= min[0] && pos[0] <= max[0] &&
		pos[1] >= min[1] && pos[1] <= max[1] &&
		pos[2] >= min[2] && pos[2] <= max[2]
}

func parseAABB(s string) (min, max [3]int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return min, max, fmt.Errorf("expected x1,y1,z1:x2,y2,z2")
	}
	a, err := parseVec3(parts[0])
	if err != nil {
		return min, max, err
	}
	b, err := parseVec3(parts[1])
	if err != nil {
		return min, max, err
	}
	for i := 0; i < 3; i++ {
		min[i], max[i] = a[i], b[i]
		if a[i] > b[i] {
			min[i], max[i] = b[i], a[i]
		}
	}
	return min, max, nil
}

func parseVec3(s string) ([3]int, error) {
	var v [3]int
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z")
	}
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return v, err
		}
		v[i] = n
	}
	return v, nil
}

// parsePos accepts "x,y,z" with float components.
func parsePos(s string) ([3]float64, error) {
	var v [3]float64
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z")
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func printJSON(v any) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}

func defaultRegionDB(dataDir string) string {
	return filepath.Join(dataDir, "restricted_regions.sqlite")
}
