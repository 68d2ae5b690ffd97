package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

type regionRow struct {
	ID    int64      `json:"id"`
	Key   string     `json:"key"`
	World string     `json:"world"`
	Min   [3]float64 `json:"min"`
	Max   [3]float64 `json:"max"`
}

// dbCmd inspects a sqlite region store without going through the server.
func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/restricted_regions.sqlite)")
	key := fs.String("key", "", "incident key filter")
	limit := fs.Int("limit", 100, "result limit")
	_ = fs.Parse(args)

	q := "regions"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}
	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = defaultRegionDB(*dataDir)
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	switch q {
	case "regions":
		if *limit <= 0 {
			*limit = 100
		}
		rows, err := queryRegions(db, strings.ToLower(strings.TrimSpace(*key)), *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		for _, r := range rows {
			printJSON(r)
		}
	case "keys":
		counts, err := countKeys(db)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		for _, c := range counts {
			printJSON(c)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown query %q (want regions|keys)\n", q)
		os.Exit(2)
	}
}

func queryRegions(db *sql.DB, key string, limit int) ([]regionRow, error) {
	query := `SELECT id,incident_key,world,min_x,min_y,min_z,max_x,max_y,max_z FROM regions`
	var params []any
	if key != "" {
		query += ` WHERE incident_key=?`
		params = append(params, key)
	}
	query += ` ORDER BY id LIMIT ?`
	params = append(params, limit)

	rows, err := db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []regionRow
	for rows.Next() {
		var r regionRow
		if err := rows.Scan(&r.ID, &r.Key, &r.World, &r.Min[0], &r.Min[1], &r.Min[2], &r.Max[0], &r.Max[1], &r.Max[2]); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type keyCount struct {
	Key     string `json:"key"`
	Regions int    `json:"regions"`
}

func countKeys(db *sql.DB) ([]keyCount, error) {
	rows, err := db.Query(`SELECT incident_key,COUNT(*) FROM regions GROUP BY incident_key ORDER BY incident_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []keyCount
	for rows.Next() {
		var c keyCount
		if err := rows.Scan(&c.Key, &c.Regions); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
