// Package regiondb is a SQLite-backed regions.Store.
package regiondb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/regions"
)

// SQLiteStore keeps one row per region. Writes are synchronous so callers
// see the error; there is no background writer.
type SQLiteStore struct {
	db *sql.DB
}

var _ regions.Store = (*SQLiteStore)(nil)

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// Region edits are rare admin actions; FULL keeps an acknowledged add on disk.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=FULL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS regions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			incident_key TEXT NOT NULL,
			world TEXT NOT NULL,
			min_x REAL NOT NULL,
			min_y REAL NOT NULL,
			min_z REAL NOT NULL,
			max_x REAL NOT NULL,
			max_y REAL NOT NULL,
			max_z REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS regions_key ON regions(incident_key);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Load() (map[string][]regions.Region, error) {
	rows, err := s.db.Query(`SELECT incident_key,world,min_x,min_y,min_z,max_x,max_y,max_z FROM regions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]regions.Region{}
	for rows.Next() {
		var (
			key, world string
			a, b       geom.Vec3
		)
		if err := rows.Scan(&key, &world, &a.X, &a.Y, &a.Z, &b.X, &b.Y, &b.Z); err != nil {
			return nil, err
		}
		key = regions.NormalizeKey(key)
		out[key] = append(out[key], regions.Region{World: world, Box: geom.NewBox(a, b)})
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Append(key string, r regions.Region) error {
	_, err := s.db.Exec(
		`INSERT INTO regions(incident_key,world,min_x,min_y,min_z,max_x,max_y,max_z) VALUES(?,?,?,?,?,?,?,?)`,
		regions.NormalizeKey(key), r.World,
		r.Box.Min.X, r.Box.Min.Y, r.Box.Min.Z,
		r.Box.Max.X, r.Box.Max.Y, r.Box.Max.Z,
	)
	return err
}

func (s *SQLiteStore) Clear(key string) error {
	_, err := s.db.Exec(`DELETE FROM regions WHERE lower(trim(incident_key))=?`, regions.NormalizeKey(key))
	return err
}
