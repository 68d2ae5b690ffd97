package main

import (
	"fmt"
	"os"
	"path/filepath"

	"chaoticweather.ai/internal/persistence/regiondb"
	"chaoticweather.ai/internal/sim/regions"
	"chaoticweather.ai/internal/sim/tuning"
)

// openRegionStore opens the backend named by cfg. Relative paths resolve
// against the working directory.
func openRegionStore(cfg tuning.Regions) (regions.Store, func(), error) {
	path := filepath.Clean(cfg.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	switch cfg.Backend {
	case "yaml":
		return regions.NewYAMLStore(path), func() {}, nil
	case "sqlite":
		db, err := regiondb.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown regions backend %q", cfg.Backend)
	}
}
