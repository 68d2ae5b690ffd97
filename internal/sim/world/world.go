// Package world is the reference voxel world the incident engine runs
// against: a generated 3D block grid with actors, weather, a day cycle,
// containers and crops.
package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"chaoticweather.ai/internal/sim/ambient"
	"chaoticweather.ai/internal/sim/crater"
	"chaoticweather.ai/internal/sim/geom"
	"chaoticweather.ai/internal/sim/incidents"
	"chaoticweather.ai/internal/sim/world/logic/mathx"
	"chaoticweather.ai/internal/sim/world/terrain/store"
)

var (
	ErrUnknownActor   = errors.New("unknown actor")
	ErrUnknownWeather = errors.New("unknown weather")
	ErrUnknownCrop    = errors.New("unknown crop")
)

type Config struct {
	Name       string
	Seed       int64
	MinY       int
	Height     int
	SeaLevel   int
	SurfaceAmp int
	BoundaryR  int

	BiomeRegionSize  int
	Biome            string
	SpawnClearRadius int

	DayTicks  int
	StartTime int
	// WeatherCycle lets weather change on its own when the current spell ends.
	WeatherCycle bool
	// SpawnFarm is the side of the wheat field planted next to spawn.
	SpawnFarm int
}

// World is a single-threaded simulation. All state must be accessed only
// from the owning loop goroutine.
type World struct {
	cfg    Config
	chunks *store.ChunkStore
	rng    *mathx.Rand

	tick      uint64
	timeOfDay int

	weather      Weather
	weatherUntil uint64

	spawn      geom.Vec3i
	actors     map[string]incidents.Actor
	containers map[geom.Vec3i]*Container
	crops      map[geom.Vec3i]*crop

	auditLogger AuditLogger
}

func New(cfg Config) (*World, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("world: name is required")
	}
	if cfg.Height <= 0 {
		cfg.Height = 128
	}
	if cfg.SeaLevel == 0 {
		cfg.SeaLevel = cfg.MinY + 62
	}
	if cfg.DayTicks <= 0 {
		cfg.DayTicks = 24000
	}
	if cfg.BiomeRegionSize <= 0 {
		cfg.BiomeRegionSize = 64
	}
	chunks := store.NewChunkStore(store.WorldGen{
		Seed:                        cfg.Seed,
		BoundaryR:                   cfg.BoundaryR,
		MinY:                        cfg.MinY,
		Height:                      cfg.Height,
		SeaLevel:                    cfg.SeaLevel,
		SurfaceAmp:                  cfg.SurfaceAmp,
		BiomeRegionSize:             cfg.BiomeRegionSize,
		Biome:                       cfg.Biome,
		SpawnClearRadius:            cfg.SpawnClearRadius,
		OreClusterProbScalePermille: 1000,
	})
	w := &World{
		cfg:        cfg,
		chunks:     chunks,
		rng:        mathx.NewRand(cfg.Seed ^ 0x5eed),
		timeOfDay:  mathx.Mod(cfg.StartTime, cfg.DayTicks),
		weather:    WeatherClear,
		actors:     map[string]incidents.Actor{},
		containers: map[geom.Vec3i]*Container{},
		crops:      map[geom.Vec3i]*crop{},
	}
	w.spawn = geom.Vec3i{Y: chunks.SurfaceAt(0, 0) + 1}
	if cfg.WeatherCycle {
		w.weatherUntil = w.spellLength(WeatherClear)
	}
	if cfg.SpawnFarm > 0 {
		w.plantSpawnFarm(cfg.SpawnFarm)
	}
	return w, nil
}

func (w *World) Name() string { return w.cfg.Name }

func (w *World) Config() Config { return w.cfg }

func (w *World) CurrentTick() uint64 { return w.tick }

// Spawn is the first air block above the generated ground at the origin.
func (w *World) Spawn() geom.Vec3i { return w.spawn }

func (w *World) SetAuditLogger(l AuditLogger) { w.auditLogger = l }

// Step advances the world clock by one tick.
func (w *World) Step() {
	w.tick++
	w.timeOfDay = (w.timeOfDay + 1) % w.cfg.DayTicks
	if w.weatherUntil != 0 && w.tick >= w.weatherUntil {
		w.nextWeather()
	}
}

// Digest hashes the loaded terrain, clock and weather.
func (w *World) Digest() string {
	h := sha256.New()
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], w.tick)
	h.Write(tmp[:])
	binary.LittleEndian.PutUint64(tmp[:], uint64(w.cfg.Seed))
	h.Write(tmp[:])
	h.Write([]byte(w.weather))
	for _, k := range w.chunks.LoadedChunkKeys() {
		d := w.chunks.Chunks[k].Digest()
		h.Write(d[:])
	}
	// Palette ids depend on first-use order; hash names too.
	for i := 0; i < w.chunks.Palette.Len(); i++ {
		h.Write([]byte(w.chunks.Palette.Name(uint16(i))))
	}
	return hex.EncodeToString(h.Sum(nil))
}

var (
	_ incidents.World          = (*World)(nil)
	_ ambient.World            = (*World)(nil)
	_ crater.AttributedTerrain = (*World)(nil)
)
