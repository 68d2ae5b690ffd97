package regions

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"chaoticweather.ai/internal/sim/geom"
)

type location struct {
	World string  `yaml:"world"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
}

type regionDoc struct {
	Pos1 location `yaml:"pos1"`
	Pos2 location `yaml:"pos2"`
}

type fileDoc struct {
	Regions map[string][]regionDoc `yaml:"regions"`
}

// YAMLStore persists regions as
//
//	regions:
//	  <key>:
//	    - pos1: {world, x, y, z}
//	      pos2: {world, x, y, z}
//
// pos1 holds the box minimum and pos2 the maximum. Keys are compared after
// NormalizeKey, so hand-edited mixed-case keys merge with written ones. Every
// write reads the current file, edits one key and replaces the file via rename.
type YAMLStore struct {
	Path string
}

func NewYAMLStore(path string) *YAMLStore { return &YAMLStore{Path: path} }

func (s *YAMLStore) Load() (map[string][]Region, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Region, len(doc.Regions))
	for raw, list := range doc.Regions {
		k := NormalizeKey(raw)
		for _, rd := range list {
			out[k] = append(out[k], Region{
				World: rd.Pos1.World,
				Box:   geom.NewBox(rd.Pos1.vec(), rd.Pos2.vec()),
			})
		}
	}
	return out, nil
}

func (s *YAMLStore) Append(key string, r Region) error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc.Regions == nil {
		doc.Regions = map[string][]regionDoc{}
	}
	key = NormalizeKey(key)
	doc.Regions[key] = append(doc.Regions[key], regionDoc{
		Pos1: locationOf(r.World, r.Box.Min),
		Pos2: locationOf(r.World, r.Box.Max),
	})
	return s.write(doc)
}

func (s *YAMLStore) Clear(key string) error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	key = NormalizeKey(key)
	found := false
	for raw := range doc.Regions {
		if NormalizeKey(raw) == key {
			delete(doc.Regions, raw)
			found = true
		}
	}
	if !found {
		return nil
	}
	return s.write(doc)
}

func (s *YAMLStore) read() (fileDoc, error) {
	var doc fileDoc
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, err
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("%s: %w", filepath.Base(s.Path), err)
	}
	return doc, nil
}

func (s *YAMLStore) write(doc fileDoc) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

func locationOf(world string, v geom.Vec3) location {
	return location{World: world, X: v.X, Y: v.Y, Z: v.Z}
}

func (l location) vec() geom.Vec3 { return geom.Vec3{X: l.X, Y: l.Y, Z: l.Z} }
