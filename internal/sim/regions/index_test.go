package regions

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chaoticweather.ai/internal/sim/geom"
)

type failingStore struct {
	loadErr  error
	writeErr error
	loaded   map[string][]Region
}

func (f *failingStore) Load() (map[string][]Region, error) { return f.loaded, f.loadErr }
func (f *failingStore) Append(string, Region) error         { return f.writeErr }
func (f *failingStore) Clear(string) error                  { return f.writeErr }

func v(x, y, z float64) geom.Vec3 { return geom.Vec3{X: x, Y: y, Z: z} }

func TestIsRestrictedInsideAndOutside(t *testing.T) {
	ix := NewIndex(nil, nil)
	if _, err := ix.Add("Meteor_Impact", "world", v(10, 80, 10), v(0, 60, 0)); err != nil {
		t.Fatalf("add: %v", err)
	}
	for _, p := range []geom.Vec3{v(0, 60, 0), v(10, 80, 10), v(5, 70, 5), v(0, 80, 10)} {
		if !ix.IsRestricted("meteor_impact", p) {
			t.Fatalf("expected %+v restricted", p)
		}
	}
	for _, p := range []geom.Vec3{v(-0.5, 70, 5), v(5, 80.5, 5), v(11, 70, 5)} {
		if ix.IsRestricted("meteor_impact", p) {
			t.Fatalf("expected %+v not restricted", p)
		}
	}
	if ix.IsRestricted("hailstorm", v(5, 70, 5)) {
		t.Fatalf("unknown key must not restrict")
	}
	// Containment does not look at the world.
	if !ix.IsRestricted(" METEOR_IMPACT ", v(5, 70, 5)) {
		t.Fatalf("key normalization failed")
	}
}

func TestAddThenLoadRoundTripsThroughYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restricted_regions.yml")
	ix := NewIndex(NewYAMLStore(path), nil)
	if _, err := ix.Add("meteor_impact", "world", v(0, 0, 0), v(4, 4, 4)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ix.Add("meteor_impact", "world_nether", v(100, 10, -5), v(90, 0, -15)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ix.Add("hailstorm", "world", v(-1, -1, -1), v(1, 1, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	restarted := NewIndex(NewYAMLStore(path), nil)
	if err := restarted.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, k := range []string{"meteor_impact", "hailstorm"} {
		a, b := ix.Regions(k), restarted.Regions(k)
		if len(a) != len(b) {
			t.Fatalf("%s: len %d vs %d", k, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("%s[%d]: %+v vs %+v", k, i, a[i], b[i])
			}
		}
	}
	if got := restarted.Keys(); len(got) != 2 || got[0] != "hailstorm" || got[1] != "meteor_impact" {
		t.Fatalf("keys=%v", got)
	}
}

func TestYAMLAppendKeepsForeignEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restricted_regions.yml")
	seed := "regions:\n  aurora_storm:\n    - pos1: {world: world, x: 1, y: 2, z: 3}\n      pos2: {world: world, x: 4, y: 5, z: 6}\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	// The index never loaded the file, so a full rewrite from memory would drop aurora_storm.
	ix := NewIndex(NewYAMLStore(path), nil)
	if _, err := ix.Add("meteor_shower", "world", v(0, 0, 0), v(1, 1, 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	m, err := NewYAMLStore(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m["aurora_storm"]) != 1 || len(m["meteor_shower"]) != 1 {
		t.Fatalf("got %+v", m)
	}
	if m["aurora_storm"][0].Box.Max != v(4, 5, 6) {
		t.Fatalf("aurora box=%+v", m["aurora_storm"][0].Box)
	}
}

func TestYAMLPersistsMinAsPos1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.yml")
	ix := NewIndex(NewYAMLStore(path), nil)
	if _, err := ix.Add("hailstorm", "world", v(9, 9, 9), v(1, 1, 1)); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	i1, i2 := strings.Index(s, "pos1"), strings.Index(s, "pos2")
	if i1 < 0 || i2 < 0 {
		t.Fatalf("missing pos keys:\n%s", s)
	}
	if !strings.Contains(s[i1:i2], "x: 1") {
		t.Fatalf("pos1 is not the minimum corner:\n%s", s)
	}
}

func TestClearRemovesKeyAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.yml")
	ix := NewIndex(NewYAMLStore(path), nil)
	_, _ = ix.Add("hurricane_winds", "world", v(0, 0, 0), v(2, 2, 2))
	if err := ix.Clear("HURRICANE_WINDS"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if ix.IsRestricted("hurricane_winds", v(1, 1, 1)) {
		t.Fatalf("still restricted after clear")
	}
	again := NewIndex(NewYAMLStore(path), nil)
	if err := again.Load(); err != nil {
		t.Fatal(err)
	}
	if len(again.Regions("hurricane_winds")) != 0 {
		t.Fatalf("clear not persisted")
	}
}

func TestMissingFileLoadsEmpty(t *testing.T) {
	ix := NewIndex(NewYAMLStore(filepath.Join(t.TempDir(), "nope.yml")), nil)
	if err := ix.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ix.Keys()) != 0 {
		t.Fatalf("expected empty")
	}
}

func TestPersistenceFailureKeepsMemory(t *testing.T) {
	st := &failingStore{writeErr: errors.New("disk full")}
	ix := NewIndex(st, nil)
	_, err := ix.Add("meteor_impact", "world", v(0, 0, 0), v(1, 1, 1))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err=%v want ErrPersistence", err)
	}
	if !ix.IsRestricted("meteor_impact", v(0.5, 0.5, 0.5)) {
		t.Fatalf("in-memory add was rolled back")
	}
	if err := ix.Clear("meteor_impact"); !errors.Is(err, ErrPersistence) {
		t.Fatalf("clear err=%v", err)
	}
	if ix.IsRestricted("meteor_impact", v(0.5, 0.5, 0.5)) {
		t.Fatalf("in-memory clear was rolled back")
	}
}

func TestLoadFailureKeepsPreviousSet(t *testing.T) {
	st := &failingStore{}
	ix := NewIndex(st, nil)
	_, _ = ix.Add("meteor_impact", "world", v(0, 0, 0), v(1, 1, 1))
	st.loadErr = errors.New("corrupt")
	if err := ix.Load(); err == nil {
		t.Fatalf("expected error")
	}
	if !ix.IsRestricted("meteor_impact", v(1, 1, 1)) {
		t.Fatalf("previous set discarded on failed load")
	}
}

func TestLoadDiscardsPriorState(t *testing.T) {
	st := &failingStore{loaded: map[string][]Region{
		"Hailstorm": {{World: "w", Box: geom.Box{Min: v(5, 5, 5), Max: v(0, 0, 0)}}},
	}}
	ix := NewIndex(st, nil)
	_, _ = ix.Add("meteor_impact", "world", v(0, 0, 0), v(1, 1, 1))
	if err := ix.Load(); err != nil {
		t.Fatal(err)
	}
	if ix.IsRestricted("meteor_impact", v(1, 1, 1)) {
		t.Fatalf("prior state survived load")
	}
	if !ix.IsRestricted("hailstorm", v(2, 2, 2)) {
		t.Fatalf("loaded box not normalized or key not lower-cased")
	}
}

func TestYAMLClearMatchesHandEditedKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.yml")
	doc := "regions:\n  Meteor_Impact:\n    - pos1: {world: world, x: 0, y: 0, z: 0}\n      pos2: {world: world, x: 4, y: 4, z: 4}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	ix := NewIndex(NewYAMLStore(path), nil)
	if err := ix.Load(); err != nil {
		t.Fatal(err)
	}
	if !ix.IsRestricted("meteor_impact", v(2, 2, 2)) {
		t.Fatalf("hand-edited key not loaded")
	}
	if err := ix.Clear("meteor_impact"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	again := NewIndex(NewYAMLStore(path), nil)
	if err := again.Load(); err != nil {
		t.Fatal(err)
	}
	if again.IsRestricted("meteor_impact", v(2, 2, 2)) {
		t.Fatalf("cleared restriction came back on reload")
	}
}
