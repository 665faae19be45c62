package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/rom-browser/internal/catalog"
	"github.com/handiism/rom-browser/internal/config"
	"github.com/handiism/rom-browser/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	content := `{
		"_meta": {"version": 1},
		"systems": {
			"Gameboy": {"id": "gb", "base_url": "https://a/", "entries": "tr",
				"fields": {"name": "a", "url": "a"},
				"regions": {"USA": ["(USA)"], "Japan": ["(Japan)"]},
				"types":   {"Demo": ["(Demo)"]}},
			"SNES": {"id": "snes", "base_url": "https://b/", "entries": "tr",
				"fields": {"name": "a", "url": "a"}}
		}
	}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func rec(name string) model.Record {
	return model.Record{Name: name, URL: "https://h/" + name, Size: "?"}
}

func testCache() *catalog.Cache {
	cache := catalog.NewCache()
	cache.Sources["Gameboy"] = []model.Record{
		rec("Alpha (USA)"),
		rec("Beta (Japan)"),
		rec("Gamma (USA) (Demo)"),
		rec("Delta"),
		rec("Epsilon (Japan)"),
	}
	cache.Sources["SNES"] = []model.Record{rec("Solo")}
	return cache
}

func newSession(t *testing.T) *Session {
	return New(testConfig(t), testCache())
}

func TestNavigationClamping(t *testing.T) {
	s := newSession(t)

	if s.SelectedIndex() != 0 {
		t.Fatalf("initial index = %d", s.SelectedIndex())
	}

	s.MoveUp()
	if s.SelectedIndex() != 0 {
		t.Error("MoveUp at the top must not go negative")
	}

	for i := 0; i < 20; i++ {
		s.MoveDown()
	}
	if got, want := s.SelectedIndex(), len(s.DisplayList())-1; got != want {
		t.Errorf("index = %d, want clamp at %d", got, want)
	}

	s.MoveDown()
	if got := s.SelectedIndex(); got != len(s.DisplayList())-1 {
		t.Error("MoveDown at the bottom must not wrap")
	}
}

func TestSourceSwitchResets(t *testing.T) {
	s := newSession(t)
	s.MoveDown()
	s.MoveDown()
	s.ToggleGroup(ViewByRegion)
	s.Search("alpha")

	s.NextSource()

	if s.SourceName() != "SNES" {
		t.Errorf("source = %q", s.SourceName())
	}
	if s.Mode() != ViewFlat {
		t.Error("source switch must reset grouping")
	}
	if s.Query() != "" {
		t.Error("source switch must clear the search")
	}
	if s.SelectedIndex() != 0 {
		t.Error("source switch must reset the selection")
	}

	s.NextSource()
	if s.SourceName() != "Gameboy" {
		t.Error("source cycling must wrap")
	}
	s.PrevSource()
	if s.SourceName() != "SNES" {
		t.Error("PrevSource must cycle backwards")
	}
}

func TestGroupingToggle(t *testing.T) {
	s := newSession(t)
	s.MoveDown()

	s.ToggleGroup(ViewByRegion)
	if s.Mode() != ViewByRegion {
		t.Fatal("grouping not entered")
	}
	if s.SelectedIndex() != 0 {
		t.Error("entering grouping must reset the selection")
	}
	// Sorted rule buckets first, fallback last.
	want := []string{"Japan", "USA", "Unknown"}
	got := s.BucketNames()
	if len(got) != len(want) {
		t.Fatalf("buckets = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("buckets = %v, want %v", got, want)
		}
	}

	// Toggling the same mode off returns to the flat list.
	s.ToggleGroup(ViewByRegion)
	if s.Mode() != ViewFlat {
		t.Error("second toggle must return to flat")
	}

	// A source with no rule-set still groups, into the single fallback.
	s.ToggleGroup(ViewByType)
	s.NextSource() // SNES, no types
	s.ToggleGroup(ViewByType)
	if names := s.BucketNames(); len(names) != 1 || names[0] != "None" {
		t.Errorf("fallback-only buckets = %v", names)
	}
	if len(s.DisplayList()) != 1 {
		t.Errorf("fallback bucket contents = %v", s.DisplayList())
	}
}

func TestBucketCycle(t *testing.T) {
	s := newSession(t)
	s.ToggleGroup(ViewByRegion)

	first := s.BucketName()
	s.MoveDown()
	s.CycleBucket()

	if s.BucketName() == first {
		t.Error("CycleBucket must advance")
	}
	if s.SelectedIndex() != 0 {
		t.Error("bucket cycle must reset the selection")
	}

	// Cycling through all buckets wraps back to the first.
	s.CycleBucket()
	s.CycleBucket()
	if s.BucketName() != first {
		t.Errorf("bucket cycling must wrap, at %q", s.BucketName())
	}

	// Flat mode: no-op.
	s.ToggleGroup(ViewByRegion)
	s.CycleBucket()
	if s.Mode() != ViewFlat {
		t.Error("CycleBucket must not change the mode")
	}
}

func TestSearch(t *testing.T) {
	s := newSession(t)
	s.MoveDown()

	if ok := s.Search("JAPAN"); !ok {
		t.Fatal("search with matches reported no results")
	}
	if s.SelectedIndex() != 0 {
		t.Error("search must reset the selection")
	}
	for _, r := range s.DisplayList() {
		if !strings.Contains(strings.ToLower(r.Name), "japan") {
			t.Errorf("filter leaked %q", r.Name)
		}
	}
	if len(s.DisplayList()) != 2 {
		t.Errorf("results = %v", s.DisplayList())
	}

	if ok := s.Search("zzz-no-such-game"); ok {
		t.Error("search without matches must report false")
	}
	if len(s.DisplayList()) != 0 {
		t.Error("no-match search must yield an empty display list")
	}
	if s.SelectedIndex() != 0 {
		t.Error("empty display list must keep index 0")
	}

	if ok := s.Search(""); !ok {
		t.Error("clearing the search is always ok")
	}
	if len(s.DisplayList()) != 5 {
		t.Error("clearing the search must restore the base list")
	}
}

func TestSearchWithinBucket(t *testing.T) {
	s := newSession(t)
	s.ToggleGroup(ViewByRegion)
	for s.BucketName() != "USA" {
		s.CycleBucket()
	}

	s.Search("gamma")
	list := s.DisplayList()
	if len(list) != 1 || list[0].Name != "Gamma (USA) (Demo)" {
		t.Errorf("bucket-scoped search = %v", list)
	}
}

func TestViewportCentering(t *testing.T) {
	cfg := testConfig(t)
	cache := catalog.NewCache()
	var many []model.Record
	for i := 0; i < 100; i++ {
		many = append(many, rec(string(rune('A'+i%26))+"-game"))
	}
	cache.Sources["Gameboy"] = many
	s := New(cfg, cache)

	if s.ViewportStart(10) != 0 {
		t.Error("top selection starts the window at 0")
	}

	for i := 0; i < 50; i++ {
		s.MoveDown()
	}
	start := s.ViewportStart(10)
	if start != 45 {
		t.Errorf("centered start = %d, want 45", start)
	}

	for i := 0; i < 60; i++ {
		s.MoveDown()
	}
	if got := s.ViewportStart(10); got != 90 {
		t.Errorf("bottom-clamped start = %d, want 90", got)
	}

	// Window taller than the list never scrolls.
	if got := s.ViewportStart(500); got != 0 {
		t.Errorf("oversized window start = %d, want 0", got)
	}
}

func TestEmptySourceIsSafe(t *testing.T) {
	cfg := testConfig(t)
	s := New(cfg, catalog.NewCache())

	if got := s.SelectedIndex(); got != 0 {
		t.Errorf("empty list index = %d", got)
	}
	if _, ok := s.Selected(); ok {
		t.Error("Selected must report false for an empty list")
	}
	s.MoveDown()
	s.MoveUp()
	s.ToggleGroup(ViewByRegion)
	s.CycleBucket()
	s.Search("x")
	if got := s.ViewportStart(10); got != 0 {
		t.Errorf("empty viewport start = %d", got)
	}
}
