package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/handiism/rom-browser/internal/config"
	"github.com/handiism/rom-browser/internal/model"
)

// fakeExtractor serves canned records and counts extractions per source.
type fakeExtractor struct {
	records map[string][]model.Record
	calls   map[string]int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		records: make(map[string][]model.Record),
		calls:   make(map[string]int),
	}
}

func (f *fakeExtractor) Extract(_ context.Context, src *model.Source) ([]model.Record, error) {
	f.calls[src.ID]++
	return f.records[src.ID], nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	content := `{
		"_meta": {"version": 1},
		"systems": {
			"Alpha": {"id": "alpha", "base_url": "https://a/", "entries": "tr", "fields": {"name": "a", "url": "a"}},
			"Beta":  {"id": "beta",  "base_url": "https://b/", "entries": "tr", "fields": {"name": "a", "url": "a"}},
			"Gamma": {"id": "gamma", "base_url": "https://c/", "entries": "tr", "fields": {"name": "a", "url": "a"}}
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

func TestRefreshFullBuild(t *testing.T) {
	cfg := testConfig(t)
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"))
	ex := newFakeExtractor()
	ex.records["alpha"] = []model.Record{rec("a1"), rec("a2")}
	ex.records["beta"] = []model.Record{rec("b1")}

	r := NewRefresher(store, ex, nil)
	cache := r.Refresh(context.Background(), cfg, NewCache(), false)

	if ex.calls["alpha"] != 1 || ex.calls["beta"] != 1 || ex.calls["gamma"] != 1 {
		t.Errorf("all sources must be extracted on first run, calls = %v", ex.calls)
	}
	if len(cache.Records("Alpha")) != 2 {
		t.Errorf("Alpha records = %v", cache.Records("Alpha"))
	}
	if cache.Meta.ConfigHash != cfg.Hash() {
		t.Error("cache must be stamped with the live config hash")
	}
	if cache.Meta.Updated == 0 {
		t.Error("cache must carry an update timestamp")
	}

	// The cache must also have been persisted.
	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded.Records("Alpha"), cache.Records("Alpha")) {
		t.Error("persisted cache differs from in-memory cache")
	}
}

func TestRefreshIncrementalRepair(t *testing.T) {
	cfg := testConfig(t)
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"))
	ex := newFakeExtractor()
	ex.records["alpha"] = []model.Record{rec("a1")}
	ex.records["beta"] = []model.Record{rec("b1")}
	ex.records["gamma"] = []model.Record{rec("g1")}

	r := NewRefresher(store, ex, nil)
	cache := r.Refresh(context.Background(), cfg, NewCache(), false)

	// Second run with an unchanged config: nothing is empty, so zero
	// re-fetches happen.
	for k := range ex.calls {
		ex.calls[k] = 0
	}
	cache = r.Refresh(context.Background(), cfg, cache, false)
	if len(ex.calls) != 0 {
		for k, n := range ex.calls {
			if n != 0 {
				t.Errorf("source %s re-fetched %d times in incremental mode", k, n)
			}
		}
	}

	// Empty out one source: only that one is repaired.
	cache.Sources["Beta"] = nil
	cache = r.Refresh(context.Background(), cfg, cache, false)
	if ex.calls["beta"] != 1 {
		t.Errorf("beta should be repaired once, calls = %v", ex.calls)
	}
	if ex.calls["alpha"] != 0 || ex.calls["gamma"] != 0 {
		t.Errorf("untouched sources must not be re-fetched, calls = %v", ex.calls)
	}
	if len(cache.Records("Beta")) != 1 {
		t.Error("repaired source has no records")
	}
}

func TestRefreshConfigChangeRebuildsEverything(t *testing.T) {
	cfg := testConfig(t)
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"))
	ex := newFakeExtractor()
	ex.records["alpha"] = []model.Record{rec("a1")}

	r := NewRefresher(store, ex, nil)
	cache := r.Refresh(context.Background(), cfg, NewCache(), false)

	// Leave a leftover source that the new config does not know about.
	cache.Sources["Removed"] = []model.Record{rec("stale")}

	// Changing any field invalidates the whole cache.
	cfg.Source("Alpha").Ignore = &model.IgnoreRules{Size: "-"}
	if !Stale(cache, cfg) {
		t.Fatal("cache must be stale after a config change")
	}

	for k := range ex.calls {
		ex.calls[k] = 0
	}
	cache = r.Refresh(context.Background(), cfg, cache, false)

	if ex.calls["alpha"] != 1 || ex.calls["beta"] != 1 || ex.calls["gamma"] != 1 {
		t.Errorf("stale cache must rebuild every source, calls = %v", ex.calls)
	}
	if cache.Records("Removed") != nil {
		t.Error("wholesale rebuild must discard stale leftovers")
	}
}

func TestStaleDeterministic(t *testing.T) {
	cfg := testConfig(t)
	cache := NewCache()
	cache.Meta.ConfigHash = cfg.Hash()

	if Stale(cache, cfg) {
		t.Error("cache stamped with the live hash must not be stale")
	}
	if cfg.Hash() != cfg.Hash() {
		t.Error("hashing must be deterministic")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "cache.json"))

	cache := NewCache()
	cache.Meta = Meta{ConfigHash: "abc123", Updated: 1719444000}
	cache.Sources["GB"] = []model.Record{rec("one"), rec("two")}

	if err := store.Save(cache); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Meta != cache.Meta {
		t.Errorf("meta = %+v, want %+v", loaded.Meta, cache.Meta)
	}
	if !reflect.DeepEqual(loaded.Records("GB"), cache.Records("GB")) {
		t.Errorf("records = %v", loaded.Records("GB"))
	}
}

func TestCacheLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	cache, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cache.Sources) != 0 {
		t.Error("missing file must yield an empty cache")
	}
}

func TestCacheLegacyBucketShapeFlattened(t *testing.T) {
	legacy := `{
		"_meta": {"config_hash": "h", "updated": 1},
		"GB": {
			"USA":    [{"name": "u1", "url": "https://h/u1", "size": "?"}],
			"Europe": [{"name": "e1", "url": "https://h/e1", "size": "?"}]
		}
	}`
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	cache, err := NewStore(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	records := cache.Records("GB")
	if len(records) != 2 {
		t.Fatalf("flattened records = %v", records)
	}
	// Sub-buckets flatten in sorted name order: Europe before USA.
	if records[0].Name != "e1" || records[1].Name != "u1" {
		t.Errorf("flatten order = %v", records)
	}
}

func TestCacheMarshalShape(t *testing.T) {
	cache := NewCache()
	cache.Meta = Meta{ConfigHash: "h", Updated: 2}
	cache.Sources["GB"] = []model.Record{rec("one")}

	data, err := json.Marshal(cache)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["_meta"]; !ok {
		t.Error("marshal must emit a top-level _meta entry")
	}
	if _, ok := raw["GB"]; !ok {
		t.Error("marshal must emit sources as top-level keys")
	}
}
