package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/handiism/rom-browser/internal/config"
	"github.com/handiism/rom-browser/internal/model"
)

// Level indicates the severity of a refresh event.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
	LevelSuccess
)

// Event is a human-readable refresh progress update, rendered by the UI
// while the catalog is being built.
type Event struct {
	Message string
	Level   Level
}

// Extractor produces the record list for one source. Satisfied by
// *scrape.Extractor; tests substitute a fake to count fetches.
type Extractor interface {
	Extract(ctx context.Context, src *model.Source) ([]model.Record, error)
}

// Refresher decides between reusing, repairing and rebuilding the cache.
//
// Staleness is determined purely by the configuration hash: when the hash
// recorded in the cache differs from the live configuration's, the whole
// cache is rebuilt from scratch, never per-source. When the hash matches,
// only sources with a missing or empty cached list are (re-)extracted,
// leaving the rest untouched.
type Refresher struct {
	store     *Store
	extractor Extractor
	onEvent   func(Event)
}

// NewRefresher creates a Refresher. onEvent may be nil.
func NewRefresher(store *Store, extractor Extractor, onEvent func(Event)) *Refresher {
	return &Refresher{store: store, extractor: extractor, onEvent: onEvent}
}

// Stale reports whether the cache was produced by a different
// configuration than cfg.
func Stale(cache *Cache, cfg *config.Config) bool {
	return cache.Meta.ConfigHash != cfg.Hash()
}

// Refresh brings the cache in line with the configuration and persists it.
//
// When force is set or the cache is stale, every source is re-extracted
// into a fresh cache, discarding all previous entries. Otherwise sources
// that already have records are reused and only empty or missing ones are
// extracted. Per-source extraction failures are reported as events and
// leave that source with whatever was extracted (possibly nothing); they
// never abort the remaining sources. A failed save is reported as a
// warning event and does not fail the refresh.
func (r *Refresher) Refresh(ctx context.Context, cfg *config.Config, cache *Cache, force bool) *Cache {
	hash := cfg.Hash()
	rebuild := force || cache.Meta.ConfigHash != hash

	fresh := cache
	if rebuild {
		fresh = NewCache()
	}

	changed := rebuild
	for _, name := range cfg.SourceNames() {
		src := cfg.Source(name)
		if src == nil {
			continue
		}
		if !rebuild && len(fresh.Sources[name]) > 0 {
			continue
		}

		r.event(Event{Message: fmt.Sprintf("Scraping %s ...", name)})
		records, err := r.extractor.Extract(ctx, src)
		if err != nil {
			r.event(Event{
				Message: fmt.Sprintf("Error scraping %s: %v", name, err),
				Level:   LevelError,
			})
		}
		fresh.Sources[name] = records
		changed = true
		if err == nil {
			r.event(Event{
				Message: fmt.Sprintf("%s: %d entries", name, len(records)),
				Level:   LevelSuccess,
			})
		}
	}

	if !changed {
		return fresh
	}

	fresh.Meta.ConfigHash = hash
	fresh.Meta.Updated = time.Now().Unix()
	if err := r.store.Save(fresh); err != nil {
		r.event(Event{
			Message: fmt.Sprintf("Could not save cache: %v", err),
			Level:   LevelWarning,
		})
	}
	return fresh
}

func (r *Refresher) event(e Event) {
	if r.onEvent != nil {
		r.onEvent(e)
	}
}
