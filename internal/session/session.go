package session

import (
	"strings"

	"github.com/handiism/rom-browser/internal/catalog"
	"github.com/handiism/rom-browser/internal/config"
	"github.com/handiism/rom-browser/internal/group"
	"github.com/handiism/rom-browser/internal/model"
)

// ViewMode is the tagged grouping state: a flat list, or grouped by one of
// the rule-set kinds. A single variant replaces the loose grouped/index
// flags the UI would otherwise juggle.
type ViewMode int

const (
	ViewFlat ViewMode = iota
	ViewByRegion
	ViewByType
)

// Kind returns the grouping kind for a grouped mode.
func (v ViewMode) Kind() group.Kind {
	if v == ViewByType {
		return group.KindType
	}
	return group.KindRegion
}

// Session is the browse state machine: which source, which view mode and
// bucket, which item, and the active search filter.
//
// Session is pure state plus derivation: it never draws and never blocks.
// The presentation layer feeds it key-driven transitions and renders
// DisplayList, SelectedIndex and ViewportStart each frame.
//
// Invariant: the selected item index is always within
// [0, len(DisplayList())-1], or 0 when the list is empty, and it resets to
// 0 whenever the display list changes identity (source switch, grouping
// toggle, bucket cycle, search change).
type Session struct {
	cfg   *config.Config
	cache *catalog.Cache

	sources []string
	srcIdx  int

	mode   ViewMode
	bucket int
	item   int

	// query is the lowercased search filter, "" when inactive.
	query string
}

// New creates a session over the given configuration and cache. Sources
// cycle in the configuration's sorted name order.
func New(cfg *config.Config, cache *catalog.Cache) *Session {
	return &Session{
		cfg:     cfg,
		cache:   cache,
		sources: cfg.SourceNames(),
	}
}

// SetCache swaps in a freshly refreshed cache and re-clamps the selection.
func (s *Session) SetCache(cache *catalog.Cache) {
	s.cache = cache
	s.clamp()
}

// SourceName returns the current source's configured name, or "" when no
// sources are configured.
func (s *Session) SourceName() string {
	if len(s.sources) == 0 {
		return ""
	}
	return s.sources[s.srcIdx]
}

// Source returns the current source definition, or nil.
func (s *Session) Source() *model.Source {
	return s.cfg.Source(s.SourceName())
}

// SourceCount returns the number of configured sources.
func (s *Session) SourceCount() int {
	return len(s.sources)
}

// NextSource cycles forward through the sources, resetting view mode,
// bucket, selection and search.
func (s *Session) NextSource() {
	s.shiftSource(1)
}

// PrevSource cycles backward through the sources, resetting view mode,
// bucket, selection and search.
func (s *Session) PrevSource() {
	s.shiftSource(-1)
}

func (s *Session) shiftSource(delta int) {
	if len(s.sources) == 0 {
		return
	}
	s.srcIdx = (s.srcIdx + delta + len(s.sources)) % len(s.sources)
	s.mode = ViewFlat
	s.bucket = 0
	s.item = 0
	s.query = ""
}

// Mode returns the current view mode.
func (s *Session) Mode() ViewMode {
	return s.mode
}

// ToggleGroup enters the given grouped mode, or returns to the flat list
// when that mode is already active. Entering or leaving a grouping resets
// the bucket and item selection and clears the search.
func (s *Session) ToggleGroup(mode ViewMode) {
	if mode == ViewFlat || s.mode == mode {
		s.mode = ViewFlat
	} else {
		s.mode = mode
	}
	s.bucket = 0
	s.item = 0
	s.query = ""
}

// CycleBucket advances to the next bucket (wrapping) within the active
// grouping mode and resets the item selection. No-op in flat mode.
func (s *Session) CycleBucket() {
	if s.mode == ViewFlat {
		return
	}
	names := s.BucketNames()
	if len(names) == 0 {
		return
	}
	s.bucket = (s.bucket + 1) % len(names)
	s.item = 0
}

// BucketNames returns the bucket names of the active grouping in cycle
// order, or nil in flat mode.
func (s *Session) BucketNames() []string {
	if s.mode == ViewFlat {
		return nil
	}
	return s.categorized().Order
}

// BucketName returns the active bucket's name, or "" in flat mode.
func (s *Session) BucketName() string {
	names := s.BucketNames()
	if len(names) == 0 {
		return ""
	}
	return names[s.bucket%len(names)]
}

// Search sets the filter from raw prompt input. Empty input clears the
// filter. The selection resets to the top either way. Returns false when a
// non-empty query matches nothing in the current base list.
func (s *Session) Search(raw string) bool {
	s.item = 0
	q := strings.ToLower(strings.TrimSpace(raw))
	s.query = q
	if q == "" {
		return true
	}
	return len(s.DisplayList()) > 0
}

// Query returns the active search query, "" when none.
func (s *Session) Query() string {
	return s.query
}

// MoveUp moves the selection up one item, clamped at the top.
func (s *Session) MoveUp() {
	if s.item > 0 {
		s.item--
	}
}

// MoveDown moves the selection down one item, clamped at the bottom.
func (s *Session) MoveDown() {
	if s.item < len(s.DisplayList())-1 {
		s.item++
	}
}

// SelectedIndex returns the selected position within DisplayList. For an
// empty list it is 0.
func (s *Session) SelectedIndex() int {
	s.clamp()
	return s.item
}

// Selected returns the selected record, or false for an empty list.
func (s *Session) Selected() (model.Record, bool) {
	list := s.DisplayList()
	if len(list) == 0 {
		return model.Record{}, false
	}
	s.clamp()
	return list[s.item], true
}

// DisplayList derives the record list the presentation layer should
// render: the flat source list or the active bucket, narrowed by the
// search filter.
func (s *Session) DisplayList() []model.Record {
	base := s.baseList()
	if s.query == "" {
		return base
	}
	var filtered []model.Record
	for _, rec := range base {
		if strings.Contains(strings.ToLower(rec.Name), s.query) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// ViewportStart returns the first visible index for a window of the given
// height, keeping the selection visible and centered when the list is
// longer than the window, clamped so the window never runs past either end.
func (s *Session) ViewportStart(height int) int {
	list := s.DisplayList()
	if height <= 0 || len(list) <= height {
		return 0
	}
	s.clamp()
	start := s.item - height/2
	if start < 0 {
		start = 0
	}
	if max := len(list) - height; start > max {
		start = max
	}
	return start
}

func (s *Session) baseList() []model.Record {
	records := s.cache.Records(s.SourceName())
	if s.mode == ViewFlat {
		return records
	}

	res := s.categorized()
	if len(res.Order) == 0 {
		return nil
	}
	return res.Buckets[res.Order[s.bucket%len(res.Order)]]
}

func (s *Session) categorized() group.Result {
	src := s.Source()
	records := s.cache.Records(s.SourceName())
	kind := s.mode.Kind()

	var rules model.RuleSet
	if src != nil {
		if kind == group.KindType {
			rules = src.Types
		} else {
			rules = src.Regions
		}
	}
	return group.Categorize(records, rules, kind.Fallback())
}

func (s *Session) clamp() {
	n := len(s.DisplayList())
	if n == 0 {
		s.item = 0
		return
	}
	if s.item >= n {
		s.item = n - 1
	}
	if s.item < 0 {
		s.item = 0
	}
}
