package catalog

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/handiism/rom-browser/internal/model"
)

// Meta is the cache metadata block: which configuration produced the cache
// and when.
type Meta struct {
	// ConfigHash is the hex SHA-256 of the configuration the cache was
	// built from. The cache is valid only while this equals the live
	// configuration's hash.
	ConfigHash string `json:"config_hash"`

	// Updated is the unix timestamp of the last rebuild or repair.
	Updated int64 `json:"updated"`
}

// Cache holds the scraped record lists per source, plus metadata.
//
// On disk the cache is a single JSON object with sources as top-level keys
// next to a "_meta" entry:
//
//	{
//	  "_meta": {"config_hash": "ab12...", "updated": 1719444000},
//	  "Nintendo Gameboy": [ {"name": "...", "url": "...", "size": "..."} ]
//	}
type Cache struct {
	Meta    Meta
	Sources map[string][]model.Record
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{Sources: make(map[string][]model.Record)}
}

// Records returns the cached list for a source, or nil.
func (c *Cache) Records(source string) []model.Record {
	return c.Sources[source]
}

// metaKey is reserved in the cache file and can never collide with a
// source name, since source names come from the "systems" object.
const metaKey = "_meta"

// MarshalJSON flattens the cache into the on-disk shape.
func (c *Cache) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.Sources)+1)
	out[metaKey] = c.Meta
	for name, records := range c.Sources {
		if records == nil {
			records = []model.Record{}
		}
		out[name] = records
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the on-disk shape, tolerating the legacy layout in
// which a source's value was a bucket-name → record-list object (written
// by an older categorize-at-storage-time design). Legacy values are
// flattened into a single list, sub-buckets in sorted name order.
func (c *Cache) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Sources = make(map[string][]model.Record, len(raw))
	for key, value := range raw {
		if key == metaKey {
			if err := json.Unmarshal(value, &c.Meta); err != nil {
				return fmt.Errorf("cache meta: %w", err)
			}
			continue
		}

		var records []model.Record
		if err := json.Unmarshal(value, &records); err == nil {
			c.Sources[key] = records
			continue
		}

		var legacy map[string][]model.Record
		if err := json.Unmarshal(value, &legacy); err != nil {
			return fmt.Errorf("cache entry %q has unrecognized shape", key)
		}
		c.Sources[key] = flattenLegacy(legacy)
	}
	return nil
}

func flattenLegacy(buckets map[string][]model.Record) []model.Record {
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	var flat []model.Record
	for _, name := range names {
		flat = append(flat, buckets[name]...)
	}
	return flat
}
