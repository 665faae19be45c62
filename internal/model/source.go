package model

import (
	"encoding/json"
	"sort"
)

// Source describes one configured listing page group: where to fetch it,
// how to pick entries out of the page, and how to bucket the results.
//
// Sources are defined in the configuration file and mutated only by
// download-folder edits made through the browse session; the program never
// deletes them.
type Source struct {
	// ID is a short identifier for the source (e.g. "gb").
	ID string `json:"id"`

	// URLs lists the pages to scrape. Results from all URLs are
	// concatenated in order.
	URLs []string `json:"urls,omitempty"`

	// BaseURL is the single-page form of URLs, kept for configs written
	// before multi-URL support.
	BaseURL string `json:"base_url,omitempty"`

	// Entries is the CSS selector matching one listing row per entry.
	Entries string `json:"entries"`

	// Fields selects the name, url and size elements within an entry.
	Fields FieldSelectors `json:"fields"`

	// DownloadFolders overrides the global download folders for this
	// source. Accepts a single string or a list in JSON.
	DownloadFolders FolderList `json:"download_folders,omitempty"`

	// LegacyDownloadFolder is the pre-plural spelling. It is migrated into
	// DownloadFolders at load time and never written back.
	LegacyDownloadFolder FolderList `json:"download_folder,omitempty"`

	// Ignore holds record-level exclusion rules applied during extraction.
	Ignore *IgnoreRules `json:"ignore,omitempty"`

	// Regions buckets records by region name patterns.
	Regions RuleSet `json:"regions,omitempty"`

	// Types buckets records by content-type patterns.
	Types RuleSet `json:"types,omitempty"`
}

// ListingURLs returns the pages to scrape for this source, folding the
// legacy single BaseURL form into the list form.
func (s *Source) ListingURLs() []string {
	if len(s.URLs) > 0 {
		return s.URLs
	}
	if s.BaseURL != "" {
		return []string{s.BaseURL}
	}
	return nil
}

// FieldSelectors maps record fields to CSS selectors evaluated within an
// entry node. Name and URL default to "a" when empty; an empty Size means
// the listing has no size column.
type FieldSelectors struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size string `json:"size,omitempty"`
}

// IgnoreRules excludes records during extraction, before any categorization.
type IgnoreRules struct {
	// Size excludes records whose trimmed size text equals this string
	// exactly (directory listings commonly use "-" for folders).
	Size string `json:"size,omitempty"`

	// NameContains excludes records whose name contains this substring,
	// case-insensitively.
	NameContains string `json:"name_contains,omitempty"`
}

// RuleSet maps a bucket name to the substring patterns that place a record
// in that bucket. Patterns are matched case-insensitively against record
// names; the first matching pattern within a bucket suffices, and a record
// may match several buckets.
type RuleSet map[string][]string

// Buckets returns the bucket names in deterministic (sorted) order.
//
// JSON objects carry no order, so the sorted order is the canonical
// iteration order for categorization and for bucket cycling in the UI.
func (rs RuleSet) Buckets() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FolderList is a list of folder paths that unmarshals from either a single
// JSON string or an array of strings, since both shapes appear in configs.
type FolderList []string

// UnmarshalJSON accepts "path" and ["path", ...].
func (f *FolderList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = FolderList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*f = FolderList(many)
	return nil
}
