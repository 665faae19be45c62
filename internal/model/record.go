package model

// SizeUnknown is the sentinel size for listings that do not expose a size
// column for an entry.
const SizeUnknown = "?"

// Record represents one downloadable entry extracted from a listing page.
//
// Records are immutable once extracted: a re-scrape recreates the whole list
// for a source rather than patching individual records. Identity for
// de-duplication purposes is the (source id, URL) pair; two records with the
// same URL under the same source are considered the same entry.
//
// Example:
//
//	rec := model.Record{
//	    Name: "Tetris (World) (Rev 1).zip",
//	    URL:  "https://example.org/files/Tetris%20(World)%20(Rev%201).zip",
//	    Size: "23.4 KiB",
//	}
type Record struct {
	// Name is the display name taken from the listing page.
	Name string `json:"name"`

	// URL is the absolute download URL.
	URL string `json:"url"`

	// Size is the size text as shown on the listing page, or SizeUnknown
	// when the page has no size column.
	Size string `json:"size"`
}

// Key returns the stable identity of the record within a source.
//
// The key is used by the presentation layer to track per-item state (such as
// marquee scroll phase) across renders, and for de-duplication.
func (r Record) Key(sourceID string) string {
	return sourceID + "\x00" + r.URL
}
