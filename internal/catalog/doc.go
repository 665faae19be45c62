// Package catalog persists scraped record lists and decides when they must
// be re-scraped.
//
// # Cache file
//
// The cache is one JSON file keyed by source name, with a "_meta" entry
// recording the configuration hash and last-update time. A legacy layout
// that stored bucket-name → record-list objects per source is flattened
// transparently on load.
//
// # Staleness protocol
//
// The cache is valid only while its recorded configuration hash equals the
// live configuration's hash (config.Config.Hash). Any configuration change
// invalidates the entire cache:
//
//	cache, _ := store.Load()
//	if catalog.Stale(cache, cfg) {
//	    // full rebuild
//	}
//
// # Refresh
//
// Refresher.Refresh performs either a wholesale rebuild (stale or forced)
// or an incremental repair that re-extracts only sources with an empty or
// missing cached list. Extraction failures are per-source and reported as
// events; a failed cache write is a warning, not a fatal error.
package catalog
