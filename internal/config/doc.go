// Package config provides configuration management for rom-browser.
//
// The configuration is a versioned JSON file:
//
//	{
//	  "_meta": {"version": 1},
//	  "download_folders": ["~/roms"],
//	  "systems": {
//	    "Nintendo Gameboy": {
//	      "id": "gb",
//	      "base_url": "https://...",
//	      "entries": "tbody tr",
//	      "fields": {"name": "td.link a", "url": "td.link a", "size": "td.size"},
//	      "ignore": {"size": "-", "name_contains": "Parent"},
//	      "regions": {"USA": ["(USA)"]}
//	    }
//	  }
//	}
//
// # Loading
//
//	cfg, err := config.Load("config.json")
//	switch {
//	case errors.Is(err, config.ErrSampleWritten):
//	    // a starter file was generated; ask the user to edit it and exit
//	case errors.Is(err, config.ErrVersionMismatch):
//	    // the file was written by a different program version; exit
//	}
//
// Both conditions are fatal by design: the program never guesses an old
// format's intent. The only silent migrations are unambiguous renames
// (the singular "download_folder" key becomes "download_folders").
//
// # Folder normalization
//
// Download folder values accept a single string or a list. Entries may use
// "~", environment variables and relative paths; NormalizeFolders resolves
// them against the configuration file's directory.
//
// # Hashing
//
// Config.Hash is the deterministic content hash the cache store uses for
// staleness detection.
package config
