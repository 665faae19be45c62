// Package model defines the core data structures shared across
// the rom-browser application.
//
// # Record
//
// Record is one downloadable entry scraped from a listing page:
//
//	rec := model.Record{Name: "Tetris (World).zip", URL: url, Size: "23.4 KiB"}
//
// # Source
//
// Source describes one configured listing page group, including its CSS
// selectors, ignore rules, region/type rule-sets, and download folder
// overrides. Sources live in the configuration file; see the config package.
//
// # Filename Sanitization
//
// SanitizeFilename turns a record's URL (or name) into a safe local filename:
//
//	model.SanitizeFilename("https://x/a%20b.zip?x=1", "A B") // "a b.zip"
package model
