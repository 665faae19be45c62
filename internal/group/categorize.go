// Package group partitions record lists into named buckets using the
// substring-match rule-sets configured per source.
package group

import (
	"strings"

	"github.com/handiism/rom-browser/internal/model"
)

// Fallback bucket names for records no rule matched, and the single bucket
// used when a source has no rule-set at all.
const (
	FallbackRegion = "Unknown"
	FallbackType   = "None"
)

// Kind selects which of a source's rule-sets drives the grouping.
type Kind int

const (
	KindRegion Kind = iota
	KindType
)

// Fallback returns the fallback bucket name for the kind.
func (k Kind) Fallback() string {
	if k == KindType {
		return FallbackType
	}
	return FallbackRegion
}

// String returns the kind's display name.
func (k Kind) String() string {
	if k == KindType {
		return "type"
	}
	return "region"
}

// Result is a categorized record list. Order lists the bucket names in
// iteration order (rule buckets sorted, fallback last); Buckets maps each
// name to its records in original list order.
type Result struct {
	Order   []string
	Buckets map[string][]model.Record
}

// Categorize partitions records into buckets.
//
// With an empty rule-set the result is a single fallback bucket holding all
// records in order. Otherwise each record is tested against every bucket:
// the first matching pattern within a bucket places the record there (at
// most once per bucket), and evaluation continues with the remaining
// buckets, so one record may land in several. Records matching no bucket
// go to the fallback bucket only.
//
// The scan is O(records × buckets × patterns); catalogs are thousands of
// records, so no index is needed.
func Categorize(records []model.Record, rules model.RuleSet, fallback string) Result {
	if len(rules) == 0 {
		return Result{
			Order:   []string{fallback},
			Buckets: map[string][]model.Record{fallback: records},
		}
	}

	order := append(rules.Buckets(), fallback)
	buckets := make(map[string][]model.Record, len(order))
	for _, name := range order {
		buckets[name] = nil
	}
	seen := make(map[string]map[model.Record]bool, len(order))

	for _, rec := range records {
		lower := strings.ToLower(rec.Name)
		matched := false
		for _, bucket := range order[:len(order)-1] {
			if !matchesAny(lower, rules[bucket]) {
				continue
			}
			if seen[bucket] == nil {
				seen[bucket] = make(map[model.Record]bool)
			}
			if seen[bucket][rec] {
				matched = true
				continue
			}
			seen[bucket][rec] = true
			buckets[bucket] = append(buckets[bucket], rec)
			matched = true
		}
		if !matched {
			buckets[fallback] = append(buckets[fallback], rec)
		}
	}

	return Result{Order: order, Buckets: buckets}
}

// matchesAny reports whether any pattern occurs in the lowercased name.
func matchesAny(lowerName string, patterns []string) bool {
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if strings.Contains(lowerName, strings.ToLower(pat)) {
			return true
		}
	}
	return false
}
