package model

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	// Unicode letter/number classes, not \w: Go's \w is ASCII-only and
	// would strip Japanese titles down to their extension.
	invalidFileChars = regexp.MustCompile(`[^\p{L}\p{N}_.\-\s()]+`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// SanitizeFilename derives a filesystem-safe, human-readable filename for a
// record about to be downloaded.
//
// The URL path basename (percent-decoded, query stripped) is preferred; the
// record name is the fallback. The candidate is then cleaned up:
//   - "+" becomes a space
//   - characters outside Unicode letters/digits/"_"/"."/"-"/whitespace/
//     parentheses become a space
//   - whitespace runs collapse to a single space
//
// If the cleaned candidate has no extension, one is borrowed from the URL
// basename or the record name when either contains a ".". No extension is
// invented otherwise.
//
// Example:
//
//	model.SanitizeFilename("https://x/a%20b.zip?x=1", "A B") // "a b.zip"
func SanitizeFilename(rawURL, name string) string {
	base := urlBasename(rawURL)

	candidate := base
	if candidate == "" {
		candidate = name
	}
	if candidate == "" {
		candidate = "download"
	}

	candidate = strings.ReplaceAll(candidate, "+", " ")
	candidate = invalidFileChars.ReplaceAllString(candidate, " ")
	candidate = whitespaceRun.ReplaceAllString(candidate, " ")
	candidate = strings.TrimSpace(candidate)

	if !strings.Contains(candidate, ".") {
		if ext := borrowExtension(base, name); ext != "" {
			candidate = candidate + "." + ext
		}
	}

	return candidate
}

// urlBasename returns the percent-decoded basename of the URL path, with
// any query or fragment stripped. Returns "" when nothing usable remains.
func urlBasename(rawURL string) string {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if decoded, err := url.PathUnescape(trimmed); err == nil {
		trimmed = decoded
	}
	if strings.HasSuffix(trimmed, "/") {
		return ""
	}

	base := path.Base(trimmed)
	switch base {
	case ".", "/", "":
		return ""
	}
	// A bare scheme or host is not a usable filename.
	if strings.Contains(base, "://") {
		return ""
	}
	return base
}

// borrowExtension finds an extension in the URL basename or the record name.
func borrowExtension(base, name string) string {
	if i := strings.LastIndex(base, "."); i >= 0 && i < len(base)-1 {
		return base[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return ""
}
