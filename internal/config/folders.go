package config

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizeFolders expands and resolves a download folder list.
//
// Each entry is trimmed, "~" and environment variables are expanded, and
// relative paths are resolved against baseDir (the configuration file's
// directory). Empty entries are dropped; the result paths are cleaned.
func NormalizeFolders(folders []string, baseDir string) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		p := strings.TrimSpace(f)
		if p == "" {
			continue
		}
		p = expandHome(os.ExpandEnv(p))
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		out = append(out, filepath.Clean(p))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseFolderInput splits a comma-separated folder prompt entry into a
// list, trimming whitespace and dropping empty segments. Returns nil for
// blank input, which callers treat as "clear the override".
func ParseFolderInput(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandHome rewrites a leading "~" to the user's home directory.
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[1:])
	}
	return p
}
