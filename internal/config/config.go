package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/handiism/rom-browser/internal/model"
)

// Version is the configuration format version this build understands.
// A file carrying any other version is rejected without migration.
const Version = 1

// ErrSampleWritten is returned by Load when no configuration file existed
// and a documented sample was written in its place. The caller should tell
// the user to edit the sample and exit.
var ErrSampleWritten = errors.New("sample configuration written")

// ErrVersionMismatch is returned by Load when the file's _meta.version does
// not match Version.
var ErrVersionMismatch = errors.New("configuration version mismatch")

// Meta is the configuration file metadata block.
type Meta struct {
	Version int `json:"version"`
}

// Config is the full configuration: the sources to scrape plus the global
// download folder defaults.
//
// Config is mutated in place by the browse session (folder-override edits)
// and must be saved immediately after each mutation; writes are whole-file
// overwrites, so a crash can lose at most the latest edit.
type Config struct {
	Meta    Meta                     `json:"_meta"`
	Systems map[string]*model.Source `json:"systems"`

	// DownloadFolders is the global default used when a source has no
	// folder override of its own.
	DownloadFolders model.FolderList `json:"download_folders,omitempty"`

	// LegacyDownloadFolder is migrated into DownloadFolders at load time.
	LegacyDownloadFolder model.FolderList `json:"download_folder,omitempty"`

	path string
}

// Load reads the configuration from path.
//
// When the file is missing, a documented sample is written there and
// ErrSampleWritten is returned. When the file's version does not match
// Version, an error wrapping ErrVersionMismatch is returned; the program
// must not guess an old format's intent.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if werr := writeSample(path); werr != nil {
				return nil, fmt.Errorf("writing sample config: %w", werr)
			}
			return nil, ErrSampleWritten
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.path = path

	if cfg.Meta.Version != Version {
		return nil, fmt.Errorf("%w: file has version %d, this build wants %d",
			ErrVersionMismatch, cfg.Meta.Version, Version)
	}

	cfg.migrate()
	return cfg, nil
}

// migrate folds legacy shapes into the steady-state model. Only additive,
// unambiguous renames are handled here; anything else is a version bump.
func (c *Config) migrate() {
	if len(c.DownloadFolders) == 0 && len(c.LegacyDownloadFolder) > 0 {
		c.DownloadFolders = c.LegacyDownloadFolder
	}
	c.LegacyDownloadFolder = nil

	for _, src := range c.Systems {
		if src == nil {
			continue
		}
		if len(src.DownloadFolders) == 0 && len(src.LegacyDownloadFolder) > 0 {
			src.DownloadFolders = src.LegacyDownloadFolder
		}
		src.LegacyDownloadFolder = nil
	}
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config has no backing file")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}

// Path returns the backing file path.
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory containing the configuration file. Relative
// download folder paths resolve against this directory.
func (c *Config) Dir() string {
	if c.path == "" {
		return "."
	}
	abs, err := filepath.Abs(c.path)
	if err != nil {
		return filepath.Dir(c.path)
	}
	return filepath.Dir(abs)
}

// SourceNames returns the configured source names in sorted order, giving
// the browse session a stable cycling order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Systems))
	for name := range c.Systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the named source, or nil.
func (c *Config) Source(name string) *model.Source {
	return c.Systems[name]
}

// FoldersFor returns the normalized download folders for a source,
// preferring the source's own override and falling back to the global
// default. Returns nil when neither is configured.
func (c *Config) FoldersFor(name string) []string {
	if src := c.Systems[name]; src != nil && len(src.DownloadFolders) > 0 {
		return NormalizeFolders(src.DownloadFolders, c.Dir())
	}
	if len(c.DownloadFolders) > 0 {
		return NormalizeFolders(c.DownloadFolders, c.Dir())
	}
	return nil
}

// SetGlobalFolders replaces the global download folder list. An empty list
// clears the setting.
func (c *Config) SetGlobalFolders(folders []string) {
	if len(folders) == 0 {
		c.DownloadFolders = nil
		return
	}
	c.DownloadFolders = model.FolderList(folders)
}

// SetSourceFolders replaces the download folder override for a source.
// An empty list removes the override. Unknown source names are ignored.
func (c *Config) SetSourceFolders(name string, folders []string) {
	src := c.Systems[name]
	if src == nil {
		return
	}
	if len(folders) == 0 {
		src.DownloadFolders = nil
		return
	}
	src.DownloadFolders = model.FolderList(folders)
}

func writeSample(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(Sample(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Sample returns a documented starter configuration pointing at a public
// no-intro directory index.
func Sample() *Config {
	return &Config{
		Meta:            Meta{Version: Version},
		DownloadFolders: model.FolderList{"~/roms"},
		Systems: map[string]*model.Source{
			"Nintendo Gameboy": {
				ID:      "gb",
				BaseURL: "https://myrient.erista.me/files/No-Intro/Nintendo%20-%20Game%20Boy/",
				Entries: "tbody tr",
				Fields: model.FieldSelectors{
					Name: "td.link a",
					URL:  "td.link a",
					Size: "td.size",
				},
				DownloadFolders: model.FolderList{"~/roms/gameboy"},
				Ignore: &model.IgnoreRules{
					Size:         "-",
					NameContains: "Parent",
				},
				Regions: model.RuleSet{
					"USA":    {"(USA)", "(World)"},
					"Europe": {"(Europe)"},
					"Japan":  {"(Japan)"},
				},
			},
		},
	}
}
