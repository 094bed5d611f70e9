// Package config loads inkdex configuration from defaults, an optional
// .inkdex.yaml project file, and INKDEX_* environment overrides, in that
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/draftglass/inkdex/internal/errors"
)

// ConfigFileName is the project configuration file, looked up in the
// manuscript directory.
const ConfigFileName = ".inkdex.yaml"

// DataDirName is the per-manuscript data directory holding the index and
// version snapshots.
const DataDirName = ".inkdex"

// Config represents the complete inkdex configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Characters CharactersConfig `yaml:"characters" json:"characters"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// PathsConfig configures where inkdex keeps its derived state.
type PathsConfig struct {
	// DataDir is the data directory, relative to the manuscript root
	// unless absolute.
	DataDir string `yaml:"data_dir" json:"data_dir"`
}

// SearchConfig configures query composition and result formatting.
type SearchConfig struct {
	// DefaultLimit caps Search results when the caller passes no limit.
	DefaultLimit int `yaml:"default_limit" json:"default_limit"`

	// Fuzziness is the edit distance for plain query terms.
	Fuzziness int `yaml:"fuzziness" json:"fuzziness"`

	// MentionLimit caps character-mention results.
	MentionLimit int `yaml:"mention_limit" json:"mention_limit"`

	// SnippetRadius is the number of bytes kept on each side of a
	// literal match when building a snippet.
	SnippetRadius int `yaml:"snippet_radius" json:"snippet_radius"`

	// SnippetFallback is the snippet length (in runes) when the query
	// has no literal occurrence in the scene text.
	SnippetFallback int `yaml:"snippet_fallback" json:"snippet_fallback"`
}

// CharactersConfig configures name extraction and alias resolution.
type CharactersConfig struct {
	// MinNameLength is the minimum word length the extractor accepts.
	MinNameLength int `yaml:"min_name_length" json:"min_name_length"`

	// Aliases extends the built-in nickname table. Keys and values are
	// lowercased on load.
	Aliases map[string][]string `yaml:"aliases" json:"aliases"`
}

// LoggingConfig configures the debug log file.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DataDir: DataDirName,
		},
		Search: SearchConfig{
			DefaultLimit:    50,
			Fuzziness:       2,
			MentionLimit:    200,
			SnippetRadius:   60,
			SnippetFallback: 160,
		},
		Characters: CharactersConfig{
			MinNameLength: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration for a manuscript directory.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err)
	}

	return cfg, nil
}

// IndexDir returns the on-disk index directory for a manuscript root.
func (c *Config) IndexDir(root string) string {
	return filepath.Join(c.dataDir(root), "index")
}

// VersionsDir returns the version snapshot directory for a manuscript root.
func (c *Config) VersionsDir(root string) string {
	return filepath.Join(c.dataDir(root), "versions")
}

func (c *Config) dataDir(root string) string {
	if filepath.IsAbs(c.Paths.DataDir) {
		return c.Paths.DataDir
	}
	return filepath.Join(root, c.Paths.DataDir)
}

// loadFromFile merges the project config file if present.
func (c *Config) loadFromFile(dir string) error {
	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigNotFound, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("cannot parse %s: %v", path, err), err)
	}
	return nil
}

// applyEnvOverrides applies INKDEX_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INKDEX_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("INKDEX_SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.DefaultLimit = n
		}
	}
	if v := os.Getenv("INKDEX_FUZZINESS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 2 {
			c.Search.Fuzziness = n
		}
	}
	if v := os.Getenv("INKDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the final configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return fmt.Errorf("paths.data_dir must not be empty")
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search.default_limit must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.Fuzziness < 0 || c.Search.Fuzziness > 2 {
		// Bleve rejects fuzziness above 2.
		return fmt.Errorf("search.fuzziness must be 0-2, got %d", c.Search.Fuzziness)
	}
	if c.Search.MentionLimit <= 0 {
		return fmt.Errorf("search.mention_limit must be positive, got %d", c.Search.MentionLimit)
	}
	if c.Search.SnippetRadius < 0 {
		return fmt.Errorf("search.snippet_radius must not be negative, got %d", c.Search.SnippetRadius)
	}
	if c.Search.SnippetFallback <= 0 {
		return fmt.Errorf("search.snippet_fallback must be positive, got %d", c.Search.SnippetFallback)
	}
	if c.Characters.MinNameLength < 2 {
		return fmt.Errorf("characters.min_name_length must be at least 2, got %d", c.Characters.MinNameLength)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
