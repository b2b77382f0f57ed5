// Package config loads persistent treeline configuration.
//
// The config file lives at ~/.config/treeline/config.toml (respecting
// XDG_CONFIG_HOME) and supplies defaults for flags the user does not
// pass. Flags always win over config values.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/treelinehq/treeline/pkg/pipeline"
)

// Config holds treeline configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	View   ViewConfig   `toml:"view"`
}

// LayoutConfig overrides layout spacing defaults.
// Zero values fall through to the engine defaults.
type LayoutConfig struct {
	LevelGap     float64 `toml:"level_gap"`
	SiblingGap   float64 `toml:"sibling_gap"`
	Padding      float64 `toml:"padding"`
	MaxTextWidth float64 `toml:"max_text_width"`
	FontSize     float64 `toml:"font_size"`
}

// RenderConfig overrides render defaults.
type RenderConfig struct {
	Style  string `toml:"style"`  // "light" or "dark"
	Format string `toml:"format"` // default output format
}

// ViewConfig controls the interactive viewer.
type ViewConfig struct {
	Persist  bool   `toml:"persist"`   // save expand state between sessions
	StateDir string `toml:"state_dir"` // where view state lives; default ~/.config/treeline
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Render: RenderConfig{Style: "light", Format: "svg"},
		View:   ViewConfig{Persist: true},
	}
}

// Dir returns the treeline config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "treeline")
}

func path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, falling back to defaults if it doesn't
// exist or doesn't parse.
func Load() *Config {
	return LoadFrom(path())
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(p string) *Config {
	cfg := Default()

	data, err := os.ReadFile(p)
	if err != nil {
		return cfg
	}

	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	p := path()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Apply copies configured values onto pipeline options that are still
// at their zero value, so explicit flags keep precedence.
func (c *Config) Apply(opts *pipeline.Options) {
	if opts.LevelGap == 0 {
		opts.LevelGap = c.Layout.LevelGap
	}
	if opts.SiblingGap == 0 {
		opts.SiblingGap = c.Layout.SiblingGap
	}
	if opts.Padding == 0 {
		opts.Padding = c.Layout.Padding
	}
	if opts.MaxTextWidth == 0 {
		opts.MaxTextWidth = c.Layout.MaxTextWidth
	}
	if opts.FontSize == 0 {
		opts.FontSize = c.Layout.FontSize
	}
	if opts.Style == "" {
		opts.Style = c.Render.Style
	}
	if len(opts.Formats) == 0 && c.Render.Format != "" {
		opts.Formats = []string{c.Render.Format}
	}
}

// StateDir returns the directory for persisted view state.
func (c *Config) StateDir() string {
	if c.View.StateDir != "" {
		return c.View.StateDir
	}
	return Dir()
}
