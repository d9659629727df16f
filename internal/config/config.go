// Package config loads richpad settings.
//
// Settings come from built-in defaults, then an optional TOML or YAML file
// (chosen by extension), then RICHPAD_* environment variables. Watch reloads
// the file when it changes on disk.
package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/dshills/richpad/internal/autosave"
	"github.com/dshills/richpad/internal/history"
	"github.com/dshills/richpad/internal/logging"
	"github.com/dshills/richpad/internal/style"
)

// Config is the complete settings tree.
type Config struct {
	Style    StyleConfig    `toml:"style" yaml:"style"`
	Autosave AutosaveConfig `toml:"autosave" yaml:"autosave"`
	History  HistoryConfig  `toml:"history" yaml:"history"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// StyleConfig is the default character style of new documents.
type StyleConfig struct {
	Family string  `toml:"family" yaml:"family"`
	Size   float64 `toml:"size" yaml:"size"`
	Color  string  `toml:"color" yaml:"color"`
}

// AutosaveConfig controls background saving.
type AutosaveConfig struct {
	Enabled bool     `toml:"enabled" yaml:"enabled"`
	Delay   Duration `toml:"delay" yaml:"delay"`
	// Dir holds autosaves of untitled documents. Empty selects the user
	// cache directory; a leading ~ is the home directory.
	Dir string `toml:"dir" yaml:"dir"`
}

// HistoryConfig controls undo.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Duration is a time.Duration written as a string such as "2s".
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String formats the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns the built-in settings.
func Default() *Config {
	def := style.DefaultChar()
	return &Config{
		Style: StyleConfig{
			Family: def.Family,
			Size:   def.Size,
			Color:  "#000000",
		},
		Autosave: AutosaveConfig{
			Delay: Duration(autosave.DefaultDelay),
		},
		History: HistoryConfig{
			MaxEntries: history.DefaultMaxEntries,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	ve := &ValidationError{}
	if c.Style.Family == "" {
		ve.add("style.family", "must not be empty")
	}
	if !style.Positive(c.Style.Size) {
		ve.add("style.size", fmt.Sprintf("must be positive, got %v", c.Style.Size))
	}
	if _, err := style.ParseColor(c.Style.Color); err != nil {
		ve.add("style.color", err.Error())
	}
	if d := time.Duration(c.Autosave.Delay); d < 0 {
		ve.add("autosave.delay", fmt.Sprintf("must not be negative, got %v", d))
	}
	if c.History.MaxEntries < 0 {
		ve.add("history.max_entries", fmt.Sprintf("must not be negative, got %d", c.History.MaxEntries))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		ve.add("log.level", err.Error())
	}
	if len(ve.Problems) > 0 {
		return ve
	}
	return nil
}

// CharStyle returns the configured default character style.
func (c *Config) CharStyle() (style.Char, error) {
	col, err := style.ParseColor(c.Style.Color)
	if err != nil {
		return style.Char{}, err
	}
	ch := style.DefaultChar()
	ch.Family = c.Style.Family
	ch.Size = c.Style.Size
	ch.Color = col
	return ch, ch.Validate()
}

// LogLevel returns the configured log level, or info if it is invalid.
func (c *Config) LogLevel() logging.Level {
	l, _ := logging.ParseLevel(c.Log.Level)
	return l
}

// AutosaveDelay returns the autosave delay limited to the supported range.
func (c *Config) AutosaveDelay() time.Duration {
	return autosave.ClampDelay(time.Duration(c.Autosave.Delay))
}

// AutosaveDir returns the autosave directory with a leading ~ expanded.
func (c *Config) AutosaveDir() (string, error) {
	return homedir.Expand(c.Autosave.Dir)
}
