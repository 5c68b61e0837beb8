// Package config provides configuration types and defaults for folio.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/folio/internal/log"
)

// Config holds all configuration options for folio.
type Config struct {
	// DataDir is where the session database and logs live.
	// Default: ~/.folio
	DataDir string `mapstructure:"data_dir"`

	// DropDir is a directory watched for incoming documents. Files that
	// appear there are opened as new windows. Empty disables watching.
	DropDir string `mapstructure:"drop_dir"`

	// AutoOpen opens a window automatically when a file lands in DropDir.
	AutoOpen bool `mapstructure:"auto_open"`

	// AutoOpenDebounce is the settle time in milliseconds before a
	// dropped file is picked up.
	AutoOpenDebounce int `mapstructure:"auto_open_debounce"`

	UI      UIConfig      `mapstructure:"ui"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"

	// DefaultWindowWidth/Height size newly opened windows in cells.
	DefaultWindowWidth  int `mapstructure:"default_window_width"`
	DefaultWindowHeight int `mapstructure:"default_window_height"`
}

// ThemeConfig holds theme customization options.
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight"`
	Subtle    string `mapstructure:"subtle"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

// TracingConfig controls the OpenTelemetry trace exporter.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	FilePath string `mapstructure:"file_path"` // derived from DataDir when empty
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DataDir:          DefaultDataDir(),
		AutoOpen:         true,
		AutoOpenDebounce: 300,
		UI: UIConfig{
			ShowStatusBar:       true,
			MarkdownStyle:       "dark",
			DefaultWindowWidth:  70,
			DefaultWindowHeight: 22,
		},
		Theme: ThemeConfig{
			Highlight: "#7D56F4",
			Subtle:    "#6C6C6C",
			Error:     "#FF5F5F",
			Success:   "#73F59F",
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}

// DefaultDataDir returns the default data directory, ~/.folio.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".folio"
	}
	return filepath.Join(home, ".folio")
}

// DatabasePath returns the session database location for c.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "session.db")
}

// LogPath returns the debug log location for c.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "folio.log")
}

// TraceFilePath returns the trace output location, honoring the override.
func (c Config) TraceFilePath() string {
	if c.Tracing.FilePath != "" {
		return c.Tracing.FilePath
	}
	return filepath.Join(c.DataDir, "traces.jsonl")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Folio Configuration

# Directory for the session database and logs (default: ~/.folio)
# data_dir: /path/to/data

# Directory watched for incoming documents; files dropped here open as
# new windows. Leave unset to disable.
# drop_dir: ~/folio-inbox

# Open a window automatically when a file lands in drop_dir
auto_open: true

# Settle time in milliseconds before a dropped file is picked up
auto_open_debounce: 300

# UI settings
ui:
  show_status_bar: true     # Show status bar at bottom
  # markdown_style: dark    # Markdown rendering style: "dark" (default) or "light"
  default_window_width: 70  # Size of newly opened windows in cells
  default_window_height: 22

# Theme colors
theme:
  highlight: "#7D56F4"
  subtle: "#6C6C6C"
  error: "#FF5F5F"
  success: "#73F59F"

# Tracing (OpenTelemetry spans written as JSON lines)
# tracing:
#   enabled: true
#   file_path: ~/.folio/traces.jsonl
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}
