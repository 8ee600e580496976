// Package config provides configuration types and defaults for spanmark.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/log"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// ErrInvalidCategory is returned by ValidateCategories.
var ErrInvalidCategory = errors.New("invalid category")

// CategoryConfig defines one label category.
type CategoryConfig struct {
	Name    string `mapstructure:"name"`
	Color   []int  `mapstructure:"color"`   // [r, g, b], 0-255 each
	Caption string `mapstructure:"caption"` // shown next to labeled spans
}

// Config holds all configuration options for spanmark.
type Config struct {
	Document    string           `mapstructure:"document"`
	AutoReload  bool             `mapstructure:"auto_reload"`
	Store       StoreConfig      `mapstructure:"store"`
	UI          UIConfig         `mapstructure:"ui"`
	Undefined   UndefinedConfig  `mapstructure:"undefined"`
	Categories  []CategoryConfig `mapstructure:"categories"`
	ActiveLabel string           `mapstructure:"active_label"`
	Tracing     TracingConfig    `mapstructure:"tracing"`
}

// StoreConfig selects where annotations are persisted.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" (default) or "memory"
	Path   string `mapstructure:"path"`   // database file for the sqlite driver
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	WrapWidth       int  `mapstructure:"wrap_width"` // 0 wraps at the terminal width
	MaxCaptionWidth int  `mapstructure:"max_caption_width"`
	ShowHelp        bool `mapstructure:"show_help"`
}

// UndefinedConfig is the style used for labels without a category.
type UndefinedConfig struct {
	Color   []int  `mapstructure:"color"`
	Caption string `mapstructure:"caption"`
}

// TracingConfig controls OpenTelemetry export of store and command spans.
// --debug turns tracing on whatever Enabled says.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Exporter is one of "none", "file", "stdout" or "otlp".
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output of the "file" exporter.
	// Default: ~/.spanmark/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector address of the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of traces kept (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns ~/.spanmark/traces.jsonl, or an empty
// string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".spanmark", "traces.jsonl")
}

// DefaultStorePath returns ~/.spanmark/annotations.db, or an empty string
// if the home directory is unavailable.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".spanmark", "annotations.db")
}

// DefaultCategories returns the categories written into a new config.
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{Name: "PERSON", Color: []int{255, 135, 135}, Caption: "Person"},
		{Name: "PLACE", Color: []int{115, 245, 159}, Caption: "Place"},
		{Name: "ORG", Color: []int{84, 160, 255}, Caption: "Organization"},
		{Name: "DATE", Color: []int{254, 202, 87}, Caption: "Date"},
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		AutoReload: true,
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   DefaultStorePath(),
		},
		UI: UIConfig{
			MaxCaptionWidth: 16,
			ShowHelp:        true,
		},
		Undefined: UndefinedConfig{
			Color:   []int{150, 150, 150},
			Caption: "Undefined",
		},
		Categories:  DefaultCategories(),
		ActiveLabel: "PERSON",
		Tracing: TracingConfig{
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// GetCategories returns the configured categories, or the defaults if none
// are configured.
func (c Config) GetCategories() []CategoryConfig {
	if len(c.Categories) > 0 {
		return c.Categories
	}
	return DefaultCategories()
}

// Resolver builds the label style resolver for this configuration.
func (c Config) Resolver() *labels.Resolver {
	cats := c.GetCategories()
	out := make([]labels.Category, 0, len(cats))
	for _, cat := range cats {
		out = append(out, labels.Category{
			Name:    cat.Name,
			Color:   labels.RGBFrom(cat.Color),
			Caption: cat.Caption,
		})
	}
	caption := c.Undefined.Caption
	if caption == "" {
		caption = "Undefined"
	}
	return labels.NewResolver(out, labels.RGBFrom(c.Undefined.Color), caption)
}

// InitialLabel returns the active label to start with: the configured one
// if it names a category, otherwise the first category.
func (c Config) InitialLabel() string {
	cats := c.GetCategories()
	for _, cat := range cats {
		if cat.Name == c.ActiveLabel {
			return cat.Name
		}
	}
	if len(cats) > 0 {
		return cats[0].Name
	}
	return c.ActiveLabel
}

func validateColor(color []int) error {
	if len(color) != 3 {
		return fmt.Errorf("color must have 3 channels, got %d", len(color))
	}
	for _, ch := range color {
		if ch < 0 || ch > 255 {
			return fmt.Errorf("color channel %d out of range 0-255", ch)
		}
	}
	return nil
}

// ValidateCategories checks category configuration for errors.
// Returns nil if categories are valid or empty (will use defaults).
func ValidateCategories(cats []CategoryConfig) error {
	seen := make(map[string]bool, len(cats))
	for i, cat := range cats {
		if cat.Name == "" {
			return fmt.Errorf("%w: category %d: name is required", ErrInvalidCategory, i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("%w: category %d (%s): duplicate name", ErrInvalidCategory, i, cat.Name)
		}
		seen[cat.Name] = true
		if err := validateColor(cat.Color); err != nil {
			return fmt.Errorf("%w: category %d (%s): %w", ErrInvalidCategory, i, cat.Name, err)
		}
	}
	return nil
}

// ValidateStore checks store configuration for errors.
func ValidateStore(store StoreConfig) error {
	switch store.Driver {
	case "", DriverSQLite:
		if store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverSQLite, DriverMemory, store.Driver)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Empty values fall back to defaults.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}
	switch tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
	}
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if err := ValidateCategories(cfg.Categories); err != nil {
		return err
	}
	if len(cfg.Undefined.Color) > 0 {
		if err := validateColor(cfg.Undefined.Color); err != nil {
			return fmt.Errorf("undefined: %w", err)
		}
	}
	if cfg.UI.WrapWidth < 0 {
		return fmt.Errorf("ui.wrap_width must not be negative, got %d", cfg.UI.WrapWidth)
	}
	if cfg.UI.MaxCaptionWidth < 0 {
		return fmt.Errorf("ui.max_caption_width must not be negative, got %d", cfg.UI.MaxCaptionWidth)
	}
	if err := ValidateStore(cfg.Store); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# spanmark configuration

# Document opened when no file argument is given
# document: /path/to/text.txt

# Reload the document when the file changes on disk
auto_reload: true

# Where annotations are stored
store:
  driver: sqlite   # "sqlite" (default) or "memory"
  # path: ~/.spanmark/annotations.db

# OpenTelemetry traces of store and command operations (--debug enables them)
tracing:
  enabled: false
  exporter: file       # "none", "file", "stdout", or "otlp"
  # file_path: ~/.spanmark/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

# UI settings
ui:
  wrap_width: 0          # 0 wraps at the terminal width
  max_caption_width: 16  # captions longer than this are truncated
  show_help: true        # show the key help footer

# Style for labels that have no category below
undefined:
  color: [150, 150, 150]
  caption: Undefined

# Label categories. Tab / shift+tab (or 1-9) cycle the active label.
#   name: label stored on each span (required, case-sensitive)
#   color: [r, g, b] tint, 0-255 per channel
#   caption: text drawn after labeled spans
categories:
  - name: PERSON
    color: [255, 135, 135]
    caption: Person
  - name: PLACE
    color: [115, 245, 159]
    caption: Place
  - name: ORG
    color: [84, 160, 255]
    caption: Organization
  - name: DATE
    color: [254, 202, 87]
    caption: Date

# Label active at startup
active_label: PERSON
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
