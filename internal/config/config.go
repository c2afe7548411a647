// Package config provides configuration loading and defaults for achievecard.
//
// Configuration is loaded from a TOML file in the user's data directory. It
// holds the badge style (sizes, colors, glow), text layout limits, font
// priority lists, output naming and logging, plus named presets that
// override parts of the base style.
package config

//go:generate go run ../../cmd/genconfig

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"tools.zach/dev/achievecard/internal/atomicfile"
	"tools.zach/dev/achievecard/internal/badge"
	"tools.zach/dev/achievecard/internal/fonts"
	"tools.zach/dev/achievecard/internal/logger"
	"tools.zach/dev/achievecard/internal/paths"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// ErrUnknownPreset is returned by [Config.BadgeStyle] for a preset name that is
// not defined under [presets].
var ErrUnknownPreset = errors.New("unknown preset")

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Style holds canvas, color and glow settings.
	Style StyleConfig `toml:"style"`
	// Text holds line limits and spacing.
	Text TextConfig `toml:"text"`
	// Fonts holds font priority lists and the download cache.
	Fonts FontsConfig `toml:"fonts"`
	// Output holds where rendered badges are written.
	Output OutputConfig `toml:"output"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Presets maps preset names to style overrides. Only non-zero fields of
	// a preset replace the base style.
	Presets map[string]StyleConfig `toml:"presets,omitempty"`
}

// StyleConfig holds the visual style of a badge.
type StyleConfig struct {
	Width          int     `toml:"width,omitempty"`
	Height         int     `toml:"height,omitempty"`
	IconSize       int     `toml:"icon_size,omitempty"`
	Padding        int     `toml:"padding,omitempty"`
	CornerRadius   int     `toml:"corner_radius,omitempty"`
	TitleFontSize  int     `toml:"title_font_size,omitempty"`
	DescFontSize   int     `toml:"desc_font_size,omitempty"`
	Background     string  `toml:"background_color,omitempty"`
	Container      string  `toml:"container_color,omitempty"`
	Text           string  `toml:"text_color,omitempty"`
	Desc           string  `toml:"desc_color,omitempty"`
	Glow           string  `toml:"glow_color,omitempty"`
	GlowAlpha      int     `toml:"glow_alpha,omitempty"`
	GlowSizeExtra  int     `toml:"glow_size_extra,omitempty"`
	GlowRadius     int     `toml:"glow_radius,omitempty"`
	GlowBlurWide   float64 `toml:"glow_blur_wide,omitempty"`
	GlowBlurNarrow float64 `toml:"glow_blur_narrow,omitempty"`
}

// TextConfig holds title and description layout limits.
type TextConfig struct {
	// TitleMaxLines and DescMaxLines cap each block; extra lines are dropped.
	TitleMaxLines int `toml:"title_max_lines"`
	DescMaxLines  int `toml:"desc_max_lines"`
	TitleLineGap  int `toml:"title_line_gap"`
	DescLineGap   int `toml:"desc_line_gap"`
	TitleDescGap  int `toml:"title_desc_gap"`
	TitleOffset   int `toml:"title_offset"`
}

// FontsConfig holds font identifiers, most preferred first.
type FontsConfig struct {
	Title       []string `toml:"title"`
	Description []string `toml:"description"`
	// System lists font file names searched in the platform font dirs once
	// every identifier has failed.
	System []string `toml:"system"`
	// CacheDir stores downloaded fonts. Empty means <data dir>/fonts.
	CacheDir string `toml:"cache_dir,omitempty"`
	// GoogleCSSURL overrides the Google Fonts CSS endpoint.
	GoogleCSSURL string `toml:"google_css_url,omitempty"`
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	// Dir is where badges are written; relative paths resolve against the
	// working directory.
	Dir string `toml:"dir"`
	// Prefix starts every output file name.
	Prefix string `toml:"prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log file level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with the stock badge style.
func DefaultConfig() *Config {
	s := badge.DefaultStyle()
	return &Config{
		Version: CurrentVersion,
		Style:   styleConfigFrom(s),
		Text: TextConfig{
			TitleMaxLines: s.TitleMaxLines,
			DescMaxLines:  s.DescMaxLines,
			TitleLineGap:  s.TitleLineGap,
			DescLineGap:   s.DescLineGap,
			TitleDescGap:  s.TitleDescGap,
			TitleOffset:   s.TitleOffset,
		},
		Fonts: FontsConfig{
			Title:       []string{"google:Inter:700", "system:DejaVuSans-Bold.ttf", fonts.TerminalFont},
			Description: []string{"google:Inter:400", "system:DejaVuSans.ttf", "builtin:goregular"},
			System:      slices.Clone(fonts.DefaultSystemFonts),
		},
		Output: OutputConfig{
			Dir:    "output",
			Prefix: paths.OutputPrefix,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ExampleConfig returns a Config suitable for generating config.default.toml:
// the defaults plus one preset showing how overrides look.
func ExampleConfig() *Config {
	cfg := DefaultConfig()
	cfg.Presets = map[string]StyleConfig{
		"legendary": {
			Glow:       "#B04DFF",
			GlowAlpha:  200,
			GlowRadius: 44,
		},
	}
	return cfg
}

func styleConfigFrom(s badge.Style) StyleConfig {
	return StyleConfig{
		Width:          s.Width,
		Height:         s.Height,
		IconSize:       s.IconSize,
		Padding:        s.Padding,
		CornerRadius:   s.CornerRadius,
		TitleFontSize:  s.TitleFontSize,
		DescFontSize:   s.DescFontSize,
		Background:     FormatHexColor(s.Background),
		Container:      FormatHexColor(s.Container),
		Text:           FormatHexColor(s.Text),
		Desc:           FormatHexColor(s.Desc),
		Glow:           FormatHexColor(s.Glow),
		GlowAlpha:      s.GlowAlpha,
		GlowSizeExtra:  s.GlowSizeExtra,
		GlowRadius:     s.GlowRadius,
		GlowBlurWide:   s.GlowBlurWide,
		GlowBlurNarrow: s.GlowBlurNarrow,
	}
}

// ///////////////////////////////////////////////
// Presets
// ///////////////////////////////////////////////

// mergeStyle applies non-zero fields from src onto dst.
func mergeStyle(dst *StyleConfig, src StyleConfig) {
	mergeInt := func(d *int, s int) {
		if s != 0 {
			*d = s
		}
	}
	mergeFloat := func(d *float64, s float64) {
		if s != 0 {
			*d = s
		}
	}
	mergeString := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}

	mergeInt(&dst.Width, src.Width)
	mergeInt(&dst.Height, src.Height)
	mergeInt(&dst.IconSize, src.IconSize)
	mergeInt(&dst.Padding, src.Padding)
	mergeInt(&dst.CornerRadius, src.CornerRadius)
	mergeInt(&dst.TitleFontSize, src.TitleFontSize)
	mergeInt(&dst.DescFontSize, src.DescFontSize)
	mergeString(&dst.Background, src.Background)
	mergeString(&dst.Container, src.Container)
	mergeString(&dst.Text, src.Text)
	mergeString(&dst.Desc, src.Desc)
	mergeString(&dst.Glow, src.Glow)
	mergeInt(&dst.GlowAlpha, src.GlowAlpha)
	mergeInt(&dst.GlowSizeExtra, src.GlowSizeExtra)
	mergeInt(&dst.GlowRadius, src.GlowRadius)
	mergeFloat(&dst.GlowBlurWide, src.GlowBlurWide)
	mergeFloat(&dst.GlowBlurNarrow, src.GlowBlurNarrow)
}

// PresetNames returns the defined preset names, sorted.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// BadgeStyle returns the validated badge style, with preset merged over the
// base [style] section when preset is not empty.
func (c *Config) BadgeStyle(preset string) (badge.Style, error) {
	sc := c.Style
	if preset != "" {
		p, ok := c.Presets[preset]
		if !ok {
			return badge.Style{}, fmt.Errorf("%w %q", ErrUnknownPreset, preset)
		}
		mergeStyle(&sc, p)
	}

	s := badge.Style{
		Width:          sc.Width,
		Height:         sc.Height,
		IconSize:       sc.IconSize,
		Padding:        sc.Padding,
		CornerRadius:   sc.CornerRadius,
		TitleFontSize:  sc.TitleFontSize,
		DescFontSize:   sc.DescFontSize,
		GlowAlpha:      sc.GlowAlpha,
		GlowSizeExtra:  sc.GlowSizeExtra,
		GlowRadius:     sc.GlowRadius,
		GlowBlurWide:   sc.GlowBlurWide,
		GlowBlurNarrow: sc.GlowBlurNarrow,
		TitleMaxLines:  c.Text.TitleMaxLines,
		DescMaxLines:   c.Text.DescMaxLines,
		TitleLineGap:   c.Text.TitleLineGap,
		DescLineGap:    c.Text.DescLineGap,
		TitleDescGap:   c.Text.TitleDescGap,
		TitleOffset:    c.Text.TitleOffset,
	}

	colors := []struct {
		key string
		hex string
		dst *color.NRGBA
	}{
		{"background_color", sc.Background, &s.Background},
		{"container_color", sc.Container, &s.Container},
		{"text_color", sc.Text, &s.Text},
		{"desc_color", sc.Desc, &s.Desc},
		{"glow_color", sc.Glow, &s.Glow},
	}
	for _, col := range colors {
		v, err := ParseHexColor(col.hex)
		if err != nil {
			return badge.Style{}, fmt.Errorf("style.%s: %w", col.key, err)
		}
		*col.dst = v
	}

	if err := s.Validate(); err != nil {
		return badge.Style{}, err
	}
	return s, nil
}

// FontSet returns the title and description priority lists.
func (c *Config) FontSet() badge.FontSet {
	return badge.FontSet{
		Title:       slices.Clone(c.Fonts.Title),
		Description: slices.Clone(c.Fonts.Description),
	}
}

// FontOptions returns provider options for this config. dataDir supplies
// the default font cache location.
func (c *Config) FontOptions(dataDir paths.DataDir) fonts.Options {
	cacheDir := c.Fonts.CacheDir
	if cacheDir == "" {
		cacheDir = dataDir.FontCache()
	}
	return fonts.Options{
		CacheDir:     cacheDir,
		System:       slices.Clone(c.Fonts.System),
		GoogleCSSURL: c.Fonts.GoogleCSSURL,
	}
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads dataDir/config.toml. See [LoadFile].
func Load(dataDir string) (*Config, error) {
	return LoadFile(filepath.Join(dataDir, paths.ConfigFile))
}

// LoadFile reads and parses the configuration file at path. Values missing
// from the file keep their defaults; a missing file yields DefaultConfig.
// Unknown keys are logged and ignored.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if v := PeekVersion(data); v > CurrentVersion {
		return nil, fmt.Errorf("config version %d is newer than supported version %d", v, CurrentVersion)
	}

	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String(), "path", path)
	}
	cfg.Version = CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	return atomicfile.WriteFunc(path, 0o644, c.Encode)
}

// Encode writes the config as TOML to w.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// Validate checks that all configuration values are within acceptable ranges.
// The base style and every preset must produce a valid badge style.
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	if c.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	if c.Output.Prefix == "" || strings.ContainsAny(c.Output.Prefix, `/\`) {
		return fmt.Errorf("invalid output.prefix %q: must be a non-empty file name", c.Output.Prefix)
	}

	for _, list := range []struct {
		key string
		ids []string
	}{
		{"fonts.title", c.Fonts.Title},
		{"fonts.description", c.Fonts.Description},
	} {
		for _, id := range list.ids {
			if strings.HasPrefix(id, "google:") {
				if _, _, ok := fonts.ParseGoogleSpec(id); !ok {
					return fmt.Errorf("invalid %s entry %q: expected google:FAMILY:WEIGHT", list.key, id)
				}
			}
		}
	}

	if _, err := c.BadgeStyle(""); err != nil {
		return err
	}
	for _, name := range c.PresetNames() {
		if _, err := c.BadgeStyle(name); err != nil {
			return fmt.Errorf("presets.%s: %w", name, err)
		}
	}
	return nil
}
