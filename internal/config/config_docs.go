package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config field.
// The genconfig tool uses [FieldDoc] values to annotate the generated config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "style.glow_color")
// to their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version. Do not edit.",
	},

	// ── Style ─────────────────────────────────────────────────────
	"style": {
		Comment: "Badge canvas, colors and rarity glow.\nColors are \"#RRGGBB\" or \"#RRGGBBAA\".",
	},
	"style.width": {
		Comment: "Canvas size in pixels.",
	},
	"style.height": {},
	"style.icon_size": {
		Comment: "Icons of any size are resampled to a square of this edge length.",
	},
	"style.padding": {
		Comment: "Space left of the icon and between the icon and the text column.",
	},
	"style.corner_radius": {
		Comment: "Container corner radius. 0 draws square corners; at most half of min(width, height).",
	},
	"style.title_font_size": {
		Comment: "Font sizes in pixels.",
	},
	"style.desc_font_size": {},
	"style.background_color": {
		Comment: "Canvas fill, visible outside the rounded corners.",
	},
	"style.container_color": {
		Comment: "Rounded panel fill.",
	},
	"style.text_color": {
		Comment: "Title color.",
	},
	"style.desc_color": {
		Comment: "Description color.",
	},
	"style.glow_color": {
		Comment: "Rare badges get a soft halo of this color behind the icon.",
		Alternatives: []string{
			`glow_color = "#4DA6FF"`,
		},
	},
	"style.glow_alpha": {
		Comment: "Maximum halo opacity, 0-255.",
	},
	"style.glow_size_extra": {
		Comment: "The halo square is icon_size + glow_size_extra pixels wide, centered on the icon.",
	},
	"style.glow_radius": {
		Comment: "Radius of the outermost halo ring.",
	},
	"style.glow_blur_wide": {
		Comment: "Gaussian blur sigmas of the two halo softening passes, wide first.\n0 skips a pass; the narrow pass must not exceed the wide one.",
	},
	"style.glow_blur_narrow": {},

	// ── Text ──────────────────────────────────────────────────────
	"text": {
		Comment: "Text wrapping and spacing. Lines beyond the maximum are dropped without an ellipsis.",
	},
	"text.title_max_lines": {},
	"text.desc_max_lines":  {},
	"text.title_line_gap": {
		Comment: "Extra pixels between wrapped lines, on top of the font size.",
	},
	"text.desc_line_gap": {},
	"text.title_desc_gap": {
		Comment: "Pixels between the last title line and the description.",
	},
	"text.title_offset": {
		Comment: "Pixels between the top of the icon and the top of the title.",
	},

	// ── Fonts ─────────────────────────────────────────────────────
	"fonts": {
		Comment: "Font identifiers, most preferred first. Each entry is one of:\n  builtin:NAME          embedded Go font (goregular, gobold, gomedium, goitalic, gomono, ...)\n  google:FAMILY:WEIGHT  downloaded from Google Fonts and cached\n  system:FILE           looked up in the platform font directories\n  a file path or glob   e.g. \"~/fonts/**/Inter-Bold.ttf\" (first sorted match)\nWhen nothing resolves, the system list is tried, then builtin:gobold.",
	},
	"fonts.title": {
		Alternatives: []string{
			`title = ["~/.fonts/Inter-Bold.woff2", "builtin:gobold"]`,
		},
	},
	"fonts.description": {},
	"fonts.system": {
		Comment: "Font file names searched in the system font directories after the lists above.",
	},
	"fonts.cache_dir": {
		Comment: "Where downloaded fonts are cached. Defaults to the fonts/ directory in the data dir.",
		Alternatives: []string{
			`cache_dir = "~/.cache/achievecard/fonts"`,
		},
	},
	"fonts.google_css_url": {
		Comment: "Google Fonts CSS endpoint override, for mirrors.",
		Alternatives: []string{
			`google_css_url = "https://fonts.googleapis.com/css2"`,
		},
	},

	// ── Output ────────────────────────────────────────────────────
	"output.dir": {
		Comment: "Directory for rendered badges, created on demand.\nFiles are named <prefix>_YYYYmmdd_HHMMSS.png.",
	},
	"output.prefix": {},

	// ── Log ───────────────────────────────────────────────────────
	"log.level": {
		Comment: "Log file level. Options: \"trace\", \"debug\", \"info\", \"warn\", \"error\"",
		Alternatives: []string{
			`level = "debug"`,
		},
	},
	"log.max_size_mb": {
		Comment: "Rotate the log file after this many megabytes.",
	},

	// ── Presets ───────────────────────────────────────────────────
	"presets": {
		Comment: "Named style overrides, selected with `achievecard render --preset NAME`.\nAny [style] key may be set; keys left out (or set to 0) keep the base value.",
	},
}
