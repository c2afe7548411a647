package main

import (
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	rootpkg "tools.zach/dev/achievecard"
	"tools.zach/dev/achievecard/internal/config"
)

// ///////////////////////////////////////////////
// parseSectionPath Tests
// ///////////////////////////////////////////////

func TestParseSectionPath(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    []string
	}{
		{"single segment", "style", []string{"style"}},
		{"preset table", "presets.legendary", []string{"presets", "legendary"}},
		{"three segments", "presets.epic.extra", []string{"presets", "epic", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSectionPath(tt.section)
			if len(got) != len(tt.want) {
				t.Fatalf("parseSectionPath(%q) returned %d segments, want %d", tt.section, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseSectionPath(%q)[%d] = %q, want %q", tt.section, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// ///////////////////////////////////////////////
// sectionName Tests
// ///////////////////////////////////////////////

func TestSectionName(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    string
	}{
		{"single segment", "style", "Style"},
		{"last of two", "presets.legendary", "Legendary"},
		{"last of three", "presets.epic.extra", "Extra"},
		{"already capitalized", "Fonts", "Fonts"},
		{"single char", "a", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sectionName(tt.section)
			if got != tt.want {
				t.Errorf("sectionName(%q) = %q, want %q", tt.section, got, tt.want)
			}
		})
	}
}

func TestSectionNameEmpty(t *testing.T) {
	// A trailing dot produces an empty last segment.
	got := sectionName("")
	if got != "" {
		t.Errorf("sectionName(%q) = %q, want empty string", "", got)
	}
}

// ///////////////////////////////////////////////
// injectOmitted Tests
// ///////////////////////////////////////////////

func TestInjectOmittedNoSection(t *testing.T) {
	// When sectionStack is empty, injectOmitted should be a no-op.
	var out []string
	emitted := map[string]bool{}
	injectOmitted(&out, config.ConfigDocs, nil, emitted)
	if len(out) != 0 {
		t.Errorf("injectOmitted with nil sectionStack produced %d lines, want 0", len(out))
	}
}

func TestInjectOmittedAddsMissingKeys(t *testing.T) {
	docs := map[string]config.FieldDoc{
		"fonts.cache_dir":      {Comment: "Cache.", Alternatives: []string{`cache_dir = "/tmp"`}},
		"fonts.google_css_url": {Alternatives: []string{`google_css_url = "x"`}},
		"fonts.title":          {Comment: "Title."},
		"style.width":          {Comment: "Width."},
	}
	emitted := map[string]bool{"fonts.title": true}

	var out []string
	injectOmitted(&out, docs, []string{"fonts"}, emitted)

	want := []string{
		"",
		"# Cache.",
		`# cache_dir = "/tmp"`,
		"",
		`# google_css_url = "x"`,
	}
	if strings.Join(out, "\n") != strings.Join(want, "\n") {
		t.Errorf("injectOmitted output:\n%s\nwant:\n%s", strings.Join(out, "\n"), strings.Join(want, "\n"))
	}
	if !emitted["fonts.cache_dir"] || !emitted["fonts.google_css_url"] {
		t.Error("injected keys should be marked emitted")
	}
	if emitted["style.width"] {
		t.Error("keys of other sections must not be injected")
	}
}

// ///////////////////////////////////////////////
// generate Tests
// ///////////////////////////////////////////////

func TestGenerateMatchesEmbedded(t *testing.T) {
	got, err := generate(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != string(rootpkg.DefaultConfigTOML) {
		t.Error("config.default.toml is stale; run go generate ./internal/config")
	}
}

func TestGenerateDecodesToExample(t *testing.T) {
	got, err := generate(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	cfg := config.DefaultConfig()
	if _, err := toml.Decode(got, cfg); err != nil {
		t.Fatalf("generated TOML does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("generated config invalid: %v", err)
	}
	want := config.ExampleConfig()
	if cfg.Style != want.Style {
		t.Errorf("style = %+v, want %+v", cfg.Style, want.Style)
	}
	if cfg.Presets["legendary"] != want.Presets["legendary"] {
		t.Errorf("legendary preset = %+v, want %+v", cfg.Presets["legendary"], want.Presets["legendary"])
	}
}

func TestGenerateAnnotations(t *testing.T) {
	got, err := generate(config.ExampleConfig(), config.ConfigDocs)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, want := range []string{
		"# Achievecard Configuration",
		"# ///// Style /////",
		"# ///// Legendary /////",
		"# Canvas size in pixels.\nwidth = 520",
		"glow_color = \"#FFB432\"\n# glow_color = \"#4DA6FF\"",
		"# cache_dir = \"~/.cache/achievecard/fonts\"",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("generated config missing %q", want)
		}
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.HasPrefix(line, " ") {
			t.Errorf("line keeps encoder indentation: %q", line)
		}
	}
}
