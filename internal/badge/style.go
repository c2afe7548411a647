// Package badge renders achievement badges: a fixed-size card holding an
// icon, a wrapped title, an optional description and, for rare achievements,
// a radial glow behind the icon.
//
// The package does no I/O. Callers hand it decoded icon pixels and a
// [FontResolver]; [Renderer.Render] returns a fully painted [image.RGBA].
//
// Paint order is fixed:
//
//	background -> container -> glow (rare only) -> icon -> title -> description
package badge

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrInvalidStyle is wrapped by [Style.Validate] for every rejected field.
var ErrInvalidStyle = errors.New("invalid style")

// ///////////////////////////////////////////////
// Style
// ///////////////////////////////////////////////

// Style holds every layout, size and color parameter of a badge. It is a
// plain value: copy it freely and share it between goroutines.
type Style struct {
	// Width and Height are the canvas dimensions in pixels.
	Width  int
	Height int
	// IconSize is the edge length the icon is resampled to.
	IconSize int
	// Padding separates the icon from the left edge and from the text column.
	Padding int
	// CornerRadius rounds the container corners. Zero gives a plain rectangle.
	CornerRadius int

	// TitleFontSize and DescFontSize are font sizes in pixels at 72 DPI.
	TitleFontSize int
	DescFontSize  int

	// Background fills the canvas before anything else is drawn.
	Background color.NRGBA
	// Container fills the rounded panel.
	Container color.NRGBA
	// Text colors the title, Desc the description.
	Text color.NRGBA
	Desc color.NRGBA

	// Glow tints the rarity halo; GlowAlpha caps its opacity (0-255).
	Glow      color.NRGBA
	GlowAlpha int
	// GlowSizeExtra is added to IconSize to get the glow square's edge.
	GlowSizeExtra int
	// GlowRadius is the radius of the outermost mask ring.
	GlowRadius int
	// GlowBlurWide and GlowBlurNarrow are the Gaussian sigmas of the two
	// softening passes, applied in that order. Zero skips a pass.
	GlowBlurWide   float64
	GlowBlurNarrow float64

	// TitleMaxLines and DescMaxLines cap each text block. Extra lines are
	// dropped without an ellipsis.
	TitleMaxLines int
	DescMaxLines  int
	// TitleLineGap and DescLineGap are added to the font size to get the
	// line advance of each block.
	TitleLineGap int
	DescLineGap  int
	// TitleDescGap separates the last title line from the description.
	TitleDescGap int
	// TitleOffset moves the title below the top edge of the icon.
	TitleOffset int
}

// DefaultStyle returns the stock badge style: a 520x96 dark card with a
// 64px icon and a golden glow.
func DefaultStyle() Style {
	return Style{
		Width:          520,
		Height:         96,
		IconSize:       64,
		Padding:        16,
		CornerRadius:   4,
		TitleFontSize:  15,
		DescFontSize:   13,
		Background:     rgb(22, 24, 28),
		Container:      rgb(38, 40, 44),
		Text:           rgb(255, 255, 255),
		Desc:           rgb(128, 128, 128),
		Glow:           rgb(255, 180, 50),
		GlowAlpha:      160,
		GlowSizeExtra:  80,
		GlowRadius:     40,
		GlowBlurWide:   10,
		GlowBlurNarrow: 5,
		TitleMaxLines:  2,
		DescMaxLines:   2,
		TitleLineGap:   2,
		DescLineGap:    2,
		TitleDescGap:   4,
		TitleOffset:    5,
	}
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Validate reports the first field that breaks a style invariant.
func (s Style) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"width", s.Width},
		{"height", s.Height},
		{"icon_size", s.IconSize},
		{"padding", s.Padding},
		{"title_font_size", s.TitleFontSize},
		{"desc_font_size", s.DescFontSize},
		{"glow_size_extra", s.GlowSizeExtra},
		{"glow_radius", s.GlowRadius},
		{"title_max_lines", s.TitleMaxLines},
		{"desc_max_lines", s.DescMaxLines},
	}
	for _, f := range positive {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be > 0, got %d", ErrInvalidStyle, f.name, f.v)
		}
	}

	nonNegative := []struct {
		name string
		v    int
	}{
		{"corner_radius", s.CornerRadius},
		{"title_line_gap", s.TitleLineGap},
		{"desc_line_gap", s.DescLineGap},
		{"title_desc_gap", s.TitleDescGap},
		{"title_offset", s.TitleOffset},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidStyle, f.name, f.v)
		}
	}

	if 2*s.CornerRadius > min(s.Width, s.Height) {
		return fmt.Errorf("%w: corner_radius %d exceeds half of min(width, height) = %d",
			ErrInvalidStyle, s.CornerRadius, min(s.Width, s.Height)/2)
	}
	if s.GlowAlpha < 0 || s.GlowAlpha > 255 {
		return fmt.Errorf("%w: glow_alpha must be in 0..255, got %d", ErrInvalidStyle, s.GlowAlpha)
	}
	if s.GlowBlurWide < 0 || s.GlowBlurNarrow < 0 {
		return fmt.Errorf("%w: glow blur sigmas must be >= 0", ErrInvalidStyle)
	}
	if s.GlowBlurNarrow > s.GlowBlurWide {
		return fmt.Errorf("%w: glow_blur_narrow (%g) must not exceed glow_blur_wide (%g)",
			ErrInvalidStyle, s.GlowBlurNarrow, s.GlowBlurWide)
	}
	if s.Padding*3+s.IconSize >= s.Width {
		return fmt.Errorf("%w: width %d leaves no room for text after icon and padding", ErrInvalidStyle, s.Width)
	}
	return nil
}

// GlowSize is the edge length of the square glow image.
func (s Style) GlowSize() int {
	return s.IconSize + s.GlowSizeExtra
}
