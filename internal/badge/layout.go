package badge

import "image"

// Layout is the set of coordinates one render paints at. Text Y values are
// the top of the glyph box, not the baseline.
type Layout struct {
	Container image.Rectangle
	Icon      image.Rectangle
	Glow      image.Rectangle

	TextX     int
	TextWidth int

	TitleY          int
	TitleLineHeight int
	DescY           int
	DescLineHeight  int
}

// ComputeLayout positions every element for a badge whose title wraps to
// titleLines lines. It depends on nothing but its arguments.
func ComputeLayout(s Style, titleLines int) Layout {
	iconX := s.Padding
	iconY := (s.Height - s.IconSize) / 2
	textX := s.Padding + s.IconSize + s.Padding
	half := s.GlowSizeExtra / 2

	l := Layout{
		Container:       image.Rect(0, 0, s.Width, s.Height),
		Icon:            image.Rect(iconX, iconY, iconX+s.IconSize, iconY+s.IconSize),
		Glow:            image.Rect(iconX-half, iconY-half, iconX-half+s.GlowSize(), iconY-half+s.GlowSize()),
		TextX:           textX,
		TextWidth:       s.Width - textX - s.Padding,
		TitleY:          iconY + s.TitleOffset,
		TitleLineHeight: s.TitleFontSize + s.TitleLineGap,
		DescLineHeight:  s.DescFontSize + s.DescLineGap,
	}
	l.DescY = l.TitleY + max(0, titleLines)*l.TitleLineHeight + s.TitleDescGap
	return l
}
