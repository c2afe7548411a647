package badge

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// FillRoundedRect fills bounds on dst with c, rounding each corner with a
// quarter disk of the given radius. The radius is clamped to half of the
// shorter side; zero fills a plain rectangle.
//
// The shape is built from two overlapping bands that cover everything but the
// corners, plus one pie slice per corner.
func FillRoundedRect(dst *image.RGBA, bounds image.Rectangle, radius int, c color.Color) {
	bounds = bounds.Canon()
	if bounds.Empty() {
		return
	}
	r := float64(max(0, min(radius, min(bounds.Dx(), bounds.Dy())/2)))

	x0, y0 := float64(bounds.Min.X), float64(bounds.Min.Y)
	x1, y1 := float64(bounds.Max.X), float64(bounds.Max.Y)
	w, h := x1-x0, y1-y0

	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(c)

	if r == 0 {
		dc.DrawRectangle(x0, y0, w, h)
		dc.Fill()
		return
	}

	dc.DrawRectangle(x0+r, y0, w-2*r, h)
	dc.DrawRectangle(x0, y0+r, w, h-2*r)
	dc.Fill()

	corners := []struct {
		cx, cy     float64
		start, end float64
	}{
		{x0 + r, y0 + r, 180, 270}, // top-left
		{x1 - r, y0 + r, 270, 360}, // top-right
		{x0 + r, y1 - r, 90, 180},  // bottom-left
		{x1 - r, y1 - r, 0, 90},    // bottom-right
	}
	for _, k := range corners {
		dc.MoveTo(k.cx, k.cy)
		dc.DrawArc(k.cx, k.cy, r, gg.Radians(k.start), gg.Radians(k.end))
		dc.ClosePath()
		dc.Fill()
	}
}
