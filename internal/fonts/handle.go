package fonts

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Handle is a sized font face ready to measure and draw text. It satisfies
// badge.Font. A face keeps glyph caches that are not safe for concurrent use,
// so every call takes the handle's lock.
type Handle struct {
	source string
	size   float64
	ascent int

	mu   sync.Mutex
	face font.Face
}

func newHandle(face font.Face, source string, size float64) *Handle {
	return &Handle{
		source: source,
		size:   size,
		ascent: face.Metrics().Ascent.Ceil(),
		face:   face,
	}
}

// Source describes where the face came from, e.g. "builtin:gobold" or
// "file:/usr/share/fonts/Inter-Bold.ttf".
func (h *Handle) Source() string { return h.source }

// Size is the requested size in pixels at 72 DPI.
func (h *Handle) Size() float64 { return h.size }

// Ascent is the distance from the top of the glyph box to the baseline.
func (h *Handle) Ascent() int { return h.ascent }

// Measure returns the advance width of s in pixels.
func (h *Handle) Measure(s string) float64 {
	h.mu.Lock()
	adv := font.MeasureString(h.face, s)
	h.mu.Unlock()
	return float64(adv) / 64
}

// DrawString draws s with the top of its glyph box at (x, top).
func (h *Handle) DrawString(dst draw.Image, x, top int, c color.Color, s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: h.face,
		Dot:  fixed.P(x, top+h.ascent),
	}
	d.DrawString(s)
}
