package badge

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// ErrNoIcon is returned by [Renderer.Render] when the request has no icon.
var ErrNoIcon = errors.New("badge request has no icon")

// ///////////////////////////////////////////////
// Collaborators
// ///////////////////////////////////////////////

// Font is a sized font the renderer measures and draws with.
// Implementations must be safe for concurrent use.
type Font interface {
	Measurer
	// Ascent is the distance from the top of the glyph box to the baseline.
	Ascent() int
	// DrawString draws s with its glyph box top-left at (x, top).
	DrawString(dst draw.Image, x, top int, c color.Color, s string)
}

// FontResolver turns an ordered list of font identifiers into a usable font.
// It must always return a font, falling back as far as it needs to.
type FontResolver interface {
	Resolve(priority []string, size float64) Font
}

// ResolverFunc adapts a function to [FontResolver].
type ResolverFunc func(priority []string, size float64) Font

// Resolve calls f.
func (f ResolverFunc) Resolve(priority []string, size float64) Font {
	return f(priority, size)
}

// FontSet lists font identifiers, most preferred first, per text block.
type FontSet struct {
	Title       []string
	Description []string
}

// ///////////////////////////////////////////////
// Request
// ///////////////////////////////////////////////

// Request is the content of a single badge.
type Request struct {
	Title       string
	Description string
	// Icon may be any size; it is resampled to Style.IconSize.
	Icon image.Image
	// Rare draws the glow behind the icon.
	Rare bool
}

// ///////////////////////////////////////////////
// Renderer
// ///////////////////////////////////////////////

// Renderer paints badges for one style. It is safe for concurrent use: the
// style is a copied value, fonts are shared read-only and every call paints
// its own canvas.
type Renderer struct {
	style     Style
	titleFont Font
	descFont  Font

	glowOnce sync.Once
	glow     *image.NRGBA
}

// NewRenderer validates style and resolves the title and description fonts.
func NewRenderer(style Style, fonts FontResolver, set FontSet) (*Renderer, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}
	if fonts == nil {
		return nil, errors.New("badge: nil font resolver")
	}
	return &Renderer{
		style:     style,
		titleFont: fonts.Resolve(set.Title, float64(style.TitleFontSize)),
		descFont:  fonts.Resolve(set.Description, float64(style.DescFontSize)),
	}, nil
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style {
	return r.style
}

// glowImage builds the halo on first use. It only depends on the style, so
// every rare badge from this renderer shares it.
func (r *Renderer) glowImage() *image.NRGBA {
	r.glowOnce.Do(func() {
		s := r.style
		r.glow = BuildGlow(s.GlowSize(), s.GlowRadius, s.Glow, s.GlowAlpha, s.GlowBlurWide, s.GlowBlurNarrow)
	})
	return r.glow
}

// Render paints req onto a fresh canvas and returns it. On error nothing is
// returned; a canvas is never handed back half painted.
func (r *Renderer) Render(req Request) (*image.RGBA, error) {
	if req.Icon == nil {
		return nil, ErrNoIcon
	}
	if b := req.Icon.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: icon bounds %v are empty", ErrNoIcon, b)
	}

	s := r.style
	// The text column width does not depend on the title line count.
	width := float64(ComputeLayout(s, 0).TextWidth)
	title := Truncate(Wrap(req.Title, r.titleFont, width), s.TitleMaxLines)
	desc := Truncate(Wrap(req.Description, r.descFont, width), s.DescMaxLines)
	layout := ComputeLayout(s, len(title))

	icon := imaging.Resize(req.Icon, s.IconSize, s.IconSize, imaging.Lanczos)

	canvas := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))

	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(s.Background), image.Point{}, draw.Src)

	FillRoundedRect(canvas, layout.Container, s.CornerRadius, s.Container)

	if req.Rare {
		draw.Draw(canvas, layout.Glow, r.glowImage(), image.Point{}, draw.Over)
	}

	draw.Draw(canvas, layout.Icon, icon, image.Point{}, draw.Over)

	drawLines(canvas, r.titleFont, title, layout.TextX, layout.TitleY, layout.TitleLineHeight, s.Text)
	drawLines(canvas, r.descFont, desc, layout.TextX, layout.DescY, layout.DescLineHeight, s.Desc)

	return canvas, nil
}

func drawLines(dst draw.Image, f Font, lines []Line, x, top, advance int, c color.Color) {
	for i, l := range lines {
		f.DrawString(dst, x, top+i*advance, c, l.String())
	}
}
