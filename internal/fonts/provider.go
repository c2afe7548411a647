// Package fonts resolves font identifiers into sized faces for the badge
// renderer.
//
// An identifier is one of:
//
//	builtin:NAME            an embedded Go font (see [Builtins])
//	google:FAMILY:WEIGHT    downloaded from Google Fonts and cached on disk
//	system:FILE             a file name looked up in the platform font dirs
//	anything else           a file path, or a doublestar glob whose first
//	                        sorted match is used
//
// [Provider.Resolve] never fails. When every identifier in the priority list
// is unusable it tries the configured system fonts, then [TerminalFont], then
// the fixed-size basicfont face. Parsed fonts and sized faces are cached for
// the life of the provider, failures included, so a dead network source is
// tried once.
package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/sync/singleflight"

	"tools.zach/dev/achievecard/internal/badge"
)

// DefaultSystemFonts are tried, in order, after the priority list.
var DefaultSystemFonts = []string{
	"DejaVuSans-Bold.ttf",
	"DejaVuSans.ttf",
	"LiberationSans-Bold.ttf",
	"Arial.ttf",
}

// BasicSource is the [Handle.Source] of the last-resort bitmap face.
const BasicSource = "basicfont:7x13"

// Options configures a [Provider]. The zero value is usable.
type Options struct {
	// CacheDir stores downloaded Google fonts. Empty disables the disk cache.
	CacheDir string
	// System lists font file names for the system fallback. Nil uses
	// [DefaultSystemFonts]; an empty non-nil slice disables the step.
	System []string
	// GoogleCSSURL overrides [DefaultGoogleCSSURL].
	GoogleCSSURL string
	// HTTPClient overrides the retrying download client.
	HTTPClient *retryablehttp.Client
	// FindSystem locates a system font file by name. Nil uses findfont.Find.
	FindSystem func(name string) (string, error)
	// Logger receives debug lines for every failed attempt. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

type parsed struct {
	font   *opentype.Font
	source string
	err    error
}

// Provider resolves and caches fonts. It is safe for concurrent use.
type Provider struct {
	opts Options
	log  *slog.Logger

	mu      sync.Mutex
	fonts   map[string]parsed  // identifier -> parsed font or failure
	handles map[string]*Handle // identifier@size -> face
	group   singleflight.Group
}

// New returns a provider with opts applied over the defaults.
func New(opts Options) *Provider {
	if opts.System == nil {
		opts.System = DefaultSystemFonts
	}
	if opts.GoogleCSSURL == "" {
		opts.GoogleCSSURL = DefaultGoogleCSSURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = newHTTPClient()
	}
	if opts.FindSystem == nil {
		opts.FindSystem = findfont.Find
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		opts:    opts,
		log:     log,
		fonts:   make(map[string]parsed),
		handles: make(map[string]*Handle),
	}
}

// Resolve returns a face for the first usable identifier in priority, falling
// back as described in the package documentation.
func (p *Provider) Resolve(ctx context.Context, priority []string, size float64) *Handle {
	for _, id := range priority {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if h, err := p.handle(ctx, id, size); err == nil {
			return h
		}
	}

	for _, name := range p.opts.System {
		if h, err := p.handle(ctx, systemPrefix+name, size); err == nil {
			return h
		}
	}

	if h, err := p.handle(ctx, TerminalFont, size); err == nil {
		return h
	}

	p.log.Warn("no scalable font available, using basicfont", "size", size)
	return p.basic()
}

// Resolver adapts p to badge.FontResolver, resolving with ctx.
func (p *Provider) Resolver(ctx context.Context) badge.FontResolver {
	return badge.ResolverFunc(func(priority []string, size float64) badge.Font {
		return p.Resolve(ctx, priority, size)
	})
}

// basic returns the shared bitmap face handle.
func (p *Provider) basic() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.handles[BasicSource]; ok {
		return h
	}
	h := newHandle(basicfont.Face7x13, BasicSource, 13)
	p.handles[BasicSource] = h
	return h
}

// handle returns the cached face for id at size, creating it once.
func (p *Provider) handle(ctx context.Context, id string, size float64) (*Handle, error) {
	key := fmt.Sprintf("%s@%g", id, size)

	p.mu.Lock()
	h, ok := p.handles[key]
	p.mu.Unlock()
	if ok {
		return h, nil
	}

	v, err, _ := p.group.Do("face:"+key, func() (any, error) {
		pf := p.parse(ctx, id)
		if pf.err != nil {
			return nil, pf.err
		}
		face, err := opentype.NewFace(pf.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			p.log.Debug("font face creation failed", "id", id, "size", size, "error", err)
			return nil, fmt.Errorf("create face for %s: %w", id, err)
		}
		h := newHandle(face, pf.source, size)
		p.mu.Lock()
		p.handles[key] = h
		p.mu.Unlock()
		p.log.Debug("font resolved", "id", id, "source", pf.source, "size", size)
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handle), nil
}

// parse loads and parses id once. Failures are remembered.
func (p *Provider) parse(ctx context.Context, id string) parsed {
	p.mu.Lock()
	pf, ok := p.fonts[id]
	p.mu.Unlock()
	if ok {
		return pf
	}

	v, _, _ := p.group.Do("font:"+id, func() (any, error) {
		pf := parsed{}
		data, source, err := p.load(ctx, id)
		if err == nil {
			pf.font, err = opentype.Parse(data)
			if err != nil {
				err = fmt.Errorf("parse %s: %w", source, err)
			}
		}
		pf.source, pf.err = source, err
		if err != nil {
			p.log.Debug("font source unusable", "id", id, "error", err)
		}
		p.mu.Lock()
		p.fonts[id] = pf
		p.mu.Unlock()
		return pf, nil
	})
	return v.(parsed)
}

// load dispatches on the identifier kind and returns SFNT bytes.
func (p *Provider) load(ctx context.Context, id string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(id, builtinPrefix):
		return loadBuiltin(strings.TrimPrefix(id, builtinPrefix))
	case strings.HasPrefix(id, googlePrefix):
		return p.loadGoogle(ctx, id)
	case strings.HasPrefix(id, systemPrefix):
		return loadSystem(p.opts.FindSystem, strings.TrimPrefix(id, systemPrefix))
	default:
		return loadFile(strings.TrimPrefix(id, filePrefix))
	}
}
