// google.go downloads fonts from the Google Fonts CSS API.
//
// Identifiers use the form "google:FAMILY:WEIGHT" (e.g. "google:Inter:800").
// The CSS response names a font file URL; the file is downloaded, converted
// from WOFF2 when needed and cached so it is fetched once per machine.

package fonts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"tools.zach/dev/achievecard/internal/atomicfile"
)

// DefaultGoogleCSSURL is the Google Fonts CSS v2 endpoint.
const DefaultGoogleCSSURL = "https://fonts.googleapis.com/css2"

// googleUserAgent asks for WOFF2 URLs, which toSFNT converts.
const googleUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"

// fontURLRe extracts the font file URL from the CSS response.
// Matches: url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2)
var fontURLRe = regexp.MustCompile(`url\((https?://[^)]+)\)`)

// ParseGoogleSpec splits a "google:Family:Weight" identifier.
func ParseGoogleSpec(id string) (family, weight string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// newHTTPClient returns the retrying client used for font downloads. Google
// is the first choice in the default font lists, so an offline machine must
// fall through to local fonts quickly.
func newHTTPClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 2
	c.RetryWaitMin = 200 * time.Millisecond
	c.RetryWaitMax = time.Second
	c.CheckRetry = checkFontRetry
	c.HTTPClient.Timeout = 15 * time.Second
	c.Logger = nil // suppress retryablehttp's default logging
	return c
}

// checkFontRetry is the default retry policy except that a failed dial
// (refused connection, no route, DNS failure) is not retried.
func checkFontRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return false, nil
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// googleCacheFile returns the cache path for a family and weight.
func googleCacheFile(cacheDir, family, weight string) string {
	name := strings.ReplaceAll(family, " ", "_")
	return filepath.Join(cacheDir, fmt.Sprintf("%s-%s.ttf", name, weight))
}

// loadGoogle returns SFNT bytes for id, from the cache when present.
func (p *Provider) loadGoogle(ctx context.Context, id string) ([]byte, string, error) {
	family, weight, ok := ParseGoogleSpec(id)
	if !ok {
		return nil, "", fmt.Errorf("invalid google font %q: expected google:FAMILY:WEIGHT", id)
	}

	var cacheFile string
	if p.opts.CacheDir != "" {
		cacheFile = googleCacheFile(p.opts.CacheDir, family, weight)
		if data, err := os.ReadFile(cacheFile); err == nil {
			return data, id + " (cached)", nil
		}
	}

	cssURL := fmt.Sprintf("%s?family=%s:wght@%s", p.opts.GoogleCSSURL, url.QueryEscape(family), weight)
	css, err := p.get(ctx, cssURL, 1<<20)
	if err != nil {
		return nil, "", fmt.Errorf("fetch google fonts css: %w", err)
	}

	m := fontURLRe.FindSubmatch(css)
	if m == nil {
		return nil, "", fmt.Errorf("no font url in google fonts css for %s wght@%s", family, weight)
	}
	fontURL := string(m[1])

	data, err := p.get(ctx, fontURL, 10<<20)
	if err != nil {
		return nil, "", fmt.Errorf("download font file: %w", err)
	}
	data, err = toSFNT(fontURL, data)
	if err != nil {
		return nil, "", err
	}

	if cacheFile != "" {
		if err := p.writeCache(cacheFile, data); err != nil {
			p.log.Warn("font cache write failed", "path", cacheFile, "error", err)
		}
	}
	return data, id, nil
}

func (p *Provider) writeCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create font cache dir: %w", err)
	}
	return atomicfile.Write(path, data, 0o644)
}

// get fetches rawURL and reads at most limit bytes of the body.
func (p *Provider) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", googleUserAgent)

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
