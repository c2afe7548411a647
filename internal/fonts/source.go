// source.go loads raw font bytes for the non-network identifier kinds:
// embedded Go fonts, file paths and globs, and system-installed fonts.

package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tdewolff/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/gofont/gosmallcaps"
)

// Identifier prefixes.
const (
	builtinPrefix = "builtin:"
	googlePrefix  = "google:"
	systemPrefix  = "system:"
	filePrefix    = "file:"
)

// TerminalFont is the embedded font used when nothing else resolves.
const TerminalFont = builtinPrefix + "gobold"

var errNotFound = errors.New("font not found")

// builtins maps builtin: names to the embedded Go font TTFs.
var builtins = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"gobolditalic": gobolditalic.TTF,
	"goitalic":     goitalic.TTF,
	"gomedium":     gomedium.TTF,
	"gomono":       gomono.TTF,
	"gomonobold":   gomonobold.TTF,
	"gosmallcaps":  gosmallcaps.TTF,
}

// Builtins lists the names accepted after "builtin:", sorted.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func loadBuiltin(name string) ([]byte, string, error) {
	data, ok := builtins[name]
	if !ok {
		return nil, "", fmt.Errorf("%w: no builtin font %q", errNotFound, name)
	}
	return data, builtinPrefix + name, nil
}

// ///////////////////////////////////////////////
// Files
// ///////////////////////////////////////////////

// loadFile reads a font file. A path holding glob metacharacters is expanded
// with doublestar and the first match in lexical order is used.
func loadFile(pattern string) ([]byte, string, error) {
	path, err := expandHome(pattern)
	if err != nil {
		return nil, "", err
	}

	if strings.ContainsAny(path, "*?[{") {
		matches, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
		if err != nil {
			return nil, "", fmt.Errorf("expand glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, "", fmt.Errorf("%w: no file matches %q", errNotFound, pattern)
		}
		slices.Sort(matches)
		path = matches[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s", errNotFound, path)
		}
		return nil, "", fmt.Errorf("read font file: %w", err)
	}
	data, err = toSFNT(path, data)
	if err != nil {
		return nil, "", err
	}
	return data, filePrefix + path, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ///////////////////////////////////////////////
// System fonts
// ///////////////////////////////////////////////

// loadSystem looks name up in the platform font directories.
func loadSystem(find func(string) (string, error), name string) ([]byte, string, error) {
	if find == nil {
		return nil, "", fmt.Errorf("%w: system lookup disabled", errNotFound)
	}
	path, err := find(name)
	if err != nil {
		return nil, "", fmt.Errorf("%w: system font %q: %v", errNotFound, name, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read system font: %w", err)
	}
	data, err = toSFNT(path, data)
	if err != nil {
		return nil, "", err
	}
	return data, systemPrefix + path, nil
}

// ///////////////////////////////////////////////
// WOFF2
// ///////////////////////////////////////////////

// toSFNT converts WOFF2 data to TTF/OTF. Other formats pass through.
func toSFNT(name string, data []byte) ([]byte, error) {
	if !isWOFF2(name, data) {
		return data, nil
	}
	sfnt, err := font.ToSFNT(data)
	if err != nil {
		return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
	}
	return sfnt, nil
}

// isWOFF2 checks the extension and the "wOF2" magic bytes.
func isWOFF2(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".woff2") {
		return true
	}
	return len(data) >= 4 && string(data[:4]) == "wOF2"
}
