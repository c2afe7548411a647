// Tests for the achievecard CLI: version resolution, output naming, the
// render command end to end with embedded fonts, config init/show, fonts
// and logs.
package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	rootpkg "tools.zach/dev/achievecard"
	"tools.zach/dev/achievecard/internal/config"
	"tools.zach/dev/achievecard/internal/fonts"
	"tools.zach/dev/achievecard/internal/logger"
	"tools.zach/dev/achievecard/internal/paths"
)

// offlineConfig keeps every font lookup inside the binary.
const offlineConfig = `version = 1

[fonts]
title = ["builtin:gobold"]
description = ["builtin:goregular"]
system = []

[presets.legendary]
glow_color = "#B04DFF"
`

// setupDataDir writes offlineConfig into a fresh data dir and returns it.
func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, paths.ConfigFile), []byte(offlineConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// writeIcon saves a solid square PNG and returns its path.
func writeIcon(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "icon.png")
	img := imaging.New(size, size, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	if err := imaging.Save(img, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the CLI and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// syncBuffer is a bytes.Buffer safe to write from the watch goroutine while
// the test reads it.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// newTestApp returns an app rooted at dataDir with its config loaded and
// console logs captured in the returned buffer.
func newTestApp(t *testing.T, dataDir string) (*app, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	a := &app{
		dataDir:    paths.DataDir{Root: dataDir},
		configPath: filepath.Join(dataDir, paths.ConfigFile),
		log:        slog.New(logger.NewConsole(logs, slog.LevelDebug)),
		now:        time.Now,
	}
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	a.cfg = cfg
	return a, logs
}

// waitFor polls cond until it holds or five seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// ///////////////////////////////////////////////
// resolveVersion Tests
// ///////////////////////////////////////////////

func TestResolveVersionLdflags(t *testing.T) {
	orig := version
	defer func() { version = orig }()

	version = "1.2.3"
	if got := resolveVersion(); got != "1.2.3" {
		t.Errorf("resolveVersion() = %q, want %q", got, "1.2.3")
	}
}

func TestResolveVersionDev(t *testing.T) {
	got := resolveVersion()
	if got != "dev" && !strings.HasPrefix(got, "dev+") {
		t.Errorf("resolveVersion() = %q, want dev or dev+<hash>", got)
	}
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := run(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(stdout, paths.BinaryName+" ") {
		t.Errorf("--version output = %q", stdout)
	}
}

// ///////////////////////////////////////////////
// outputPath Tests
// ///////////////////////////////////////////////

func TestOutputPath(t *testing.T) {
	cfg := config.DefaultConfig()
	at := time.Date(2026, 10, 19, 14, 25, 1, 0, time.UTC)

	tests := []struct {
		name string
		opts renderOptions
		want string
	}{
		{"config dir", renderOptions{}, filepath.Join("output", "achievement_20261019_142501.png")},
		{"out dir flag", renderOptions{outDir: "badges"}, filepath.Join("badges", "achievement_20261019_142501.png")},
		{"explicit file", renderOptions{out: "x/badge.png", outDir: "ignored"}, "x/badge.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(cfg, tt.opts, at); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// render Tests
// ///////////////////////////////////////////////

func TestRenderWritesPNG(t *testing.T) {
	dataDir := setupDataDir(t)
	outDir := filepath.Join(t.TempDir(), "nested", "out")

	stdout, stderr, err := run(t, "render",
		"--data-dir", dataDir,
		"--title", "Master Chef",
		"--description", "Cook 100 dishes",
		"--icon", writeIcon(t, 128),
		"--out-dir", outDir,
	)
	if err != nil {
		t.Fatalf("render: %v\nstderr: %s", err, stderr)
	}

	path := strings.TrimSpace(stdout)
	if filepath.Dir(path) != outDir {
		t.Errorf("output %q not in %q", path, outDir)
	}
	name := filepath.Base(path)
	if !strings.HasPrefix(name, paths.OutputPrefix+"_") || !strings.HasSuffix(name, paths.OutputExt) {
		t.Errorf("output name = %q", name)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 520, 96) {
		t.Errorf("bounds = %v, want 520x96", got)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 1 {
		t.Errorf("output dir holds %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestRenderRarePresetToFile(t *testing.T) {
	dataDir := setupDataDir(t)
	out := filepath.Join(t.TempDir(), "badge.png")

	_, stderr, err := run(t, "render",
		"--data-dir", dataDir,
		"--title", "Untouchable",
		"--icon", writeIcon(t, 32),
		"--rare",
		"--preset", "legendary",
		"--out", out,
	)
	if err != nil {
		t.Fatalf("render: %v\nstderr: %s", err, stderr)
	}

	img, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	// Left of the icon lies inside the halo; the container alone is (38,40,44).
	_, _, b, _ := img.At(12, 48).RGBA()
	if b>>8 <= 44 {
		t.Errorf("pixel (12,48) blue = %d, want the purple halo over the container", b>>8)
	}
}

func TestRenderErrors(t *testing.T) {
	dataDir := setupDataDir(t)
	icon := writeIcon(t, 16)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing title", []string{"--icon", icon}, "title"},
		{"missing icon file", []string{"--title", "T", "--icon", filepath.Join(dataDir, "nope.png")}, "open icon"},
		{"unknown preset", []string{"--title", "T", "--icon", icon, "--preset", "mythic"}, "unknown preset"},
		{"out and out-dir", []string{"--title", "T", "--icon", icon, "--out", "a.png", "--out-dir", "b"}, "out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", "--data-dir", dataDir}, tt.args...)
			_, stderr, err := run(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
			if !strings.Contains(stderr, err.Error()) {
				t.Errorf("stderr %q does not report the error", stderr)
			}
		})
	}
}

func TestRenderInvalidConfig(t *testing.T) {
	dataDir := t.TempDir()
	os.WriteFile(filepath.Join(dataDir, paths.ConfigFile), []byte("[style]\nwidth = -1\n"), 0o644)

	_, _, err := run(t, "render", "--data-dir", dataDir, "--title", "T", "--icon", writeIcon(t, 16))
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestSettleWaitsForQuiet(t *testing.T) {
	events := make(chan struct{}, 1)
	events <- struct{}{}

	start := time.Now()
	if !settle(context.Background(), events) {
		t.Fatal("settle returned false without cancellation")
	}
	if time.Since(start) < watchSettle {
		t.Error("settle returned before the quiet period")
	}
	if len(events) != 0 {
		t.Error("settle should drain pending events")
	}
}

func TestSettleCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if settle(ctx, make(chan struct{})) {
		t.Error("settle should return false on a cancelled context")
	}
}

// ///////////////////////////////////////////////
// Font Cache Tests
// ///////////////////////////////////////////////

// countingFontServer answers every request with 404 and counts them.
func countingFontServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func googleFirstConfig(cssURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Fonts.Title = []string{"google:Inter:700", "builtin:gobold"}
	cfg.Fonts.Description = []string{"google:Inter:400", "builtin:goregular"}
	cfg.Fonts.System = []string{}
	cfg.Fonts.GoogleCSSURL = cssURL
	return cfg
}

func TestRenderReusesFontCacheAcrossRenders(t *testing.T) {
	srv, hits := countingFontServer(t)
	a, _ := newTestApp(t, t.TempDir())
	opts := renderOptions{title: "Master Chef", description: "Cook 100 dishes", icon: writeIcon(t, 16), outDir: t.TempDir()}
	var out bytes.Buffer

	if _, err := a.render(context.Background(), &out, googleFirstConfig(srv.URL), opts); err != nil {
		t.Fatalf("first render: %v", err)
	}
	first := hits.Load()
	if first != 2 {
		t.Fatalf("font server hits after one render = %d, want 2 (title + description)", first)
	}

	// A reloaded config with the same font settings keeps the cache,
	// including the remembered failures.
	for i := range 2 {
		if _, err := a.render(context.Background(), &out, googleFirstConfig(srv.URL), opts); err != nil {
			t.Fatalf("render %d: %v", i+2, err)
		}
	}
	if n := hits.Load(); n != first {
		t.Errorf("font server hits after 3 renders = %d, want %d", n, first)
	}
}

func TestRenderResetsFontCacheWhenSettingsChange(t *testing.T) {
	srv1, hits1 := countingFontServer(t)
	srv2, hits2 := countingFontServer(t)
	a, _ := newTestApp(t, t.TempDir())
	opts := renderOptions{title: "T", icon: writeIcon(t, 16), outDir: t.TempDir()}
	var out bytes.Buffer

	if _, err := a.render(context.Background(), &out, googleFirstConfig(srv1.URL), opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	p := a.fonts

	if _, err := a.render(context.Background(), &out, googleFirstConfig(srv2.URL), opts); err != nil {
		t.Fatalf("render after endpoint change: %v", err)
	}
	if a.fonts == p {
		t.Error("provider kept after the Google endpoint changed")
	}
	if hits2.Load() == 0 {
		t.Error("new endpoint was never asked")
	}
	if n := hits1.Load(); n != 2 {
		t.Errorf("old endpoint hits = %d, want 2", n)
	}
}

func TestSameFontOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	dir := paths.DataDir{Root: "/data"}
	base := cfg.FontOptions(dir)

	changed := config.DefaultConfig()
	changed.Fonts.System = []string{"Arial.ttf"}
	moved := config.DefaultConfig()
	moved.Fonts.CacheDir = "/elsewhere"
	titles := config.DefaultConfig()
	titles.Fonts.Title = []string{"builtin:gomono"}

	tests := []struct {
		name string
		opts fonts.Options
		want bool
	}{
		{"same config", config.DefaultConfig().FontOptions(dir), true},
		{"font lists only", titles.FontOptions(dir), true},
		{"system list", changed.FontOptions(dir), false},
		{"cache dir", moved.FontOptions(dir), false},
		{"data dir", cfg.FontOptions(paths.DataDir{Root: "/other"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameFontOptions(base, tt.opts); got != tt.want {
				t.Errorf("sameFontOptions() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Watch Mode Tests
// ///////////////////////////////////////////////

func TestWatchRenderRerendersUntilCancelled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow watcher test in short mode")
	}

	dataDir := setupDataDir(t)
	a, logs := newTestApp(t, dataDir)
	icon := writeIcon(t, 32)
	badgePath := filepath.Join(t.TempDir(), "badge.png")
	out := &syncBuffer{}
	renders := func() int { return strings.Count(out.String(), badgePath+"\n") }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- a.watchRender(ctx, out, renderOptions{title: "Watcher", icon: icon, out: badgePath})
	}()

	waitFor(t, "initial render", func() bool { return renders() == 1 })

	// Editing the icon renders again.
	if err := imaging.Save(imaging.New(48, 48, color.NRGBA{B: 200, A: 255}), icon); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "render after icon change", func() bool { return renders() >= 2 })

	// A broken config is reported and the loop keeps going.
	if err := os.WriteFile(a.configPath, []byte("version = 1\n[style\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "reload failure log", func() bool { return strings.Contains(logs.String(), "reload config failed") })
	before := renders()

	// Repairing it recovers without a restart.
	if err := os.WriteFile(a.configPath, []byte(offlineConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "render after config repair", func() bool { return renders() > before })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchRender returned %v after cancel, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watchRender did not return after cancel")
	}
	if !strings.Contains(logs.String(), "stopped watching") {
		t.Error("missing stop log")
	}
}

func TestWatchRenderLogsFailedRender(t *testing.T) {
	a, logs := newTestApp(t, setupDataDir(t))
	opts := renderOptions{title: "T", icon: filepath.Join(t.TempDir(), "icon.png")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := a.watchRender(ctx, &out, opts); err != nil {
		t.Fatalf("watchRender = %v, want nil", err)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want nothing for a missing icon", out.String())
	}
	for _, want := range []string{"render failed", "watching for changes", "stopped watching"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}
}

// ///////////////////////////////////////////////
// config Tests
// ///////////////////////////////////////////////

func TestConfigInit(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	cfgPath := filepath.Join(dataDir, paths.ConfigFile)

	if _, _, err := run(t, "config", "init", "--data-dir", dataDir); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !bytes.Equal(data, rootpkg.DefaultConfigTOML) {
		t.Error("written config differs from the embedded default")
	}

	if _, _, err := run(t, "config", "init", "--data-dir", dataDir); err == nil {
		t.Error("second init without --force should fail")
	}

	os.WriteFile(cfgPath, []byte("not = [valid"), 0o644)
	if _, _, err := run(t, "config", "init", "--data-dir", dataDir, "--force"); err != nil {
		t.Fatalf("config init --force over a broken file: %v", err)
	}
	if _, err := config.LoadFile(cfgPath); err != nil {
		t.Errorf("re-initialized config does not load: %v", err)
	}
}

func TestConfigInitCustomPath(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sub", "custom.toml")
	if _, _, err := run(t, "config", "init", "--data-dir", t.TempDir(), "--config", cfgPath); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("custom config not written: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	stdout, _, err := run(t, "config", "show", "--data-dir", setupDataDir(t))
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"[style]", "width = 520", `title = ["builtin:gobold"]`, "[presets.legendary]"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show output missing %q", want)
		}
	}
}

// ///////////////////////////////////////////////
// fonts Tests
// ///////////////////////////////////////////////

func TestFontsCommand(t *testing.T) {
	stdout, _, err := run(t, "fonts", "--data-dir", setupDataDir(t))
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("fonts printed %d lines, want 2:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "title") || !strings.Contains(lines[0], "15px") || !strings.Contains(lines[0], "builtin:gobold") {
		t.Errorf("title line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "description") || !strings.Contains(lines[1], "builtin:goregular") {
		t.Errorf("description line = %q", lines[1])
	}
}

func TestFontsBuiltins(t *testing.T) {
	stdout, _, err := run(t, "fonts", "--builtins", "--data-dir", setupDataDir(t))
	if err != nil {
		t.Fatalf("fonts --builtins: %v", err)
	}
	if !strings.Contains(stdout, "builtin:gobold\n") {
		t.Errorf("builtins output missing gobold:\n%s", stdout)
	}
}

// ///////////////////////////////////////////////
// logs Tests
// ///////////////////////////////////////////////

func TestLogsTail(t *testing.T) {
	dataDir := setupDataDir(t)
	logPath := filepath.Join(dataDir, paths.LogFile)
	os.WriteFile(logPath, []byte("one\ntwo\nthree\n"), 0o644)

	stdout, _, err := run(t, "logs", "-n", "2", "--data-dir", dataDir)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if stdout != "two\nthree\n" {
		t.Errorf("logs output = %q, want %q", stdout, "two\nthree\n")
	}
}

func TestLogsMissingFile(t *testing.T) {
	if _, _, err := run(t, "logs", "--data-dir", t.TempDir()); err == nil {
		t.Error("expected error when the log file does not exist")
	}
}
