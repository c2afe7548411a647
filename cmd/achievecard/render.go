package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"tools.zach/dev/achievecard/internal/atomicfile"
	"tools.zach/dev/achievecard/internal/badge"
	"tools.zach/dev/achievecard/internal/config"
	"tools.zach/dev/achievecard/internal/paths"
	"tools.zach/dev/achievecard/internal/watch"
)

// watchSettle is how long the watch loop waits for a burst of writes to end
// before re-rendering.
const watchSettle = 150 * time.Millisecond

type renderOptions struct {
	title       string
	description string
	icon        string
	rare        bool
	preset      string
	out         string
	outDir      string
	watch       bool
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a badge to a PNG file",
		Long: `Render a badge from a title, an optional description and an icon image.

The badge is written to <out-dir>/<prefix>_YYYYmmdd_HHMMSS.png unless --out
names the file. With --watch the badge is rendered again whenever the icon or
the config file changes, until interrupted.`,
		Example: `  achievecard render --title "Master Chef" --description "Cook 100 dishes" --icon chef.png
  achievecard render --title "Untouchable" --icon shield.png --rare --preset legendary --out badge.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.watch {
				return a.watchRender(cmd.Context(), cmd.OutOrStdout(), opts)
			}
			_, err := a.render(cmd.Context(), cmd.OutOrStdout(), a.cfg, opts)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.title, "title", "t", "", "badge title")
	f.StringVarP(&opts.description, "description", "d", "", "badge description")
	f.StringVarP(&opts.icon, "icon", "i", "", "icon image (PNG, JPEG, GIF, BMP or TIFF)")
	f.BoolVarP(&opts.rare, "rare", "r", false, "draw the rarity glow behind the icon")
	f.StringVarP(&opts.preset, "preset", "p", "", "style preset from the config file")
	f.StringVarP(&opts.out, "out", "o", "", "output file")
	f.StringVar(&opts.outDir, "out-dir", "", "output directory (default from config)")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-render when the icon or config changes")

	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("icon")
	cmd.MarkFlagsMutuallyExclusive("out", "out-dir")

	return cmd
}

// render paints one badge with cfg, writes it atomically and prints its path.
func (a *app) render(ctx context.Context, w io.Writer, cfg *config.Config, opts renderOptions) (string, error) {
	style, err := cfg.BadgeStyle(opts.preset)
	if err != nil {
		return "", err
	}

	icon, err := imaging.Open(opts.icon)
	if err != nil {
		return "", fmt.Errorf("open icon: %w", err)
	}

	r, err := badge.NewRenderer(style, a.fontProvider(cfg).Resolver(ctx), cfg.FontSet())
	if err != nil {
		return "", err
	}
	img, err := r.Render(badge.Request{
		Title:       opts.title,
		Description: opts.description,
		Icon:        icon,
		Rare:        opts.rare,
	})
	if err != nil {
		return "", fmt.Errorf("render badge: %w", err)
	}

	path := outputPath(cfg, opts, a.now())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	err = atomicfile.WriteFunc(path, 0o644, func(w io.Writer) error {
		return imaging.Encode(w, img, imaging.PNG)
	})
	if err != nil {
		return "", fmt.Errorf("write badge: %w", err)
	}

	a.log.Debug("badge written", "path", path, "rare", opts.rare, "preset", opts.preset)
	fmt.Fprintln(w, path)
	return path, nil
}

// outputPath returns --out when given, otherwise a timestamped name in
// --out-dir or the configured output directory.
func outputPath(cfg *config.Config, opts renderOptions, t time.Time) string {
	if opts.out != "" {
		return opts.out
	}
	dir := opts.outDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	return filepath.Join(dir, paths.OutputName(cfg.Output.Prefix, t))
}

// ///////////////////////////////////////////////
// Watch Mode
// ///////////////////////////////////////////////

// watchRender renders once and then again after every change to the icon or
// config file. Render and config errors are logged and the loop keeps going,
// so fixing the file recovers without a restart.
func (a *app) watchRender(ctx context.Context, w io.Writer, opts renderOptions) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	watcher, err := watch.New(opts.icon, a.configPath)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()
	if watcher.Polling() {
		a.log.Info("using polling mode for file watching")
	}

	if _, err := a.render(ctx, w, a.cfg, opts); err != nil {
		a.log.Error("render failed", "error", err)
	}
	a.log.Info("watching for changes", "icon", opts.icon, "config", a.configPath)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("stopped watching")
			return nil
		case <-watcher.Events():
		}
		if !settle(ctx, watcher.Events()) {
			a.log.Info("stopped watching")
			return nil
		}

		cfg, err := config.LoadFile(a.configPath)
		if err != nil {
			a.log.Error("reload config failed", "path", a.configPath, "error", err)
			continue
		}
		if _, err := a.render(ctx, w, cfg, opts); err != nil {
			a.log.Error("render failed", "error", err)
		}
	}
}

// settle waits until events has been quiet for [watchSettle]. It returns
// false when ctx ends first.
func settle(ctx context.Context, events <-chan struct{}) bool {
	t := time.NewTimer(watchSettle)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-events:
			t.Reset(watchSettle)
		case <-t.C:
			return true
		}
	}
}
