// Package main implements the achievecard CLI, which renders achievement
// badges to PNG files and manages the configuration that styles them.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"tools.zach/dev/achievecard/internal/config"
	"tools.zach/dev/achievecard/internal/fonts"
	"tools.zach/dev/achievecard/internal/logger"
	"tools.zach/dev/achievecard/internal/paths"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//   - goreleaser: -X main.version={{.Version}}  -> "0.1.0"
//   - make build: -X main.version=$(VERSION)    -> "0.0.0-dev+05ffee5"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags it is returned as-is; otherwise the embedded VCS revision and dirty
// state produce a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Application State
// ///////////////////////////////////////////////

// annotationLenientConfig marks commands that run with defaults when the
// config file cannot be loaded, so a broken file can still be replaced.
const annotationLenientConfig = "lenient-config"

// app carries global flags and the state set up before every command.
type app struct {
	dataDirFlag string
	configFlag  string
	verbose     bool

	dataDir    paths.DataDir
	configPath string
	cfg        *config.Config

	log    *slog.Logger
	closer io.Closer
	now    func() time.Time

	// fonts outlives single renders so watch mode keeps parsed faces and
	// remembered failures; fontOpts holds the settings it was built with.
	fonts    *fonts.Provider
	fontOpts fonts.Options
}

// setup resolves paths, loads the config and replaces the console-only
// logger with one that also writes the rotating log file.
func (a *app) setup(cmd *cobra.Command) error {
	if a.dataDirFlag != "" {
		a.dataDir = paths.DataDir{Root: a.dataDirFlag}
	} else {
		d, err := paths.Default()
		if err != nil {
			return err
		}
		a.dataDir = d
	}
	a.configPath = a.configFlag
	if a.configPath == "" {
		a.configPath = a.dataDir.Config()
	}

	cfg, cfgErr := config.LoadFile(a.configPath)
	if cfgErr != nil {
		if cmd.Annotations[annotationLenientConfig] == "" {
			return cfgErr
		}
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	consoleLevel := slog.LevelInfo
	if a.verbose {
		consoleLevel = slog.LevelDebug
	}
	log, closer, err := logger.New(logger.Options{
		File:         a.dataDir.Log(),
		FileLevel:    logger.ParseLevel(cfg.Log.Level),
		MaxSizeMB:    cfg.Log.MaxSizeMB,
		Console:      cmd.ErrOrStderr(),
		ConsoleLevel: consoleLevel,
	})
	a.log, a.closer = log, closer
	slog.SetDefault(log)
	if err != nil {
		log.Warn("file logging disabled", "error", err)
	}
	if cfgErr != nil {
		log.Warn("ignoring unreadable config", "path", a.configPath, "error", cfgErr)
	}

	log.Debug("achievecard starting", "version", resolveVersion(), "data_dir", a.dataDir.Root, "config", a.configPath)
	return nil
}

// fontProvider returns the shared provider for cfg, replacing it only when
// the cache dir, system list or Google endpoint differ from the last call.
// Font lists need no rebuild since the cache is keyed by identifier.
func (a *app) fontProvider(cfg *config.Config) *fonts.Provider {
	opts := cfg.FontOptions(a.dataDir)
	opts.Logger = a.log
	if a.fonts != nil && sameFontOptions(a.fontOpts, opts) {
		return a.fonts
	}
	if a.fonts != nil {
		a.log.Debug("font settings changed, resetting font cache")
	}
	a.fonts = fonts.New(opts)
	a.fontOpts = opts
	return a.fonts
}

func sameFontOptions(x, y fonts.Options) bool {
	return x.CacheDir == y.CacheDir &&
		x.GoogleCSSURL == y.GoogleCSSURL &&
		slices.Equal(x.System, y.System)
}

func (a *app) close() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
}

// ///////////////////////////////////////////////
// Root Command
// ///////////////////////////////////////////////

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           paths.BinaryName,
		Short:         "Render achievement badges",
		Long:          `achievecard renders small achievement notification cards (icon, title, description and an optional rarity glow) to PNG files.`,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.SetVersionTemplate(paths.BinaryName + " {{.Version}}\n")
	root.PersistentFlags().StringVar(&a.dataDirFlag, "data-dir", "", "data directory for config, logs and font cache (default ~/"+paths.DataDirRel+")")
	root.PersistentFlags().StringVar(&a.configFlag, "config", "", "config file (default <data-dir>/"+paths.ConfigFile+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newFontsCmd(a))
	root.AddCommand(newLogsCmd(a))
	return root
}

// execute runs the CLI with args and reports a failed command through the
// console logger.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{
		log: slog.New(logger.NewConsole(stderr, slog.LevelInfo)),
		now: time.Now,
	}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.log.Error(err.Error())
		return err
	}
	return nil
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
