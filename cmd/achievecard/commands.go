package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	rootpkg "tools.zach/dev/achievecard"
	"tools.zach/dev/achievecard/internal/atomicfile"
	"tools.zach/dev/achievecard/internal/fonts"
	"tools.zach/dev/achievecard/internal/logger"
)

// ///////////////////////////////////////////////
// config
// ///////////////////////////////////////////////

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(a))
	cmd.AddCommand(newConfigShowCmd(a))
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the documented default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLenientConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(a.configPath), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			if err := atomicfile.Write(a.configPath, rootpkg.DefaultConfigTOML, 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			a.log.Info("wrote default config", "path", a.configPath)
			fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.cfg.Encode(cmd.OutOrStdout())
		},
	}
}

// ///////////////////////////////////////////////
// fonts
// ///////////////////////////////////////////////

func newFontsCmd(a *app) *cobra.Command {
	var (
		preset   string
		builtins bool
	)
	cmd := &cobra.Command{
		Use:   "fonts",
		Short: "Show which font each text block resolves to",
		Long: `Resolve the title and description font lists the same way render does and
print the source that won. Google fonts are downloaded into the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if builtins {
				for _, name := range fonts.Builtins() {
					fmt.Fprintln(out, "builtin:"+name)
				}
				return nil
			}

			style, err := a.cfg.BadgeStyle(preset)
			if err != nil {
				return err
			}
			p := a.fontProvider(a.cfg)
			set := a.cfg.FontSet()

			blocks := []struct {
				name string
				ids  []string
				size int
			}{
				{"title", set.Title, style.TitleFontSize},
				{"description", set.Description, style.DescFontSize},
			}
			for _, b := range blocks {
				h := p.Resolve(cmd.Context(), b.ids, float64(b.size))
				fmt.Fprintf(out, "%-12s %3dpx  %s\n", b.name, b.size, h.Source())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use the font sizes of this preset")
	cmd.Flags().BoolVar(&builtins, "builtins", false, "list the embedded fonts instead")
	return cmd
}

// ///////////////////////////////////////////////
// logs
// ///////////////////////////////////////////////

func newLogsCmd(a *app) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:         "logs",
		Short:       "Print the end of the log file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationLenientConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			tail, err := logger.ReadTail(a.dataDir.Log(), lines)
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}
			if tail == "" {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(tail, "\n"))
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to print")
	return cmd
}
