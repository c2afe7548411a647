// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	ConfigFile   = "config.toml"
	LogFile      = "achievecard.log"
	FontCacheDir = "fonts"
)

const (
	BinaryName = "achievecard"
	DataDirRel = ".achievecard" // relative to $HOME
)

// Output naming. The timestamp layout sorts lexically in render order.
const (
	OutputPrefix    = "achievement"
	OutputExt       = ".png"
	OutputTimestamp = "20060102_150405"
)

// OutputName returns the badge file name for a render at t, for example
// "achievement_20261019_142501.png". An empty prefix uses [OutputPrefix].
func OutputName(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = OutputPrefix
	}
	return fmt.Sprintf("%s_%s%s", prefix, t.Format(OutputTimestamp), OutputExt)
}

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// Default returns the data directory under the user's home directory.
func Default() (DataDir, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataDir{}, fmt.Errorf("get home dir: %w", err)
	}
	return DataDir{Root: filepath.Join(home, DataDirRel)}, nil
}

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// FontCache returns the full path to the downloaded font cache directory.
func (d DataDir) FontCache() string { return filepath.Join(d.Root, FontCacheDir) }
