package config

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/adrg/xdg"
	"github.com/gobwas/glob"
)

// Default configuration values.
const (
	// DefaultBatchSize is the number of projects summarized concurrently.
	// Summarizing is CPU bound and archives are read whole into memory, so
	// a small pool keeps memory flat on large corpora.
	DefaultBatchSize = 4

	// DefaultMaxUsers of 0 processes every user directory.
	DefaultMaxUsers = 0

	// AppName is the application name used for XDG directory paths.
	AppName = "ai2summary"

	// SummarySuffix is appended to the archive name (without extension)
	// to form the summary file name.
	SummarySuffix = "_summary"
)

// Config holds all configuration options for ai2summary.
// It is populated from CLI flags, the configuration file and the
// environment, then passed down explicitly.
type Config struct {
	// Targets are archives or project directories given as arguments.
	Targets []string

	// UsersDir is the root of a corpus laid out as <user>/<project>.
	UsersDir string

	// MaxUsers limits how many user directories of UsersDir are visited.
	// 0 means all.
	MaxUsers int

	// BatchSize is the number of projects summarized concurrently.
	BatchSize int

	// OutputDir receives the summary files. When empty each summary is
	// written next to its archive.
	OutputDir string

	// Stdout prints summaries to standard output instead of writing files.
	Stdout bool

	// MarkdownReport also writes a Markdown report next to each summary.
	MarkdownReport bool

	// Compact prints one summary per line with --stdout.
	Compact bool

	// LegacyJSON writes summaries with ':' separators, \uXXXX escapes for
	// non-ASCII text and no trailing newline, as earlier corpora were.
	LegacyJSON bool

	// ContinueOnError keeps running the remaining steps of a project after
	// one fails and still writes its partial summary.
	ContinueOnError bool

	// MediaDetails enables EXIF inspection of image assets.
	MediaDetails bool

	// MediaIgnore holds glob patterns of media base names left out of
	// the "*Media Assets" list.
	MediaIgnore []string

	// Exclude holds glob patterns of <user>/<project> paths or project
	// names skipped during discovery.
	Exclude []string

	// SkipUnchanged skips archives whose digest is already in the history
	// database.
	SkipUnchanged bool

	// SaveToDB records every summary in the history database.
	SaveToDB bool

	// DBDir is the directory holding the history database.
	// Defaults to the XDG data directory (~/.local/share/ai2summary on Linux).
	DBDir string

	// KeepZips keeps the archives created from project directories.
	KeepZips bool

	// MetricsFile is the path of a Prometheus textfile written after the
	// run. Empty disables metrics output.
	MetricsFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .ai2summary is searched in the current directory and then
	// in the user's home directory.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON writes logs as JSON lines instead of text.
	LogJSON bool

	// File holds the settings loaded from the configuration file.
	File *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize: DefaultBatchSize,
		MaxUsers:  DefaultMaxUsers,
		SaveToDB:  true,
		DBDir:     XDGDataDir(),
		File:      NewFile(),
	}
}

// XDGDataDir returns the XDG data directory for ai2summary.
// On Linux: ~/.local/share/ai2summary
// On macOS: ~/Library/Application Support/ai2summary
// On Windows: %LOCALAPPDATA%\ai2summary
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ai2summary.
// FindConfigFile looks for XDGConfigFile there.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 && c.UsersDir == "" {
		return ErrNoTarget
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxUsers < 0 {
		return ErrInvalidMaxUsers
	}
	if c.Stdout && c.OutputDir != "" {
		return ErrConflictingOutputs
	}
	if c.Compact && !c.Stdout {
		return ErrCompactWithoutStdout
	}
	if c.Compact && c.LegacyJSON {
		return ErrConflictingLayouts
	}

	patterns := append(append([]string{}, c.Exclude...), c.MediaIgnore...)
	if c.File != nil {
		patterns = append(patterns, c.File.Defaults.MediaIgnore...)
		for _, u := range c.File.Users {
			patterns = append(patterns, u.MediaIgnore...)
		}
	}
	for _, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
		}
	}
	return nil
}

// UserSettings returns the effective settings for a user directory:
// the file settings for that user merged over the file defaults, with the
// command line media options added on top.
func (c *Config) UserSettings(user string) UserConfig {
	var settings UserConfig
	if c.File != nil {
		settings = c.File.GetUserConfig(user)
	}
	settings.MediaIgnore = append(append([]string{}, settings.MediaIgnore...), c.MediaIgnore...)
	if c.MediaDetails {
		settings.MediaDetails = true
	}
	return settings
}

// DiscoveryExcludes returns the exclude patterns used when walking the
// users directory: Exclude plus one "<user>/*" pattern per user marked
// skip in the configuration file, so their project directories are never
// zipped.
func (c *Config) DiscoveryExcludes() []string {
	patterns := append([]string{}, c.Exclude...)
	if c.File == nil {
		return patterns
	}
	skipped := slices.Sorted(maps.Keys(c.File.SkippedUsers()))
	for _, user := range skipped {
		patterns = append(patterns, glob.QuoteMeta(user)+"/*")
	}
	return patterns
}

