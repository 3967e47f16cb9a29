package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".ai2summary"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// Environment variables read from the process environment or a .env file.
const (
	// EnvDBDir overrides the history database directory.
	EnvDBDir = "AI2SUMMARY_DB_DIR"

	// EnvBatchSize overrides the batch size.
	EnvBatchSize = "AI2SUMMARY_BATCH"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a configuration file. Files ending in .toml are
// parsed as TOML; .yaml, .yml and extensionless files as YAML.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if filepath.Base(path) == DefaultConfigFile {
		ext = ""
	}

	cf := NewFile()
	switch ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cf); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case "", ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigFormat, ext)
	}

	if cf.Users == nil {
		cf.Users = make(map[string]UserConfig)
	}
	return cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .ai2summary in the current directory
// 3. Look for .ai2summary in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), XDGConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// LoadEnv reads envFile (when it exists) into the process environment
// without overriding variables that are already set. An empty envFile
// means ".env" in the current directory.
func LoadEnv(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return nil
}

// ApplyEnv copies the AI2SUMMARY_* environment overrides into c. Flags
// that were set explicitly are applied afterwards by the caller and win.
func (c *Config) ApplyEnv() error {
	if dir := os.Getenv(EnvDBDir); dir != "" {
		c.DBDir = dir
	}
	if v := os.Getenv(EnvBatchSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidBatchSize, EnvBatchSize, v)
		}
		c.BatchSize = n
	}
	return nil
}

// ApplyFile copies the run-wide settings of the configuration file into c.
// Values already set from flags are left alone when flagSet reports true
// for their flag name.
func (c *Config) ApplyFile(cf *File, flagSet func(name string) bool) {
	if cf == nil {
		return
	}
	c.File = cf
	if cf.BatchSize > 0 && !flagSet("batch") {
		c.BatchSize = cf.BatchSize
	}
	if cf.OutputDir != "" && !flagSet("output-dir") {
		c.OutputDir = cf.OutputDir
	}
	c.Exclude = append(c.Exclude, cf.Exclude...)
}
