// Package config provides configuration structures and utilities for
// ai2summary. It defines the options for finding projects, summarizing
// them concurrently and writing reports, and loads per-user settings from
// a YAML or TOML configuration file.
package config
