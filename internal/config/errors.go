package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while users still get a readable message.
var (
	// ErrNoTarget is returned when neither an archive argument nor a users
	// directory is given.
	ErrNoTarget = errors.New("no target specified: provide archives, project directories or --users-dir")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxUsers is returned when the user limit is negative.
	// Use 0 to process every user.
	ErrInvalidMaxUsers = errors.New("invalid max users: must be non-negative")

	// ErrConflictingOutputs is returned when both --stdout and --output-dir
	// are specified.
	ErrConflictingOutputs = errors.New("conflicting outputs: --stdout and --output-dir cannot be used together")

	// ErrCompactWithoutStdout is returned when --compact is given without
	// --stdout.
	ErrCompactWithoutStdout = errors.New("--compact only applies to --stdout output")

	// ErrConflictingLayouts is returned when both --compact and
	// --legacy-json are specified.
	ErrConflictingLayouts = errors.New("conflicting JSON layouts: --compact and --legacy-json cannot be used together")

	// ErrInvalidPattern is returned when an exclude or media ignore pattern
	// is not a valid glob.
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrUnsupportedConfigFormat is returned when a configuration file has
	// an extension other than .yaml, .yml, .toml or none.
	ErrUnsupportedConfigFormat = errors.New("unsupported configuration file format")
)
