package config

// UserConfig holds settings that can differ per user directory.
type UserConfig struct {
	// Skip leaves every project of the user out of the run.
	Skip bool `yaml:"skip,omitempty" toml:"skip,omitempty"`

	// MediaDetails enables EXIF inspection for the user's projects.
	MediaDetails bool `yaml:"mediaDetails,omitempty" toml:"mediaDetails,omitempty"`

	// MediaIgnore holds glob patterns of media base names to leave out.
	MediaIgnore []string `yaml:"mediaIgnore,omitempty" toml:"mediaIgnore,omitempty"`
}

// File represents the structure of the .ai2summary configuration file.
type File struct {
	// BatchSize overrides the default batch size when the flag is not set.
	BatchSize int `yaml:"batchSize,omitempty" toml:"batchSize,omitempty"`

	// OutputDir overrides the default output directory when the flag is not set.
	OutputDir string `yaml:"outputDir,omitempty" toml:"outputDir,omitempty"`

	// Exclude holds discovery exclude patterns added to the flag values.
	Exclude []string `yaml:"exclude,omitempty" toml:"exclude,omitempty"`

	// Defaults applies to every user unless overridden.
	Defaults UserConfig `yaml:"defaults,omitempty" toml:"defaults,omitempty"`

	// Users maps user directory names to their settings.
	Users map[string]UserConfig `yaml:"users,omitempty" toml:"users,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{Users: make(map[string]UserConfig)}
}

// GetUserConfig returns the configuration for a user directory merged
// with the defaults. Booleans set in either place are kept; a non-empty
// pattern list of the user replaces the default list.
func (cf *File) GetUserConfig(user string) UserConfig {
	result := cf.Defaults
	result.MediaIgnore = append([]string{}, cf.Defaults.MediaIgnore...)

	if userConfig, ok := cf.Users[user]; ok {
		if userConfig.Skip {
			result.Skip = true
		}
		if userConfig.MediaDetails {
			result.MediaDetails = true
		}
		if len(userConfig.MediaIgnore) > 0 {
			result.MediaIgnore = append([]string{}, userConfig.MediaIgnore...)
		}
	}
	return result
}

// SkippedUsers returns the names of users marked skip.
func (cf *File) SkippedUsers() map[string]bool {
	skipped := make(map[string]bool)
	for name, u := range cf.Users {
		if u.Skip {
			skipped[name] = true
		}
	}
	return skipped
}
