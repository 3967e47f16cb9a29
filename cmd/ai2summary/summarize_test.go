package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nao1215/ai2summary/internal/archive"
	"github.com/nao1215/ai2summary/internal/config"
)

// writeConfig writes a YAML configuration file and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "ai2summary.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

// parseSummarize parses args with the summarize flags and builds the config.
func parseSummarize(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	cmd := NewSummarizeCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return buildConfig(cmd, cmd.Flags().Args())
}

const testConfig = `batchSize: 6
outputDir: from-file
exclude:
  - "*/tmp*"
defaults:
  mediaIgnore:
    - ".DS_Store"
users:
  bob:
    skip: true
`

// TestNewSummarizeCmd tests the summarize command flags.
func TestNewSummarizeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewSummarizeCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{name: "users-dir", shorthand: "u", defValue: ""},
		{name: "max-users", shorthand: "n", defValue: "0"},
		{name: "batch", shorthand: "b", defValue: "4"},
		{name: "output-dir", shorthand: "o", defValue: ""},
		{name: "markdown", shorthand: "m", defValue: "false"},
		{name: "config", shorthand: "c", defValue: ""},
		{name: "stdout", defValue: "false"},
		{name: "skip-unchanged", defValue: "false"},
		{name: "no-db", defValue: "false"},
		{name: "keep-zips", defValue: "false"},
		{name: "compact", defValue: "false"},
		{name: "legacy-json", defValue: "false"},
		{name: "continue-on-error", defValue: "false"},
		{name: "log-json", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("shorthand = %q, want %q", flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("default = %q, want %q", flag.DefValue, tt.defValue)
			}
		})
	}
}

// TestBuildConfig tests the precedence of flags, environment and file.
// It is not parallel because it changes the process environment.
func TestBuildConfig(t *testing.T) {
	cfgPath := writeConfig(t, testConfig)
	noEnv := filepath.Join(t.TempDir(), "missing.env")

	t.Run("file settings apply", func(t *testing.T) {
		t.Setenv(config.EnvBatchSize, "")

		cfg, err := parseSummarize(t, "-c", cfgPath, "--env-file", noEnv, "a.aia", "b.aia")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BatchSize != 6 || cfg.OutputDir != "from-file" {
			t.Errorf("BatchSize = %d, OutputDir = %q", cfg.BatchSize, cfg.OutputDir)
		}
		if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "*/tmp*" {
			t.Errorf("Exclude = %v", cfg.Exclude)
		}
		if len(cfg.Targets) != 2 {
			t.Errorf("Targets = %v", cfg.Targets)
		}
		if !cfg.UserSettings("bob").Skip {
			t.Error("bob should be skipped")
		}
		if !cfg.SaveToDB {
			t.Error("SaveToDB should default to true")
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv(config.EnvBatchSize, "9")

		cfg, err := parseSummarize(t, "-c", cfgPath, "--env-file", noEnv, "a.aia")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BatchSize != 9 {
			t.Errorf("BatchSize = %d, want 9", cfg.BatchSize)
		}
	})

	t.Run("flags override environment and file", func(t *testing.T) {
		t.Setenv(config.EnvBatchSize, "9")

		cfg, err := parseSummarize(t, "-c", cfgPath, "--env-file", noEnv,
			"-b", "2", "-o", "from-flag", "-x", "u1/*", "--no-db", "--media-details", "a.aia")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BatchSize != 2 || cfg.OutputDir != "from-flag" {
			t.Errorf("BatchSize = %d, OutputDir = %q", cfg.BatchSize, cfg.OutputDir)
		}
		if len(cfg.Exclude) != 2 {
			t.Errorf("Exclude = %v", cfg.Exclude)
		}
		if cfg.SaveToDB {
			t.Error("--no-db should disable the database")
		}
		if !cfg.UserSettings("anyone").MediaDetails {
			t.Error("--media-details should apply to every user")
		}
	})

	t.Run("env file is loaded", func(t *testing.T) {
		dbDir := filepath.Join(t.TempDir(), "db")
		envFile := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envFile, []byte(config.EnvDBDir+"="+dbDir+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(config.EnvBatchSize, "")
		t.Setenv(config.EnvDBDir, "")
		// godotenv does not override variables that exist, even empty ones.
		os.Unsetenv(config.EnvDBDir)

		cfg, err := parseSummarize(t, "-c", cfgPath, "--env-file", envFile, "a.aia")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDir != dbDir {
			t.Errorf("DBDir = %q, want %q", cfg.DBDir, dbDir)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		_, err := parseSummarize(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "a.aia")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

// TestCollectProjects tests project discovery from the configuration.
func TestCollectProjects(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// mkProject creates a project directory holding one file.
	mkProject := func(t *testing.T, dir ...string) {
		t.Helper()

		p := filepath.Join(dir...)
		if err := os.MkdirAll(p, 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(p, "project.properties"), []byte("name=x\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("skipped users are never zipped", func(t *testing.T) {
		t.Parallel()

		users := t.TempDir()
		mkProject(t, users, "alice", "Alpha")
		mkProject(t, users, "bob", "Beta")

		cfg := config.NewConfig()
		cf, err := config.LoadConfigFile(writeConfig(t, testConfig))
		if err != nil {
			t.Fatal(err)
		}
		cfg.ApplyFile(cf, func(string) bool { return false })
		cfg.UsersDir = users

		projects, err := collectProjects(cfg, logger)
		t.Cleanup(func() { removeTemporary(projects, logger) })
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []archive.Project{{Path: filepath.Join(users, "alice", "Alpha.zip"), User: "alice", Temporary: true}}
		if !reflect.DeepEqual(projects, want) {
			t.Errorf("projects = %+v, want %+v", projects, want)
		}
		if _, err := os.Stat(filepath.Join(users, "bob", "Beta.zip")); !os.IsNotExist(err) {
			t.Errorf("Beta.zip should not be created, stat error: %v", err)
		}
	})

	t.Run("failure keeps temporary archives for removal", func(t *testing.T) {
		t.Parallel()

		users := t.TempDir()
		mkProject(t, users, "u1", "Alpha")
		mkProject(t, users, "u2", "Beta")
		// A directory in the way of Beta.zip makes zipping Beta fail.
		if err := os.MkdirAll(filepath.Join(users, "u2", "Beta.zip"), 0o750); err != nil {
			t.Fatal(err)
		}

		cfg := config.NewConfig()
		cfg.UsersDir = users

		projects, err := collectProjects(cfg, logger)
		if err == nil {
			t.Fatal("expected an error")
		}
		alpha := filepath.Join(users, "u1", "Alpha.zip")
		want := []archive.Project{{Path: alpha, User: "u1", Temporary: true}}
		if !reflect.DeepEqual(projects, want) {
			t.Fatalf("projects = %+v, want %+v", projects, want)
		}

		removeTemporary(projects, logger)
		if _, err := os.Stat(alpha); !os.IsNotExist(err) {
			t.Errorf("%s should be removed, stat error: %v", alpha, err)
		}
	})
}
