package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/ai2summary/internal/archive"
	"github.com/nao1215/ai2summary/internal/config"
	"github.com/nao1215/ai2summary/internal/database"
	"github.com/nao1215/ai2summary/internal/log"
	"github.com/nao1215/ai2summary/internal/metrics"
	"github.com/nao1215/ai2summary/internal/model"
	"github.com/nao1215/ai2summary/internal/pipeline"
	"github.com/nao1215/ai2summary/internal/report"
)

// errProjectsFailed is returned when at least one project could not be
// summarized.
var errProjectsFailed = errors.New("some projects failed")

// NewSummarizeCmd creates the summarize command.
func NewSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [archive|project-dir ...]",
		Short: "Summarize App Inventor projects",
		Long: `Summarize reads App Inventor project archives and writes one
<archive>_summary.json per project.

Targets are .aia/.zip archives or unpacked project directories (zipped to a
temporary archive first). With --users-dir, every project of a corpus laid
out as <users-dir>/<user>/<project> is summarized.

Examples:
  # Summarize one archive; writes HelloPurr_summary.json next to it
  ai2summary summarize HelloPurr.aia

  # Summarize the projects of the first 10 users of a corpus, 8 at a time
  ai2summary summarize --users-dir ./corpus --max-users 10 -b 8

  # Print the summary instead of writing files
  ai2summary summarize --stdout HelloPurr.aia

  # Also write Markdown reports and inspect images for EXIF metadata
  ai2summary summarize -m --media-details -o ./summaries HelloPurr.aia

  # Skip archives already summarized in an earlier run
  ai2summary summarize --skip-unchanged --users-dir ./corpus`,
		Args: cobra.ArbitraryArgs,
		RunE: runSummarizeCmd,
	}

	// Target flags
	cmd.Flags().StringP("users-dir", "u", "",
		"Corpus directory laid out as <user>/<project>")
	cmd.Flags().IntP("max-users", "n", config.DefaultMaxUsers,
		"Only visit the first N user directories (0 = all)")
	cmd.Flags().StringSliceP("exclude", "x", nil,
		"Glob patterns of <user>/<project> paths or project names to skip")

	// Processing flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of projects summarized concurrently")
	cmd.Flags().Bool("media-details", false,
		"Inspect image assets for EXIF metadata")
	cmd.Flags().StringSlice("media-ignore", nil,
		"Glob patterns of media file names left out of the media listing")
	cmd.Flags().Bool("skip-unchanged", false,
		"Skip archives whose digest was already summarized")
	cmd.Flags().Bool("continue-on-error", false,
		"Keep summarizing the other screens of a failing project and write the partial summary")

	// Output flags
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory for summary files (default: next to each archive)")
	cmd.Flags().Bool("stdout", false,
		"Print summaries to standard output instead of writing files")
	cmd.Flags().Bool("compact", false,
		"With --stdout, print one summary per line")
	cmd.Flags().Bool("legacy-json", false,
		"Write summaries byte for byte like the Python summarizer (no space after ':', ASCII only)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Also write a Markdown report per project")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus metrics of the run to this textfile")
	cmd.Flags().Bool("keep-zips", false,
		"Keep archives created from project directories")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON lines")

	// History flags
	cmd.Flags().Bool("no-db", false,
		"Do not record summaries in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Configuration
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ai2summary in current or home directory)")
	cmd.Flags().String("env-file", ".env",
		"Environment file with AI2SUMMARY_* overrides")

	return cmd
}

// runSummarizeCmd executes the summarize command.
func runSummarizeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.LogJSON {
		logger = log.NewSecureJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runSummarize(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the defaults, the configuration file,
// the environment and the command flags, in increasing precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	// An explicit config path must exist; otherwise a missing file is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(cf, flags.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	envFile, err := flags.GetString("env-file")
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnv(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if flags.Changed("batch") {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}

	if cfg.UsersDir, err = flags.GetString("users-dir"); err != nil {
		return nil, err
	}
	if cfg.MaxUsers, err = flags.GetInt("max-users"); err != nil {
		return nil, err
	}
	exclude, err := flags.GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}
	cfg.Exclude = append(cfg.Exclude, exclude...)
	if cfg.MediaDetails, err = flags.GetBool("media-details"); err != nil {
		return nil, err
	}
	if cfg.MediaIgnore, err = flags.GetStringSlice("media-ignore"); err != nil {
		return nil, err
	}
	if cfg.SkipUnchanged, err = flags.GetBool("skip-unchanged"); err != nil {
		return nil, err
	}
	if cfg.ContinueOnError, err = flags.GetBool("continue-on-error"); err != nil {
		return nil, err
	}
	if cfg.Stdout, err = flags.GetBool("stdout"); err != nil {
		return nil, err
	}
	if cfg.Compact, err = flags.GetBool("compact"); err != nil {
		return nil, err
	}
	if cfg.LegacyJSON, err = flags.GetBool("legacy-json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return nil, err
	}
	if cfg.KeepZips, err = flags.GetBool("keep-zips"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args

	return cfg, nil
}

// collectProjects resolves the command line targets and walks the users
// directory. Projects of users marked skip are left out before their
// directories are zipped. On error the projects collected so far are still
// returned, so their temporary archives can be removed.
func collectProjects(cfg *config.Config, logger *slog.Logger) ([]archive.Project, error) {
	projects := make([]archive.Project, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		p, err := archive.ResolveTarget(target)
		if err != nil {
			return projects, err
		}
		projects = append(projects, p)
	}

	if cfg.UsersDir == "" {
		return projects, nil
	}

	exclude, err := archive.CompilePatterns(cfg.DiscoveryExcludes())
	if err != nil {
		return projects, err
	}
	found, err := archive.FindProjects(cfg.UsersDir, cfg.MaxUsers, exclude)
	if err != nil {
		return append(projects, found...), err
	}
	for _, p := range found {
		if cfg.UserSettings(p.User).Skip {
			logger.Debug("skipping project of skipped user", "user", p.User, "source", p.Path)
			if err := p.Remove(); err != nil {
				logger.Warn("failed to remove temporary archive", "source", p.Path, "error", err)
			}
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// newPipelineFactory returns a factory building each project's pipeline
// from the settings of its user.
func newPipelineFactory(cfg *config.Config, logger *slog.Logger) func(archive.Project) *pipeline.Pipeline {
	return func(p archive.Project) *pipeline.Pipeline {
		settings := cfg.UserSettings(p.User)
		ignore, err := archive.CompilePatterns(settings.MediaIgnore)
		if err != nil {
			// Patterns were checked by Validate; keep going without them.
			logger.Warn("ignoring invalid media patterns", "user", p.User, "error", err)
			ignore = nil
		}
		return pipeline.NewProjectPipeline(pipeline.Settings{
			MediaIgnore:     ignore,
			MediaDetails:    settings.MediaDetails,
			ContinueOnError: cfg.ContinueOnError,
		}, logger)
	}
}

// runSummarize summarizes every project of the configuration. Summaries go
// to files (or out with --stdout); the closing tally goes to out, or to
// errOut when out carries JSON.
func runSummarize(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) error {
	projects, err := collectProjects(cfg, logger)
	if !cfg.KeepZips {
		defer removeTemporary(projects, logger)
	}
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		logger.Warn("no projects found", "users_dir", cfg.UsersDir)
		return nil
	}

	var db *database.SummaryDB
	var runID string
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runID, err = db.StartRun(ctx, len(projects))
		if err != nil {
			return err
		}
		logger.Debug("history database opened", "path", db.Path(), "run", runID)
	}

	batchOpts := []pipeline.BatchOption{
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	}
	if cfg.SkipUnchanged {
		if db != nil {
			batchOpts = append(batchOpts, pipeline.WithSkipFunc(db.HasDigest))
		} else {
			logger.Warn("--skip-unchanged needs the history database; processing every archive")
		}
	}

	recorder := metrics.NewRecorder()
	fileOpts := report.FileOptions{
		OutputDir:  cfg.OutputDir,
		Markdown:   cfg.MarkdownReport,
		LegacyJSON: cfg.LegacyJSON,
	}
	batchOpts = append(batchOpts, pipeline.WithOnReport(func(r *model.ProjectReport) {
		if !cfg.Stdout && shouldWrite(cfg, r) {
			written, err := report.WriteFiles(r, fileOpts)
			if err != nil {
				logger.Error("failed to write summary", "source", r.Source, "error", err)
				r.SetError(err)
			}
			for _, p := range written {
				logger.Debug("summary written", "path", p)
			}
		}
		if db != nil {
			if _, err := db.SaveReport(ctx, runID, r); err != nil {
				logger.Error("failed to save summary", "source", r.Source, "error", err)
			}
		}
		recorder.Observe(r)
	}))
	bp := pipeline.NewBatchProcessor(newPipelineFactory(cfg, logger), batchOpts...)

	startTime := time.Now()
	results, batchErr := bp.ProcessBatch(ctx, projects)

	logger.Info("summarize complete",
		"projects", len(projects),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	tallyOut := out
	if cfg.Stdout {
		tallyOut = errOut
		if err := printSummaries(cfg, out, results); err != nil {
			return err
		}
	}

	sw := report.NewSimpleWriter(tallyOut, report.WithVerbose(cfg.Verbose))
	failed := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Failed() {
			failed++
		}
		if !cfg.Stdout {
			if _, err := sw.Write(r); err != nil {
				return err
			}
		}
	}
	if _, err := sw.WriteTotals(results); err != nil {
		return err
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if batchErr != nil {
		return batchErr
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errProjectsFailed, failed, len(projects))
	}
	return nil
}

// shouldWrite reports whether the summary of r goes out. A failed project
// is only written with --continue-on-error, once its archive was opened.
func shouldWrite(cfg *config.Config, r *model.ProjectReport) bool {
	if r.Skipped {
		return false
	}
	if r.Failed() {
		return cfg.ContinueOnError && r.Digest != ""
	}
	return true
}

// printSummaries writes the summaries of results to out in input order,
// one per line with --compact.
func printSummaries(cfg *config.Config, out io.Writer, results []*model.ProjectReport) error {
	var opts []report.JSONWriterOption
	if cfg.Compact {
		opts = append(opts, report.WithIndent(""))
	}
	if cfg.LegacyJSON {
		opts = append(opts, report.WithLegacyLayout())
	}
	jw := report.NewJSONWriter(out, opts...)
	for _, r := range results {
		if r == nil || !shouldWrite(cfg, r) {
			continue
		}
		if _, err := jw.Write(r); err != nil {
			return fmt.Errorf("failed to print summary: %w", err)
		}
		if cfg.LegacyJSON {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return fmt.Errorf("failed to print summary: %w", err)
			}
		}
	}
	return nil
}

// removeTemporary deletes the archives created from project directories.
func removeTemporary(projects []archive.Project, logger *slog.Logger) {
	for _, p := range projects {
		if err := p.Remove(); err != nil {
			logger.Warn("failed to remove temporary archive", "source", p.Path, "error", err)
		}
	}
}
