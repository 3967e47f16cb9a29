package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/ai2summary/internal/config"
	"github.com/nao1215/ai2summary/internal/database"
	"github.com/nao1215/ai2summary/internal/report"
)

// errHistoryAction is returned when history is called without an action.
var errHistoryAction = errors.New("specify one of --list-projects, --list or --show")

// NewHistoryCmd creates the history command.
// This command reads summaries recorded by earlier summarize runs.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show summaries recorded by earlier runs",
		Long: `History reads the summaries recorded in the history database.

Examples:
  # List every project name in the database
  ai2summary history --list-projects

  # List the recorded summaries of a project
  ai2summary history --list HelloPurr

  # Print a recorded summary as JSON, or as a Markdown report
  ai2summary history --show 12
  ai2summary history --show 12 --markdown

  # Print the whole stored report (digest, timings, media details)
  ai2summary history --show 12 --full`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-projects", "L", false,
		"List all summarized project names")
	cmd.Flags().StringP("list", "l", "",
		"List the recorded summaries of the named project")
	cmd.Flags().Int64P("show", "s", 0,
		"Print the summary with this ID (use --list to see available IDs)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print --show output as Markdown")
	cmd.Flags().Bool("full", false,
		"Print the complete stored report with --show")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	listProjects, err := flags.GetBool("list-projects")
	if err != nil {
		return err
	}
	listName, err := flags.GetString("list")
	if err != nil {
		return err
	}
	showID, err := flags.GetInt64("show")
	if err != nil {
		return err
	}
	markdownOut, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	full, err := flags.GetBool("full")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	if !listProjects && listName == "" && showID == 0 {
		return errHistoryAction
	}

	dbDir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		cfg := config.NewConfig()
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		dbDir = cfg.DBDir
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no history found (run 'ai2summary summarize' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case listProjects:
		return listSummarizedProjects(ctx, db, out)
	case listName != "":
		return listProjectHistory(ctx, db, out, listName)
	default:
		return showSummary(ctx, db, out, showID, markdownOut, full)
	}
}

// listSummarizedProjects prints every project name in the database.
func listSummarizedProjects(ctx context.Context, db *database.SummaryDB, out io.Writer) error {
	projects, err := db.ListProjects(ctx)
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects summarized yet")
		return nil
	}

	fmt.Fprintf(out, "Summarized projects (%d):\n\n", len(projects))
	for _, name := range projects {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	return nil
}

// listProjectHistory prints the recorded summaries of one project.
func listProjectHistory(ctx context.Context, db *database.SummaryDB, out io.Writer, name string) error {
	history, err := db.GetHistory(ctx, name)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		fmt.Fprintf(out, "No summaries found for %s\n", name)
		return nil
	}

	fmt.Fprintf(out, "Summaries of %s (%d):\n\n", name, len(history))
	fmt.Fprintf(out, "  %-6s  %-20s  %-12s  %7s  %7s  %7s  %s\n",
		"ID", "Date", "Digest", "Screens", "Active", "Orphan", "Status")
	for _, h := range history {
		status := "ok"
		if h.Error != "" {
			status = "error: " + h.Error
		}
		digest := h.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		fmt.Fprintf(out, "  %-6d  %-20s  %-12s  %7d  %7d  %7d  %s\n",
			h.ID,
			h.Timestamp.Format("2006-01-02 15:04:05"),
			digest,
			h.Screens,
			h.ActiveBlocks,
			h.OrphanBlocks,
			status,
		)
	}
	return nil
}

// showSummary prints one recorded summary.
func showSummary(ctx context.Context, db *database.SummaryDB, out io.Writer, id int64, markdownOut, full bool) error {
	r, err := db.GetReportByID(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("summary %d: %w", id, os.ErrNotExist)
	}

	var w report.Writer
	switch {
	case markdownOut:
		w = report.NewMarkdownWriter(out)
	case full:
		w = report.NewJSONWriter(out, report.WithEnvelope())
	default:
		w = report.NewJSONWriter(out)
	}
	_, err = w.Write(r)
	return err
}
