package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/ai2summary/internal/archive"
)

// NewCleanCmd creates the clean command.
func NewCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean USERS_DIR",
		Short: "Remove archives generated from project directories",
		Long: `Clean removes the files with the given extension that sit directly inside
each user directory of a corpus. Use it to drop the .zip archives left behind
by 'summarize --keep-zips'.

Examples:
  # Show what would be removed
  ai2summary clean ./corpus --dry-run

  # Remove generated archives
  ai2summary clean ./corpus`,
		Args: cobra.ExactArgs(1),
		RunE: runCleanCmd,
	}

	cmd.Flags().String("ext", archive.ExtZIP,
		"Extension of the files to remove")
	cmd.Flags().Bool("dry-run", false,
		"List the files without removing them")

	return cmd
}

// runCleanCmd executes the clean command.
func runCleanCmd(cmd *cobra.Command, args []string) error {
	ext, err := cmd.Flags().GetString("ext")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	removed, err := archive.Cleanup(args[0], ext, dryRun)

	out := cmd.OutOrStdout()
	verb := "removed"
	if dryRun {
		verb = "would remove"
	}
	for _, p := range removed {
		fmt.Fprintf(out, "%s %s\n", verb, p)
	}
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(out, "%d file(s) to remove\n", len(removed))
	} else {
		fmt.Fprintf(out, "%d file(s) removed\n", len(removed))
	}
	return nil
}
