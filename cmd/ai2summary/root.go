package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ai2summary.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai2summary",
		Short: "Summarize App Inventor project archives",
		Long: `ai2summary reads App Inventor project archives (.aia or .zip) and writes a
JSON summary per project: the project name, its screens, the component types
and text of every screen, frequency tables of the blocks reachable from an
event or declaration (active) and of the detached ones (orphan), and the
media assets.

Summaries are recorded in a local history database so unchanged archives can
be skipped on later runs.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewSummarizeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCleanCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
