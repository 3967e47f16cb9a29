// Package main provides the entry point for the ai2summary CLI.
//
// ai2summary summarizes App Inventor project archives (.aia/.zip): for each
// screen it counts the declared components and classifies the blocks into
// active and orphan groups, writing one <project>_summary.json per project.
//
// Usage:
//
//	ai2summary summarize <archive|project-dir>...
//	ai2summary summarize --users-dir <corpus>
//
// See --help for all available options.
package main

// main is the entry point for ai2summary.
func main() {
	Execute()
}
