// Package model defines the data structures shared by the ai2summary packages.
//
// This package contains the following main types:
//   - PayloadRecord: the data extracted from one block node
//   - FrequencyTable: value to occurrence count
//   - Result: a summary value or a sentinel string (e.g. "no blocks")
//   - ScreenSummary, BlockSummary, GroupSummary, ComponentSummary: per-screen metrics
//   - ProjectSummary: the per-project JSON document
//   - ProjectReport: the envelope a pipeline run fills (source, digest, errors, media details)
//
// Every summary type serializes with keys in ascending byte order so that
// reports diff cleanly across runs. Keys prefixed with "*" and "**" sort
// before alphabetic keys on purpose.
package model
