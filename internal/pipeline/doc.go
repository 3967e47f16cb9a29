// Package pipeline builds project summaries by running a sequence of steps
// over an opened archive.
//
// A project goes through the project-name, screens and media steps, and
// optionally media-details. Each step receives a Job holding the archive and
// the report under construction. A step error aborts that project only; the
// error is recorded in its report.
//
// BatchProcessor summarizes many projects concurrently with errgroup while
// keeping results in input order.
package pipeline
