// Package database provides SQLite-based history storage for ai2summary.
//
// Every summarize run gets a row in the runs table, identified by a UUID.
// Every processed project gets a row in the summaries table holding the
// archive digest, a few headline counts and the full report as JSON. The
// digest lets later runs skip archives that have not changed.
//
// The database lives in a single file under the XDG data directory and is
// opened through the CGO-free modernc.org/sqlite driver.
package database
