package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/ai2summary/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "ai2summary.db"

// SummaryDB provides SQLite-based storage for runs and project reports.
type SummaryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SummaryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so history queries can run
	// while a batch is writing.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SummaryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*SummaryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; batch workers share one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SummaryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *SummaryDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *SummaryDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SummaryDB) createTables() error {
	schema := `
	-- One row per summarize invocation
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		target_count INTEGER NOT NULL DEFAULT 0
	);

	-- One row per processed project archive
	CREATE TABLE IF NOT EXISTS summaries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		source TEXT NOT NULL,
		project_name TEXT NOT NULL DEFAULT '',
		digest TEXT NOT NULL DEFAULT '',
		screen_count INTEGER NOT NULL DEFAULT 0,
		active_blocks INTEGER NOT NULL DEFAULT 0,
		orphan_blocks INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		report_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_name ON summaries(project_name);
	CREATE INDEX IF NOT EXISTS idx_summaries_digest ON summaries(digest);
	CREATE INDEX IF NOT EXISTS idx_summaries_run ON summaries(run_id);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// StartRun records a new run covering targetCount projects and returns its ID.
func (sdb *SummaryDB) StartRun(ctx context.Context, targetCount int) (string, error) {
	id := uuid.NewString()
	if _, err := sdb.db.ExecContext(ctx,
		`INSERT INTO runs (id, target_count) VALUES (?, ?)`, id, targetCount); err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// SaveReport stores a project report under the given run and returns the
// new summary ID. Skipped reports are not stored.
func (sdb *SummaryDB) SaveReport(ctx context.Context, runID string, report *model.ProjectReport) (int64, error) {
	if report.Skipped {
		return 0, nil
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var name string
	if report.Summary != nil {
		name = report.Summary.Name
	}
	screens, active, orphan := report.Totals()

	query := `
	INSERT INTO summaries (run_id, source, project_name, digest, screen_count, active_blocks, orphan_blocks, error, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		runID,
		report.Source,
		name,
		report.Digest,
		screens,
		active,
		orphan,
		report.ErrorMessage,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// HasDigest reports whether an archive with the given digest was already
// summarized without error.
func (sdb *SummaryDB) HasDigest(ctx context.Context, digest string) (bool, error) {
	if digest == "" {
		return false, nil
	}

	var count int
	err := sdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summaries WHERE digest = ? AND error = ''`, digest).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up digest: %w", err)
	}
	return count > 0, nil
}

// ListProjects returns the distinct names of all summarized projects.
func (sdb *SummaryDB) ListProjects(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT project_name FROM summaries
	WHERE project_name != ''
	ORDER BY project_name
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, name)
	}

	return projects, rows.Err()
}

// SummaryMetadata contains headline information about a stored report.
// It is used for displaying history without loading the full report.
type SummaryMetadata struct {
	// ID is the unique identifier of the summary in the database.
	ID int64

	// RunID is the run that produced the summary.
	RunID string

	// Source is the archive path.
	Source string

	// ProjectName is the name read from project.properties.
	ProjectName string

	// Digest is the archive digest.
	Digest string

	// Screens, ActiveBlocks and OrphanBlocks are the headline counts.
	Screens      int
	ActiveBlocks int
	OrphanBlocks int

	// Error is the failure message, empty on success.
	Error string

	// Timestamp is when the summary was stored.
	Timestamp time.Time
}

// GetHistory retrieves the metadata of every stored summary of a project,
// newest first.
func (sdb *SummaryDB) GetHistory(ctx context.Context, projectName string) ([]SummaryMetadata, error) {
	query := `
	SELECT id, run_id, source, project_name, digest, screen_count, active_blocks, orphan_blocks, error, timestamp
	FROM summaries
	WHERE project_name = ?
	ORDER BY id DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var results []SummaryMetadata
	for rows.Next() {
		var meta SummaryMetadata
		var timestamp string

		if err := rows.Scan(&meta.ID, &meta.RunID, &meta.Source, &meta.ProjectName, &meta.Digest,
			&meta.Screens, &meta.ActiveBlocks, &meta.OrphanBlocks, &meta.Error, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetReportByID retrieves a stored report by its database ID.
// It returns nil without error when no summary has that ID.
func (sdb *SummaryDB) GetReportByID(ctx context.Context, id int64) (*model.ProjectReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, `SELECT report_json FROM summaries WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.ProjectReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
