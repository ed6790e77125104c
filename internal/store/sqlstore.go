package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

const schemaVersion = 1

// SqlStore implements Store with SQLite.
type SqlStore struct {
	db *sql.DB
}

// Open opens or creates a SQLite DB at path and runs migrations.
// Creates the parent directory (e.g. .verax) if it does not exist.
func Open(path string) (*SqlStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SqlStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqlStore) migrate() error {
	var tableCount int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableCount == 0 {
		return s.freshInstall()
	}
	var v int
	err = s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v > schemaVersion {
		return fmt.Errorf("database schema v%d is newer than this build (v%d)", v, schemaVersion)
	}
	return nil
}

func (s *SqlStore) freshInstall() error {
	_, err := s.db.Exec(`
CREATE TABLE schema_version (version INTEGER NOT NULL);
CREATE TABLE runs (
	id         TEXT PRIMARY KEY,
	target     TEXT NOT NULL,
	mode       TEXT NOT NULL,
	ceiling    REAL NOT NULL,
	failed     INTEGER NOT NULL DEFAULT 0,
	artifact   TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE findings (
	id                  TEXT NOT NULL,
	run_id              TEXT NOT NULL REFERENCES runs(id),
	promise_id          TEXT NOT NULL,
	file                TEXT NOT NULL DEFAULT '',
	line                INTEGER NOT NULL DEFAULT 0,
	col                 INTEGER NOT NULL DEFAULT 0,
	type                TEXT NOT NULL,
	severity            TEXT NOT NULL,
	status              TEXT NOT NULL,
	level               TEXT NOT NULL,
	confidence          REAL NOT NULL DEFAULT 0,
	evidence_sufficient INTEGER NOT NULL DEFAULT 0,
	detail              TEXT NOT NULL,
	PRIMARY KEY (run_id, id)
);
CREATE INDEX idx_findings_run ON findings(run_id);
`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

func (s *SqlStore) SaveRun(run RunRecord, findings []FindingRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := run.CreatedAt
	if createdAt == "" {
		createdAt = nowUTC()
	}
	_, err = tx.Exec(
		"INSERT OR REPLACE INTO runs (id, target, mode, ceiling, failed, artifact, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Target, run.Mode, run.Ceiling, boolInt(run.Failed), string(run.Artifact), createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM findings WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clear stale findings: %w", err)
	}
	for _, f := range findings {
		_, err = tx.Exec(
			`INSERT INTO findings
			 (id, run_id, promise_id, file, line, col, type, severity, status, level, confidence, evidence_sufficient, detail)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, run.ID, f.PromiseID, f.File, f.Line, f.Column, f.Type, f.Severity,
			f.Status, f.Level, f.Confidence, boolInt(f.EvidenceSufficient), string(f.Detail),
		)
		if err != nil {
			return fmt.Errorf("insert finding %s: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SqlStore) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(
		"SELECT id, target, mode, ceiling, failed, artifact, created_at FROM runs WHERE id = ?", id)
	var r RunRecord
	var failed int
	var artifact string
	err := row.Scan(&r.ID, &r.Target, &r.Mode, &r.Ceiling, &failed, &artifact, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	r.Failed = failed != 0
	r.Artifact = []byte(artifact)
	return &r, nil
}

func (s *SqlStore) ListRuns(limit int) ([]RunRecord, error) {
	q := "SELECT id, target, mode, ceiling, failed, artifact, created_at FROM runs ORDER BY created_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var failed int
		var artifact string
		if err := rows.Scan(&r.ID, &r.Target, &r.Mode, &r.Ceiling, &failed, &artifact, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Failed = failed != 0
		r.Artifact = []byte(artifact)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SqlStore) ListFindings(runID string) ([]FindingRecord, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(
		`SELECT id, run_id, promise_id, file, line, col, type, severity, status, level, confidence, evidence_sufficient, detail
		 FROM findings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()
	var out []FindingRecord
	for rows.Next() {
		var f FindingRecord
		var sufficient int
		var detail string
		if err := rows.Scan(&f.ID, &f.RunID, &f.PromiseID, &f.File, &f.Line, &f.Column,
			&f.Type, &f.Severity, &f.Status, &f.Level, &f.Confidence, &sufficient, &detail); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.EvidenceSufficient = sufficient != 0
		f.Detail = []byte(detail)
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SqlStore) Close() error { return s.db.Close() }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
