// Package store persists judged runs and their findings. The canonical
// artifact bytes are stored as written — the database is a cache of
// results, never a second source of truth for them.
package store

import "errors"

// DefaultDBPath is the default SQLite location.
const DefaultDBPath = ".verax/verax.db"

// ErrNotFound is returned when a run id has no record.
var ErrNotFound = errors.New("store: run not found")

// RunRecord is one persisted run.
type RunRecord struct {
	ID        string
	Target    string
	Mode      string
	Ceiling   float64
	Failed    bool
	Artifact  []byte // canonical bytes, exactly as serialized
	CreatedAt string
}

// FindingRecord is one persisted finding row, with the canonical detail blob.
type FindingRecord struct {
	ID                 string
	RunID              string
	PromiseID          string
	File               string
	Line               int
	Column             int
	Type               string
	Severity           string
	Status             string
	Level              string
	Confidence         float64
	EvidenceSufficient bool
	Detail             []byte
}

// Store is the persistence interface. SqlStore is the real one; MemStore
// backs tests and one-shot runs.
type Store interface {
	SaveRun(run RunRecord, findings []FindingRecord) error
	GetRun(id string) (*RunRecord, error)
	ListRuns(limit int) ([]RunRecord, error)
	ListFindings(runID string) ([]FindingRecord, error)
	Close() error
}
