package store

import (
	"fmt"
	"sort"
	"sync"
)

// MemStore implements Store in memory.
type MemStore struct {
	mu       sync.Mutex
	runs     map[string]RunRecord
	findings map[string][]FindingRecord
	order    []string // insertion order of run ids
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		runs:     make(map[string]RunRecord),
		findings: make(map[string][]FindingRecord),
	}
}

func (s *MemStore) SaveRun(run RunRecord, findings []FindingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		return fmt.Errorf("save run: empty id")
	}
	if _, exists := s.runs[run.ID]; !exists {
		s.order = append(s.order, run.ID)
	}
	s.runs[run.ID] = run
	s.findings[run.ID] = append([]FindingRecord(nil), findings...)
	return nil
}

func (s *MemStore) GetRun(id string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

func (s *MemStore) ListRuns(limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := append([]string(nil), s.order...)
	// Newest first, like the SQL store.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]RunRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.runs[id])
	}
	return out, nil
}

func (s *MemStore) ListFindings(runID string) ([]FindingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return nil, ErrNotFound
	}
	out := append([]FindingRecord(nil), s.findings[runID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Close() error { return nil }
