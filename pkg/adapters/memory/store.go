package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/plancheck/pkg/domain"
)

// Store implements ports.ReportStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.RunReport
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.RunReport),
	}
}

// Save persists the report in memory. RunReport holds only values, so storing it
// by value is enough to isolate the caller's copy.
func (s *Store) Save(ctx context.Context, report domain.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[report.ID] = report
	return nil
}

// Load retrieves the report from memory.
func (s *Store) Load(ctx context.Context, runID string) (domain.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[runID]
	if !ok {
		return domain.RunReport{}, domain.ErrReportNotFound
	}
	return report, nil
}

// Delete removes the report.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, runID)
	return nil
}

// List returns stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]string, 0, len(s.data))
	for id := range s.data {
		runs = append(runs, id)
	}
	sort.Strings(runs)
	return runs, nil
}
