package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/healthcheck/internal/domain"
	"github.com/hamed0406/healthcheck/internal/repo"
)

const DefaultKeep = 20

// Store holds the last Keep reports in memory. Nothing is persisted.
type Store struct {
	mu      sync.RWMutex
	keep    int
	reports []domain.Report // oldest first
}

func New(keep int) *Store {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Store{
		keep:    keep,
		reports: make([]domain.Report, 0, keep),
	}
}

func (m *Store) Save(ctx context.Context, r domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reports) == m.keep {
		copy(m.reports, m.reports[1:])
		m.reports = m.reports[:m.keep-1]
	}
	m.reports = append(m.reports, r)
	return nil
}

// Publish lets the store act as a report sink.
func (m *Store) Publish(ctx context.Context, r domain.Report) error {
	return m.Save(ctx, r)
}

func (m *Store) Latest(ctx context.Context) (domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.reports) == 0 {
		return domain.Report{}, repo.ErrNoReport
	}
	return m.reports[len(m.reports)-1], nil
}

// Recent returns up to limit reports, newest first.
func (m *Store) Recent(ctx context.Context, limit int) ([]domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.reports) {
		limit = len(m.reports)
	}
	out := make([]domain.Report, 0, limit)
	for i := len(m.reports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.reports[i])
	}
	return out, nil
}
