package auditmock

import (
	"context"
	"sync"

	domain "coop-lending-engine/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo collects audit entries in memory. A CreateFn can still be set to
// observe or fail individual writes.
type Repo struct {
	mu      sync.Mutex
	Entries []domain.Entry

	CreateFn       func(ctx context.Context, e *domain.Entry) error
	ListByEntityFn func(ctx context.Context, entity, entityID string) ([]domain.Entry, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Entry) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Entries = append(m.Entries, *e)
	m.mu.Unlock()
	return nil
}

func (m *Repo) ListByEntity(ctx context.Context, entity, entityID string) ([]domain.Entry, error) {
	if m.ListByEntityFn != nil {
		return m.ListByEntityFn(ctx, entity, entityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.Entity == entity && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
