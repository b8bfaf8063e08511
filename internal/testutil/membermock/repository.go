package membermock

import (
	"context"

	"gorm.io/gorm"

	domain "coop-lending-engine/internal/domain/member"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies member.Repository. Fill in
// only the fields a test needs.
type Repo struct {
	CreateFn           func(ctx context.Context, m *domain.Member) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.Member, error)
	GetByIDForUpdateFn func(ctx context.Context, id string) (*domain.Member, error)
	GetByUserIDFn      func(ctx context.Context, userID string) (*domain.Member, error)
	ListFn             func(ctx context.Context) ([]domain.Member, error)
	SaveFn             func(ctx context.Context, m *domain.Member) error
}

func (m *Repo) Create(ctx context.Context, mem *domain.Member) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, mem)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Member, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByUserID(ctx context.Context, userID string) (*domain.Member, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) List(ctx context.Context) ([]domain.Member, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, mem *domain.Member) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, mem)
	}
	return nil
}
