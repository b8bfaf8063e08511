package requestmock

import (
	"context"

	"gorm.io/gorm"

	domain "coop-lending-engine/internal/domain/request"
)

var (
	_ domain.Repository       = (*Repo)(nil)
	_ domain.PolicyRepository = (*PolicyRepo)(nil)
)

// Repo is a function-backed mock that satisfies request.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, r *domain.Request) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.Request, error)
	GetByIDForUpdateFn func(ctx context.Context, id string) (*domain.Request, error)
	ListByMemberIDFn   func(ctx context.Context, memberID string) ([]domain.Request, error)
	ListByStatusFn     func(ctx context.Context, s domain.Status) ([]domain.Request, error)
	SaveFn             func(ctx context.Context, r *domain.Request) error
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Request, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListByMemberID(ctx context.Context, memberID string) ([]domain.Request, error) {
	if m.ListByMemberIDFn != nil {
		return m.ListByMemberIDFn(ctx, memberID)
	}
	return nil, nil
}

func (m *Repo) ListByStatus(ctx context.Context, s domain.Status) ([]domain.Request, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, s)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, r *domain.Request) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

// PolicyRepo mocks request.PolicyRepository.
type PolicyRepo struct {
	CreateFn  func(ctx context.Context, p *domain.Policy) error
	GetByIDFn func(ctx context.Context, id string) (*domain.Policy, error)
	ListFn    func(ctx context.Context) ([]domain.Policy, error)
	SaveFn    func(ctx context.Context, p *domain.Policy) error
}

func (m *PolicyRepo) Create(ctx context.Context, p *domain.Policy) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *PolicyRepo) GetByID(ctx context.Context, id string) (*domain.Policy, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *PolicyRepo) List(ctx context.Context) ([]domain.Policy, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *PolicyRepo) Save(ctx context.Context, p *domain.Policy) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
