package loanmock

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "coop-lending-engine/internal/domain/loan"
)

var (
	_ domain.Repository             = (*Repo)(nil)
	_ domain.PaymentRepository      = (*PaymentRepo)(nil)
	_ domain.DisbursementRepository = (*DisbursementRepo)(nil)
	_ domain.TypeRepository         = (*TypeRepo)(nil)
)

// Repo is a function-backed mock that satisfies loan.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, l *domain.Loan) error
	GetByIDFn          func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFn func(ctx context.Context, id string) (*domain.Loan, error)
	ListFn             func(ctx context.Context, f domain.ListFilter) ([]domain.Loan, error)
	ListOverdueFn      func(ctx context.Context, asOf time.Time) ([]domain.Loan, error)
	SaveFn             func(ctx context.Context, l *domain.Loan) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, asOf)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

// PaymentRepo mocks loan.PaymentRepository.
type PaymentRepo struct {
	CreateFn       func(ctx context.Context, p *domain.Payment) error
	ListByLoanIDFn func(ctx context.Context, loanID string) ([]domain.Payment, error)
}

func (m *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *PaymentRepo) ListByLoanID(ctx context.Context, loanID string) ([]domain.Payment, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}

// DisbursementRepo mocks loan.DisbursementRepository.
type DisbursementRepo struct {
	CreateFn       func(ctx context.Context, d *domain.Disbursement) error
	ListByLoanIDFn func(ctx context.Context, loanID string) ([]domain.Disbursement, error)
}

func (m *DisbursementRepo) Create(ctx context.Context, d *domain.Disbursement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *DisbursementRepo) ListByLoanID(ctx context.Context, loanID string) ([]domain.Disbursement, error) {
	if m.ListByLoanIDFn != nil {
		return m.ListByLoanIDFn(ctx, loanID)
	}
	return nil, nil
}

// TypeRepo mocks loan.TypeRepository.
type TypeRepo struct {
	CreateFn    func(ctx context.Context, t *domain.LoanType) error
	GetByIDFn   func(ctx context.Context, id string) (*domain.LoanType, error)
	GetByNameFn func(ctx context.Context, name string) (*domain.LoanType, error)
	ListFn      func(ctx context.Context) ([]domain.LoanType, error)
	SaveFn      func(ctx context.Context, t *domain.LoanType) error
}

func (m *TypeRepo) Create(ctx context.Context, t *domain.LoanType) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *TypeRepo) GetByID(ctx context.Context, id string) (*domain.LoanType, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *TypeRepo) GetByName(ctx context.Context, name string) (*domain.LoanType, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *TypeRepo) List(ctx context.Context) ([]domain.LoanType, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *TypeRepo) Save(ctx context.Context, t *domain.LoanType) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, t)
	}
	return nil
}
