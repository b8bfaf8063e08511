package mysql

import (
	"context"
	"time"

	loanDomain "coop-lending-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := lockForUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.ListFilter) ([]loanDomain.Loan, error) {
	q := r.db.WithContext(ctx)
	if f.MemberID != "" {
		q = q.Where("member_id = ?", f.MemberID)
	}
	if len(f.States) > 0 {
		q = q.Where("state IN ?", f.States)
	}
	if f.From != nil {
		q = q.Where("disbursed_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("disbursed_at <= ?", *f.To)
	}
	var out []loanDomain.Loan
	res := q.Order("disbursed_at ASC, id ASC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("state IN ?", []loanDomain.State{loanDomain.StateDisbursed, loanDomain.StateActive}).
		Where("due_at IS NOT NULL AND due_at < ?", asOf).
		Find(&out)
	return out, res.Error
}
