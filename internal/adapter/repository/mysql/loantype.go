package mysql

import (
	"context"

	loanDomain "coop-lending-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanTypeRepository struct{ db *gorm.DB }

func NewLoanTypeRepository(db *gorm.DB) *LoanTypeRepository { return &LoanTypeRepository{db: db} }

func (r *LoanTypeRepository) Create(ctx context.Context, t *loanDomain.LoanType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LoanTypeRepository) Save(ctx context.Context, t *loanDomain.LoanType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *LoanTypeRepository) GetByID(ctx context.Context, id string) (*loanDomain.LoanType, error) {
	var out loanDomain.LoanType
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanTypeRepository) GetByName(ctx context.Context, name string) (*loanDomain.LoanType, error) {
	var out loanDomain.LoanType
	res := r.db.WithContext(ctx).Where("name = ?", name).First(&out)
	return &out, res.Error
}

func (r *LoanTypeRepository) List(ctx context.Context) ([]loanDomain.LoanType, error) {
	var out []loanDomain.LoanType
	res := r.db.WithContext(ctx).Order("name ASC").Find(&out)
	return out, res.Error
}
