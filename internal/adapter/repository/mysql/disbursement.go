package mysql

import (
	"context"

	loanDomain "coop-lending-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type DisbursementRepository struct{ db *gorm.DB }

func NewDisbursementRepository(db *gorm.DB) *DisbursementRepository {
	return &DisbursementRepository{db: db}
}

func (r *DisbursementRepository) Create(ctx context.Context, d *loanDomain.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DisbursementRepository) ListByLoanID(ctx context.Context, loanID string) ([]loanDomain.Disbursement, error) {
	var out []loanDomain.Disbursement
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
