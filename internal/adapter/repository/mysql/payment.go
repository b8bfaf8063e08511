package mysql

import (
	"context"

	loanDomain "coop-lending-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *loanDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) ListByLoanID(ctx context.Context, loanID string) ([]loanDomain.Payment, error) {
	var out []loanDomain.Payment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("paid_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
