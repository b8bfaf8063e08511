package mysql

import (
	"context"

	"coop-lending-engine/internal/domain/uow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(uow.Repos{
			Members:       &MemberRepository{db: tx},
			Loans:         &LoanRepository{db: tx},
			LoanTypes:     &LoanTypeRepository{db: tx},
			Payments:      &PaymentRepository{db: tx},
			Disbursements: &DisbursementRepository{db: tx},
			Requests:      &RequestRepository{db: tx},
			Policies:      &PolicyRepository{db: tx},
			Audits:        &AuditRepository{db: tx},
		})
	})
}

// lockForUpdate adds SELECT ... FOR UPDATE. sqlite has no row locks and
// rejects the clause, so tests run without it; sqlite serializes writers
// on its own.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
