package loan

import (
	"context"
	"time"
)

// ListFilter narrows loan listings for reporting. Zero values mean "no
// constraint".
type ListFilter struct {
	MemberID string
	States   []State
	From     *time.Time // disbursement date range, inclusive
	To       *time.Time
}

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id string) (*Loan, error)
	// GetByIDForUpdate locks the loan row for the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Loan, error)
	List(ctx context.Context, f ListFilter) ([]Loan, error)
	// ListOverdue returns loans in an outstanding state whose due date is
	// strictly before asOf.
	ListOverdue(ctx context.Context, asOf time.Time) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error
}

type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	ListByLoanID(ctx context.Context, loanID string) ([]Payment, error)
}

type DisbursementRepository interface {
	Create(ctx context.Context, d *Disbursement) error
	ListByLoanID(ctx context.Context, loanID string) ([]Disbursement, error)
}

type TypeRepository interface {
	Create(ctx context.Context, t *LoanType) error
	GetByID(ctx context.Context, id string) (*LoanType, error)
	GetByName(ctx context.Context, name string) (*LoanType, error)
	List(ctx context.Context) ([]LoanType, error)
	Save(ctx context.Context, t *LoanType) error
}
