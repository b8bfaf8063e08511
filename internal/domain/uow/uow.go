package uow

import (
	"context"

	"coop-lending-engine/internal/domain/audit"
	"coop-lending-engine/internal/domain/loan"
	"coop-lending-engine/internal/domain/member"
	"coop-lending-engine/internal/domain/request"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Members       member.Repository
	Loans         loan.Repository
	LoanTypes     loan.TypeRepository
	Payments      loan.PaymentRepository
	Disbursements loan.DisbursementRepository
	Requests      request.Repository
	Policies      request.PolicyRepository
	Audits        audit.Repository
}

// UnitOfWork runs a function inside one atomic transaction. Guarded state
// transitions must read the entity under mutation with a ForUpdate method
// from the same Repos so the guard and the write share one locked
// read-modify-write.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
