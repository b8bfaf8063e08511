package loan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coop-lending-engine/internal/delinquency"
	"coop-lending-engine/internal/domain/audit"
	"coop-lending-engine/internal/domain/jsonmap"
	domainLoan "coop-lending-engine/internal/domain/loan"
	domainMember "coop-lending-engine/internal/domain/member"
	"coop-lending-engine/internal/domain/uow"
	"coop-lending-engine/pkg/id"
)

type Usecase struct {
	loans    domainLoan.Repository
	payments domainLoan.PaymentRepository
	types    domainLoan.TypeRepository
	uow      uow.UnitOfWork
	log      *zap.Logger
}

func NewUsecase(loans domainLoan.Repository, payments domainLoan.PaymentRepository, types domainLoan.TypeRepository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{loans: loans, payments: payments, types: types, uow: tx, log: log}
}

type CreateInput struct {
	MemberID    string          `json:"member_id"`
	TypeID      *string         `json:"type_id,omitempty"`
	Principal   decimal.Decimal `json:"principal"`
	Rate        decimal.Decimal `json:"rate"`
	TermMonths  int             `json:"term_months"`
	DisbursedAt time.Time       `json:"disbursed_at"`
	Description string          `json:"description,omitempty"`
}

// Create originates a loan directly (admin path, no request involved). The
// loan starts approved; rate and term are snapshotted onto the loan so
// later product edits never reprice it.
func (u *Usecase) Create(ctx context.Context, actorID *string, in CreateInput) (*domainLoan.Loan, error) {
	if !in.Principal.IsPositive() {
		return nil, domainLoan.ErrInvalidAmount
	}
	if in.Rate.IsNegative() {
		return nil, domainLoan.ErrInvalidAmount
	}

	l := &domainLoan.Loan{
		ID:           uuid.NewString(),
		MemberID:     in.MemberID,
		TypeID:       in.TypeID,
		Principal:    in.Principal,
		InterestRate: in.Rate,
		TermMonths:   in.TermMonths,
		State:        domainLoan.StateApproved,
		DisbursedAt:  in.DisbursedAt,
		Description:  in.Description,
	}
	if in.TermMonths > 0 {
		due := in.DisbursedAt.AddDate(0, in.TermMonths, 0)
		l.DueAt = &due
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		m, err := r.Members.GetByID(ctx, in.MemberID)
		if err != nil {
			return domainMember.ErrNotFound
		}
		if in.TypeID != nil {
			if _, err := r.LoanTypes.GetByID(ctx, *in.TypeID); err != nil {
				return domainLoan.ErrTypeNotFound
			}
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		return r.Audits.Create(ctx, &audit.Entry{
			Entity:     "loan",
			EntityID:   l.ID,
			ActorID:    actorID,
			Action:     audit.ActionCreate,
			NewStatus:  string(l.State),
			PrevValues: jsonmap.Map{},
			NewValues:  jsonmap.Map{"principal": l.Principal.String(), "member_id": m.ID},
			Metadata:   jsonmap.Map{},
		})
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*domainLoan.Loan, error) {
	l, err := u.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, domainLoan.ErrNotFound
	}
	return l, nil
}

type DisburseInput struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// RecordDisbursement releases funds against a loan. Guard: the loan must be
// approved or outstanding, and the running disbursement total may not
// exceed principal. The first disbursement flips approved to disbursed
// inside the same transaction.
func (u *Usecase) RecordDisbursement(ctx context.Context, loanID string, actorID *string, in DisburseInput) (*domainLoan.Disbursement, error) {
	if !in.Amount.IsPositive() {
		return nil, domainLoan.ErrInvalidAmount
	}

	var out *domainLoan.Disbursement
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return domainLoan.ErrNotFound
		}
		if !domainLoan.Disbursable(l.State) {
			return fmt.Errorf("%w: loan %s is %s", domainLoan.ErrInvalidDisbursement, l.ID, l.State)
		}

		existing, err := r.Disbursements.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		released := decimal.Zero
		for _, d := range existing {
			released = released.Add(d.Amount)
		}
		if released.Add(in.Amount).GreaterThan(l.Principal) {
			return fmt.Errorf("%w: %s released + %s exceeds principal %s (loan %s)",
				domainLoan.ErrInvalidDisbursement, released, in.Amount, l.Principal, l.ID)
		}

		d := &domainLoan.Disbursement{
			LoanID:    l.ID,
			MemberID:  l.MemberID,
			Amount:    in.Amount,
			Method:    in.Method,
			Reference: in.Reference,
			Notes:     in.Notes,
		}
		if d.Reference == "" {
			d.Reference = id.NewRef("DSB")
		}
		if err := r.Disbursements.Create(ctx, d); err != nil {
			return err
		}

		if l.State == domainLoan.StateApproved {
			prev := l.State
			l.State = domainLoan.StateDisbursed
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			if err := r.Audits.Create(ctx, &audit.Entry{
				Entity:     "loan",
				EntityID:   l.ID,
				ActorID:    actorID,
				Action:     audit.ActionStateChange,
				PrevStatus: string(prev),
				NewStatus:  string(l.State),
				PrevValues: jsonmap.Map{"state": string(prev)},
				NewValues:  jsonmap.Map{"state": string(l.State)},
				Metadata:   jsonmap.Map{"disbursed_amount": in.Amount.String()},
			}); err != nil {
				return err
			}
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type PaymentInput struct {
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Method    string          `json:"method,omitempty"`
	Reference string          `json:"reference,omitempty"`
}

type PaymentResult struct {
	Payment *domainLoan.Payment `json:"payment"`
	Balance decimal.Decimal     `json:"balance"`
	State   domainLoan.State    `json:"state"`
}

// RecordPayment appends a ledger entry and recomputes the balance inside
// the same transaction. A payment that drives the balance to zero flips the
// loan to paid atomically; two concurrent payments serialize on the loan
// row lock, so exactly one of them observes the zero balance.
func (u *Usecase) RecordPayment(ctx context.Context, loanID string, actorID *string, in PaymentInput) (*PaymentResult, error) {
	if !in.Amount.IsPositive() {
		return nil, domainLoan.ErrInvalidAmount
	}

	var out *PaymentResult
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return domainLoan.ErrNotFound
		}
		if !domainLoan.Outstanding(l.State) {
			return fmt.Errorf("%w: cannot pay a %s loan", domainLoan.ErrInvalidTransition, l.State)
		}

		p := &domainLoan.Payment{
			LoanID:    l.ID,
			Amount:    in.Amount,
			PaidAt:    in.PaidAt,
			Method:    in.Method,
			Reference: in.Reference,
		}
		if p.Reference == "" {
			p.Reference = id.NewRef("PAY")
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return err
		}

		payments, err := r.Payments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return err
		}
		summary := delinquency.Aggregate(l.Principal, l.DueAt, amounts(payments), in.PaidAt)

		if summary.Balance.IsZero() {
			prev := l.State
			l.State = domainLoan.StatePaid
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			if err := r.Audits.Create(ctx, &audit.Entry{
				Entity:     "loan",
				EntityID:   l.ID,
				ActorID:    actorID,
				Action:     audit.ActionStateChange,
				PrevStatus: string(prev),
				NewStatus:  string(l.State),
				PrevValues: jsonmap.Map{"state": string(prev)},
				NewValues:  jsonmap.Map{"state": string(l.State)},
				Metadata:   jsonmap.Map{"closing_payment": in.Amount.String()},
			}); err != nil {
				return err
			}
		}
		out = &PaymentResult{Payment: p, Balance: summary.Balance, State: l.State}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel administratively moves any non-terminal loan to cancelled.
func (u *Usecase) Cancel(ctx context.Context, loanID string, actorID *string, reason string) (*domainLoan.Loan, error) {
	var out *domainLoan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return domainLoan.ErrNotFound
		}
		if domainLoan.Terminal(l.State) {
			return fmt.Errorf("%w: loan %s is already %s", domainLoan.ErrInvalidTransition, l.ID, l.State)
		}
		prev := l.State
		l.State = domainLoan.StateCancelled
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, &audit.Entry{
			Entity:     "loan",
			EntityID:   l.ID,
			ActorID:    actorID,
			Action:     audit.ActionStateChange,
			PrevStatus: string(prev),
			NewStatus:  string(l.State),
			PrevValues: jsonmap.Map{"state": string(prev)},
			NewValues:  jsonmap.Map{"state": string(l.State)},
			Metadata:   jsonmap.Map{"reason": reason},
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReclassifyDelinquent is the scheduled, system-originated sweep: every
// disbursed or active loan past due with a remaining balance as of asOf is
// flipped to delinquent. Audit entries carry no actor. Returns the number
// of loans reclassified.
func (u *Usecase) ReclassifyDelinquent(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := u.loans.ListOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}

	flipped := 0
	for _, candidate := range candidates {
		err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			l, err := r.Loans.GetByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return domainLoan.ErrNotFound
			}
			// Re-check under lock: state or balance may have moved since
			// the candidate scan.
			if l.State != domainLoan.StateDisbursed && l.State != domainLoan.StateActive {
				return nil
			}
			payments, err := r.Payments.ListByLoanID(ctx, l.ID)
			if err != nil {
				return err
			}
			summary := delinquency.Aggregate(l.Principal, l.DueAt, amounts(payments), asOf)
			if summary.OverdueDays == 0 {
				return nil
			}

			prev := l.State
			l.State = domainLoan.StateDelinquent
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			if err := r.Audits.Create(ctx, &audit.Entry{
				Entity:     "loan",
				EntityID:   l.ID,
				Action:     audit.ActionStateChange,
				PrevStatus: string(prev),
				NewStatus:  string(l.State),
				PrevValues: jsonmap.Map{"state": string(prev)},
				NewValues:  jsonmap.Map{"state": string(l.State)},
				Metadata:   jsonmap.Map{"overdue_days": summary.OverdueDays},
			}); err != nil {
				return err
			}
			flipped++
			return nil
		})
		if err != nil {
			u.log.Warn("delinquency reclassification failed",
				zap.String("loan_id", candidate.ID), zap.Error(err))
			continue
		}
	}
	if flipped > 0 {
		u.log.Info("delinquency sweep complete", zap.Int("reclassified", flipped))
	}
	return flipped, nil
}

func amounts(payments []domainLoan.Payment) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(payments))
	for _, p := range payments {
		out = append(out, p.Amount)
	}
	return out
}
