package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"coop-lending-engine/internal/domain/audit"
	domainLoan "coop-lending-engine/internal/domain/loan"
	domainMember "coop-lending-engine/internal/domain/member"
	"coop-lending-engine/internal/domain/uow"
	"coop-lending-engine/internal/testutil/auditmock"
	"coop-lending-engine/internal/testutil/loanmock"
	"coop-lending-engine/internal/testutil/membermock"
	"coop-lending-engine/internal/testutil/uowmock"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	loans         *loanmock.Repo
	payments      *loanmock.PaymentRepo
	disbursements *loanmock.DisbursementRepo
	types         *loanmock.TypeRepo
	members       *membermock.Repo
	audits        *auditmock.Repo
	uc            *Usecase
}

func newFixture(l *domainLoan.Loan) *fixture {
	f := &fixture{
		loans:         &loanmock.Repo{},
		payments:      &loanmock.PaymentRepo{},
		disbursements: &loanmock.DisbursementRepo{},
		types:         &loanmock.TypeRepo{},
		members:       &membermock.Repo{},
		audits:        &auditmock.Repo{},
	}
	if l != nil {
		f.loans.GetByIDForUpdateFn = func(ctx context.Context, id string) (*domainLoan.Loan, error) {
			if id == l.ID {
				return l, nil
			}
			return nil, domainLoan.ErrNotFound
		}
		f.loans.GetByIDFn = f.loans.GetByIDForUpdateFn
	}
	tx := uowmock.Passthrough(uow.Repos{
		Members:       f.members,
		Loans:         f.loans,
		LoanTypes:     f.types,
		Payments:      f.payments,
		Disbursements: f.disbursements,
		Audits:        f.audits,
	})
	f.uc = NewUsecase(f.loans, f.payments, f.types, tx, nil)
	return f
}

func TestRecordDisbursement(t *testing.T) {
	actor := "treasurer-1"

	t.Run("first disbursement flips approved to disbursed", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", MemberID: "m1", Principal: dec("1000000"), State: domainLoan.StateApproved}
		f := newFixture(l)

		d, err := f.uc.RecordDisbursement(context.Background(), "l1", &actor, DisburseInput{Amount: dec("1234.00")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.MemberID != "m1" || !d.Amount.Equal(dec("1234.00")) {
			t.Fatalf("disbursement mismatch: %+v", d)
		}
		if l.State != domainLoan.StateDisbursed {
			t.Fatalf("state = %s, want disbursed", l.State)
		}
		if len(f.audits.Entries) != 1 || f.audits.Entries[0].Action != audit.ActionStateChange {
			t.Fatalf("expected one state-change audit entry, got %+v", f.audits.Entries)
		}
	})

	t.Run("further disbursements allowed while outstanding", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", MemberID: "m1", Principal: dec("1000"), State: domainLoan.StateDisbursed}
		f := newFixture(l)
		f.disbursements.ListByLoanIDFn = func(ctx context.Context, loanID string) ([]domainLoan.Disbursement, error) {
			return []domainLoan.Disbursement{{LoanID: "l1", Amount: dec("600")}}, nil
		}

		if _, err := f.uc.RecordDisbursement(context.Background(), "l1", &actor, DisburseInput{Amount: dec("400")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// already disbursed: no second state change
		if len(f.audits.Entries) != 0 {
			t.Fatalf("expected no audit entries, got %d", len(f.audits.Entries))
		}
	})

	t.Run("sum above principal is rejected", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", Principal: dec("1000"), State: domainLoan.StateDisbursed}
		f := newFixture(l)
		f.disbursements.ListByLoanIDFn = func(ctx context.Context, loanID string) ([]domainLoan.Disbursement, error) {
			return []domainLoan.Disbursement{{LoanID: "l1", Amount: dec("600")}}, nil
		}

		_, err := f.uc.RecordDisbursement(context.Background(), "l1", &actor, DisburseInput{Amount: dec("400.01")})
		if !errors.Is(err, domainLoan.ErrInvalidDisbursement) {
			t.Fatalf("err = %v, want ErrInvalidDisbursement", err)
		}
	})

	t.Run("terminal states cannot be disbursed", func(t *testing.T) {
		for _, s := range []domainLoan.State{domainLoan.StatePaid, domainLoan.StateCancelled, domainLoan.StateRejected} {
			l := &domainLoan.Loan{ID: "l1", Principal: dec("1000"), State: s}
			f := newFixture(l)
			_, err := f.uc.RecordDisbursement(context.Background(), "l1", &actor, DisburseInput{Amount: dec("10")})
			if !errors.Is(err, domainLoan.ErrInvalidDisbursement) {
				t.Fatalf("state %s: err = %v, want ErrInvalidDisbursement", s, err)
			}
		}
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.uc.RecordDisbursement(context.Background(), "l1", &actor, DisburseInput{Amount: dec("0")})
		if !errors.Is(err, domainLoan.ErrInvalidAmount) {
			t.Fatalf("err = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestRecordPayment(t *testing.T) {
	actor := "treasurer-1"
	paidAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("partial payment keeps the loan outstanding", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", Principal: dec("1000000"), State: domainLoan.StateDisbursed}
		f := newFixture(l)
		ledger := []domainLoan.Payment{}
		f.payments.CreateFn = func(ctx context.Context, p *domainLoan.Payment) error {
			ledger = append(ledger, *p)
			return nil
		}
		f.payments.ListByLoanIDFn = func(ctx context.Context, loanID string) ([]domainLoan.Payment, error) {
			return ledger, nil
		}

		res, err := f.uc.RecordPayment(context.Background(), "l1", &actor, PaymentInput{Amount: dec("10000.00"), PaidAt: paidAt})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Balance.Equal(dec("990000")) {
			t.Fatalf("balance = %s, want 990000", res.Balance)
		}
		if res.State != domainLoan.StateDisbursed {
			t.Fatalf("state = %s, want disbursed", res.State)
		}
		if len(f.audits.Entries) != 0 {
			t.Fatal("partial payment must not change state")
		}
	})

	t.Run("closing payment flips to paid atomically", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", Principal: dec("5000"), State: domainLoan.StateDelinquent}
		f := newFixture(l)
		ledger := []domainLoan.Payment{{LoanID: "l1", Amount: dec("2000")}}
		f.payments.CreateFn = func(ctx context.Context, p *domainLoan.Payment) error {
			ledger = append(ledger, *p)
			return nil
		}
		f.payments.ListByLoanIDFn = func(ctx context.Context, loanID string) ([]domainLoan.Payment, error) {
			return ledger, nil
		}

		res, err := f.uc.RecordPayment(context.Background(), "l1", &actor, PaymentInput{Amount: dec("3000"), PaidAt: paidAt})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Balance.IsZero() {
			t.Fatalf("balance = %s, want 0", res.Balance)
		}
		if res.State != domainLoan.StatePaid || l.State != domainLoan.StatePaid {
			t.Fatalf("state = %s, want paid", res.State)
		}
		if len(f.audits.Entries) != 1 || f.audits.Entries[0].NewStatus != string(domainLoan.StatePaid) {
			t.Fatalf("expected a paid state-change audit entry, got %+v", f.audits.Entries)
		}
	})

	t.Run("payments on non-outstanding loans are rejected", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", Principal: dec("5000"), State: domainLoan.StateApproved}
		f := newFixture(l)
		_, err := f.uc.RecordPayment(context.Background(), "l1", &actor, PaymentInput{Amount: dec("10"), PaidAt: paidAt})
		if !errors.Is(err, domainLoan.ErrInvalidTransition) {
			t.Fatalf("err = %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("non-positive amount is rejected", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.uc.RecordPayment(context.Background(), "l1", &actor, PaymentInput{Amount: dec("-5"), PaidAt: paidAt})
		if !errors.Is(err, domainLoan.ErrInvalidAmount) {
			t.Fatalf("err = %v, want ErrInvalidAmount", err)
		}
	})
}

func TestCancel(t *testing.T) {
	actor := "admin-1"

	t.Run("non-terminal loan can be cancelled", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", State: domainLoan.StateDelinquent}
		f := newFixture(l)
		got, err := f.uc.Cancel(context.Background(), "l1", &actor, "written off")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.State != domainLoan.StateCancelled {
			t.Fatalf("state = %s, want cancelled", got.State)
		}
		if len(f.audits.Entries) != 1 || f.audits.Entries[0].Metadata["reason"] != "written off" {
			t.Fatalf("expected a cancel audit entry with reason, got %+v", f.audits.Entries)
		}
	})

	t.Run("terminal loan cannot be cancelled", func(t *testing.T) {
		l := &domainLoan.Loan{ID: "l1", State: domainLoan.StatePaid}
		f := newFixture(l)
		_, err := f.uc.Cancel(context.Background(), "l1", &actor, "")
		if !errors.Is(err, domainLoan.ErrInvalidTransition) {
			t.Fatalf("err = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestReclassifyDelinquent(t *testing.T) {
	asOf := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	due := time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC)

	l := &domainLoan.Loan{ID: "l1", Principal: dec("7000"), State: domainLoan.StateDisbursed, DueAt: &due}
	f := newFixture(l)
	f.loans.ListOverdueFn = func(ctx context.Context, t time.Time) ([]domainLoan.Loan, error) {
		return []domainLoan.Loan{*l}, nil
	}
	f.payments.ListByLoanIDFn = func(ctx context.Context, loanID string) ([]domainLoan.Payment, error) {
		return []domainLoan.Payment{{LoanID: "l1", Amount: dec("1000")}}, nil
	}

	n, err := f.uc.ReclassifyDelinquent(context.Background(), asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("reclassified = %d, want 1", n)
	}
	if l.State != domainLoan.StateDelinquent {
		t.Fatalf("state = %s, want delinquent", l.State)
	}
	if len(f.audits.Entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(f.audits.Entries))
	}
	if f.audits.Entries[0].ActorID != nil {
		t.Fatal("system reclassification must not carry an actor")
	}
}

func TestCreate(t *testing.T) {
	actor := "admin-1"

	t.Run("origination snapshots terms and computes maturity", func(t *testing.T) {
		f := newFixture(nil)
		f.members.GetByIDFn = func(ctx context.Context, id string) (*domainMember.Member, error) {
			return &domainMember.Member{ID: id, Status: domainMember.StatusActive}, nil
		}
		var created *domainLoan.Loan
		f.loans.CreateFn = func(ctx context.Context, l *domainLoan.Loan) error {
			created = l
			return nil
		}

		disbursedAt := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		got, err := f.uc.Create(context.Background(), &actor, CreateInput{
			MemberID:    "m1",
			Principal:   dec("10000"),
			Rate:        dec("5"),
			TermMonths:  6,
			DisbursedAt: disbursedAt,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || created.ID != got.ID {
			t.Fatal("expected the loan to be created")
		}
		if got.State != domainLoan.StateApproved {
			t.Fatalf("state = %s, want approved", got.State)
		}
		want := disbursedAt.AddDate(0, 6, 0)
		if got.DueAt == nil || !got.DueAt.Equal(want) {
			t.Fatalf("due date = %v, want %v", got.DueAt, want)
		}
	})

	t.Run("non-positive principal is rejected", func(t *testing.T) {
		f := newFixture(nil)
		_, err := f.uc.Create(context.Background(), &actor, CreateInput{MemberID: "m1", Principal: dec("0")})
		if !errors.Is(err, domainLoan.ErrInvalidAmount) {
			t.Fatalf("err = %v, want ErrInvalidAmount", err)
		}
	})
}
