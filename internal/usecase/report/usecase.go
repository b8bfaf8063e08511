package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"coop-lending-engine/internal/delinquency"
	domainLoan "coop-lending-engine/internal/domain/loan"
)

type Usecase struct {
	loans    domainLoan.Repository
	payments domainLoan.PaymentRepository
}

func NewUsecase(loans domainLoan.Repository, payments domainLoan.PaymentRepository) *Usecase {
	return &Usecase{loans: loans, payments: payments}
}

// Filter narrows the credit history. Loans are filtered by state and by
// disbursement date range; each listed loan's payments are then filtered
// independently by the same range.
type Filter struct {
	MemberID string
	States   []domainLoan.State
	From     *time.Time
	To       *time.Time
}

// LoanHistory is one loan in the report. Payments holds only the payments
// inside the filter range; Summary is computed from the full ledger so
// balance and arrears stay truthful regardless of the range shown.
type LoanHistory struct {
	Loan     domainLoan.Loan      `json:"loan"`
	Payments []domainLoan.Payment `json:"payments"`
	Summary  delinquency.Summary  `json:"summary"`
}

type Summary struct {
	TotalLoans          int             `json:"total_loans"`
	ActiveCount         int             `json:"active_count"`
	DelinquentCount     int             `json:"delinquent_count"`
	PaidCount           int             `json:"paid_count"`
	PaymentsShown       int             `json:"payments_shown"`
	TotalPaidShown      decimal.Decimal `json:"total_paid_shown"`
	OutstandingBalance  decimal.Decimal `json:"outstanding_balance"`
	OverdueAmount       decimal.Decimal `json:"overdue_amount"`
	MaxOverdueDays      int             `json:"max_overdue_days"`
	AvgOverdueDays      decimal.Decimal `json:"avg_overdue_days"`
	OverdueInstallments int             `json:"overdue_installments"`
}

type Report struct {
	Loans   []LoanHistory `json:"loans"`
	Summary Summary       `json:"summary"`
}

// History composes per-loan repayment data into a credit-history report as
// of asOf.
func (u *Usecase) History(ctx context.Context, f Filter, asOf time.Time) (*Report, error) {
	loans, err := u.loans.List(ctx, domainLoan.ListFilter{
		MemberID: f.MemberID,
		States:   f.States,
		From:     f.From,
		To:       f.To,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Loans: make([]LoanHistory, 0, len(loans)),
		Summary: Summary{
			TotalPaidShown:     decimal.Zero,
			OutstandingBalance: decimal.Zero,
			OverdueAmount:      decimal.Zero,
			AvgOverdueDays:     decimal.Zero,
		},
	}

	overdueLoans := 0
	overdueDaysTotal := 0
	for _, l := range loans {
		all, err := u.payments.ListByLoanID(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		shown := filterPayments(all, f.From, f.To)
		summary := delinquency.Aggregate(l.Principal, l.DueAt, paymentAmounts(all), asOf)

		report.Loans = append(report.Loans, LoanHistory{Loan: l, Payments: shown, Summary: summary})

		report.Summary.TotalLoans++
		switch {
		case domainLoan.Outstanding(l.State) && l.State != domainLoan.StateDelinquent:
			report.Summary.ActiveCount++
		case l.State == domainLoan.StateDelinquent:
			report.Summary.DelinquentCount++
		case l.State == domainLoan.StatePaid:
			report.Summary.PaidCount++
		}
		report.Summary.PaymentsShown += len(shown)
		for _, p := range shown {
			report.Summary.TotalPaidShown = report.Summary.TotalPaidShown.Add(p.Amount)
		}
		report.Summary.OutstandingBalance = report.Summary.OutstandingBalance.Add(summary.Balance)
		report.Summary.OverdueAmount = report.Summary.OverdueAmount.Add(summary.OverdueAmount)
		report.Summary.OverdueInstallments += summary.OverdueInstallments
		if summary.OverdueDays > 0 {
			overdueLoans++
			overdueDaysTotal += summary.OverdueDays
			if summary.OverdueDays > report.Summary.MaxOverdueDays {
				report.Summary.MaxOverdueDays = summary.OverdueDays
			}
		}
	}
	if overdueLoans > 0 {
		report.Summary.AvgOverdueDays = decimal.NewFromInt(int64(overdueDaysTotal)).
			Div(decimal.NewFromInt(int64(overdueLoans))).Round(2)
	}
	return report, nil
}

// MemberLoans is the self-service "my loans" view: every loan of one member
// with its full ledger and live delinquency figures.
func (u *Usecase) MemberLoans(ctx context.Context, memberID string, asOf time.Time) ([]LoanHistory, error) {
	report, err := u.History(ctx, Filter{MemberID: memberID}, asOf)
	if err != nil {
		return nil, err
	}
	return report.Loans, nil
}

func filterPayments(payments []domainLoan.Payment, from, to *time.Time) []domainLoan.Payment {
	out := make([]domainLoan.Payment, 0, len(payments))
	for _, p := range payments {
		if from != nil && p.PaidAt.Before(*from) {
			continue
		}
		if to != nil && p.PaidAt.After(*to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func paymentAmounts(payments []domainLoan.Payment) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(payments))
	for _, p := range payments {
		out = append(out, p.Amount)
	}
	return out
}
