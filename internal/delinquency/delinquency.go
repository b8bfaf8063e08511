// Package delinquency aggregates repayment activity against a loan into
// balance and arrears figures.
//
// Overdue installments follow the cooperative's 30-day-bucket convention:
// days past due are divided into 30-day buckets and rounded up, with a
// minimum of one bucket once the loan is past due at all. This is a
// business approximation of missed installments, not an actuarial count.
package delinquency

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the aggregate repayment position of one loan as of a date.
type Summary struct {
	TotalPaid           decimal.Decimal `json:"total_paid"`
	Balance             decimal.Decimal `json:"balance"`
	OverdueAmount       decimal.Decimal `json:"overdue_amount"`
	OverdueDays         int             `json:"overdue_days"`
	OverdueInstallments int             `json:"overdue_installments"`
}

// Aggregate sums payments against principal and, when a due date is known
// and a balance remains, derives arrears as of asOf. A due date of today or
// later yields zero overdue figures.
func Aggregate(principal decimal.Decimal, dueDate *time.Time, payments []decimal.Decimal, asOf time.Time) Summary {
	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p)
	}
	balance := principal.Sub(totalPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	s := Summary{
		TotalPaid:     totalPaid,
		Balance:       balance,
		OverdueAmount: decimal.Zero,
	}
	if dueDate == nil || !balance.IsPositive() {
		return s
	}

	days := daysBetween(*dueDate, asOf)
	if days <= 0 {
		return s
	}
	s.OverdueDays = days
	s.OverdueAmount = balance
	s.OverdueInstallments = (days + 29) / 30
	if s.OverdueInstallments < 1 {
		s.OverdueInstallments = 1
	}
	return s
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
