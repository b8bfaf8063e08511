// Package amort computes level-payment installment schedules.
//
// All computation is pure and deterministic: no I/O, no clock, no
// persistence. Money is rounded exactly once, when the installment is
// derived; per-period interest is rounded to cents and the principal
// portion absorbs the difference.
package amort

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTerm   = errors.New("term must be at least one month")
	ErrInvalidAmount = errors.New("amount must be positive")
)

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	one          = decimal.NewFromInt(1)
	monthDivisor = hundred.Mul(twelve) // annual % -> monthly fraction
)

// Line is one period of a schedule.
type Line struct {
	Number           int             `json:"number"`
	Installment      decimal.Decimal `json:"installment"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// Schedule is a full amortization plan for a principal amount.
type Schedule struct {
	Installment   decimal.Decimal `json:"installment"`
	TotalPayable  decimal.Decimal `json:"total_payable"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	Lines         []Line          `json:"lines"`
}

// Compute builds the schedule for principal at annualRatePercent over
// termMonths using the standard annuity formula. A zero rate degrades to
// straight principal division.
func Compute(principal, annualRatePercent decimal.Decimal, termMonths int) (*Schedule, error) {
	if termMonths < 1 {
		return nil, ErrInvalidTerm
	}
	if !principal.IsPositive() || annualRatePercent.IsNegative() {
		return nil, ErrInvalidAmount
	}

	months := decimal.NewFromInt(int64(termMonths))
	rate := annualRatePercent.Div(monthDivisor)

	var installment decimal.Decimal
	if rate.IsPositive() {
		// installment = P * r * (1+r)^n / ((1+r)^n - 1)
		factor := one.Add(rate).Pow(months)
		installment = principal.Mul(rate).Mul(factor).Div(factor.Sub(one))
	} else {
		installment = principal.Div(months)
	}
	installment = installment.Round(2)

	lines := make([]Line, 0, termMonths)
	balance := principal
	for n := 1; n <= termMonths; n++ {
		interest := balance.Mul(rate).Round(2)
		principalPortion := installment.Sub(interest)
		balance = balance.Sub(principalPortion)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		lines = append(lines, Line{
			Number:           n,
			Installment:      installment,
			PrincipalPortion: principalPortion,
			InterestPortion:  interest,
			RemainingBalance: balance,
		})
	}

	totalPayable := installment.Mul(months)
	totalInterest := totalPayable.Sub(principal)
	if totalInterest.IsNegative() {
		totalInterest = decimal.Zero
	}

	return &Schedule{
		Installment:   installment,
		TotalPayable:  totalPayable,
		TotalInterest: totalInterest,
		Lines:         lines,
	}, nil
}
