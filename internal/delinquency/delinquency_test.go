package delinquency

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregate(t *testing.T) {
	due := date(2025, 7, 10)

	cases := []struct {
		name      string
		principal string
		dueDate   *time.Time
		payments  []string
		asOf      time.Time
		want      Summary
	}{
		{
			name:      "no payments, not yet due",
			principal: "10000",
			dueDate:   &due,
			asOf:      date(2025, 7, 1),
			want:      Summary{TotalPaid: dec("0"), Balance: dec("10000"), OverdueAmount: dec("0")},
		},
		{
			name:      "due today is not overdue",
			principal: "10000",
			dueDate:   &due,
			asOf:      date(2025, 7, 10),
			want:      Summary{TotalPaid: dec("0"), Balance: dec("10000"), OverdueAmount: dec("0")},
		},
		{
			name:      "one day late is one bucket",
			principal: "10000",
			dueDate:   &due,
			payments:  []string{"2500"},
			asOf:      date(2025, 7, 11),
			want: Summary{
				TotalPaid: dec("2500"), Balance: dec("7500"),
				OverdueAmount: dec("7500"), OverdueDays: 1, OverdueInstallments: 1,
			},
		},
		{
			name:      "ninety one days late is four buckets",
			principal: "10000",
			dueDate:   &due,
			asOf:      due.AddDate(0, 0, 91),
			want: Summary{
				TotalPaid: dec("0"), Balance: dec("10000"),
				OverdueAmount: dec("10000"), OverdueDays: 91, OverdueInstallments: 4,
			},
		},
		{
			name:      "fully paid loan is never overdue",
			principal: "5000",
			dueDate:   &due,
			payments:  []string{"2000", "3000"},
			asOf:      date(2026, 1, 1),
			want:      Summary{TotalPaid: dec("5000"), Balance: dec("0"), OverdueAmount: dec("0")},
		},
		{
			name:      "overpayment clamps balance at zero",
			principal: "5000",
			dueDate:   &due,
			payments:  []string{"6000"},
			asOf:      date(2026, 1, 1),
			want:      Summary{TotalPaid: dec("6000"), Balance: dec("0"), OverdueAmount: dec("0")},
		},
		{
			name:      "no due date means no arrears",
			principal: "5000",
			asOf:      date(2026, 1, 1),
			want:      Summary{TotalPaid: dec("0"), Balance: dec("5000"), OverdueAmount: dec("0")},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payments := make([]decimal.Decimal, 0, len(tc.payments))
			for _, p := range tc.payments {
				payments = append(payments, dec(p))
			}
			got := Aggregate(dec(tc.principal), tc.dueDate, payments, tc.asOf)
			if !got.TotalPaid.Equal(tc.want.TotalPaid) {
				t.Errorf("TotalPaid = %s, want %s", got.TotalPaid, tc.want.TotalPaid)
			}
			if !got.Balance.Equal(tc.want.Balance) {
				t.Errorf("Balance = %s, want %s", got.Balance, tc.want.Balance)
			}
			if !got.OverdueAmount.Equal(tc.want.OverdueAmount) {
				t.Errorf("OverdueAmount = %s, want %s", got.OverdueAmount, tc.want.OverdueAmount)
			}
			if got.OverdueDays != tc.want.OverdueDays {
				t.Errorf("OverdueDays = %d, want %d", got.OverdueDays, tc.want.OverdueDays)
			}
			if got.OverdueInstallments != tc.want.OverdueInstallments {
				t.Errorf("OverdueInstallments = %d, want %d", got.OverdueInstallments, tc.want.OverdueInstallments)
			}
		})
	}
}

func TestAggregate_OverdueDaysMonotonic(t *testing.T) {
	due := date(2025, 3, 1)
	prev := 0
	for d := 1; d <= 120; d += 7 {
		got := Aggregate(dec("7000"), &due, []decimal.Decimal{dec("1000")}, due.AddDate(0, 0, d))
		if got.OverdueDays < prev {
			t.Fatalf("overdue days regressed: %d after %d", got.OverdueDays, prev)
		}
		prev = got.OverdueDays
	}
}
