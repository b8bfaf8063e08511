package loan

import (
	"context"
	"errors"
	"testing"

	"coop-lending-engine/internal/domain/audit"
	domainLoan "coop-lending-engine/internal/domain/loan"
)

func TestCreateType(t *testing.T) {
	actor := "admin-1"

	t.Run("valid input creates an active type", func(t *testing.T) {
		f := newFixture(nil)
		var created *domainLoan.LoanType
		f.types.CreateFn = func(ctx context.Context, lt *domainLoan.LoanType) error {
			created = lt
			return nil
		}

		got, err := f.uc.CreateType(context.Background(), &actor, TypeInput{
			Name:       "ordinario",
			AnnualRate: dec("5"),
			TermMonths: 120,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || !got.Active {
			t.Fatalf("got = %+v", got)
		}
		if len(f.audits.Entries) != 1 || f.audits.Entries[0].Action != audit.ActionCreate {
			t.Fatalf("audits = %+v", f.audits.Entries)
		}
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		f := newFixture(nil)
		f.types.GetByNameFn = func(ctx context.Context, name string) (*domainLoan.LoanType, error) {
			return &domainLoan.LoanType{ID: "t1", Name: name}, nil
		}

		_, err := f.uc.CreateType(context.Background(), &actor, TypeInput{Name: "ordinario", AnnualRate: dec("5"), TermMonths: 12})
		if !errors.Is(err, domainLoan.ErrInvalidAmount) {
			t.Fatalf("err = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		cases := []TypeInput{
			{Name: "", AnnualRate: dec("5"), TermMonths: 12},
			{Name: "x", AnnualRate: dec("-1"), TermMonths: 12},
			{Name: "x", AnnualRate: dec("5"), TermMonths: 0},
		}
		for i, in := range cases {
			f := newFixture(nil)
			if _, err := f.uc.CreateType(context.Background(), &actor, in); err == nil {
				t.Fatalf("case %d: expected an error", i)
			}
		}
	})
}

func TestUpdateType(t *testing.T) {
	actor := "admin-1"

	newTypeFixture := func() (*fixture, *domainLoan.LoanType) {
		lt := &domainLoan.LoanType{ID: "t1", Name: "ordinario", AnnualRate: dec("5"), TermMonths: 120, Active: true}
		f := newFixture(nil)
		f.types.GetByIDFn = func(ctx context.Context, id string) (*domainLoan.LoanType, error) {
			if id == lt.ID {
				return lt, nil
			}
			return nil, domainLoan.ErrTypeNotFound
		}
		return f, lt
	}

	t.Run("rate change is saved and audited", func(t *testing.T) {
		f, lt := newTypeFixture()
		saved := false
		f.types.SaveFn = func(ctx context.Context, got *domainLoan.LoanType) error {
			saved = true
			return nil
		}

		got, err := f.uc.UpdateType(context.Background(), "t1", &actor, TypeInput{Name: lt.Name, AnnualRate: dec("6"), TermMonths: lt.TermMonths})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !saved || !got.AnnualRate.Equal(dec("6")) {
			t.Fatalf("got = %+v", got)
		}
		if len(f.audits.Entries) != 1 {
			t.Fatalf("audits = %d, want 1", len(f.audits.Entries))
		}
		entry := f.audits.Entries[0]
		if entry.NewValues["annual_rate"] != "6" || entry.PrevValues["annual_rate"] != "5" {
			t.Fatalf("diff = %+v / %+v", entry.PrevValues, entry.NewValues)
		}
	})

	t.Run("identical input writes nothing", func(t *testing.T) {
		f, lt := newTypeFixture()
		f.types.SaveFn = func(ctx context.Context, got *domainLoan.LoanType) error {
			t.Fatal("save must not be called")
			return nil
		}

		if _, err := f.uc.UpdateType(context.Background(), "t1", &actor, TypeInput{Name: lt.Name, AnnualRate: dec("5"), TermMonths: 120}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.audits.Entries) != 0 {
			t.Fatal("no audit entry expected")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		f, _ := newTypeFixture()
		_, err := f.uc.UpdateType(context.Background(), "missing", &actor, TypeInput{Name: "x", AnnualRate: dec("5"), TermMonths: 12})
		if !errors.Is(err, domainLoan.ErrTypeNotFound) {
			t.Fatalf("err = %v, want ErrTypeNotFound", err)
		}
	})
}
