package loan

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coop-lending-engine/internal/domain/audit"
	"coop-lending-engine/internal/domain/jsonmap"
	domainLoan "coop-lending-engine/internal/domain/loan"
	"coop-lending-engine/internal/domain/uow"
)

var trackedTypeFields = []string{"name", "description", "annual_rate", "term_months", "requisites", "active"}

type TypeInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	AnnualRate  decimal.Decimal `json:"annual_rate"`
	TermMonths  int             `json:"term_months"`
	Requisites  jsonmap.Map     `json:"requisites,omitempty"`
	Active      *bool           `json:"active,omitempty"`
}

// CreateType registers a new product template. Name is unique; rate must be
// non-negative and the term at least one month.
func (u *Usecase) CreateType(ctx context.Context, actorID *string, in TypeInput) (*domainLoan.LoanType, error) {
	if err := validateTypeInput(in); err != nil {
		return nil, err
	}

	t := &domainLoan.LoanType{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		AnnualRate:  in.AnnualRate,
		TermMonths:  in.TermMonths,
		Requisites:  in.Requisites,
		Active:      true,
	}
	if t.Requisites == nil {
		t.Requisites = jsonmap.Map{}
	}
	if in.Active != nil {
		t.Active = *in.Active
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.LoanTypes.GetByName(ctx, t.Name); err == nil {
			return fmt.Errorf("%w: loan type %q already exists", domainLoan.ErrInvalidAmount, t.Name)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, domainLoan.ErrTypeNotFound) {
			return err
		}
		if err := r.LoanTypes.Create(ctx, t); err != nil {
			return err
		}
		return r.Audits.Create(ctx, &audit.Entry{
			Entity:     "loan_type",
			EntityID:   t.ID,
			ActorID:    actorID,
			Action:     audit.ActionCreate,
			PrevValues: jsonmap.Map{},
			NewValues:  typeSnapshot(t),
			Metadata:   jsonmap.Map{},
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateType edits a product template. Issued loans carry their own rate
// and term snapshot, so edits here never reprice existing loans.
func (u *Usecase) UpdateType(ctx context.Context, typeID string, actorID *string, in TypeInput) (*domainLoan.LoanType, error) {
	if err := validateTypeInput(in); err != nil {
		return nil, err
	}

	var out *domainLoan.LoanType
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		t, err := r.LoanTypes.GetByID(ctx, typeID)
		if err != nil {
			return domainLoan.ErrTypeNotFound
		}
		before := typeSnapshot(t)

		t.Name = in.Name
		t.Description = in.Description
		t.AnnualRate = in.AnnualRate
		t.TermMonths = in.TermMonths
		if in.Requisites != nil {
			t.Requisites = in.Requisites
		}
		if in.Active != nil {
			t.Active = *in.Active
		}

		entry := audit.Diff("loan_type", t.ID, actorID, audit.ActionUpdate, trackedTypeFields, before, typeSnapshot(t))
		if entry == nil {
			out = t
			return nil
		}
		if err := r.LoanTypes.Save(ctx, t); err != nil {
			return err
		}
		if err := r.Audits.Create(ctx, entry); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) ListTypes(ctx context.Context) ([]domainLoan.LoanType, error) {
	return u.types.List(ctx)
}

func validateTypeInput(in TypeInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domainLoan.ErrInvalidAmount)
	}
	if in.AnnualRate.IsNegative() {
		return fmt.Errorf("%w: rate must be non-negative", domainLoan.ErrInvalidAmount)
	}
	if in.TermMonths < 1 {
		return fmt.Errorf("%w: term must be at least one month", domainLoan.ErrInvalidAmount)
	}
	return nil
}

func typeSnapshot(t *domainLoan.LoanType) jsonmap.Map {
	return jsonmap.Map{
		"name":        t.Name,
		"description": t.Description,
		"annual_rate": t.AnnualRate.String(),
		"term_months": t.TermMonths,
		"requisites":  t.Requisites,
		"active":      t.Active,
	}
}
