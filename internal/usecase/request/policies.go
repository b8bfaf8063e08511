package request

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"coop-lending-engine/internal/domain/audit"
	"coop-lending-engine/internal/domain/jsonmap"
	domainRequest "coop-lending-engine/internal/domain/request"
	"coop-lending-engine/internal/domain/uow"
)

type PolicyInput struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	MinScore        int             `json:"min_score"`
	MinTenureMonths int             `json:"min_tenure_months"`
	MaxRatio        decimal.Decimal `json:"max_installment_income_ratio"`
	Active          *bool           `json:"active,omitempty"`
}

// CreatePolicy stores scoring configuration. The ratio is a fraction of
// monthly income, so it must sit in [0, 1].
func (u *Usecase) CreatePolicy(ctx context.Context, actorID *string, in PolicyInput) (*domainRequest.Policy, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domainRequest.ErrInvalidAmount)
	}
	if in.MinScore < 0 || in.MinScore > 1000 {
		return nil, fmt.Errorf("%w: score must be in [0, 1000]", domainRequest.ErrInvalidAmount)
	}
	if in.MinTenureMonths < 0 {
		return nil, fmt.Errorf("%w: tenure must be non-negative", domainRequest.ErrInvalidAmount)
	}
	if in.MaxRatio.IsNegative() || in.MaxRatio.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: installment/income ratio must be in [0, 1]", domainRequest.ErrInvalidAmount)
	}

	p := &domainRequest.Policy{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		MinScore:       in.MinScore,
		MinTenureMonth: in.MinTenureMonths,
		MaxRatio:       in.MaxRatio,
		Active:         true,
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Policies.Create(ctx, p); err != nil {
			return err
		}
		return r.Audits.Create(ctx, &audit.Entry{
			Entity:     "approval_policy",
			EntityID:   p.ID,
			ActorID:    actorID,
			Action:     audit.ActionCreate,
			PrevValues: jsonmap.Map{},
			NewValues:  jsonmap.Map{"name": p.Name, "min_score": p.MinScore},
			Metadata:   jsonmap.Map{},
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (u *Usecase) ListPolicies(ctx context.Context) ([]domainRequest.Policy, error) {
	return u.policies.List(ctx)
}
