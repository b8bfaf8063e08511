package request

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	// GetByIDForUpdate locks the request row for the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Request, error)
	ListByMemberID(ctx context.Context, memberID string) ([]Request, error)
	ListByStatus(ctx context.Context, s Status) ([]Request, error)
	Save(ctx context.Context, r *Request) error
}

type PolicyRepository interface {
	Create(ctx context.Context, p *Policy) error
	GetByID(ctx context.Context, id string) (*Policy, error)
	List(ctx context.Context) ([]Policy, error)
	Save(ctx context.Context, p *Policy) error
}
