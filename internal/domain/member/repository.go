package member

import "context"

type Repository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	// GetByIDForUpdate locks the member row for the enclosing transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Member, error)
	GetByUserID(ctx context.Context, userID string) (*Member, error)
	List(ctx context.Context) ([]Member, error)
	Save(ctx context.Context, m *Member) error
}
