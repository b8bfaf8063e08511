package audit

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entity, entityID string) ([]Entry, error)
}
