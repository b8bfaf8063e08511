package uowmock

import (
	"context"
	"errors"

	"coop-lending-engine/internal/domain/uow"
)

var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
type UoW struct {
	WithinTxFn func(ctx context.Context, fn func(r uow.Repos) error) error
}

// Passthrough returns a UoW that simply invokes the callback with the given
// repos, with no transactional behavior. Most usecase tests want exactly
// this.
func Passthrough(r uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(r uow.Repos) error) error {
			return fn(r)
		},
	}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
