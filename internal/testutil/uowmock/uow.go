package uowmock

import (
	"context"
	"errors"
	"sync/atomic"

	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Unfilled functions return errUnimplemented.
type UoW struct {
	WithinTenantTxFn func(ctx context.Context, tc tenant.Context, fn func(r uow.Repos) error) error
	calls            atomic.Int64
}

func New() *UoW { return &UoW{} }

// Passthrough runs every transaction body against the given repos.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{WithinTenantTxFn: func(_ context.Context, tc tenant.Context, fn func(uow.Repos) error) error {
		if err := tc.Validate(); err != nil {
			return err
		}
		return fn(repos)
	}}
}

func (m *UoW) WithWithinTenantTx(fn func(context.Context, tenant.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTenantTxFn = fn
	return m
}

func (m *UoW) Reset() {
	m.WithinTenantTxFn = nil
	m.calls.Store(0)
}

// Calls reports how many transactions were opened.
func (m *UoW) Calls() int { return int(m.calls.Load()) }

func (m *UoW) WithinTenantTx(ctx context.Context, tc tenant.Context, fn func(r uow.Repos) error) error {
	m.calls.Add(1)
	if m.WithinTenantTxFn != nil {
		return m.WithinTenantTxFn(ctx, tc, fn)
	}
	return errUnimplemented
}
