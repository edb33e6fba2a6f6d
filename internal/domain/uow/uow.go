package uow

import (
	"context"

	"contentops-workflow/internal/domain/approval"
	"contentops-workflow/internal/domain/content"
	"contentops-workflow/internal/domain/distribution"
	"contentops-workflow/internal/domain/member"
	"contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/domain/tenant"
)

// ErrMissingTenant is returned before any store access when the tenant context is empty.
var ErrMissingTenant = tenant.ErrMissingTenant

// Repos are bound to one transaction and one workspace.
type Repos struct {
	Approvals     approval.Repository
	Events        approval.EventRepository
	Content       content.Repository
	Members       member.Repository
	Profiles      distribution.ProfileRepository
	Jobs          distribution.JobRepository
	Settings      notification.SettingRepository
	Notifications notification.Repository
}

type UnitOfWork interface {
	// WithinTenantTx runs fn in one transaction with the tenant discriminator set.
	WithinTenantTx(ctx context.Context, tc tenant.Context, fn func(r Repos) error) error
}
