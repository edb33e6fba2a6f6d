package approvalmock

import (
	"context"

	domain "contentops-workflow/internal/domain/approval"

	"gorm.io/gorm"
)

var (
	_ domain.Repository      = (*Repo)(nil)
	_ domain.EventRepository = (*EventRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Unset lookups return gorm.ErrRecordNotFound; unset writes succeed.
type Repo struct {
	CreateFn             func(ctx context.Context, r *domain.Request) error
	GetFn                func(ctx context.Context, id string) (*domain.Request, error)
	GetByContentItemIDFn func(ctx context.Context, contentItemID string) (*domain.Request, error)
	ListFn               func(ctx context.Context) ([]domain.Request, error)
	SaveFn               func(ctx context.Context, r *domain.Request, from domain.State) error
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, id string) (*domain.Request, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByContentItemID(ctx context.Context, contentItemID string) (*domain.Request, error) {
	if m.GetByContentItemIDFn != nil {
		return m.GetByContentItemIDFn(ctx, contentItemID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) List(ctx context.Context) ([]domain.Request, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, r *domain.Request, from domain.State) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r, from)
	}
	return nil
}

// EventRepo records appended events unless AppendFn overrides it.
type EventRepo struct {
	AppendFn func(ctx context.Context, e *domain.Event) error
	Appended []domain.Event
}

func (m *EventRepo) Append(ctx context.Context, e *domain.Event) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	m.Appended = append(m.Appended, *e)
	return nil
}

func (m *EventRepo) ListByRequest(_ context.Context, requestID string) ([]domain.Event, error) {
	var out []domain.Event
	for _, e := range m.Appended {
		if e.RequestID == requestID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *EventRepo) ListByRequests(ctx context.Context, requestIDs []string) ([]domain.Event, error) {
	var out []domain.Event
	for _, rid := range requestIDs {
		evs, _ := m.ListByRequest(ctx, rid)
		out = append(out, evs...)
	}
	return out, nil
}
