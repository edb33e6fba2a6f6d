package approval

import (
	"context"
	"errors"
)

// ErrStateChanged is returned by Save when the stored state no longer matches
// the state the caller read.
var ErrStateChanged = errors.New("approval request state changed concurrently")

// Repository is bound to one workspace; lookups outside it return gorm.ErrRecordNotFound.
type Repository interface {
	// Create a new request (DB uniqueness ensures at most one per content item)
	Create(ctx context.Context, r *Request) error

	Get(ctx context.Context, id string) (*Request, error)
	GetByContentItemID(ctx context.Context, contentItemID string) (*Request, error)
	List(ctx context.Context) ([]Request, error)

	// Save writes r only while the stored state still equals from.
	Save(ctx context.Context, r *Request, from State) error
}

// EventRepository only appends and reads; events are never updated or deleted.
type EventRepository interface {
	Append(ctx context.Context, e *Event) error
	ListByRequest(ctx context.Context, requestID string) ([]Event, error)
	ListByRequests(ctx context.Context, requestIDs []string) ([]Event, error)
}
