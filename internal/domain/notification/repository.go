package notification

import (
	"context"
	"time"
)

type SettingRepository interface {
	Get(ctx context.Context, kind ChannelKind) (*Setting, error)
	// EnsureDefaults inserts the default row for each kind that has none; existing rows are untouched.
	EnsureDefaults(ctx context.Context) error
	List(ctx context.Context) ([]Setting, error)
	SaveConfig(ctx context.Context, kind ChannelKind, config []byte) error
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, status *Status) ([]Notification, error)

	// Claim flips PENDING to PROCESSING; false means another deliverer owns the row.
	Claim(ctx context.Context, id string, at time.Time) (bool, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

// OutboxRepository spans workspaces; only the delivery worker uses it.
type OutboxRepository interface {
	ListPending(ctx context.Context, limit int) ([]Notification, error)
	// ReclaimStale puts PROCESSING rows claimed before cutoff back to PENDING.
	ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error)
}
