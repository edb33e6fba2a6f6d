package content

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Item, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
