package distribution

import "context"

type ProfileRepository interface {
	GetByChannel(ctx context.Context, channel Channel) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	// Upsert inserts or updates on the (workspace, channel) key.
	Upsert(ctx context.Context, p *Profile) error
}

type JobRepository interface {
	// Create and Save keep ActiveContentKey in sync with Status; a second active
	// job for the same content item fails with gorm.ErrDuplicatedKey.
	Create(ctx context.Context, j *Job) error
	Save(ctx context.Context, j *Job) error

	Get(ctx context.Context, id string) (*Job, error)
	// FindActive returns the active job for a content item, ignoring exceptID.
	FindActive(ctx context.Context, contentItemID, exceptID string) (*Job, error)
	List(ctx context.Context, statuses ...JobStatus) ([]Job, error)
	ListByContentItems(ctx context.Context, contentItemIDs []string) ([]Job, error)
}
