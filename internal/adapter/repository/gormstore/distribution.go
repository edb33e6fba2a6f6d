package gormstore

import (
	"context"

	distDomain "contentops-workflow/internal/domain/distribution"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	db *gorm.DB
	ws string
}

func NewProfileRepository(db *gorm.DB, workspaceID string) *ProfileRepository {
	return &ProfileRepository{db: db, ws: workspaceID}
}

func (r *ProfileRepository) GetByChannel(ctx context.Context, channel distDomain.Channel) (*distDomain.Profile, error) {
	var out distDomain.Profile
	res := r.db.WithContext(ctx).Where("workspace_id = ? AND channel = ?", r.ws, channel).First(&out)
	return &out, res.Error
}

func (r *ProfileRepository) List(ctx context.Context) ([]distDomain.Profile, error) {
	var out []distDomain.Profile
	res := r.db.WithContext(ctx).Where("workspace_id = ?", r.ws).Order("channel ASC").Find(&out)
	return out, res.Error
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *distDomain.Profile) error {
	p.WorkspaceID = r.ws
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "channel"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "config", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return translate(err)
	}
	// reload so p.ID reflects the surviving row when the insert turned into an update
	saved, err := r.GetByChannel(ctx, p.Channel)
	if err != nil {
		return err
	}
	*p = *saved
	return nil
}

type JobRepository struct {
	db *gorm.DB
	ws string
}

func NewJobRepository(db *gorm.DB, workspaceID string) *JobRepository {
	return &JobRepository{db: db, ws: workspaceID}
}

func (r *JobRepository) Create(ctx context.Context, j *distDomain.Job) error {
	j.WorkspaceID = r.ws
	j.SyncActiveKey()
	return translate(r.db.WithContext(ctx).Create(j).Error)
}

func (r *JobRepository) Save(ctx context.Context, j *distDomain.Job) error {
	if j.WorkspaceID != r.ws {
		return gorm.ErrRecordNotFound
	}
	j.SyncActiveKey()
	res := r.db.WithContext(ctx).Model(j).
		Where("workspace_id = ?", r.ws).
		Select("*").Omit("id", "workspace_id", "content_item_id", "created_at").
		Updates(j)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*distDomain.Job, error) {
	var out distDomain.Job
	res := r.db.WithContext(ctx).Where("workspace_id = ? AND id = ?", r.ws, id).First(&out)
	return &out, res.Error
}

func (r *JobRepository) FindActive(ctx context.Context, contentItemID, exceptID string) (*distDomain.Job, error) {
	var out distDomain.Job
	q := r.db.WithContext(ctx).
		Where("workspace_id = ? AND content_item_id = ? AND status IN ?", r.ws, contentItemID, distDomain.ActiveStatuses)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	res := q.Order("created_at ASC").First(&out)
	return &out, res.Error
}

// List returns jobs in the given statuses ordered by schedule; no statuses means all.
func (r *JobRepository) List(ctx context.Context, statuses ...distDomain.JobStatus) ([]distDomain.Job, error) {
	var out []distDomain.Job
	q := r.db.WithContext(ctx).Where("workspace_id = ?", r.ws)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	res := q.Order("scheduled_for ASC, created_at ASC").Find(&out)
	return out, res.Error
}

func (r *JobRepository) ListByContentItems(ctx context.Context, contentItemIDs []string) ([]distDomain.Job, error) {
	var out []distDomain.Job
	if len(contentItemIDs) == 0 {
		return out, nil
	}
	res := r.db.WithContext(ctx).
		Where("workspace_id = ? AND content_item_id IN ?", r.ws, contentItemIDs).
		Order("created_at ASC").
		Find(&out)
	return out, res.Error
}
