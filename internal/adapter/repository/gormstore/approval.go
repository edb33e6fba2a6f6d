package gormstore

import (
	"context"
	"time"

	approvalDomain "contentops-workflow/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct {
	db *gorm.DB
	ws string
}

func NewApprovalRepository(db *gorm.DB, workspaceID string) *ApprovalRepository {
	return &ApprovalRepository{db: db, ws: workspaceID}
}

func (r *ApprovalRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("workspace_id = ?", r.ws)
}

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Request) error {
	a.WorkspaceID = r.ws
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *ApprovalRepository) Get(ctx context.Context, id string) (*approvalDomain.Request, error) {
	var out approvalDomain.Request
	res := r.scoped(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *ApprovalRepository) GetByContentItemID(ctx context.Context, contentItemID string) (*approvalDomain.Request, error) {
	var out approvalDomain.Request
	res := r.scoped(ctx).Where("content_item_id = ?", contentItemID).First(&out)
	return &out, res.Error
}

func (r *ApprovalRepository) List(ctx context.Context) ([]approvalDomain.Request, error) {
	var out []approvalDomain.Request
	res := r.scoped(ctx).Order("created_at DESC, id DESC").Find(&out)
	return out, res.Error
}

// Save rewrites the row as a compare-and-set on state; the workspace filter
// keeps it from touching other tenants.
func (r *ApprovalRepository) Save(ctx context.Context, a *approvalDomain.Request, from approvalDomain.State) error {
	if a.WorkspaceID != r.ws {
		return gorm.ErrRecordNotFound
	}
	res := r.scoped(ctx).Model(a).Where("state = ?", from).
		Select("*").Omit("id", "workspace_id", "content_item_id", "created_at").
		Updates(a)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows for a no-op write; tell that apart from a lost race.
	var cur approvalDomain.Request
	if err := r.scoped(ctx).Select("state").Where("id = ?", a.ID).First(&cur).Error; err != nil {
		return err
	}
	if cur.State != from {
		return approvalDomain.ErrStateChanged
	}
	return nil
}

type EventRepository struct {
	db *gorm.DB
	ws string
}

func NewEventRepository(db *gorm.DB, workspaceID string) *EventRepository {
	return &EventRepository{db: db, ws: workspaceID}
}

func (r *EventRepository) Append(ctx context.Context, e *approvalDomain.Event) error {
	e.WorkspaceID = r.ws
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListByRequest(ctx context.Context, requestID string) ([]approvalDomain.Event, error) {
	var out []approvalDomain.Event
	res := r.db.WithContext(ctx).
		Where("workspace_id = ? AND approval_request_id = ?", r.ws, requestID).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *EventRepository) ListByRequests(ctx context.Context, requestIDs []string) ([]approvalDomain.Event, error) {
	var out []approvalDomain.Event
	if len(requestIDs) == 0 {
		return out, nil
	}
	res := r.db.WithContext(ctx).
		Where("workspace_id = ? AND approval_request_id IN ?", r.ws, requestIDs).
		Order("created_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}
