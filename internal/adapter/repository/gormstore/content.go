package gormstore

import (
	"context"

	contentDomain "contentops-workflow/internal/domain/content"

	"gorm.io/gorm"
)

type ContentRepository struct {
	db *gorm.DB
	ws string
}

func NewContentRepository(db *gorm.DB, workspaceID string) *ContentRepository {
	return &ContentRepository{db: db, ws: workspaceID}
}

func (r *ContentRepository) Get(ctx context.Context, id string) (*contentDomain.Item, error) {
	var out contentDomain.Item
	res := r.db.WithContext(ctx).Where("workspace_id = ? AND id = ?", r.ws, id).First(&out)
	return &out, res.Error
}

// UpdateStatus writes only the status projection; copy fields belong to the editor.
func (r *ContentRepository) UpdateStatus(ctx context.Context, id string, status contentDomain.Status) error {
	res := r.db.WithContext(ctx).Model(&contentDomain.Item{}).
		Where("workspace_id = ? AND id = ?", r.ws, id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
