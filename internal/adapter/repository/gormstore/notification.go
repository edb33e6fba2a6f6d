package gormstore

import (
	"context"
	"time"

	notifDomain "contentops-workflow/internal/domain/notification"
	"contentops-workflow/pkg/id"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
	ws string
}

func NewSettingRepository(db *gorm.DB, workspaceID string) *SettingRepository {
	return &SettingRepository{db: db, ws: workspaceID}
}

func (r *SettingRepository) Get(ctx context.Context, kind notifDomain.ChannelKind) (*notifDomain.Setting, error) {
	var out notifDomain.Setting
	res := r.db.WithContext(ctx).Where("workspace_id = ? AND channel = ?", r.ws, kind).First(&out)
	return &out, res.Error
}

func (r *SettingRepository) EnsureDefaults(ctx context.Context) error {
	for _, kind := range []notifDomain.ChannelKind{notifDomain.ChannelEmail, notifDomain.ChannelSlack} {
		row := notifDomain.Setting{
			ID:          id.NewID32(),
			WorkspaceID: r.ws,
			Channel:     kind,
			Config:      datatypes.JSON(notifDomain.DefaultConfig(kind)),
		}
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "channel"}},
				DoNothing: true,
			}).
			Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SettingRepository) List(ctx context.Context) ([]notifDomain.Setting, error) {
	var out []notifDomain.Setting
	res := r.db.WithContext(ctx).Where("workspace_id = ?", r.ws).Order("channel ASC").Find(&out)
	return out, res.Error
}

func (r *SettingRepository) SaveConfig(ctx context.Context, kind notifDomain.ChannelKind, config []byte) error {
	res := r.db.WithContext(ctx).Model(&notifDomain.Setting{}).
		Where("workspace_id = ? AND channel = ?", r.ws, kind).
		Update("config", datatypes.JSON(config))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&notifDomain.Setting{
		ID:          id.NewID32(),
		WorkspaceID: r.ws,
		Channel:     kind,
		Config:      datatypes.JSON(config),
	}).Error)
}

type NotificationRepository struct {
	db *gorm.DB
	ws string
}

func NewNotificationRepository(db *gorm.DB, workspaceID string) *NotificationRepository {
	return &NotificationRepository{db: db, ws: workspaceID}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notifDomain.Notification) error {
	n.WorkspaceID = r.ws
	if n.Status == "" {
		n.Status = notifDomain.StatusPending
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) Get(ctx context.Context, id string) (*notifDomain.Notification, error) {
	var out notifDomain.Notification
	res := r.db.WithContext(ctx).Where("workspace_id = ? AND id = ?", r.ws, id).First(&out)
	return &out, res.Error
}

func (r *NotificationRepository) List(ctx context.Context, status *notifDomain.Status) ([]notifDomain.Notification, error) {
	var out []notifDomain.Notification
	q := r.db.WithContext(ctx).Where("workspace_id = ?", r.ws)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	res := q.Order("created_at DESC, id DESC").Find(&out)
	return out, res.Error
}

// Claim is a conditional update so concurrent deliverers cannot both win the row.
func (r *NotificationRepository) Claim(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&notifDomain.Notification{}).
		Where("workspace_id = ? AND id = ? AND status = ?", r.ws, id, notifDomain.StatusPending).
		Updates(map[string]any{
			"status":     notifDomain.StatusProcessing,
			"claimed_at": at,
			"attempts":   gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.finish(ctx, id, map[string]any{
		"status":  notifDomain.StatusSent,
		"sent_at": at,
		"error":   nil,
	})
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.finish(ctx, id, map[string]any{
		"status": notifDomain.StatusFailed,
		"error":  reason,
	})
}

func (r *NotificationRepository) finish(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&notifDomain.Notification{}).
		Where("workspace_id = ? AND id = ? AND status = ?", r.ws, id, notifDomain.StatusProcessing).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// OutboxRepository reads across workspaces and is never handed to request-scoped code.
type OutboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) *OutboxRepository { return &OutboxRepository{db: db} }

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]notifDomain.Notification, error) {
	var out []notifDomain.Notification
	res := r.db.WithContext(ctx).
		Where("status = ?", notifDomain.StatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&out)
	return out, res.Error
}

func (r *OutboxRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notifDomain.Notification{}).
		Where("status = ? AND claimed_at < ?", notifDomain.StatusProcessing, cutoff).
		Updates(map[string]any{
			"status":     notifDomain.StatusPending,
			"claimed_at": nil,
		})
	return res.RowsAffected, res.Error
}
