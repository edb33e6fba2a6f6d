package gormstore

import (
	"context"

	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos binds every repository to db and the workspace.
func NewRepos(db *gorm.DB, workspaceID string) uow.Repos {
	return uow.Repos{
		Approvals:     NewApprovalRepository(db, workspaceID),
		Events:        NewEventRepository(db, workspaceID),
		Content:       NewContentRepository(db, workspaceID),
		Members:       NewMemberRepository(db, workspaceID),
		Profiles:      NewProfileRepository(db, workspaceID),
		Jobs:          NewJobRepository(db, workspaceID),
		Settings:      NewSettingRepository(db, workspaceID),
		Notifications: NewNotificationRepository(db, workspaceID),
	}
}

func (u *GormUoW) WithinTenantTx(ctx context.Context, tc tenant.Context, fn func(r uow.Repos) error) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setSessionTenant(tx, tc); err != nil {
			return err
		}
		err := fn(NewRepos(tx, tc.WorkspaceID))
		if rerr := clearSessionTenant(tx); err == nil {
			err = rerr
		}
		return err
	})
}

// setSessionTenant sets the row-level-security discriminator for the tx.
// Postgres scopes set_config to the transaction; MySQL user variables live
// on the connection and are cleared explicitly before it returns to the pool.
func setSessionTenant(tx *gorm.DB, tc tenant.Context) error {
	switch tx.Dialector.Name() {
	case "postgres":
		return tx.Exec(
			"SELECT set_config('app.current_user_id', ?, true), set_config('app.current_workspace_id', ?, true)",
			tc.Actor.ID, tc.WorkspaceID,
		).Error
	case "mysql":
		return tx.Exec("SET @app_current_user_id = ?, @app_current_workspace_id = ?", tc.Actor.ID, tc.WorkspaceID).Error
	}
	return nil
}

func clearSessionTenant(tx *gorm.DB) error {
	if tx.Dialector.Name() == "mysql" {
		return tx.Exec("SET @app_current_user_id = NULL, @app_current_workspace_id = NULL").Error
	}
	return nil
}
