package gormstore

import (
	"context"

	memberDomain "contentops-workflow/internal/domain/member"

	"gorm.io/gorm"
)

type MemberRepository struct {
	db *gorm.DB
	ws string
}

func NewMemberRepository(db *gorm.DB, workspaceID string) *MemberRepository {
	return &MemberRepository{db: db, ws: workspaceID}
}

// GetUser only resolves users that belong to the bound workspace.
func (r *MemberRepository) GetUser(ctx context.Context, userID string) (*memberDomain.User, error) {
	var out memberDomain.User
	res := r.db.WithContext(ctx).
		Where("id = ? AND id IN (?)", userID,
			r.db.Model(&memberDomain.Membership{}).Select("user_id").Where("workspace_id = ?", r.ws)).
		First(&out)
	return &out, res.Error
}

func (r *MemberRepository) GetActiveMembership(ctx context.Context, userID string) (*memberDomain.Membership, error) {
	var out memberDomain.Membership
	res := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ? AND status = ?", r.ws, userID, memberDomain.StatusActive).
		First(&out)
	return &out, res.Error
}
