package member

import (
	"strings"
	"time"

	"contentops-workflow/internal/domain/tenant"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusInvited Status = "INVITED"
)

// Table: users (read-only here).
type User struct {
	ID        string    `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	FirstName *string   `gorm:"column:first_name;type:varchar(120)" json:"first_name,omitempty"`
	LastName  *string   `gorm:"column:last_name;type:varchar(120)" json:"last_name,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

// DisplayName falls back to the email when no first name is set.
func (u User) DisplayName() string {
	if u.FirstName == nil || *u.FirstName == "" {
		return u.Email
	}
	last := ""
	if u.LastName != nil {
		last = *u.LastName
	}
	return strings.TrimSpace(*u.FirstName + " " + last)
}

// Table: workspace_members (read-only here).
type Membership struct {
	WorkspaceID string      `gorm:"column:workspace_id;type:varchar(64);primaryKey" json:"workspace_id"`
	UserID      string      `gorm:"column:user_id;type:varchar(64);primaryKey" json:"user_id"`
	Role        tenant.Role `gorm:"column:role;type:varchar(20);not null" json:"role"`
	Status      Status      `gorm:"column:status;type:varchar(20);not null;default:ACTIVE" json:"status"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Membership) TableName() string { return "workspace_members" }
