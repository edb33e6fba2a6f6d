package content

import "time"

type Status string

const (
	StatusIdea      Status = "IDEA"
	StatusDraft     Status = "DRAFT"
	StatusReady     Status = "READY"
	StatusInReview  Status = "IN_REVIEW"
	StatusApproved  Status = "APPROVED"
	StatusScheduled Status = "SCHEDULED"
	StatusPublished Status = "PUBLISHED"
)

// Table: content_items. Owned by the editor subsystem; this service only
// writes Status and reads the copy fields for distribution payloads.
type Item struct {
	ID          string    `gorm:"column:id;type:varchar(64);primaryKey" json:"id"`
	WorkspaceID string    `gorm:"column:workspace_id;type:varchar(64);not null;index" json:"workspace_id"`
	Title       string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	AIHeadline  *string   `gorm:"column:ai_headline;type:text" json:"ai_headline,omitempty"`
	AIOutline   *string   `gorm:"column:ai_outline;type:text" json:"ai_outline,omitempty"`
	Status      Status    `gorm:"column:status;type:varchar(20);not null;default:DRAFT" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Item) TableName() string { return "content_items" }
