package approval

import (
	"time"
)

type State string

const (
	StateDraft         State = "DRAFT"
	StateEditorReview  State = "EDITOR_REVIEW"
	StateManagerReview State = "MANAGER_REVIEW"
	StateApproved      State = "APPROVED"
	StateRejected      State = "REJECTED"
)

func (s State) Valid() bool {
	switch s {
	case StateDraft, StateEditorReview, StateManagerReview, StateApproved, StateRejected:
		return true
	}
	return false
}

type EventType string

const (
	EventSubmitted      EventType = "SUBMITTED"
	EventMovedToEditor  EventType = "MOVED_TO_EDITOR"
	EventMovedToManager EventType = "MOVED_TO_MANAGER"
	EventApproved       EventType = "APPROVED"
	EventRejected       EventType = "REJECTED"
	EventComment        EventType = "COMMENT"
)

// Table: approval_requests. One row per content item.
type Request struct {
	ID                string     `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	WorkspaceID       string     `gorm:"column:workspace_id;type:varchar(64);not null;index:idx_approval_requests_ws_state,priority:1" json:"workspace_id"`
	ContentItemID     string     `gorm:"column:content_item_id;type:varchar(64);not null;uniqueIndex:ux_approval_requests_content_item" json:"content_item_id"`
	RequestedByID     string     `gorm:"column:requested_by_id;type:varchar(64);not null" json:"requested_by_id"`
	EditorReviewerID  *string    `gorm:"column:editor_reviewer_id;type:varchar(64)" json:"editor_reviewer_id,omitempty"`
	ManagerReviewerID *string    `gorm:"column:manager_reviewer_id;type:varchar(64)" json:"manager_reviewer_id,omitempty"`
	State             State      `gorm:"column:state;type:varchar(20);not null;default:DRAFT;index:idx_approval_requests_ws_state,priority:2" json:"state"`
	RejectionReason   *string    `gorm:"column:rejection_reason;type:text" json:"rejection_reason,omitempty"`
	SubmittedAt       *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	EditorReviewedAt  *time.Time `gorm:"column:editor_reviewed_at" json:"editor_reviewed_at,omitempty"`
	ManagerReviewedAt *time.Time `gorm:"column:manager_reviewed_at" json:"manager_reviewed_at,omitempty"`
	ApprovedAt        *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "approval_requests" }

// Table: approval_events. Append-only audit trail; created_at order is the timeline.
type Event struct {
	ID          string    `gorm:"column:id;type:char(32);primaryKey" json:"id"`
	WorkspaceID string    `gorm:"column:workspace_id;type:varchar(64);not null;index" json:"workspace_id"`
	RequestID   string    `gorm:"column:approval_request_id;type:char(32);not null;index:idx_approval_events_request_created,priority:1" json:"approval_request_id"`
	AuthorID    string    `gorm:"column:author_id;type:varchar(64);not null" json:"author_id"`
	Type        EventType `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Comment     *string   `gorm:"column:comment;type:text" json:"comment,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;index:idx_approval_events_request_created,priority:2" json:"created_at"`
}

func (Event) TableName() string { return "approval_events" }
