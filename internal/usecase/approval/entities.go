package approval

import (
	domain "contentops-workflow/internal/domain/approval"
	"contentops-workflow/internal/domain/distribution"
)

type TransitionInput struct {
	ApprovalRequestID string `json:"approval_request_id" validate:"required,hex32"`
	Intent            Intent `json:"intent"              validate:"required,oneof=submit advance reject reopen"`
	RejectionReason   string `json:"rejection_reason"    validate:"max=500"`
}

// CreateInput opens a request for a content item, or updates the reviewers of
// the existing one. Absent reviewers keep their current value.
type CreateInput struct {
	ContentItemID     string  `json:"content_item_id"     validate:"required,ident"`
	EditorReviewerID  *string `json:"editor_reviewer_id"  validate:"omitempty,ident"`
	ManagerReviewerID *string `json:"manager_reviewer_id" validate:"omitempty,ident"`
	Note              string  `json:"note"                validate:"max=1000"`
	AutoSubmit        bool    `json:"auto_submit"`
}

// AssignInput replaces both reviewer assignments; an absent reviewer is cleared.
type AssignInput struct {
	ApprovalRequestID string  `json:"approval_request_id" validate:"required,hex32"`
	EditorReviewerID  *string `json:"editor_reviewer_id"  validate:"omitempty,ident"`
	ManagerReviewerID *string `json:"manager_reviewer_id" validate:"omitempty,ident"`
}

type CommentInput struct {
	ApprovalRequestID string `json:"approval_request_id" validate:"required,hex32"`
	Comment           string `json:"comment"             validate:"min=3,max=1000"`
}

// RequestDTO is a request with its timeline, oldest event first.
type RequestDTO struct {
	domain.Request
	Events []domain.Event `json:"events"`
}

type QueueItem struct {
	RequestDTO
	Jobs []distribution.Job `json:"distribution_jobs"`
}

type Summary struct {
	TotalOpen               int `json:"total_open"`
	PendingEditor           int `json:"pending_editor"`
	PendingManager          int `json:"pending_manager"`
	ApprovedAwaitingPublish int `json:"approved_awaiting_publish"`
	Rejected                int `json:"rejected"`
}

type QueueDTO struct {
	Summary  Summary     `json:"summary"`
	Requests []QueueItem `json:"requests"`
}
