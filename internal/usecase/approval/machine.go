package approval

import (
	"strings"
	"time"

	"contentops-workflow/internal/domain/apperr"
	domain "contentops-workflow/internal/domain/approval"
	"contentops-workflow/internal/domain/content"
	"contentops-workflow/internal/domain/tenant"
)

type Intent string

const (
	IntentSubmit  Intent = "submit"
	IntentAdvance Intent = "advance"
	IntentReject  Intent = "reject"
	IntentReopen  Intent = "reopen"
)

const reopenComment = "Reopened after changes."

// notice selects which workflow notifications a step enqueues.
type notice int

const (
	noticeNone notice = iota
	noticeEditorReview
	noticeManagerReview
	noticeApproved
	noticeRejected
)

// Step is the outcome of a legal transition. Plan decides it without touching
// the store; Apply mutates the request.
type Step struct {
	From    domain.State
	To      domain.State
	Event   domain.EventType
	Comment string
	// Content is the projected content status; empty leaves it unchanged.
	Content content.Status

	notice notice
	stamp  func(r *domain.Request, now time.Time)
}

// Plan validates intent against the current state and the actor's role.
//
// Edges: DRAFT->EDITOR_REVIEW (submit), EDITOR_REVIEW->MANAGER_REVIEW and
// MANAGER_REVIEW->APPROVED (advance), EDITOR_REVIEW|MANAGER_REVIEW->REJECTED
// (reject), REJECTED->EDITOR_REVIEW (reopen).
func Plan(from domain.State, intent Intent, role tenant.Role, hasManager bool, reason string) (Step, error) {
	reviewer := role.CanReview()

	switch intent {
	case IntentSubmit:
		if role == tenant.RoleViewer {
			return Step{}, apperr.Authorization("Viewers cannot submit approvals.")
		}
		if from != domain.StateDraft {
			return Step{}, invalid("Only draft requests can be submitted.", from, intent)
		}
		return Step{
			From: from, To: domain.StateEditorReview, Event: domain.EventSubmitted,
			Content: content.StatusInReview,
			notice:  noticeEditorReview,
			stamp: func(r *domain.Request, now time.Time) {
				r.SubmittedAt = &now
			},
		}, nil

	case IntentAdvance:
		switch from {
		case domain.StateEditorReview:
			if !reviewer {
				return Step{}, apperr.Authorization("Only Editors or Admins can move requests to manager review.")
			}
			if !hasManager {
				return Step{}, apperr.Precondition("Assign a manager reviewer before advancing.")
			}
			return Step{
				From: from, To: domain.StateManagerReview, Event: domain.EventMovedToManager,
				notice: noticeManagerReview,
				stamp: func(r *domain.Request, now time.Time) {
					r.EditorReviewedAt = &now
				},
			}, nil
		case domain.StateManagerReview:
			if role != tenant.RoleAdmin {
				return Step{}, apperr.Authorization("Only Admins can finalize approvals.")
			}
			return Step{
				From: from, To: domain.StateApproved, Event: domain.EventApproved,
				Content: content.StatusApproved,
				notice:  noticeApproved,
				stamp: func(r *domain.Request, now time.Time) {
					r.ManagerReviewedAt = &now
					r.ApprovedAt = &now
				},
			}, nil
		}
		return Step{}, invalid("This request cannot be advanced further.", from, intent)

	case IntentReject:
		if !reviewer {
			return Step{}, apperr.Authorization("Only Editors or Admins can reject requests.")
		}
		if from != domain.StateEditorReview && from != domain.StateManagerReview {
			return Step{}, invalid("Only in-review items can be rejected.", from, intent)
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return Step{}, apperr.Validation("Provide a rejection reason.",
				apperr.FieldError{Field: "rejection_reason", Message: "is required"})
		}
		return Step{
			From: from, To: domain.StateRejected, Event: domain.EventRejected,
			Comment: reason,
			Content: content.StatusReady,
			notice:  noticeRejected,
			stamp: func(r *domain.Request, _ time.Time) {
				r.RejectionReason = &reason
			},
		}, nil

	case IntentReopen:
		if !reviewer {
			return Step{}, apperr.Authorization("Only Editors or Admins can reopen requests.")
		}
		if from != domain.StateRejected {
			return Step{}, invalid("Only rejected requests can be reopened.", from, intent)
		}
		return Step{
			From: from, To: domain.StateEditorReview, Event: domain.EventMovedToEditor,
			Comment: reopenComment,
			// content follows the request back into review so the editor queue lists it again
			Content: content.StatusInReview,
			stamp: func(r *domain.Request, now time.Time) {
				r.RejectionReason = nil
				r.SubmittedAt = &now
			},
		}, nil
	}

	return Step{}, apperr.Validation("Unsupported transition.",
		apperr.FieldError{Field: "intent", Message: "must be one of submit advance reject reopen"})
}

// Apply moves r to the target state and stamps the step's timestamps.
func (s Step) Apply(r *domain.Request, now time.Time) {
	r.State = s.To
	if s.stamp != nil {
		s.stamp(r, now)
	}
}

func invalid(msg string, from domain.State, intent Intent) *apperr.Error {
	return &apperr.Error{
		Kind:    apperr.KindInvalidTransition,
		Message: msg,
		Fields: []apperr.FieldError{
			{Field: "state", Message: string(from)},
			{Field: "intent", Message: string(intent)},
		},
	}
}
