package distribution

import (
	"context"
	"errors"

	"contentops-workflow/internal/domain/apperr"
	approvalDomain "contentops-workflow/internal/domain/approval"
	"contentops-workflow/internal/domain/uow"

	"gorm.io/gorm"
)

const (
	msgNotApproved = "Content must be fully approved before scheduling distribution."
	msgJobActive   = "A distribution job is already queued for this content."
)

// AssertSchedulable runs inside the scheduling transaction. It returns the
// approved request, or a precondition error when the content item is not
// approved or already has an active job other than exceptJobID.
func AssertSchedulable(ctx context.Context, r uow.Repos, contentItemID, exceptJobID string) (*approvalDomain.Request, error) {
	req, err := r.Approvals.GetByContentItemID(ctx, contentItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Precondition(msgNotApproved)
	}
	if err != nil {
		return nil, err
	}
	if req.State != approvalDomain.StateApproved {
		return nil, apperr.Precondition(msgNotApproved)
	}

	_, err = r.Jobs.FindActive(ctx, contentItemID, exceptJobID)
	switch {
	case err == nil:
		return nil, apperr.Precondition(msgJobActive)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return req, nil
	default:
		return nil, err
	}
}
