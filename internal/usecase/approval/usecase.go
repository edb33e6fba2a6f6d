package approval

import (
	"context"
	"errors"
	"strings"
	"time"

	"contentops-workflow/internal/domain/apperr"
	domain "contentops-workflow/internal/domain/approval"
	"contentops-workflow/internal/domain/distribution"
	notifDomain "contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/domain/uow"
	"contentops-workflow/internal/logging"
	"contentops-workflow/internal/usecase/notification"
	"contentops-workflow/internal/validation"
	"contentops-workflow/pkg/id"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deliverer sends outbox rows enqueued by a committed transaction.
type Deliverer interface {
	Deliver(ctx context.Context, tc tenant.Context, ids ...string)
}

type Usecase struct {
	uow     uow.UnitOfWork
	out     Deliverer
	v       *validation.Validator
	log     zerolog.Logger
	now     func() time.Time
	baseURL string
}

// NewUsecase: baseURL prefixes action links in notifications and may be empty.
func NewUsecase(tx uow.UnitOfWork, out Deliverer, baseURL string) *Usecase {
	return &Usecase{
		uow:     tx,
		out:     out,
		v:       validation.New(),
		log:     logging.Component("approval"),
		now:     func() time.Time { return time.Now().UTC() },
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func loadRequest(ctx context.Context, r uow.Repos, requestID string) (*domain.Request, error) {
	req, err := r.Approvals.Get(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Approval request")
	}
	return req, err
}

// Transition applies one intent. State, content status, audit event and
// outbox rows commit together; delivery runs after commit and never fails the call.
func (u *Usecase) Transition(ctx context.Context, tc tenant.Context, in TransitionInput) (*RequestDTO, error) {
	if err := u.v.Check(in); err != nil {
		return nil, err
	}

	var (
		out    *RequestDTO
		outbox []string
	)
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		req, err := loadRequest(ctx, r, in.ApprovalRequestID)
		if err != nil {
			return err
		}
		outbox, err = u.apply(ctx, r, tc.Actor, req, in.Intent, in.RejectionReason)
		if err != nil {
			return err
		}
		out, err = hydrate(ctx, r, req)
		return err
	})
	log := u.log.With().Str("workspace_id", tc.WorkspaceID).Str("request_id", in.ApprovalRequestID).
		Str("intent", string(in.Intent)).Str("actor_id", tc.Actor.ID).Logger()
	if err != nil {
		log.Info().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("transition refused")
		return nil, err
	}
	log.Info().Str("state", string(out.State)).Int("notifications", len(outbox)).Msg("transition applied")

	u.out.Deliver(ctx, tc, outbox...)
	return out, nil
}

// apply runs a planned step inside the caller's transaction and returns the
// ids of the notifications it enqueued.
func (u *Usecase) apply(ctx context.Context, r uow.Repos, actor tenant.Actor, req *domain.Request, intent Intent, reason string) ([]string, error) {
	step, err := Plan(req.State, intent, actor.Role, req.ManagerReviewerID != nil, reason)
	if err != nil {
		return nil, err
	}

	now := u.now()
	step.Apply(req, now)
	if err := save(ctx, r, req, step.From); err != nil {
		return nil, err
	}
	if step.Content != "" {
		if err := r.Content.UpdateStatus(ctx, req.ContentItemID, step.Content); err != nil {
			return nil, err
		}
	}
	if _, err := appendEvent(ctx, r, req.ID, actor.ID, step.Event, step.Comment, now); err != nil {
		return nil, err
	}

	inputs, err := u.notices(ctx, r, req, step)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(inputs))
	for _, in := range inputs {
		n, err := notification.Enqueue(ctx, r, in)
		if err != nil {
			return nil, err
		}
		ids = append(ids, n.ID)
	}
	return ids, nil
}

// save writes req unless another transaction moved it out of from since it was read.
func save(ctx context.Context, r uow.Repos, req *domain.Request, from domain.State) error {
	err := r.Approvals.Save(ctx, req, from)
	if errors.Is(err, domain.ErrStateChanged) {
		return apperr.Conflict("This approval request was changed by someone else. Reload and try again.")
	}
	return err
}

func appendEvent(ctx context.Context, r uow.Repos, requestID, authorID string, t domain.EventType, comment string, at time.Time) (*domain.Event, error) {
	e := &domain.Event{
		ID:        id.NewID32(),
		RequestID: requestID,
		AuthorID:  authorID,
		Type:      t,
		CreatedAt: at,
	}
	if comment != "" {
		e.Comment = &comment
	}
	if err := r.Events.Append(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (u *Usecase) notices(ctx context.Context, r uow.Repos, req *domain.Request, step Step) ([]notification.DispatchInput, error) {
	if step.notice == noticeNone {
		return nil, nil
	}
	if step.notice == noticeEditorReview && req.EditorReviewerID == nil {
		return nil, nil
	}

	item, err := r.Content.Get(ctx, req.ContentItemID)
	if err != nil {
		return nil, err
	}
	title := item.Title
	base := notification.DispatchInput{ApprovalRequestID: req.ID, Channel: notifDomain.ChannelEmail}
	if u.baseURL != "" {
		base.Payload.ActionURL = u.baseURL + "/app/approvals/" + req.ID
	}
	mk := func(channel notifDomain.ChannelKind, recipient, subject, body string) notification.DispatchInput {
		in := base
		in.Channel = channel
		in.RecipientID = recipient
		in.Payload.Subject = subject
		in.Payload.Body = body
		return in
	}

	switch step.notice {
	case noticeEditorReview:
		requester := requesterName(ctx, r, req.RequestedByID)
		return []notification.DispatchInput{
			mk(notifDomain.ChannelEmail, *req.EditorReviewerID,
				"New content awaiting Editor review: "+title,
				requester+" submitted content for your review."),
			mk(notifDomain.ChannelSlack, "",
				"Editor review needed – "+title,
				requester+" requested your review."),
		}, nil
	case noticeManagerReview:
		return []notification.DispatchInput{
			mk(notifDomain.ChannelEmail, *req.ManagerReviewerID,
				"Manager review needed – "+title,
				"Editor approved this request. Please complete manager review."),
		}, nil
	case noticeApproved:
		return []notification.DispatchInput{
			mk(notifDomain.ChannelEmail, req.RequestedByID,
				"Approved for publishing – "+title,
				"Content cleared all approval gates and is ready for distribution."),
		}, nil
	case noticeRejected:
		return []notification.DispatchInput{
			mk(notifDomain.ChannelEmail, req.RequestedByID,
				"Changes requested – "+title,
				step.Comment),
		}, nil
	}
	return nil, nil
}

func requesterName(ctx context.Context, r uow.Repos, userID string) string {
	user, err := r.Members.GetUser(ctx, userID)
	if err != nil {
		return "A teammate"
	}
	return user.DisplayName()
}

// CreateOrUpdate opens the request for a content item. A second call for the
// same item updates reviewer assignments on the existing request.
func (u *Usecase) CreateOrUpdate(ctx context.Context, tc tenant.Context, in CreateInput) (*RequestDTO, error) {
	if err := u.v.Check(in); err != nil {
		return nil, err
	}
	if tc.Actor.Role == tenant.RoleViewer {
		return nil, apperr.Authorization("Viewers cannot request approvals.")
	}

	var (
		out    *RequestDTO
		outbox []string
	)
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		if _, err := r.Content.Get(ctx, in.ContentItemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Content item")
			}
			return err
		}
		if err := checkReviewers(ctx, r, in.EditorReviewerID, in.ManagerReviewerID); err != nil {
			return err
		}

		req, err := r.Approvals.GetByContentItemID(ctx, in.ContentItemID)
		switch {
		case err == nil:
			if in.EditorReviewerID != nil {
				req.EditorReviewerID = in.EditorReviewerID
			}
			if in.ManagerReviewerID != nil {
				req.ManagerReviewerID = in.ManagerReviewerID
			}
			if err := save(ctx, r, req, req.State); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			req = &domain.Request{
				ID:                id.NewID32(),
				ContentItemID:     in.ContentItemID,
				RequestedByID:     tc.Actor.ID,
				EditorReviewerID:  in.EditorReviewerID,
				ManagerReviewerID: in.ManagerReviewerID,
				State:             domain.StateDraft,
			}
			if err := r.Approvals.Create(ctx, req); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperr.Conflict("An approval request already exists for this content item.")
				}
				return err
			}
		default:
			return err
		}

		if note := strings.TrimSpace(in.Note); note != "" {
			if _, err := appendEvent(ctx, r, req.ID, tc.Actor.ID, domain.EventComment, note, u.now()); err != nil {
				return err
			}
		}
		if in.AutoSubmit {
			if outbox, err = u.apply(ctx, r, tc.Actor, req, IntentSubmit, ""); err != nil {
				return err
			}
		}
		out, err = hydrate(ctx, r, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("workspace_id", tc.WorkspaceID).Str("request_id", out.ID).
		Str("content_item_id", in.ContentItemID).Bool("auto_submit", in.AutoSubmit).Msg("approval workflow initialized")

	u.out.Deliver(ctx, tc, outbox...)
	return out, nil
}

// AssignReviewers replaces both assignments. Any workspace member may call it.
func (u *Usecase) AssignReviewers(ctx context.Context, tc tenant.Context, in AssignInput) (*RequestDTO, error) {
	if err := u.v.Check(in); err != nil {
		return nil, err
	}
	var out *RequestDTO
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		req, err := loadRequest(ctx, r, in.ApprovalRequestID)
		if err != nil {
			return err
		}
		if err := checkReviewers(ctx, r, in.EditorReviewerID, in.ManagerReviewerID); err != nil {
			return err
		}
		req.EditorReviewerID = in.EditorReviewerID
		req.ManagerReviewerID = in.ManagerReviewerID
		if err := save(ctx, r, req, req.State); err != nil {
			return err
		}
		out, err = hydrate(ctx, r, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func checkReviewers(ctx context.Context, r uow.Repos, editor, manager *string) error {
	var fields []apperr.FieldError
	for _, c := range []struct {
		field string
		id    *string
	}{{"editor_reviewer_id", editor}, {"manager_reviewer_id", manager}} {
		if c.id == nil {
			continue
		}
		_, err := r.Members.GetActiveMembership(ctx, *c.id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fields = append(fields, apperr.FieldError{Field: c.field, Message: "must be an active workspace member"})
			continue
		}
		if err != nil {
			return err
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("Please fix the highlighted fields.", fields...)
	}
	return nil
}

// Comment appends a COMMENT event; the request state is untouched.
func (u *Usecase) Comment(ctx context.Context, tc tenant.Context, in CommentInput) (*domain.Event, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := u.v.Check(in); err != nil {
		return nil, err
	}
	var out *domain.Event
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		if _, err := loadRequest(ctx, r, in.ApprovalRequestID); err != nil {
			return err
		}
		var err error
		out, err = appendEvent(ctx, r, in.ApprovalRequestID, tc.Actor.ID, domain.EventComment, in.Comment, u.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, tc tenant.Context, requestID string) (*RequestDTO, error) {
	var out *RequestDTO
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		req, err := loadRequest(ctx, r, requestID)
		if err != nil {
			return err
		}
		out, err = hydrate(ctx, r, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func hydrate(ctx context.Context, r uow.Repos, req *domain.Request) (*RequestDTO, error) {
	events, err := r.Events.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return &RequestDTO{Request: *req, Events: events}, nil
}

// Queue lists every request in the workspace, newest first, with its timeline
// and distribution jobs.
func (u *Usecase) Queue(ctx context.Context, tc tenant.Context) (*QueueDTO, error) {
	out := &QueueDTO{Requests: []QueueItem{}}
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		reqs, err := r.Approvals.List(ctx)
		if err != nil || len(reqs) == 0 {
			return err
		}
		reqIDs := make([]string, 0, len(reqs))
		contentIDs := make([]string, 0, len(reqs))
		for _, req := range reqs {
			reqIDs = append(reqIDs, req.ID)
			contentIDs = append(contentIDs, req.ContentItemID)
		}
		events, err := r.Events.ListByRequests(ctx, reqIDs)
		if err != nil {
			return err
		}
		jobs, err := r.Jobs.ListByContentItems(ctx, contentIDs)
		if err != nil {
			return err
		}

		eventsBy := map[string][]domain.Event{}
		for _, e := range events {
			eventsBy[e.RequestID] = append(eventsBy[e.RequestID], e)
		}
		jobsBy := map[string][]distribution.Job{}
		for _, j := range jobs {
			jobsBy[j.ContentItemID] = append(jobsBy[j.ContentItemID], j)
		}
		for _, req := range reqs {
			item := QueueItem{
				RequestDTO: RequestDTO{Request: req, Events: eventsBy[req.ID]},
				Jobs:       jobsBy[req.ContentItemID],
			}
			if item.Events == nil {
				item.Events = []domain.Event{}
			}
			if item.Jobs == nil {
				item.Jobs = []distribution.Job{}
			}
			out.Requests = append(out.Requests, item)
		}
		out.Summary = Summarize(out.Requests)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Summarize counts open work. A request awaits publishing while it is APPROVED
// and none of its content item's jobs has been SENT.
func Summarize(items []QueueItem) Summary {
	var s Summary
	for _, it := range items {
		if it.State != domain.StateApproved {
			s.TotalOpen++
		}
		switch it.State {
		case domain.StateEditorReview:
			s.PendingEditor++
		case domain.StateManagerReview:
			s.PendingManager++
		case domain.StateRejected:
			s.Rejected++
		case domain.StateApproved:
			sent := false
			for _, j := range it.Jobs {
				if j.Status == distribution.JobSent {
					sent = true
					break
				}
			}
			if !sent {
				s.ApprovedAwaitingPublish++
			}
		}
	}
	return s
}
