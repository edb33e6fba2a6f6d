package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"contentops-workflow/internal/domain/apperr"
	domain "contentops-workflow/internal/domain/distribution"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/domain/uow"
	"contentops-workflow/internal/logging"
	"contentops-workflow/internal/validation"
	"contentops-workflow/pkg/id"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// scheduleSkew tolerates clock drift between the caller and this service.
const scheduleSkew = time.Minute

type Usecase struct {
	uow uow.UnitOfWork
	v   *validation.Validator
	log zerolog.Logger
	now func() time.Time
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{
		uow: tx,
		v:   validation.New(),
		log: logging.Component("distribution"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) scheduleTime(in ScheduleInput) (time.Time, error) {
	now := u.now()
	if in.Mode == domain.ModeImmediate {
		return now, nil
	}
	bad := apperr.Validation("Provide a valid schedule date.",
		apperr.FieldError{Field: "scheduled_for", Message: "must be an RFC3339 time that is not in the past"})
	if in.ScheduledFor == "" {
		return time.Time{}, bad
	}
	at, err := time.Parse(time.RFC3339, in.ScheduledFor)
	if err != nil || at.Before(now.Add(-scheduleSkew)) {
		return time.Time{}, bad
	}
	return at.UTC(), nil
}

// ScheduleOrUpdate queues or schedules one publish of an approved content item.
// IMMEDIATE jobs are published synchronously by a simulated adapter and come
// back SENT.
func (u *Usecase) ScheduleOrUpdate(ctx context.Context, tc tenant.Context, in ScheduleInput) (*domain.Job, error) {
	if err := u.v.Check(in); err != nil {
		return nil, err
	}
	at, err := u.scheduleTime(in)
	if err != nil {
		return nil, err
	}

	var job *domain.Job
	err = u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		item, err := r.Content.Get(ctx, in.ContentItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &apperr.Error{Kind: apperr.KindNotFound, Message: "Content not found in this workspace."}
		}
		if err != nil {
			return err
		}

		profile, err := r.Profiles.GetByChannel(ctx, in.Channel)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Precondition("Connect this channel before scheduling.")
		}
		if err != nil {
			return err
		}

		if in.JobID != "" {
			job, err = r.Jobs.Get(ctx, in.JobID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Distribution job")
			}
			if err != nil {
				return err
			}
			if job.ContentItemID != in.ContentItemID {
				return apperr.Validation("Please fix the highlighted fields.",
					apperr.FieldError{Field: "job_id", Message: "belongs to a different content item"})
			}
		}

		approved, err := AssertSchedulable(ctx, r, in.ContentItemID, in.JobID)
		if err != nil {
			return err
		}
		if in.ApprovalRequestID != "" && in.ApprovalRequestID != approved.ID {
			return apperr.Validation("Please fix the highlighted fields.",
				apperr.FieldError{Field: "approval_request_id", Message: "does not match the content item's approval"})
		}

		payload := Sanitize(BuildPayload(item, domain.Payload{
			Headline: in.Headline,
			Caption:  in.Caption,
			LinkURL:  in.LinkURL,
			MediaURL: in.MediaURL,
			CTALabel: in.CTALabel,
		}))
		status := domain.JobScheduled
		if in.Mode == domain.ModeImmediate {
			status = domain.JobQueued
		}
		requestID := approved.ID

		if job == nil {
			job = &domain.Job{ID: id.NewID32(), ContentItemID: in.ContentItemID}
		}
		job.ApprovalRequestID = &requestID
		job.ProfileID = profile.ID
		job.Channel = in.Channel
		job.Payload = datatypes.NewJSONType(payload)
		job.Status = status
		job.ScheduledFor = &at

		if in.JobID != "" {
			err = r.Jobs.Save(ctx, job)
		} else {
			err = r.Jobs.Create(ctx, job)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// a concurrent caller won the race past the guard
			return apperr.Precondition(msgJobActive)
		}
		if err != nil {
			return err
		}

		if in.Mode == domain.ModeImmediate {
			return u.publishNow(ctx, r, job)
		}
		return nil
	})
	log := u.log.With().Str("workspace_id", tc.WorkspaceID).Str("content_item_id", in.ContentItemID).
		Str("channel", string(in.Channel)).Str("mode", string(in.Mode)).Logger()
	if err != nil {
		log.Info().Str("kind", string(apperr.KindOf(err))).Err(err).Msg("distribution refused")
		return nil, err
	}
	log.Info().Str("job_id", job.ID).Str("status", string(job.Status)).Msg("distribution job saved")
	return job, nil
}

// publishNow stands in for a channel adapter: the job is marked SENT with a
// synthetic result in the same transaction.
func (u *Usecase) publishNow(ctx context.Context, r uow.Repos, job *domain.Job) error {
	now := u.now()
	result, err := json.Marshal(domain.Result{Message: "Simulated publish", DeliveredAt: now})
	if err != nil {
		return err
	}
	job.Status = domain.JobSent
	job.LastAttemptAt = &now
	job.Result = datatypes.JSON(result)
	return r.Jobs.Save(ctx, job)
}

// UpsertProfile connects a channel, or updates its label and config.
func (u *Usecase) UpsertProfile(ctx context.Context, tc tenant.Context, in ProfileInput) (*ProfileSummary, error) {
	if tc.Actor.Role != tenant.RoleAdmin {
		return nil, apperr.Authorization("Only admins can manage channel connections.")
	}
	if err := u.v.Check(in); err != nil {
		return nil, err
	}

	p := &domain.Profile{
		ID:      id.NewID32(),
		Channel: in.Channel,
		Label:   in.Label,
		Config: datatypes.NewJSONType(domain.ProfileConfig{
			AccessToken: in.AccessToken,
			ExternalID:  in.ExternalID,
			SpaceID:     in.SpaceID,
		}),
	}
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		return r.Profiles.Upsert(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().Str("workspace_id", tc.WorkspaceID).Str("channel", string(p.Channel)).Msg("channel connected")
	return summarize(p, true), nil
}

func summarize(p *domain.Profile, withConfig bool) *ProfileSummary {
	cfg := p.Config.Data()
	out := &ProfileSummary{
		ID:        p.ID,
		Channel:   p.Channel,
		Label:     p.Label,
		HasToken:  cfg.AccessToken != "",
		UpdatedAt: p.UpdatedAt,
	}
	if out.Label == "" {
		out.Label = "Connected"
	}
	if withConfig {
		out.Config = &cfg
	}
	return out
}

// Profiles lists the channel catalog with the workspace's connections.
func (u *Usecase) Profiles(ctx context.Context, tc tenant.Context) ([]ChannelDTO, error) {
	var profiles []domain.Profile
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		var err error
		profiles, err = r.Profiles.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	byChannel := make(map[domain.Channel]*domain.Profile, len(profiles))
	for i := range profiles {
		byChannel[profiles[i].Channel] = &profiles[i]
	}
	admin := tc.Actor.Role == tenant.RoleAdmin
	out := make([]ChannelDTO, 0, len(domain.Catalog))
	for _, info := range domain.Catalog {
		dto := ChannelDTO{ChannelInfo: info}
		if p, ok := byChannel[info.Channel]; ok {
			dto.Connected = true
			dto.Profile = summarize(p, admin)
		}
		out = append(out, dto)
	}
	return out, nil
}

// Jobs lists jobs by schedule. Without statuses it returns the upcoming ones.
func (u *Usecase) Jobs(ctx context.Context, tc tenant.Context, statuses ...domain.JobStatus) ([]domain.Job, error) {
	if len(statuses) == 0 {
		statuses = []domain.JobStatus{domain.JobQueued, domain.JobScheduled}
	}
	for _, s := range statuses {
		if !s.Valid() {
			return nil, apperr.Validation("Unknown job status.",
				apperr.FieldError{Field: "status", Message: "must be one of DRAFT READY QUEUED SCHEDULED SENDING SENT FAILED"})
		}
	}
	var out []domain.Job
	err := u.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		var err error
		out, err = r.Jobs.List(ctx, statuses...)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Job{}
	}
	return out, nil
}
