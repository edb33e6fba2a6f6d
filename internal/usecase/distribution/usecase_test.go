package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"contentops-workflow/internal/adapter/repository/gormstore"
	"contentops-workflow/internal/domain/apperr"
	approvalDomain "contentops-workflow/internal/domain/approval"
	"contentops-workflow/internal/domain/content"
	domain "contentops-workflow/internal/domain/distribution"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/domain/uow"
	"contentops-workflow/internal/testutil/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const ws = "ws-1"

var (
	admin  = tenant.New(ws, tenant.Actor{ID: "admin", Role: tenant.RoleAdmin})
	writer = tenant.New(ws, tenant.Actor{ID: "writer", Role: tenant.RoleWriter})
	clock  = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)
)

type env struct {
	db *gorm.DB
	uc *Usecase
}

func setup(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.SeedMember(t, db, ws, "admin", tenant.RoleAdmin)
	dbtest.SeedMember(t, db, ws, "writer", tenant.RoleWriter)

	uc := NewUsecase(gormstore.NewGormUoW(db))
	uc.now = func() time.Time { return clock }
	return &env{db: db, uc: uc}
}

// content seeds a content item and an approval request in the given state.
func (e *env) content(t *testing.T, id string, state approvalDomain.State) *approvalDomain.Request {
	t.Helper()
	dbtest.SeedContent(t, e.db, content.Item{
		ID: id, WorkspaceID: ws, Title: "Launch post",
		AIHeadline: sp("Ship faster"), Description: sp("Everything new this quarter"),
	})
	req := &approvalDomain.Request{
		ID:            "a1b2c3d4e5f60718293a4b5c6d7e8f9" + id[len(id)-1:],
		WorkspaceID:   ws,
		ContentItemID: id,
		RequestedByID: "writer",
		State:         state,
	}
	require.NoError(t, e.db.Create(req).Error)
	return req
}

func (e *env) connect(t *testing.T, ch domain.Channel) {
	t.Helper()
	_, err := e.uc.UpsertProfile(context.Background(), admin, ProfileInput{Channel: ch, Label: "Company page", AccessToken: "tok"})
	require.NoError(t, err)
}

func (e *env) jobs(t *testing.T, contentID string) []domain.Job {
	t.Helper()
	var out []domain.Job
	require.NoError(t, e.db.Where("content_item_id = ?", contentID).Find(&out).Error)
	return out
}

func TestScheduleOrUpdate_ImmediatePublishesSimulated(t *testing.T) {
	e := setup(t)
	req := e.content(t, "ci-1", approvalDomain.StateApproved)
	e.connect(t, domain.ChannelLinkedIn)

	job, err := e.uc.ScheduleOrUpdate(context.Background(), writer, ScheduleInput{
		ContentItemID: "ci-1",
		Channel:       domain.ChannelLinkedIn,
		Mode:          domain.ModeImmediate,
		CTALabel:      "  ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.JobSent, job.Status)
	require.NotNil(t, job.LastAttemptAt)
	require.NotNil(t, job.ScheduledFor)
	assert.True(t, job.ScheduledFor.Equal(clock))
	require.NotNil(t, job.ApprovalRequestID)
	assert.Equal(t, req.ID, *job.ApprovalRequestID)

	var res domain.Result
	require.NoError(t, json.Unmarshal(job.Result, &res))
	assert.Equal(t, "Simulated publish", res.Message)
	assert.True(t, res.DeliveredAt.Equal(clock))

	assert.Equal(t, domain.Payload{Headline: "Ship faster", Caption: "Everything new this quarter"}, job.Payload.Data())

	stored := e.jobs(t, "ci-1")
	require.Len(t, stored, 1)
	assert.Equal(t, domain.JobSent, stored[0].Status)
	assert.Nil(t, stored[0].ActiveContentKey, "a sent job releases the active slot")
}

func TestScheduleOrUpdate_OneActiveJobPerContentItem(t *testing.T) {
	e := setup(t)
	e.content(t, "ci-1", approvalDomain.StateApproved)
	e.connect(t, domain.ChannelLinkedIn)
	e.connect(t, domain.ChannelWebflow)
	ctx := context.Background()

	first, err := e.uc.ScheduleOrUpdate(ctx, writer, ScheduleInput{
		ContentItemID: "ci-1", Channel: domain.ChannelLinkedIn, Mode: domain.ModeScheduled,
		ScheduledFor: clock.Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobScheduled, first.Status)

	_, err = e.uc.ScheduleOrUpdate(ctx, writer, ScheduleInput{
		ContentItemID: "ci-1", Channel: domain.ChannelWebflow, Mode: domain.ModeImmediate,
	})
	require.True(t, errors.Is(err, apperr.ErrPrecondition))
	assert.Equal(t, "A distribution job is already queued for this content.", err.Error())
	assert.Len(t, e.jobs(t, "ci-1"), 1)
}

func TestScheduleOrUpdate_UpdateExcludesItself(t *testing.T) {
	e := setup(t)
	e.content(t, "ci-1", approvalDomain.StateApproved)
	e.connect(t, domain.ChannelLinkedIn)
	e.connect(t, domain.ChannelFacebook)
	ctx := context.Background()

	first, err := e.uc.ScheduleOrUpdate(ctx, writer, ScheduleInput{
		ContentItemID: "ci-1", Channel: domain.ChannelLinkedIn, Mode: domain.ModeScheduled,
		ScheduledFor: clock.Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	later := clock.Add(48 * time.Hour)
	updated, err := e.uc.ScheduleOrUpdate(ctx, writer, ScheduleInput{
		JobID: first.ID, ContentItemID: "ci-1", Channel: domain.ChannelFacebook, Mode: domain.ModeScheduled,
		ScheduledFor: later.Format(time.RFC3339), Headline: "Rescheduled",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, domain.ChannelFacebook, updated.Channel)
	assert.True(t, updated.ScheduledFor.Equal(later))

	stored := e.jobs(t, "ci-1")
	require.Len(t, stored, 1)
	assert.Equal(t, "Rescheduled", stored[0].Payload.Data().Headline)
	assert.Equal(t, domain.JobScheduled, stored[0].Status)
}

func TestScheduleOrUpdate_Preconditions(t *testing.T) {
	e := setup(t)
	e.content(t, "ci-1", approvalDomain.StateManagerReview)
	e.content(t, "ci-2", approvalDomain.StateApproved)
	dbtest.SeedContent(t, e.db, content.Item{ID: "ci-3", WorkspaceID: ws, Title: "No request"})
	e.connect(t, domain.ChannelLinkedIn)
	ctx := context.Background()

	tests := []struct {
		name     string
		in       ScheduleInput
		wantKind error
		wantMsg  string
	}{
		{
			name:     "not approved",
			in:       ScheduleInput{ContentItemID: "ci-1", Channel: domain.ChannelLinkedIn, Mode: domain.ModeImmediate},
			wantKind: apperr.ErrPrecondition,
			wantMsg:  "Content must be fully approved before scheduling distribution.",
		},
		{
			name:     "no approval request",
			in:       ScheduleInput{ContentItemID: "ci-3", Channel: domain.ChannelLinkedIn, Mode: domain.ModeImmediate},
			wantKind: apperr.ErrPrecondition,
			wantMsg:  "Content must be fully approved before scheduling distribution.",
		},
		{
			name:     "channel not connected",
			in:       ScheduleInput{ContentItemID: "ci-2", Channel: domain.ChannelReddit, Mode: domain.ModeImmediate},
			wantKind: apperr.ErrPrecondition,
			wantMsg:  "Connect this channel before scheduling.",
		},
		{
			name:     "unknown content",
			in:       ScheduleInput{ContentItemID: "ci-404", Channel: domain.ChannelLinkedIn, Mode: domain.ModeImmediate},
			wantKind: apperr.ErrNotFound,
			wantMsg:  "Content not found in this workspace.",
		},
		{
			name:     "scheduled without date",
			in:       ScheduleInput{ContentItemID: "ci-2", Channel: domain.ChannelLinkedIn, Mode: domain.ModeScheduled},
			wantKind: apperr.ErrValidation,
			wantMsg:  "Provide a valid schedule date.",
		},
		{
			name: "scheduled in the past",
			in: ScheduleInput{ContentItemID: "ci-2", Channel: domain.ChannelLinkedIn, Mode: domain.ModeScheduled,
				ScheduledFor: clock.Add(-time.Hour).Format(time.RFC3339)},
			wantKind: apperr.ErrValidation,
			wantMsg:  "Provide a valid schedule date.",
		},
		{
			name: "unparsable date",
			in: ScheduleInput{ContentItemID: "ci-2", Channel: domain.ChannelLinkedIn, Mode: domain.ModeScheduled,
				ScheduledFor: "next tuesday"},
			wantKind: apperr.ErrValidation,
			wantMsg:  "Provide a valid schedule date.",
		},
		{
			name: "payload limits",
			in: ScheduleInput{ContentItemID: "ci-2", Channel: domain.ChannelLinkedIn, Mode: domain.ModeImmediate,
				LinkURL: "not a url"},
			wantKind: apperr.ErrValidation,
			wantMsg:  "Please fix the highlighted fields.",
		},
		{
			name:     "unknown channel",
			in:       ScheduleInput{ContentItemID: "ci-2", Channel: "MYSPACE", Mode: domain.ModeImmediate},
			wantKind: apperr.ErrValidation,
			wantMsg:  "Please fix the highlighted fields.",
		},
		{
			name: "foreign approval request",
			in: ScheduleInput{ContentItemID: "ci-2", Channel: domain.ChannelLinkedIn, Mode: domain.ModeImmediate,
				ApprovalRequestID: "ffffffffffffffffffffffffffffffff"},
			wantKind: apperr.ErrValidation,
			wantMsg:  "Please fix the highlighted fields.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.ScheduleOrUpdate(ctx, writer, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantKind), "err = %v", err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
	assert.Empty(t, e.jobs(t, "ci-2"))
}

func TestScheduleOrUpdate_WithinSkewIsAccepted(t *testing.T) {
	e := setup(t)
	e.content(t, "ci-1", approvalDomain.StateApproved)
	e.connect(t, domain.ChannelSubstack)

	job, err := e.uc.ScheduleOrUpdate(context.Background(), writer, ScheduleInput{
		ContentItemID: "ci-1", Channel: domain.ChannelSubstack, Mode: domain.ModeScheduled,
		ScheduledFor: clock.Add(-30 * time.Second).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.JobScheduled, job.Status)
}

// blindJobs hides active jobs from the guard, as a concurrent transaction would.
type blindJobs struct{ domain.JobRepository }

func (blindJobs) FindActive(context.Context, string, string) (*domain.Job, error) {
	return nil, gorm.ErrRecordNotFound
}

type blindUoW struct{ inner uow.UnitOfWork }

func (b blindUoW) WithinTenantTx(ctx context.Context, tc tenant.Context, fn func(uow.Repos) error) error {
	return b.inner.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		r.Jobs = blindJobs{r.Jobs}
		return fn(r)
	})
}

func TestScheduleOrUpdate_StoreRejectsRacingActiveJob(t *testing.T) {
	e := setup(t)
	e.content(t, "ci-1", approvalDomain.StateApproved)
	e.connect(t, domain.ChannelLinkedIn)
	e.connect(t, domain.ChannelWebflow)
	ctx := context.Background()

	_, err := e.uc.ScheduleOrUpdate(ctx, writer, ScheduleInput{
		ContentItemID: "ci-1", Channel: domain.ChannelLinkedIn, Mode: domain.ModeScheduled,
		ScheduledFor: clock.Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	racer := NewUsecase(blindUoW{inner: gormstore.NewGormUoW(e.db)})
	racer.now = e.uc.now
	_, err = racer.ScheduleOrUpdate(ctx, writer, ScheduleInput{
		ContentItemID: "ci-1", Channel: domain.ChannelWebflow, Mode: domain.ModeScheduled,
		ScheduledFor: clock.Add(2 * time.Hour).Format(time.RFC3339),
	})
	require.True(t, errors.Is(err, apperr.ErrPrecondition), "err = %v", err)
	assert.Equal(t, "A distribution job is already queued for this content.", err.Error())
	assert.Len(t, e.jobs(t, "ci-1"), 1)
}

func TestUpsertProfile(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.uc.UpsertProfile(ctx, writer, ProfileInput{Channel: domain.ChannelLinkedIn, Label: "Page"})
	require.True(t, errors.Is(err, apperr.ErrAuthorization))
	assert.Equal(t, "Only admins can manage channel connections.", err.Error())

	_, err = e.uc.UpsertProfile(ctx, admin, ProfileInput{Channel: domain.ChannelLinkedIn, Label: "P"})
	require.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "label", apperr.FieldsOf(err)[0].Field)

	first, err := e.uc.UpsertProfile(ctx, admin, ProfileInput{Channel: domain.ChannelLinkedIn, Label: "Page", AccessToken: "t1"})
	require.NoError(t, err)
	second, err := e.uc.UpsertProfile(ctx, admin, ProfileInput{Channel: domain.ChannelLinkedIn, Label: "Brand page", ExternalID: "urn:li:1"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Brand page", second.Label)
	assert.False(t, second.HasToken)
	require.NotNil(t, second.Config)
	assert.Equal(t, "urn:li:1", second.Config.ExternalID)
}

func TestProfiles_CatalogWithConnections(t *testing.T) {
	e := setup(t)
	e.connect(t, domain.ChannelMailchimp)
	ctx := context.Background()

	list, err := e.uc.Profiles(ctx, writer)
	require.NoError(t, err)
	require.Len(t, list, len(domain.Catalog))

	var connected []ChannelDTO
	for _, c := range list {
		if c.Connected {
			connected = append(connected, c)
		}
	}
	require.Len(t, connected, 1)
	assert.Equal(t, domain.ChannelMailchimp, connected[0].Channel)
	assert.Equal(t, "Mailchimp", connected[0].Label)
	require.NotNil(t, connected[0].Profile)
	assert.True(t, connected[0].Profile.HasToken)
	assert.Nil(t, connected[0].Profile.Config, "config is admin-only")

	list, err = e.uc.Profiles(ctx, admin)
	require.NoError(t, err)
	for _, c := range list {
		if c.Connected {
			require.NotNil(t, c.Profile.Config)
			assert.Equal(t, "tok", c.Profile.Config.AccessToken)
		}
	}
}

func TestJobs_DefaultsToUpcoming(t *testing.T) {
	e := setup(t)
	e.content(t, "ci-1", approvalDomain.StateApproved)
	e.content(t, "ci-2", approvalDomain.StateApproved)
	e.connect(t, domain.ChannelLinkedIn)
	ctx := context.Background()

	_, err := e.uc.ScheduleOrUpdate(ctx, writer, ScheduleInput{ContentItemID: "ci-1", Channel: domain.ChannelLinkedIn, Mode: domain.ModeImmediate})
	require.NoError(t, err)
	scheduled, err := e.uc.ScheduleOrUpdate(ctx, writer, ScheduleInput{
		ContentItemID: "ci-2", Channel: domain.ChannelLinkedIn, Mode: domain.ModeScheduled,
		ScheduledFor: clock.Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	upcoming, err := e.uc.Jobs(ctx, writer)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, scheduled.ID, upcoming[0].ID)

	sent, err := e.uc.Jobs(ctx, writer, domain.JobSent)
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	_, err = e.uc.Jobs(ctx, writer, "LOST")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
