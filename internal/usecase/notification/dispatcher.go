package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"contentops-workflow/internal/domain/apperr"
	notifDomain "contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/domain/uow"
	"contentops-workflow/internal/logging"
	"contentops-workflow/internal/validation"
	"contentops-workflow/pkg/id"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultParallel = 4

// Dispatcher records every notification before sending it and keeps the
// delivery outcome on the row; callers never see delivery errors.
type Dispatcher struct {
	uow      uow.UnitOfWork
	email    EmailSender
	webhook  WebhookSender
	v        *validation.Validator
	log      zerolog.Logger
	now      func() time.Time
	parallel int
}

func NewDispatcher(u uow.UnitOfWork, email EmailSender, webhook WebhookSender) *Dispatcher {
	return &Dispatcher{
		uow:      u,
		email:    email,
		webhook:  webhook,
		v:        validation.New(),
		log:      logging.Component("notification"),
		now:      func() time.Time { return time.Now().UTC() },
		parallel: defaultParallel,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Enqueue writes a PENDING row through the caller's transaction.
func Enqueue(ctx context.Context, r uow.Repos, in DispatchInput) (*notifDomain.Notification, error) {
	if !in.Channel.Valid() {
		return nil, apperr.Validation("Unknown notification channel.",
			apperr.FieldError{Field: "channel", Message: "must be one of EMAIL SLACK"})
	}
	n := &notifDomain.Notification{
		ID:                id.NewID32(),
		ApprovalRequestID: optional(in.ApprovalRequestID),
		RecipientID:       optional(in.RecipientID),
		Channel:           in.Channel,
		Payload:           datatypes.NewJSONType(in.Payload),
		Status:            notifDomain.StatusPending,
	}
	if err := r.Notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Dispatch enqueues in its own transaction, delivers, and returns the final row.
func (d *Dispatcher) Dispatch(ctx context.Context, tc tenant.Context, in DispatchInput) (*notifDomain.Notification, error) {
	var n *notifDomain.Notification
	err := d.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		var err error
		n, err = Enqueue(ctx, r, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	d.Deliver(ctx, tc, n.ID)

	var out *notifDomain.Notification
	err = d.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		var err error
		out, err = r.Notifications.Get(ctx, n.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Deliver attempts each notification concurrently. One failure never affects
// another; outcomes are only observable on the rows.
func (d *Dispatcher) Deliver(ctx context.Context, tc tenant.Context, ids ...string) {
	var g errgroup.Group
	g.SetLimit(d.parallel)
	for _, nid := range ids {
		nid := nid
		g.Go(func() error {
			d.deliverOne(ctx, tc, nid)
			return nil
		})
	}
	_ = g.Wait()
}

type target struct {
	channel notifDomain.ChannelKind
	payload notifDomain.Payload
	email   string
	webhook string
	mention string
}

func (d *Dispatcher) deliverOne(ctx context.Context, tc tenant.Context, nid string) {
	log := d.log.With().Str("workspace_id", tc.WorkspaceID).Str("notification_id", nid).Logger()

	var tgt *target
	err := d.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		claimed, err := r.Notifications.Claim(ctx, nid, d.now())
		if err != nil || !claimed {
			return err
		}
		n, err := r.Notifications.Get(ctx, nid)
		if err != nil {
			return err
		}
		t, failure := resolve(ctx, r, n)
		if failure != nil {
			log.Warn().Str("channel", string(n.Channel)).Str("error", failure.Error()).Msg("notification failed")
			return r.Notifications.MarkFailed(ctx, nid, failure.Error())
		}
		tgt = t
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("claim notification")
		return
	}
	if tgt == nil {
		return
	}

	sendErr := d.send(ctx, tgt)

	// record the outcome even if the caller has gone away
	rctx := context.WithoutCancel(ctx)
	err = d.uow.WithinTenantTx(rctx, tc, func(r uow.Repos) error {
		if sendErr != nil {
			return r.Notifications.MarkFailed(rctx, nid, sendErr.Error())
		}
		return r.Notifications.MarkSent(rctx, nid, d.now())
	})
	switch {
	case err != nil:
		log.Error().Err(err).Msg("record notification outcome")
	case sendErr != nil:
		log.Warn().Str("channel", string(tgt.channel)).Str("error", sendErr.Error()).Msg("notification failed")
	default:
		log.Info().Str("channel", string(tgt.channel)).Msg("notification sent")
	}
}

func resolve(ctx context.Context, r uow.Repos, n *notifDomain.Notification) (*target, error) {
	t := &target{channel: n.Channel, payload: n.Payload.Data()}
	switch n.Channel {
	case notifDomain.ChannelEmail:
		if n.RecipientID == nil || *n.RecipientID == "" {
			return nil, apperr.Validation("Email notifications require recipientId")
		}
		u, err := r.Members.GetUser(ctx, *n.RecipientID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Recipient")
		}
		if err != nil {
			return nil, err
		}
		t.email = u.Email
	case notifDomain.ChannelSlack:
		cfg, err := slackConfig(ctx, r)
		if err != nil {
			return nil, err
		}
		if cfg.WebhookURL == "" {
			return nil, apperr.Configuration("Slack webhook URL missing")
		}
		t.webhook, t.mention = cfg.WebhookURL, cfg.MentionRole
	default:
		return nil, fmt.Errorf("unsupported notification channel %q", n.Channel)
	}
	return t, nil
}

func (d *Dispatcher) send(ctx context.Context, t *target) error {
	switch t.channel {
	case notifDomain.ChannelEmail:
		return d.email.SendEmail(ctx, t.email, t.payload)
	case notifDomain.ChannelSlack:
		return d.webhook.PostWebhook(ctx, t.webhook, t.payload, t.mention)
	}
	return fmt.Errorf("unsupported notification channel %q", t.channel)
}

func slackConfig(ctx context.Context, r uow.Repos) (notifDomain.SlackConfig, error) {
	s, err := r.Settings.Get(ctx, notifDomain.ChannelSlack)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notifDomain.DefaultSlackConfig(), nil
	}
	if err != nil {
		return notifDomain.SlackConfig{}, err
	}
	return notifDomain.ParseSlackConfig(s.Config), nil
}

// Settings returns both channel configs, seeding defaults on first access.
func (d *Dispatcher) Settings(ctx context.Context, tc tenant.Context) (*Settings, error) {
	var out Settings
	err := d.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		var err error
		out, err = loadSettings(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *Dispatcher) UpdateSettings(ctx context.Context, tc tenant.Context, in SettingsInput) (*Settings, error) {
	if !tc.Actor.Role.CanReview() {
		return nil, apperr.Authorization("Only Editors or Admins can update notification settings.")
	}
	if in.Email != nil {
		if err := d.v.Check(in.Email); err != nil {
			return nil, err
		}
	}
	if in.Slack != nil {
		if err := d.v.Check(in.Slack); err != nil {
			return nil, err
		}
	}

	var out Settings
	err := d.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		if err := r.Settings.EnsureDefaults(ctx); err != nil {
			return err
		}
		if in.Email != nil {
			b, err := json.Marshal(in.Email)
			if err != nil {
				return err
			}
			if err := r.Settings.SaveConfig(ctx, notifDomain.ChannelEmail, b); err != nil {
				return err
			}
		}
		if in.Slack != nil {
			b, err := json.Marshal(in.Slack)
			if err != nil {
				return err
			}
			if err := r.Settings.SaveConfig(ctx, notifDomain.ChannelSlack, b); err != nil {
				return err
			}
		}
		var err error
		out, err = loadSettings(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("workspace_id", tc.WorkspaceID).Str("actor_id", tc.Actor.ID).Msg("notification settings updated")
	return &out, nil
}

func loadSettings(ctx context.Context, r uow.Repos) (Settings, error) {
	out := Settings{Email: notifDomain.DefaultEmailConfig(), Slack: notifDomain.DefaultSlackConfig()}
	if err := r.Settings.EnsureDefaults(ctx); err != nil {
		return out, err
	}
	rows, err := r.Settings.List(ctx)
	if err != nil {
		return out, err
	}
	for _, s := range rows {
		switch s.Channel {
		case notifDomain.ChannelEmail:
			out.Email = notifDomain.ParseEmailConfig(s.Config)
		case notifDomain.ChannelSlack:
			out.Slack = notifDomain.ParseSlackConfig(s.Config)
		}
	}
	return out, nil
}

// List exposes rows for external polling; status filters when set.
func (d *Dispatcher) List(ctx context.Context, tc tenant.Context, status *notifDomain.Status) ([]notifDomain.Notification, error) {
	if status != nil && !status.Valid() {
		return nil, apperr.Validation("Unknown notification status.",
			apperr.FieldError{Field: "status", Message: "must be one of PENDING PROCESSING SENT FAILED"})
	}
	var out []notifDomain.Notification
	err := d.uow.WithinTenantTx(ctx, tc, func(r uow.Repos) error {
		var err error
		out, err = r.Notifications.List(ctx, status)
		return err
	})
	return out, err
}
