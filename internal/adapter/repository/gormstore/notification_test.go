package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	notifDomain "contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/testutil/dbtest"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func makeNotification(id string) *notifDomain.Notification {
	return &notifDomain.Notification{
		ID:      id,
		Channel: notifDomain.ChannelSlack,
		Payload: datatypes.NewJSONType(notifDomain.Payload{Subject: "s", Body: "b"}),
	}
}

func TestNotifications_ClaimIsExclusive(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewNotificationRepository(db, "ws-1")
	ctx := context.Background()

	n := makeNotification("n-1")
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Status != notifDomain.StatusPending {
		t.Fatalf("new row status = %s, want PENDING", n.Status)
	}

	now := time.Now().UTC()
	ok, err := repo.Claim(ctx, "n-1", now)
	if err != nil || !ok {
		t.Fatalf("first claim = %v, %v", ok, err)
	}
	ok, err = repo.Claim(ctx, "n-1", now)
	if err != nil || ok {
		t.Fatalf("second claim = %v, %v; want false", ok, err)
	}
	// other workspaces cannot claim it either
	ok, _ = NewNotificationRepository(db, "ws-2").Claim(ctx, "n-1", now)
	if ok {
		t.Fatalf("claimed from another workspace")
	}

	if err := repo.MarkSent(ctx, "n-1", now); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	got, err := repo.Get(ctx, "n-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != notifDomain.StatusSent || got.SentAt == nil || got.Attempts != 1 {
		t.Fatalf("unexpected row: %+v", got)
	}
	// a finished row cannot be finished again
	if err := repo.MarkFailed(ctx, "n-1", "late"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("MarkFailed on SENT row err = %v", err)
	}
}

func TestNotifications_MarkFailedKeepsReason(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewNotificationRepository(db, "ws-1")
	ctx := context.Background()

	if err := repo.Create(ctx, makeNotification("n-1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Claim(ctx, "n-1", time.Now().UTC()); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if err := repo.MarkFailed(ctx, "n-1", "Slack webhook URL missing"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	failed := notifDomain.StatusFailed
	rows, err := repo.List(ctx, &failed)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].Error == nil || *rows[0].Error != "Slack webhook URL missing" {
		t.Fatalf("unexpected failed rows: %+v", rows)
	}
}

func TestOutbox_ReclaimStaleAndListPending(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	ws1 := NewNotificationRepository(db, "ws-1")
	ws2 := NewNotificationRepository(db, "ws-2")

	for _, c := range []struct {
		repo *NotificationRepository
		id   string
	}{{ws1, "n-1"}, {ws2, "n-2"}, {ws1, "n-3"}} {
		if err := c.repo.Create(ctx, makeNotification(c.id)); err != nil {
			t.Fatalf("Create %s: %v", c.id, err)
		}
	}

	old := time.Now().UTC().Add(-time.Hour)
	if ok, err := ws1.Claim(ctx, "n-1", old); err != nil || !ok {
		t.Fatalf("claim n-1: %v %v", ok, err)
	}
	if ok, err := ws1.Claim(ctx, "n-3", time.Now().UTC()); err != nil || !ok {
		t.Fatalf("claim n-3: %v %v", ok, err)
	}

	outbox := NewOutboxRepository(db)
	n, err := outbox.ReclaimStale(ctx, time.Now().UTC().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStale: %v", err)
	}
	if n != 1 {
		t.Fatalf("reclaimed = %d, want 1", n)
	}

	pending, err := outbox.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	ids := map[string]bool{}
	for _, p := range pending {
		ids[p.ID] = true
	}
	if len(pending) != 2 || !ids["n-1"] || !ids["n-2"] {
		t.Fatalf("pending = %v, want n-1 and n-2", ids)
	}
}

func TestSettings_EnsureDefaultsIsIdempotent(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewSettingRepository(db, "ws-1")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := repo.EnsureDefaults(ctx); err != nil {
			t.Fatalf("EnsureDefaults #%d: %v", i, err)
		}
	}
	rows, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("settings rows = %d, want 2", len(rows))
	}

	slack, err := repo.Get(ctx, notifDomain.ChannelSlack)
	if err != nil {
		t.Fatalf("Get slack: %v", err)
	}
	if cfg := notifDomain.ParseSlackConfig(slack.Config); cfg.MentionRole != "here" || cfg.WebhookURL != "" {
		t.Fatalf("unexpected slack defaults: %+v", cfg)
	}

	if err := repo.SaveConfig(ctx, notifDomain.ChannelSlack, []byte(`{"webhookUrl":"https://hooks.example.com/x","mentionRole":"channel"}`)); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	// defaults never overwrite an existing row
	if err := repo.EnsureDefaults(ctx); err != nil {
		t.Fatalf("EnsureDefaults: %v", err)
	}
	slack, _ = repo.Get(ctx, notifDomain.ChannelSlack)
	if cfg := notifDomain.ParseSlackConfig(slack.Config); cfg.WebhookURL != "https://hooks.example.com/x" {
		t.Fatalf("config overwritten: %+v", cfg)
	}
}
