package main

import (
	"contentops-workflow/internal/adapter/notifier"
	"contentops-workflow/internal/adapter/repository/gormstore"
	"contentops-workflow/internal/config"
	infraDB "contentops-workflow/internal/infrastructure/db"
	"contentops-workflow/internal/usecase/notification"

	"gorm.io/gorm"
)

// app holds what every command shares: the database and the dispatcher.
type app struct {
	cfg        *config.Config
	db         *gorm.DB
	tx         *gormstore.GormUoW
	dispatcher *notification.Dispatcher
}

func openApp(cfg *config.Config) (*app, error) {
	db, err := infraDB.OpenGorm(cfg)
	if err != nil {
		return nil, err
	}
	tx := gormstore.NewGormUoW(db)
	email := notifier.NewEmailSender(notifier.EmailOptions{
		APIKey:  cfg.MailAPIKey,
		APIURL:  cfg.MailAPIURL,
		From:    cfg.MailFrom,
		Timeout: cfg.NotifyHTTPTimeout(),
	})
	webhook := notifier.NewWebhookSender(cfg.NotifyHTTPTimeout())
	return &app{
		cfg:        cfg,
		db:         db,
		tx:         tx,
		dispatcher: notification.NewDispatcher(tx, email, webhook),
	}, nil
}

func (a *app) worker() *notification.Worker {
	return notification.NewWorker(gormstore.NewOutboxRepository(a.db), a.dispatcher, notification.WorkerOptions{
		Interval:   a.cfg.OutboxPollInterval(),
		BatchSize:  a.cfg.OutboxBatchSize,
		StaleAfter: a.cfg.OutboxStaleAfter(),
	})
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
