package db

import (
	"fmt"
	"time"

	"contentops-workflow/internal/config"
	"contentops-workflow/internal/domain/approval"
	"contentops-workflow/internal/domain/content"
	"contentops-workflow/internal/domain/distribution"
	"contentops-workflow/internal/domain/member"
	"contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/logging"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the gorm driver for cfg.DBDriver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.Open(cfg.MySQLDSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.PostgresDSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}

func OpenGorm(cfg *config.Config) (*gorm.DB, error) {
	dial, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return OpenGormWithDialector(dial, gormLogLevel(cfg.LogLevel))
}

// OpenGormWithDialector opens, sizes the pool and pings once.
func OpenGormWithDialector(dial gorm.Dialector, level ...logger.LogLevel) (*gorm.DB, error) {
	lvl := logger.Warn
	if len(level) > 0 {
		lvl = level[0]
	}
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(lvl),
		TranslateError:       true,
		DisableAutomaticPing: true,
		NowFunc:              func() time.Time { return time.Now().UTC() },
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log := logging.Component("db")
	log.Info().Str("dialect", dial.Name()).Msg("gorm: connected")
	return db, nil
}

// Models lists every table this service migrates, in dependency order.
func Models() []any {
	return []any{
		&member.User{},
		&member.Membership{},
		&content.Item{},
		&approval.Request{},
		&approval.Event{},
		&distribution.Profile{},
		&distribution.Job{},
		&notification.Setting{},
		&notification.Notification{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "trace", "debug":
		return logger.Info
	case "error":
		return logger.Error
	}
	return logger.Warn
}
