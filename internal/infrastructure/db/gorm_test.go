package db

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"contentops-workflow/internal/config"
	"contentops-workflow/internal/validation"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func TestOpenGormWithDialector_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	// exactly one ping: gorm's automatic ping is disabled
	mock.ExpectPing()

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true, // don't query @@version
	})

	gdb, err := OpenGormWithDialector(dial, logger.Silent)
	if err != nil {
		t.Fatalf("OpenGormWithDialector error: %v", err)
	}
	if gdb == nil {
		t.Fatalf("got nil gorm.DB")
	}
	if !gdb.Config.TranslateError {
		t.Fatalf("TranslateError must be on so unique violations surface as gorm.ErrDuplicatedKey")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOpenGormWithDialector_PingFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectPing().WillReturnError(errors.New("no ping"))

	dial := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	gdb, err := OpenGormWithDialector(dial, logger.Silent)
	if err == nil {
		t.Fatalf("expected error, got nil (gdb=%v)", gdb)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDialector_PerDriver(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{config.DriverMySQL, "mysql"},
		{config.DriverPostgres, "postgres"},
		{config.DriverSQLite, "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			cfg := &config.Config{DBDriver: tt.driver, SQLitePath: ":memory:"}
			dial, err := Dialector(cfg)
			if err != nil {
				t.Fatalf("Dialector: %v", err)
			}
			if dial.Name() != tt.want {
				t.Fatalf("dialect = %q, want %q", dial.Name(), tt.want)
			}
		})
	}

	if _, err := Dialector(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestMigrate_SQLite(t *testing.T) {
	gdb, err := OpenGormWithDialector(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), logger.Silent)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	for _, table := range []string{
		"users", "workspace_members", "content_items", "approval_requests", "approval_events",
		"distribution_profiles", "distribution_jobs", "notification_settings", "workflow_notifications",
	} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("table %s not created", table)
		}
	}
	if !gdb.Migrator().HasIndex("distribution_jobs", "ux_distribution_jobs_active_content") {
		t.Errorf("active-job unique index missing")
	}
}

func TestGormLogLevel(t *testing.T) {
	if gormLogLevel("debug") != logger.Info {
		t.Fatalf("debug should log SQL")
	}
	if gormLogLevel("error") != logger.Error {
		t.Fatalf("error level mismatch")
	}
	if gormLogLevel("info") != logger.Warn {
		t.Fatalf("default should be warn")
	}
}

// Ids accepted by the `ident` rule must fit the columns that store them on strict MySQL.
func TestModels_ExternalIDColumnsFitIdent(t *testing.T) {
	external := map[string]bool{
		"workspace_id": true, "user_id": true, "content_item_id": true, "requested_by_id": true,
		"editor_reviewer_id": true, "manager_reviewer_id": true, "author_id": true,
		"recipient_id": true, "active_content_key": true,
	}
	want := fmt.Sprintf("varchar(%d)", validation.MaxIdentLen)

	cache := &sync.Map{}
	checked := 0
	for _, m := range Models() {
		s, err := schema.Parse(m, cache, schema.NamingStrategy{})
		if err != nil {
			t.Fatalf("parse %T: %v", m, err)
		}
		for _, f := range s.Fields {
			if !external[f.DBName] {
				continue
			}
			checked++
			if got := strings.ToLower(f.TagSettings["TYPE"]); got != want {
				t.Errorf("%s.%s type = %q, want %q", s.Table, f.DBName, got, want)
			}
		}
	}
	if checked == 0 {
		t.Fatalf("no external id columns found")
	}
}
