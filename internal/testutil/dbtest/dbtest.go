// Package dbtest opens migrated in-memory SQLite databases and seeds the
// read-only tables that other subsystems own.
package dbtest

import (
	"testing"

	"contentops-workflow/internal/domain/content"
	"contentops-workflow/internal/domain/member"
	"contentops-workflow/internal/domain/tenant"
	infraDB "contentops-workflow/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh schema. One connection keeps ":memory:" a single database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := infraDB.Migrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func SeedUser(t *testing.T, db *gorm.DB, id, email string) {
	t.Helper()
	if err := db.Create(&member.User{ID: id, Email: email}).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

// SeedMember creates the user (if needed) and an ACTIVE membership.
func SeedMember(t *testing.T, db *gorm.DB, workspaceID, userID string, role tenant.Role) {
	t.Helper()
	var n int64
	db.Model(&member.User{}).Where("id = ?", userID).Count(&n)
	if n == 0 {
		SeedUser(t, db, userID, userID+"@example.com")
	}
	m := member.Membership{WorkspaceID: workspaceID, UserID: userID, Role: role, Status: member.StatusActive}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed membership %s/%s: %v", workspaceID, userID, err)
	}
}

func SeedContent(t *testing.T, db *gorm.DB, item content.Item) *content.Item {
	t.Helper()
	if item.Status == "" {
		item.Status = content.StatusDraft
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed content %s: %v", item.ID, err)
	}
	return &item
}
