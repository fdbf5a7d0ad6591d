package database

import (
	"path/filepath"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/event"
)

func TestApplyMigrationsBackfillsRemoteCalendarIDs(testContext *testing.T) {
	tempDir := testContext.TempDir()
	databasePath := filepath.Join(tempDir, "migration.db")

	database, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}

	if err := database.AutoMigrate(&event.Event{}, &migrationRecord{}); err != nil {
		testContext.Fatalf("failed to migrate schema: %v", err)
	}

	legacy := event.Event{
		ID:            "ev-legacy",
		UserID:        "user-1",
		Title:         "Imported before calendar tracking",
		Date:          "2025-06-01",
		CategoryID:    "cat-1",
		GoogleEventID: "g-legacy",
	}
	local := event.Event{
		ID:         "ev-local",
		UserID:     "user-1",
		Title:      "Never synced",
		Date:       "2025-06-02",
		CategoryID: "cat-1",
	}
	if err := database.Create(&legacy).Error; err != nil {
		testContext.Fatalf("failed to insert legacy event: %v", err)
	}
	if err := database.Create(&local).Error; err != nil {
		testContext.Fatalf("failed to insert local event: %v", err)
	}

	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to apply migrations: %v", err)
	}

	var storedLegacy event.Event
	if err := database.Where("id = ?", legacy.ID).Take(&storedLegacy).Error; err != nil {
		testContext.Fatalf("failed to reload legacy event: %v", err)
	}
	if storedLegacy.GoogleCalendarID != event.PrimaryCalendarID {
		testContext.Fatalf("expected backfilled calendar id, got %q", storedLegacy.GoogleCalendarID)
	}

	var storedLocal event.Event
	if err := database.Where("id = ?", local.ID).Take(&storedLocal).Error; err != nil {
		testContext.Fatalf("failed to reload local event: %v", err)
	}
	if storedLocal.GoogleCalendarID != "" {
		testContext.Fatalf("local event must stay unlinked, got %q", storedLocal.GoogleCalendarID)
	}

	var record migrationRecord
	if err := database.Where("name = ?", migrationBackfillRemoteCalendarIDs).Take(&record).Error; err != nil {
		testContext.Fatalf("expected migration record to be created: %v", err)
	}
	if record.AppliedAtSeconds == 0 {
		testContext.Fatalf("expected migration timestamp to be set")
	}

	// A second pass finds the records already applied.
	if err := applyMigrations(database, zap.NewNop()); err != nil {
		testContext.Fatalf("failed to reapply migrations: %v", err)
	}
}
