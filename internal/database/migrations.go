package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/event"
)

const migrationBackfillRemoteCalendarIDs = "2026-08-01_backfill_remote_calendar_ids"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillRemoteCalendarIDs, apply: backfillRemoteCalendarIDs},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillRemoteCalendarIDs pins early imports, which stored a remote event
// id without its source calendar, to the primary calendar so remote keys
// stay unambiguous.
func backfillRemoteCalendarIDs(db *gorm.DB) error {
	return db.Model(&event.Event{}).
		Where("google_event_id <> '' AND (google_calendar_id IS NULL OR google_calendar_id = '')").
		Update("google_calendar_id", event.PrimaryCalendarID).Error
}
