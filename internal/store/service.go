// Package store owns persistence for calendar entities. It applies the
// intent lists produced by the sync engine and serves the per-user
// snapshots the pure engines consume.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/event"
	"github.com/kpessa/yearview/internal/sync"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingUserID     = errors.New("user identifier is required")
	noOpLogger           = zap.NewNop()

	// ErrNotFound indicates the requested record does not exist for the user.
	ErrNotFound = errors.New("store: record not found")
)

// ServiceError carries a dot-separated operation code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the machine-readable error code.
func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew     = "store.service.new"
	opListEvents     = "store.list_events"
	opListCategories = "store.list_categories"
	opListHolidays   = "store.list_custom_holidays"
	opListDayNotes   = "store.list_day_notes"
	opSaveEvent      = "store.save_event"
	opDeleteEvent    = "store.delete_event"
	opSaveCategory   = "store.save_category"
	opDeleteCategory = "store.delete_category"
	opSaveHoliday    = "store.save_custom_holiday"
	opDeleteHoliday  = "store.delete_custom_holiday"
	opUpsertDayNote  = "store.upsert_day_note"
	opDeleteDayNote  = "store.delete_day_note"
	opApplyIntents   = "store.apply_intents"
)

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// ServiceConfig wires the storage service's dependencies.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider event.IDProvider
	Logger     *zap.Logger
}

// Service persists calendar entities scoped per user.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	ids    event.IDProvider
	logger *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, clock: clock, ids: cfg.IDProvider, logger: logger}, nil
}

func (s *Service) nowMillis() int64 {
	return s.clock().UTC().UnixMilli()
}

// ListEvents returns every event owned by the user, ordered by start date.
func (s *Service) ListEvents(ctx context.Context, userID string) ([]event.Event, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opListEvents, "missing_user_id", errMissingUserID)
	}
	var events []event.Event
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&events).Error; err != nil {
		s.logError(opListEvents, "query_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opListEvents, "query_failed", err)
	}
	return events, nil
}

// ListCategories returns every category owned by the user.
func (s *Service) ListCategories(ctx context.Context, userID string) ([]event.Category, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opListCategories, "missing_user_id", errMissingUserID)
	}
	var categories []event.Category
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at_ms ASC, id ASC").
		Find(&categories).Error; err != nil {
		s.logError(opListCategories, "query_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opListCategories, "query_failed", err)
	}
	return categories, nil
}

// ListCustomHolidays returns the user's custom holidays.
func (s *Service) ListCustomHolidays(ctx context.Context, userID string) ([]event.CustomHoliday, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opListHolidays, "missing_user_id", errMissingUserID)
	}
	var holidays []event.CustomHoliday
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&holidays).Error; err != nil {
		s.logError(opListHolidays, "query_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opListHolidays, "query_failed", err)
	}
	return holidays, nil
}

// ListDayNotes returns the user's day notes.
func (s *Service) ListDayNotes(ctx context.Context, userID string) ([]event.DayNote, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opListDayNotes, "missing_user_id", errMissingUserID)
	}
	var notes []event.DayNote
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, id ASC").
		Find(&notes).Error; err != nil {
		s.logError(opListDayNotes, "query_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opListDayNotes, "query_failed", err)
	}
	return notes, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("store service error", attrs...)
}

// ApplyIntents applies a batch of sync intents in one transaction so a
// reconciliation pass lands atomically or not at all.
func (s *Service) ApplyIntents(ctx context.Context, userID string, intents []sync.Intent) error {
	if strings.TrimSpace(userID) == "" {
		return newServiceError(opApplyIntents, "missing_user_id", errMissingUserID)
	}
	if len(intents) == 0 {
		return nil
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, intent := range intents {
			if err := applyIntent(tx, userID, intent); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		s.logError(opApplyIntents, "transaction_failed", txErr, zap.String("user_id", userID))
		return newServiceError(opApplyIntents, "transaction_failed", txErr)
	}
	return nil
}

func applyIntent(tx *gorm.DB, userID string, intent sync.Intent) error {
	switch intent.Entity {
	case sync.EntityEvent:
		switch intent.Op {
		case sync.OpCreate:
			if intent.Event == nil {
				return fmt.Errorf("create intent %s carries no event", intent.ID)
			}
			return tx.Create(intent.Event).Error
		case sync.OpUpdate:
			if intent.Event == nil {
				return fmt.Errorf("update intent %s carries no event", intent.ID)
			}
			query := tx.Model(&event.Event{}).
				Where("id = ? AND user_id = ?", intent.ID, userID)
			if len(intent.Columns) > 0 {
				query = query.Select(intent.Columns)
			}
			return query.Updates(intent.Event).Error
		case sync.OpDelete:
			return tx.Where("id = ? AND user_id = ?", intent.ID, userID).
				Delete(&event.Event{}).Error
		}
	case sync.EntityCategory:
		switch intent.Op {
		case sync.OpCreate:
			if intent.Category == nil {
				return fmt.Errorf("create intent %s carries no category", intent.ID)
			}
			return tx.Create(intent.Category).Error
		case sync.OpUpdate:
			if intent.Category == nil {
				return fmt.Errorf("update intent %s carries no category", intent.ID)
			}
			query := tx.Model(&event.Category{}).
				Where("id = ? AND user_id = ?", intent.ID, userID)
			if len(intent.Columns) > 0 {
				query = query.Select(intent.Columns)
			}
			return query.Updates(intent.Category).Error
		case sync.OpDelete:
			return tx.Where("id = ? AND user_id = ?", intent.ID, userID).
				Delete(&event.Category{}).Error
		}
	}
	return fmt.Errorf("unsupported intent %s/%s", intent.Entity, intent.Op)
}
