package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/event"
)

const (
	opGetSettings  = "store.get_settings"
	opSaveSettings = "store.save_settings"
)

// GetSettings fetches the user's settings, falling back to defaults when
// no row exists yet.
func (s *Service) GetSettings(ctx context.Context, userID string) (*event.UserSettings, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opGetSettings, "missing_user_id", errMissingUserID)
	}
	var record event.UserSettings
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &event.UserSettings{
			UserID:         userID,
			ShowUSHolidays: true,
		}, nil
	}
	if err != nil {
		s.logError(opGetSettings, "query_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opGetSettings, "query_failed", err)
	}
	return &record, nil
}

// SaveSettings writes the user's settings row, creating it when absent.
func (s *Service) SaveSettings(ctx context.Context, settings *event.UserSettings) error {
	if settings == nil || strings.TrimSpace(settings.UserID) == "" {
		return newServiceError(opSaveSettings, "missing_user_id", errMissingUserID)
	}
	settings.UpdatedAt = s.nowMillis()
	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		s.logError(opSaveSettings, "save_failed", err, zap.String("user_id", settings.UserID))
		return newServiceError(opSaveSettings, "save_failed", err)
	}
	return nil
}

// AddVisibleCategories marks newly provisioned categories visible in the
// user's settings. A user who has hidden nothing keeps the
// everything-visible default and this is a no-op.
func (s *Service) AddVisibleCategories(ctx context.Context, userID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return err
	}
	before := settings.VisibleCategories
	settings.AddVisibleCategories(categoryIDs)
	if settings.VisibleCategories == before {
		return nil
	}
	return s.SaveSettings(ctx, settings)
}

// RemoveVisibleCategories drops disconnected categories from the user's
// visible set.
func (s *Service) RemoveVisibleCategories(ctx context.Context, userID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return err
	}
	before := settings.VisibleCategories
	settings.RemoveVisibleCategories(categoryIDs)
	if settings.VisibleCategories == before {
		return nil
	}
	return s.SaveSettings(ctx, settings)
}
