package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/event"
)

// CategoryInput carries caller-supplied category fields.
type CategoryInput struct {
	Name    string
	Color   string
	Opacity float64
}

// CreateCategory validates and persists a new category for the user.
func (s *Service) CreateCategory(ctx context.Context, userID string, input CategoryInput) (*event.Category, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opSaveCategory, "missing_user_id", errMissingUserID)
	}

	now := s.nowMillis()
	id, err := s.ids.NewID()
	if err != nil {
		s.logError(opSaveCategory, "id_generation_failed", err)
		return nil, newServiceError(opSaveCategory, "id_generation_failed", err)
	}

	opacity := input.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	record := event.Category{
		ID:        id,
		UserID:    userID,
		Name:      strings.TrimSpace(input.Name),
		Color:     input.Color,
		Opacity:   opacity,
		CreatedAt: now,
	}
	if err := record.Validate(); err != nil {
		return nil, newServiceError(opSaveCategory, "invalid_category", err)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logError(opSaveCategory, "insert_failed", err, zap.String("category_id", id))
		return nil, newServiceError(opSaveCategory, "insert_failed", err)
	}
	return &record, nil
}

// UpdateCategory replaces the mutable fields of an existing category.
// The remote calendar link, if any, is preserved.
func (s *Service) UpdateCategory(ctx context.Context, userID, categoryID string, input CategoryInput) (*event.Category, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opSaveCategory, "missing_user_id", errMissingUserID)
	}

	var record event.Category
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", categoryID, userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newServiceError(opSaveCategory, "not_found", ErrNotFound)
	}
	if err != nil {
		s.logError(opSaveCategory, "lookup_failed", err, zap.String("category_id", categoryID))
		return nil, newServiceError(opSaveCategory, "lookup_failed", err)
	}

	record.Name = strings.TrimSpace(input.Name)
	record.Color = input.Color
	if input.Opacity > 0 && input.Opacity <= 1 {
		record.Opacity = input.Opacity
	}

	if err := record.Validate(); err != nil {
		return nil, newServiceError(opSaveCategory, "invalid_category", err)
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		s.logError(opSaveCategory, "update_failed", err, zap.String("category_id", categoryID))
		return nil, newServiceError(opSaveCategory, "update_failed", err)
	}
	return &record, nil
}

// DeleteCategory removes a category along with every event filed under it.
// Both deletions run in one transaction so the store never holds events
// pointing at a category that no longer exists.
func (s *Service) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	if strings.TrimSpace(userID) == "" {
		return newServiceError(opDeleteCategory, "missing_user_id", errMissingUserID)
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", categoryID, userID).
			Delete(&event.Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("category_id = ? AND user_id = ?", categoryID, userID).
			Delete(&event.Event{}).Error
	})
	if errors.Is(txErr, ErrNotFound) {
		return newServiceError(opDeleteCategory, "not_found", ErrNotFound)
	}
	if txErr != nil {
		s.logError(opDeleteCategory, "delete_failed", txErr, zap.String("category_id", categoryID))
		return newServiceError(opDeleteCategory, "delete_failed", txErr)
	}
	return nil
}
