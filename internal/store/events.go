package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/event"
)

// EventInput carries caller-supplied event fields for create and update.
type EventInput struct {
	Title       string
	Description string
	Date        string
	EndDate     string
	StartTime   string
	EndTime     string
	CategoryID  string
}

// CreateEvent validates and persists a new event for the user.
func (s *Service) CreateEvent(ctx context.Context, userID string, input EventInput) (*event.Event, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opSaveEvent, "missing_user_id", errMissingUserID)
	}

	now := s.nowMillis()
	id, err := s.ids.NewID()
	if err != nil {
		s.logError(opSaveEvent, "id_generation_failed", err)
		return nil, newServiceError(opSaveEvent, "id_generation_failed", err)
	}

	record := event.Event{
		ID:          id,
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Date:        input.Date,
		EndDate:     input.EndDate,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		CategoryID:  input.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return nil, newServiceError(opSaveEvent, "invalid_event", err)
	}
	if err := s.requireCategory(ctx, userID, record.CategoryID, opSaveEvent); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logError(opSaveEvent, "insert_failed", err, zap.String("event_id", id))
		return nil, newServiceError(opSaveEvent, "insert_failed", err)
	}
	return &record, nil
}

// UpdateEvent replaces the mutable fields of an existing event. Manual edits
// clear the remote link so the next sync pass treats the event as local.
func (s *Service) UpdateEvent(ctx context.Context, userID, eventID string, input EventInput) (*event.Event, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opSaveEvent, "missing_user_id", errMissingUserID)
	}

	var record event.Event
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", eventID, userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newServiceError(opSaveEvent, "not_found", ErrNotFound)
	}
	if err != nil {
		s.logError(opSaveEvent, "lookup_failed", err, zap.String("event_id", eventID))
		return nil, newServiceError(opSaveEvent, "lookup_failed", err)
	}

	record.Title = strings.TrimSpace(input.Title)
	record.Description = input.Description
	record.Date = input.Date
	record.EndDate = input.EndDate
	record.StartTime = input.StartTime
	record.EndTime = input.EndTime
	record.CategoryID = input.CategoryID
	record.UpdatedAt = s.nowMillis()

	if err := record.Validate(); err != nil {
		return nil, newServiceError(opSaveEvent, "invalid_event", err)
	}
	if err := s.requireCategory(ctx, userID, record.CategoryID, opSaveEvent); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		s.logError(opSaveEvent, "update_failed", err, zap.String("event_id", eventID))
		return nil, newServiceError(opSaveEvent, "update_failed", err)
	}
	return &record, nil
}

// DeleteEvent removes a single event owned by the user.
func (s *Service) DeleteEvent(ctx context.Context, userID, eventID string) error {
	if strings.TrimSpace(userID) == "" {
		return newServiceError(opDeleteEvent, "missing_user_id", errMissingUserID)
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", eventID, userID).
		Delete(&event.Event{})
	if result.Error != nil {
		s.logError(opDeleteEvent, "delete_failed", result.Error, zap.String("event_id", eventID))
		return newServiceError(opDeleteEvent, "delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return newServiceError(opDeleteEvent, "not_found", ErrNotFound)
	}
	return nil
}

func (s *Service) requireCategory(ctx context.Context, userID, categoryID, operation string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&event.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error
	if err != nil {
		s.logError(operation, "category_lookup_failed", err, zap.String("category_id", categoryID))
		return newServiceError(operation, "category_lookup_failed", err)
	}
	if count == 0 {
		return newServiceError(operation, "unknown_category", event.ErrMissingCategory)
	}
	return nil
}
