package store

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/event"
)

// CustomHolidayInput carries caller-supplied holiday fields.
type CustomHolidayInput struct {
	Note string
	Date string
}

// CreateCustomHoliday persists a user-defined holiday.
func (s *Service) CreateCustomHoliday(ctx context.Context, userID string, input CustomHolidayInput) (*event.CustomHoliday, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opSaveHoliday, "missing_user_id", errMissingUserID)
	}

	id, err := s.ids.NewID()
	if err != nil {
		s.logError(opSaveHoliday, "id_generation_failed", err)
		return nil, newServiceError(opSaveHoliday, "id_generation_failed", err)
	}

	record := event.CustomHoliday{
		ID:        id,
		UserID:    userID,
		Note:      strings.TrimSpace(input.Note),
		Date:      input.Date,
		CreatedAt: s.nowMillis(),
	}
	if err := record.Validate(); err != nil {
		return nil, newServiceError(opSaveHoliday, "invalid_holiday", err)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		s.logError(opSaveHoliday, "insert_failed", err, zap.String("holiday_id", id))
		return nil, newServiceError(opSaveHoliday, "insert_failed", err)
	}
	return &record, nil
}

// DeleteCustomHoliday removes a user-defined holiday.
func (s *Service) DeleteCustomHoliday(ctx context.Context, userID, holidayID string) error {
	if strings.TrimSpace(userID) == "" {
		return newServiceError(opDeleteHoliday, "missing_user_id", errMissingUserID)
	}
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", holidayID, userID).
		Delete(&event.CustomHoliday{})
	if result.Error != nil {
		s.logError(opDeleteHoliday, "delete_failed", result.Error, zap.String("holiday_id", holidayID))
		return newServiceError(opDeleteHoliday, "delete_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return newServiceError(opDeleteHoliday, "not_found", ErrNotFound)
	}
	return nil
}
