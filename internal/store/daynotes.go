package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/event"
)

// DayNoteInput carries caller-supplied day-note fields. A nil Highlighted
// leaves the stored flag untouched on replacement.
type DayNoteInput struct {
	Date        string
	Note        string
	Highlighted *bool
}

// UpsertDayNote stores the annotation for a single date. One note exists per
// user and date. Clearing the text while leaving the highlight off removes
// the note instead of storing a blank row.
func (s *Service) UpsertDayNote(ctx context.Context, userID string, input DayNoteInput) (*event.DayNote, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, newServiceError(opUpsertDayNote, "missing_user_id", errMissingUserID)
	}

	text := strings.TrimSpace(input.Note)
	highlighted := input.Highlighted != nil && *input.Highlighted
	if text == "" && !highlighted {
		if err := s.deleteDayNoteByDate(ctx, userID, input.Date); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var record event.DayNote
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, input.Date).
		First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		id, idErr := s.ids.NewID()
		if idErr != nil {
			s.logError(opUpsertDayNote, "id_generation_failed", idErr)
			return nil, newServiceError(opUpsertDayNote, "id_generation_failed", idErr)
		}
		now := s.nowMillis()
		record = event.DayNote{
			ID:            id,
			UserID:        userID,
			Date:          input.Date,
			Note:          text,
			IsHighlighted: highlighted,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	case err != nil:
		s.logError(opUpsertDayNote, "lookup_failed", err, zap.String("date", input.Date))
		return nil, newServiceError(opUpsertDayNote, "lookup_failed", err)
	default:
		record.Note = text
		if input.Highlighted != nil {
			record.IsHighlighted = *input.Highlighted
		}
		record.UpdatedAt = s.nowMillis()
	}

	if err := record.Validate(); err != nil {
		return nil, newServiceError(opUpsertDayNote, "invalid_note", err)
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		s.logError(opUpsertDayNote, "save_failed", err, zap.String("date", input.Date))
		return nil, newServiceError(opUpsertDayNote, "save_failed", err)
	}
	return &record, nil
}

// DeleteDayNote removes the note stored for a date, if any.
func (s *Service) DeleteDayNote(ctx context.Context, userID, date string) error {
	if strings.TrimSpace(userID) == "" {
		return newServiceError(opDeleteDayNote, "missing_user_id", errMissingUserID)
	}
	return s.deleteDayNoteByDate(ctx, userID, date)
}

func (s *Service) deleteDayNoteByDate(ctx context.Context, userID, date string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Delete(&event.DayNote{}).Error
	if err != nil {
		s.logError(opDeleteDayNote, "delete_failed", err, zap.String("date", date))
		return newServiceError(opDeleteDayNote, "delete_failed", err)
	}
	return nil
}
