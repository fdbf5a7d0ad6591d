package sync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/event"
)

var (
	errMissingIDProvider = errors.New("id provider is required")
	errMissingUserID     = errors.New("user identifier is required")
	noOpLogger           = zap.NewNop()
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
	opEngineNew        = "sync.engine.new"
	opPlan             = "sync.plan"
	opEnsureCategories = "sync.ensure_categories"
)

func newServiceError(operation, reason string, cause error) error {
	return &ServiceError{code: fmt.Sprintf("%s.%s", operation, reason), err: cause}
}

// EngineConfig wires the reconciliation engine's dependencies.
type EngineConfig struct {
	Clock      func() time.Time
	IDProvider event.IDProvider
	Logger     *zap.Logger
}

// Engine computes reconciliation decisions over snapshots of local and
// remote events. It holds no event state of its own; every method is a
// pure transformation from snapshot to intent list.
type Engine struct {
	clock  func() time.Time
	ids    event.IDProvider
	logger *zap.Logger
}

// NewEngine validates dependencies and constructs an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.IDProvider == nil {
		return nil, newServiceError(opEngineNew, "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Engine{clock: clock, ids: cfg.IDProvider, logger: logger}, nil
}

func (e *Engine) nowMillis() int64 {
	return e.clock().UTC().UnixMilli()
}

// legacySignature keys the (title, date, endDate) triple used to adopt
// events that predate link tracking. Single-day events contribute an
// empty end component so a stored EndDate equal to Date still matches a
// remote event without one.
func legacySignature(title, date, endDate string) string {
	if endDate <= date {
		endDate = ""
	}
	return title + "::" + date + "::" + endDate
}

// Plan classifies each remote event against the local snapshot in strict
// priority order: exact link match (skip), legacy signature match (link
// in place), otherwise create. A legacy signature is consumed by the
// first remote event that links to it, so two remote events can never
// adopt the same local record within one pass.
func (e *Engine) Plan(userID string, locals []event.Event, remotes []RemoteEvent, categoryByCalendar map[string]string) (PlanResult, error) {
	if strings.TrimSpace(userID) == "" {
		e.logError(opPlan, "missing_user_id", errMissingUserID)
		return PlanResult{}, newServiceError(opPlan, "missing_user_id", errMissingUserID)
	}

	linkedByKey := make(map[string]event.Event)
	legacyByQualifier := make(map[string]event.Event)
	for _, local := range locals {
		if local.IsRemoteLinked() {
			linkedByKey[local.RemoteKey()] = local
			continue
		}
		signature := legacySignature(local.Title, local.Date, local.EndDate)
		if _, taken := legacyByQualifier[signature]; !taken {
			legacyByQualifier[signature] = local
		}
	}

	var result PlanResult
	for _, remote := range remotes {
		if remote.ID == "" || remote.Date == "" {
			result.Skipped++
			continue
		}
		categoryID, ok := categoryByCalendar[remote.CalendarID]
		if !ok || categoryID == "" {
			e.logger.Warn("remote event has no category mapping",
				zap.String("operation", opPlan),
				zap.String("calendar_id", remote.CalendarID),
				zap.String("remote_event_id", remote.ID))
			result.Skipped++
			continue
		}

		if _, exists := linkedByKey[remote.Key()]; exists {
			// Already imported. Leave the record alone so local edits
			// made after import survive subsequent passes.
			result.Skipped++
			continue
		}

		signature := legacySignature(remote.Title, remote.Date, remote.EndDate)
		if legacy, found := legacyByQualifier[signature]; found {
			delete(legacyByQualifier, signature)

			updated := legacy
			updated.GoogleEventID = remote.ID
			updated.GoogleCalendarID = remote.CalendarID
			updated.GoogleCalendarName = remote.CalendarName
			updated.CategoryID = categoryID
			updated.UpdatedAt = e.nowMillis()

			result.Intents = append(result.Intents, Intent{
				Op:     OpUpdate,
				Entity: EntityEvent,
				ID:     legacy.ID,
				Event:  &updated,
				Columns: []string{
					"google_event_id", "google_calendar_id", "google_calendar_name",
					"category_id", "updated_at_ms",
				},
			})
			linkedByKey[remote.Key()] = updated
			result.Linked++
			continue
		}

		id, err := e.ids.NewID()
		if err != nil {
			e.logError(opPlan, "id_generation_failed", err)
			return PlanResult{}, newServiceError(opPlan, "id_generation_failed", err)
		}
		now := e.nowMillis()
		created := event.Event{
			ID:                 id,
			UserID:             userID,
			Title:              remote.Title,
			Description:        remote.Description,
			Date:               remote.Date,
			EndDate:            remote.EndDate,
			StartTime:          remote.StartTime,
			EndTime:            remote.EndTime,
			CategoryID:         categoryID,
			CreatedAt:          now,
			UpdatedAt:          now,
			GoogleEventID:      remote.ID,
			GoogleCalendarID:   remote.CalendarID,
			GoogleCalendarName: remote.CalendarName,
		}
		result.Intents = append(result.Intents, Intent{
			Op:     OpCreate,
			Entity: EntityEvent,
			ID:     id,
			Event:  &created,
		})
		linkedByKey[remote.Key()] = created
		result.Created++
	}

	return result, nil
}

func (e *Engine) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	e.logger.Error("sync engine error", attrs...)
}
