package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kpessa/yearview/internal/sync"
)

const (
	maxFetchAttempts  = 4
	baseRetryDelay    = 500 * time.Millisecond
	eventPageMaxItems = 2500
)

var errMissingCalendarService = errors.New("calendar service is required")

// ClientConfig wires the Google Calendar client's dependencies.
type ClientConfig struct {
	Service *calendar.Service
	Logger  *zap.Logger
	Sleep   func(time.Duration)
}

// Client reads calendars and events through the Google Calendar API.
type Client struct {
	service *calendar.Service
	logger  *zap.Logger
	sleep   func(time.Duration)
}

// NewClient validates dependencies and constructs a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Service == nil {
		return nil, fmt.Errorf("remote.client.new: %w", errMissingCalendarService)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Client{service: cfg.Service, logger: logger, sleep: sleep}, nil
}

// NewCalendarService builds the underlying Google API service from client
// options, typically option.WithTokenSource or option.WithHTTPClient.
func NewCalendarService(ctx context.Context, opts ...option.ClientOption) (*calendar.Service, error) {
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("remote.service.new: %w", err)
	}
	return service, nil
}

// ListCalendars returns the calendars visible to the authenticated account.
func (c *Client) ListCalendars(ctx context.Context) ([]sync.RemoteCalendar, error) {
	var calendars []sync.RemoteCalendar
	call := c.service.CalendarList.List().Context(ctx)
	err := c.withRetry(ctx, "calendar_list", func() error {
		return call.Pages(ctx, func(page *calendar.CalendarList) error {
			for _, entry := range page.Items {
				if entry == nil || entry.Id == "" {
					continue
				}
				calendars = append(calendars, sync.RemoteCalendar{
					ID:              entry.Id,
					Summary:         entry.Summary,
					Primary:         entry.Primary,
					BackgroundColor: entry.BackgroundColor,
				})
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("remote.list_calendars: %w", err)
	}
	return calendars, nil
}

// FetchYear retrieves every event in the given year across the requested
// calendars, normalized and deduplicated by remote key. A failure on any
// calendar fails the whole fetch so a partial snapshot never reaches the
// reconciliation engine.
func (c *Client) FetchYear(ctx context.Context, calendarIDs []string, calendarNames map[string]string, year int) ([]sync.RemoteEvent, error) {
	if len(calendarIDs) == 0 {
		calendarIDs = []string{"primary"}
	}
	timeMin := fmt.Sprintf("%04d-01-01T00:00:00Z", year)
	timeMax := fmt.Sprintf("%04d-01-01T00:00:00Z", year+1)

	batches := make([][]sync.RemoteEvent, 0, len(calendarIDs))
	for _, calendarID := range calendarIDs {
		batch, err := c.fetchCalendar(ctx, calendarID, calendarNames[calendarID], timeMin, timeMax)
		if err != nil {
			return nil, fmt.Errorf("remote.fetch_year: calendar %s: %w", calendarID, err)
		}
		batches = append(batches, batch)
	}
	return mergeByKey(batches), nil
}

func (c *Client) fetchCalendar(ctx context.Context, calendarID, calendarName, timeMin, timeMax string) ([]sync.RemoteEvent, error) {
	var events []sync.RemoteEvent
	call := c.service.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		ShowDeleted(false).
		MaxResults(eventPageMaxItems).
		OrderBy("startTime").
		Context(ctx)

	err := c.withRetry(ctx, "events_list", func() error {
		events = events[:0]
		return call.Pages(ctx, func(page *calendar.Events) error {
			for _, item := range page.Items {
				if normalized, ok := normalizeEvent(item, calendarID, calendarName); ok {
					events = append(events, normalized)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched calendar events",
		zap.String("calendar_id", calendarID),
		zap.Int("count", len(events)))
	return events, nil
}

// withRetry reruns fn with exponential backoff while Google reports rate
// limiting. Other failures surface immediately.
func (c *Client) withRetry(ctx context.Context, operation string, fn func() error) error {
	delay := baseRetryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= maxFetchAttempts || !isRateLimited(err) {
			return err
		}
		c.logger.Warn("rate limited by calendar api, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.sleep(delay)
		delay *= 2
	}
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == 429 {
		return true
	}
	if apiErr.Code != 403 {
		return false
	}
	for _, detail := range apiErr.Errors {
		if detail.Reason == "rateLimitExceeded" || detail.Reason == "userRateLimitExceeded" {
			return true
		}
	}
	return false
}
