// Package scheduler drives sync runs, on demand and on a cron cadence.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/kpessa/yearview/internal/event"
	"github.com/kpessa/yearview/internal/store"
	"github.com/kpessa/yearview/internal/sync"
)

// ErrStaleRun marks a run whose fetch finished after a newer run started.
// Its results are discarded without touching the store.
var ErrStaleRun = errors.New("scheduler: run superseded by a newer run")

var (
	errMissingStore   = errors.New("store service is required")
	errMissingEngine  = errors.New("sync engine is required")
	errMissingFetcher = errors.New("remote fetcher is required")
	errMissingRunner  = errors.New("sync runner is required")
)

// Fetcher reads calendars and events from the remote provider.
type Fetcher interface {
	ListCalendars(ctx context.Context) ([]sync.RemoteCalendar, error)
	FetchYear(ctx context.Context, calendarIDs []string, calendarNames map[string]string, year int) ([]sync.RemoteEvent, error)
}

// RunnerConfig wires the sync runner's dependencies.
type RunnerConfig struct {
	Store   *store.Service
	Engine  *sync.Engine
	Fetcher Fetcher
	Clock   func() time.Time
	Logger  *zap.Logger
}

// Runner executes the full sync pipeline for one user at a time: provision
// categories, fetch the remote year, reconcile, apply, then sweep duplicates.
type Runner struct {
	store   *store.Service
	engine  *sync.Engine
	fetcher Fetcher
	clock   func() time.Time
	logger  *zap.Logger

	mu        gosync.Mutex
	latestRun map[string]uint64
	sequence  uint64
}

// NewRunner validates dependencies and constructs a Runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("scheduler.runner.new: %w", errMissingStore)
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("scheduler.runner.new: %w", errMissingEngine)
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("scheduler.runner.new: %w", errMissingFetcher)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		store:     cfg.Store,
		engine:    cfg.Engine,
		fetcher:   cfg.Fetcher,
		clock:     clock,
		logger:    logger,
		latestRun: make(map[string]uint64),
	}, nil
}

// RunSummary reports what one sync run did.
type RunSummary struct {
	Sequence      uint64 `json:"sequence"`
	Year          int    `json:"year"`
	Created       int    `json:"created"`
	Linked        int    `json:"linked"`
	Skipped       int    `json:"skipped"`
	NewCategories int    `json:"newCategories"`
	Deduplicated  int    `json:"deduplicated"`
}

func (r *Runner) beginRun(userID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequence++
	r.latestRun[userID] = r.sequence
	return r.sequence
}

func (r *Runner) isCurrent(userID string, sequence uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latestRun[userID] == sequence
}

// RunOnce performs one complete sync pass for the user and year.
func (r *Runner) RunOnce(ctx context.Context, userID string, year int) (*RunSummary, error) {
	sequence := r.beginRun(userID)
	summary := &RunSummary{Sequence: sequence, Year: year}

	calendars, err := r.fetcher.ListCalendars(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: list calendars: %w", err)
	}

	categories, err := r.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}
	categoryPlan, err := r.engine.EnsureCategoriesForCalendars(userID, categories, calendars)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}
	summary.NewCategories = len(categoryPlan.NewCategories)
	if err := r.store.ApplyIntents(ctx, userID, categoryPlan.Intents); err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}
	if err := r.store.AddVisibleCategories(ctx, userID, categoryPlan.NewlyVisible); err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}

	calendarIDs := make([]string, 0, len(calendars))
	calendarNames := make(map[string]string, len(calendars))
	for _, calendar := range calendars {
		calendarIDs = append(calendarIDs, calendar.ID)
		calendarNames[calendar.ID] = calendar.Summary
	}

	remotes, err := r.fetcher.FetchYear(ctx, calendarIDs, calendarNames, year)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: fetch year: %w", err)
	}

	// The fetch is the slow step. Anything planned from a snapshot older
	// than the newest run would fight that run's writes.
	if !r.isCurrent(userID, sequence) {
		r.logger.Info("discarding stale sync run",
			zap.String("user_id", userID),
			zap.Uint64("sequence", sequence))
		return nil, ErrStaleRun
	}

	locals, err := r.store.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}
	categories, err = r.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}

	orphanPlan, err := r.engine.EnsureCategoriesFromEvents(userID, locals, categories)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}
	if len(orphanPlan.Intents) > 0 {
		if err := r.store.ApplyIntents(ctx, userID, orphanPlan.Intents); err != nil {
			return nil, fmt.Errorf("scheduler.run: %w", err)
		}
		if err := r.store.AddVisibleCategories(ctx, userID, orphanPlan.NewlyVisible); err != nil {
			return nil, fmt.Errorf("scheduler.run: %w", err)
		}
		locals, err = r.store.ListEvents(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("scheduler.run: %w", err)
		}
		categories, err = r.store.ListCategories(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("scheduler.run: %w", err)
		}
	}

	plan, err := r.engine.Plan(userID, locals, remotes, calendarMapping(categories))
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}
	summary.Created = plan.Created
	summary.Linked = plan.Linked
	summary.Skipped = plan.Skipped
	if err := r.store.ApplyIntents(ctx, userID, plan.Intents); err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}

	locals, err = r.store.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}
	sweep := r.engine.Deduplicate(locals, categories)
	summary.Deduplicated = len(sweep)
	if err := r.store.ApplyIntents(ctx, userID, sweep); err != nil {
		return nil, fmt.Errorf("scheduler.run: %w", err)
	}

	r.logger.Info("sync run complete",
		zap.String("user_id", userID),
		zap.Uint64("sequence", sequence),
		zap.Int("created", summary.Created),
		zap.Int("linked", summary.Linked),
		zap.Int("skipped", summary.Skipped),
		zap.Int("deduplicated", summary.Deduplicated))
	return summary, nil
}

// Disconnect removes every remote-backed event and category for the user.
func (r *Runner) Disconnect(ctx context.Context, userID string) ([]string, error) {
	locals, err := r.store.ListEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("scheduler.disconnect: %w", err)
	}
	categories, err := r.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("scheduler.disconnect: %w", err)
	}
	removal := r.engine.RemoveAllRemoteData(locals, categories)
	if err := r.store.ApplyIntents(ctx, userID, removal.Intents); err != nil {
		return nil, fmt.Errorf("scheduler.disconnect: %w", err)
	}
	if err := r.store.RemoveVisibleCategories(ctx, userID, removal.RemovedCategoryIDs); err != nil {
		return nil, fmt.Errorf("scheduler.disconnect: %w", err)
	}
	return removal.RemovedCategoryIDs, nil
}

func calendarMapping(categories []event.Category) map[string]string {
	mapping := make(map[string]string)
	for _, category := range categories {
		if category.GoogleCalendarID != "" {
			mapping[category.GoogleCalendarID] = category.ID
		}
	}
	return mapping
}
