package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/auth"
	"github.com/kpessa/yearview/internal/event"
	"github.com/kpessa/yearview/internal/export"
	"github.com/kpessa/yearview/internal/scheduler"
	"github.com/kpessa/yearview/internal/server"
	"github.com/kpessa/yearview/internal/store"
	"github.com/kpessa/yearview/internal/sync"
)

const (
	integrationSigningSecret = "integration-secret"
	integrationUserID        = "user-abc"
	jsonContentType          = "application/json"
)

type sequenceIDProvider struct {
	next int
}

func (p *sequenceIDProvider) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("id-%d", p.next), nil
}

type stubFetcher struct {
	calendars []sync.RemoteCalendar
	events    []sync.RemoteEvent
}

func (f *stubFetcher) ListCalendars(context.Context) ([]sync.RemoteCalendar, error) {
	return f.calendars, nil
}

func (f *stubFetcher) FetchYear(context.Context, []string, map[string]string, int) ([]sync.RemoteEvent, error) {
	return f.events, nil
}

func TestSyncFlowOverHTTP(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&event.Event{}, &event.Category{}, &event.CustomHoliday{}, &event.DayNote{}, &event.UserSettings{}); err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}

	clock := func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) }
	ids := &sequenceIDProvider{}

	storage, err := store.NewService(store.ServiceConfig{
		Database:   db,
		Clock:      clock,
		IDProvider: ids,
		Logger:     zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build store: %v", err)
	}

	engine, err := sync.NewEngine(sync.EngineConfig{Clock: clock, IDProvider: ids, Logger: zap.NewNop()})
	if err != nil {
		testContext.Fatalf("failed to build engine: %v", err)
	}

	fetcher := &stubFetcher{
		calendars: []sync.RemoteCalendar{
			{ID: "primary", Summary: "Personal", Primary: true},
		},
		events: []sync.RemoteEvent{
			{
				ID:           "remote-1",
				CalendarID:   "primary",
				CalendarName: "Personal",
				Title:        "Dentist",
				Date:         "2026-04-09",
			},
			{
				ID:           "remote-2",
				CalendarID:   "primary",
				CalendarName: "Personal",
				Title:        "Spring retreat",
				Date:         "2026-04-13",
				EndDate:      "2026-04-15",
			},
		},
	}

	runner, err := scheduler.NewRunner(scheduler.RunnerConfig{
		Store:   storage,
		Engine:  engine,
		Fetcher: fetcher,
		Clock:   clock,
		Logger:  zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build runner: %v", err)
	}

	issuer := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(integrationSigningSecret),
		Issuer:        "yearview-auth",
		Audience:      "yearview-api",
		Clock:         clock,
	})
	token, _, err := issuer.IssueToken(context.Background(), integrationUserID)
	if err != nil {
		testContext.Fatalf("failed to issue token: %v", err)
	}

	exporter, err := export.NewExporter(export.ExporterConfig{Clock: clock, Location: time.UTC})
	if err != nil {
		testContext.Fatalf("failed to build exporter: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: issuer,
		Store:        storage,
		Runner:       runner,
		Exporter:     exporter,
		Logger:       zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	testServer := httptest.NewServer(handler)
	defer testServer.Close()

	syncBody, _ := json.Marshal(map[string]any{"year": 2026})
	syncReq, _ := http.NewRequest(http.MethodPost, testServer.URL+"/sync/run", bytes.NewReader(syncBody))
	syncReq.Header.Set("Authorization", "Bearer "+token)
	syncReq.Header.Set("Content-Type", jsonContentType)

	syncResp, err := http.DefaultClient.Do(syncReq)
	if err != nil {
		testContext.Fatalf("sync request failed: %v", err)
	}
	defer syncResp.Body.Close()
	if syncResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected sync status: %d", syncResp.StatusCode)
	}

	var summary struct {
		Year          int `json:"year"`
		Created       int `json:"created"`
		Linked        int `json:"linked"`
		Skipped       int `json:"skipped"`
		NewCategories int `json:"newCategories"`
	}
	if err := json.NewDecoder(syncResp.Body).Decode(&summary); err != nil {
		testContext.Fatalf("failed to decode sync summary: %v", err)
	}
	if summary.Year != 2026 {
		testContext.Fatalf("unexpected year in summary: %d", summary.Year)
	}
	if summary.Created+summary.Linked != 2 {
		testContext.Fatalf("expected two imported events, got %+v", summary)
	}
	if summary.NewCategories != 1 {
		testContext.Fatalf("expected one provisioned category, got %+v", summary)
	}

	eventsReq, _ := http.NewRequest(http.MethodGet, testServer.URL+"/events", nil)
	eventsReq.Header.Set("Authorization", "Bearer "+token)
	eventsResp, err := http.DefaultClient.Do(eventsReq)
	if err != nil {
		testContext.Fatalf("events request failed: %v", err)
	}
	defer eventsResp.Body.Close()
	if eventsResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected events status: %d", eventsResp.StatusCode)
	}
	var eventsPayload struct {
		Events []event.Event `json:"events"`
	}
	if err := json.NewDecoder(eventsResp.Body).Decode(&eventsPayload); err != nil {
		testContext.Fatalf("failed to decode events: %v", err)
	}
	if len(eventsPayload.Events) != 2 {
		testContext.Fatalf("expected two events after sync, got %d", len(eventsPayload.Events))
	}
	for _, imported := range eventsPayload.Events {
		if imported.GoogleEventID == "" || imported.GoogleCalendarID != "primary" {
			testContext.Fatalf("expected remote-linked event, got %+v", imported)
		}
	}

	// A second run against the same remote snapshot must not duplicate.
	repeatReq, _ := http.NewRequest(http.MethodPost, testServer.URL+"/sync/run", bytes.NewReader(syncBody))
	repeatReq.Header.Set("Authorization", "Bearer "+token)
	repeatReq.Header.Set("Content-Type", jsonContentType)
	repeatResp, err := http.DefaultClient.Do(repeatReq)
	if err != nil {
		testContext.Fatalf("repeat sync request failed: %v", err)
	}
	defer repeatResp.Body.Close()
	if repeatResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected repeat sync status: %d", repeatResp.StatusCode)
	}
	var repeatSummary struct {
		Created int `json:"created"`
		Linked  int `json:"linked"`
		Skipped int `json:"skipped"`
	}
	if err := json.NewDecoder(repeatResp.Body).Decode(&repeatSummary); err != nil {
		testContext.Fatalf("failed to decode repeat summary: %v", err)
	}
	if repeatSummary.Created != 0 || repeatSummary.Linked != 0 || repeatSummary.Skipped != 2 {
		testContext.Fatalf("expected idempotent rerun, got %+v", repeatSummary)
	}

	disconnectReq, _ := http.NewRequest(http.MethodDelete, testServer.URL+"/sync/remote-data", nil)
	disconnectReq.Header.Set("Authorization", "Bearer "+token)
	disconnectResp, err := http.DefaultClient.Do(disconnectReq)
	if err != nil {
		testContext.Fatalf("disconnect request failed: %v", err)
	}
	defer disconnectResp.Body.Close()
	if disconnectResp.StatusCode != http.StatusOK {
		testContext.Fatalf("unexpected disconnect status: %d", disconnectResp.StatusCode)
	}

	afterReq, _ := http.NewRequest(http.MethodGet, testServer.URL+"/events", nil)
	afterReq.Header.Set("Authorization", "Bearer "+token)
	afterResp, err := http.DefaultClient.Do(afterReq)
	if err != nil {
		testContext.Fatalf("post-disconnect events request failed: %v", err)
	}
	defer afterResp.Body.Close()
	var afterPayload struct {
		Events []event.Event `json:"events"`
	}
	if err := json.NewDecoder(afterResp.Body).Decode(&afterPayload); err != nil {
		testContext.Fatalf("failed to decode events: %v", err)
	}
	if len(afterPayload.Events) != 0 {
		testContext.Fatalf("expected no events after disconnect, got %d", len(afterPayload.Events))
	}
}
