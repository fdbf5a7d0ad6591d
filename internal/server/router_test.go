package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/kpessa/yearview/internal/auth"
	"github.com/kpessa/yearview/internal/event"
	"github.com/kpessa/yearview/internal/export"
	"github.com/kpessa/yearview/internal/store"
)

type sequenceIDProvider struct {
	next int
}

func (p *sequenceIDProvider) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("id-%d", p.next), nil
}

type routerFixture struct {
	handler http.Handler
	store   *store.Service
	token   string
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&event.Event{}, &event.Category{}, &event.CustomHoliday{}, &event.DayNote{}, &event.UserSettings{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	clock := func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }
	storage, err := store.NewService(store.ServiceConfig{
		Database:   db,
		Clock:      clock,
		IDProvider: &sequenceIDProvider{},
	})
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}

	issuer := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte("test-signing-secret"),
		Issuer:        "yearview-auth",
		Audience:      "yearview-api",
		Clock:         clock,
	})
	token, _, err := issuer.IssueToken(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	exporter, err := export.NewExporter(export.ExporterConfig{Clock: clock, Location: time.UTC})
	if err != nil {
		t.Fatalf("failed to build exporter: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		TokenManager: issuer,
		Store:        storage,
		Exporter:     exporter,
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return &routerFixture{handler: handler, store: storage, token: token}
}

func (f *routerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Authorization", "Bearer "+f.token)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.handler.ServeHTTP(recorder, request)
	return recorder
}

func (f *routerFixture) mustCreateCategory(t *testing.T) event.Category {
	t.Helper()
	recorder := f.do(t, http.MethodPost, "/categories", gin.H{"name": "Work", "color": "#4285f4"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating category, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var created event.Category
	if err := json.Unmarshal(recorder.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode category: %v", err)
	}
	return created
}

func TestRouterRejectsMissingBearerToken(t *testing.T) {
	fixture := newRouterFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/events", http.NoBody)
	recorder := httptest.NewRecorder()
	fixture.handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestRouterRejectsForgedToken(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.token = "not-a-real-token"

	recorder := fixture.do(t, http.MethodGet, "/events", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	fixture := newRouterFixture(t)
	category := fixture.mustCreateCategory(t)

	created := fixture.do(t, http.MethodPost, "/events", gin.H{
		"title":      "Planning offsite",
		"date":       "2026-03-02",
		"endDate":    "2026-03-04",
		"categoryId": category.ID,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}
	var stored event.Event
	if err := json.Unmarshal(created.Body.Bytes(), &stored); err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}

	updated := fixture.do(t, http.MethodPut, "/events/"+stored.ID, gin.H{
		"title":      "Planning offsite (moved)",
		"date":       "2026-03-09",
		"endDate":    "2026-03-11",
		"categoryId": category.ID,
	})
	if updated.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", updated.Code, updated.Body.String())
	}

	listed := fixture.do(t, http.MethodGet, "/events", nil)
	if listed.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listed.Code)
	}
	var listResponse struct {
		Events []event.Event `json:"events"`
	}
	if err := json.Unmarshal(listed.Body.Bytes(), &listResponse); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listResponse.Events) != 1 || listResponse.Events[0].Title != "Planning offsite (moved)" {
		t.Fatalf("unexpected list: %+v", listResponse.Events)
	}

	deleted := fixture.do(t, http.MethodDelete, "/events/"+stored.ID, nil)
	if deleted.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", deleted.Code)
	}
	if second := fixture.do(t, http.MethodDelete, "/events/"+stored.ID, nil); second.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", second.Code)
	}
}

func TestCreateEventValidationIsABadRequest(t *testing.T) {
	fixture := newRouterFixture(t)
	category := fixture.mustCreateCategory(t)

	recorder := fixture.do(t, http.MethodPost, "/events", gin.H{
		"title":      "Backwards",
		"date":       "2026-03-04",
		"endDate":    "2026-03-02",
		"categoryId": category.ID,
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestDayNoteUpsertByDate(t *testing.T) {
	fixture := newRouterFixture(t)

	first := fixture.do(t, http.MethodPut, "/day-notes", gin.H{"date": "2026-07-04", "note": "fireworks"})
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}
	second := fixture.do(t, http.MethodPut, "/day-notes", gin.H{"date": "2026-07-04", "note": "parade"})
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", second.Code, second.Body.String())
	}

	listed := fixture.do(t, http.MethodGet, "/day-notes", nil)
	var listResponse struct {
		DayNotes []event.DayNote `json:"dayNotes"`
	}
	if err := json.Unmarshal(listed.Body.Bytes(), &listResponse); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listResponse.DayNotes) != 1 || listResponse.DayNotes[0].Note != "parade" {
		t.Fatalf("unexpected notes: %+v", listResponse.DayNotes)
	}
}

func TestLayoutYearEndpointProjectsEvents(t *testing.T) {
	fixture := newRouterFixture(t)
	category := fixture.mustCreateCategory(t)

	created := fixture.do(t, http.MethodPost, "/events", gin.H{
		"title":      "Conference",
		"date":       "2026-02-10",
		"endDate":    "2026-02-12",
		"categoryId": category.ID,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.Code)
	}

	recorder := fixture.do(t, http.MethodGet, "/layout/year/2026", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		Year   int `json:"year"`
		Months []struct {
			Bars []struct {
				Slot int `json:"slot"`
			} `json:"bars"`
		} `json:"months"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode layout: %v", err)
	}
	if response.Year != 2026 || len(response.Months) != 12 {
		t.Fatalf("expected 12 months, got %+v", response)
	}
	if len(response.Months[1].Bars) != 1 {
		t.Fatalf("expected one bar in February, got %+v", response.Months[1])
	}
}

func TestLayoutWeekRequiresValidDate(t *testing.T) {
	fixture := newRouterFixture(t)

	if recorder := fixture.do(t, http.MethodGet, "/layout/week?date=not-a-date", nil); recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if recorder := fixture.do(t, http.MethodGet, "/layout/week?date=2026-02-11", nil); recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestDeckEndpointReturnsFourQuarters(t *testing.T) {
	fixture := newRouterFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/deck/2026", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var response struct {
		Quarters []struct {
			Quarter int    `json:"quarter"`
			Suit    string `json:"suit"`
		} `json:"quarters"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode deck: %v", err)
	}
	if len(response.Quarters) != 4 {
		t.Fatalf("expected 4 quarters, got %+v", response.Quarters)
	}
}

func TestSyncRunAnswers503WhenDisabled(t *testing.T) {
	fixture := newRouterFixture(t)

	if recorder := fixture.do(t, http.MethodPost, "/sync/run", gin.H{"year": 2026}); recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
	if recorder := fixture.do(t, http.MethodDelete, "/sync/remote-data", nil); recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", recorder.Code)
	}
}

func TestExportEndpointServesCalendarFile(t *testing.T) {
	fixture := newRouterFixture(t)
	category := fixture.mustCreateCategory(t)

	created := fixture.do(t, http.MethodPost, "/events", gin.H{
		"title":      "Offsite",
		"date":       "2026-03-02",
		"endDate":    "2026-03-04",
		"categoryId": category.ID,
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", created.Code)
	}

	recorder := fixture.do(t, http.MethodGet, "/export/2026.ics", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if contentType := recorder.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/calendar") {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if !strings.Contains(recorder.Body.String(), "SUMMARY:Offsite") {
		t.Fatalf("missing event in calendar body:\n%s", recorder.Body.String())
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	fixture := newRouterFixture(t)

	updated := fixture.do(t, http.MethodPut, "/settings", gin.H{
		"weekStartDay":      1,
		"showIndiaHolidays": true,
	})
	if updated.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", updated.Code, updated.Body.String())
	}

	fetched := fixture.do(t, http.MethodGet, "/settings", nil)
	var response struct {
		WeekStartDay      int  `json:"weekStartDay"`
		ShowUSHolidays    bool `json:"showUSHolidays"`
		ShowIndiaHolidays bool `json:"showIndiaHolidays"`
	}
	if err := json.Unmarshal(fetched.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode settings: %v", err)
	}
	if response.WeekStartDay != 1 || !response.ShowUSHolidays || !response.ShowIndiaHolidays {
		t.Fatalf("unexpected settings: %+v", response)
	}
}

func TestHolidayYearEndpointHonorsToggles(t *testing.T) {
	fixture := newRouterFixture(t)

	recorder := fixture.do(t, http.MethodGet, "/holidays/2026", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var response struct {
		Holidays []struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"holidays"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode holidays: %v", err)
	}
	found := false
	for _, entry := range response.Holidays {
		if entry.Date == "2026-07-04" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected US Independence Day in default holiday set: %+v", response.Holidays)
	}
}
