package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"chelmassage/handlers"
	"chelmassage/models"
	"chelmassage/routes"
	"chelmassage/services/booking"
	"chelmassage/services/calendar"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type stubCalendar struct {
	mu       sync.Mutex
	events   []models.CalendarEvent
	lastSpan time.Duration
}

func (s *stubCalendar) ListEvents(_ context.Context, _ string, timeMin, timeMax time.Time) ([]models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSpan = timeMax.Sub(timeMin)
	return append([]models.CalendarEvent(nil), s.events...), nil
}

func (s *stubCalendar) InsertEvent(_ context.Context, _ string, ev models.NewCalendarEvent) (*models.CalendarEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := models.CalendarEvent{
		ID:       fmt.Sprintf("ev-%d", len(s.events)),
		Summary:  ev.Summary,
		Start:    models.EventTime{DateTime: ev.Start.UTC().Format(time.RFC3339)},
		End:      models.EventTime{DateTime: ev.End.UTC().Format(time.RFC3339)},
		HTMLLink: "https://calendar.example.com/ev",
	}
	s.events = append(s.events, created)
	return &created, nil
}

type stubDispatcher struct {
	mu       sync.Mutex
	bookings []models.BookingNotification
	intakes  []models.IntakeNotification
	err      error
}

func (d *stubDispatcher) DispatchBooking(_ context.Context, n models.BookingNotification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bookings = append(d.bookings, n)
	return d.err
}

func (d *stubDispatcher) DispatchIntake(_ context.Context, n models.IntakeNotification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.intakes = append(d.intakes, n)
	return nil
}

func (d *stubDispatcher) Shutdown(context.Context) error { return nil }

type stubRenderer struct {
	err error
}

func (r stubRenderer) RenderIntake(models.IntakeForm) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3"), nil
}

func timed(id, summary, start, end string) models.CalendarEvent {
	return models.CalendarEvent{
		ID:      id,
		Summary: summary,
		Start:   models.EventTime{DateTime: start},
		End:     models.EventTime{DateTime: end},
	}
}

func newTestRouter(t *testing.T, cal calendar.Service, disp *stubDispatcher, renderer stubRenderer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := booking.NewDefaultBookingService(cal, "cal-1", disp, nil, true, zap.NewNop())
	if err != nil {
		t.Fatalf("booking service: %v", err)
	}
	bh := handlers.NewBookingHandler(svc, 90, zap.NewNop())
	ih := handlers.NewIntakeHandler(renderer, disp, zap.NewNop())

	r := gin.New()
	routes.RegisterRoutes(r, &handlers.HandlerBundle{
		GetAvailableDays: bh.GetAvailableDays,
		GetAvailability:  bh.GetAvailability,
		BookAppointment:  bh.BookAppointment,
		SubmitIntake:     ih.SubmitIntake,
		Health:           handlers.Health,
	})
	return r
}

func serve(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func TestGetAvailability(t *testing.T) {
	cal := &stubCalendar{events: []models.CalendarEvent{
		timed("o1", "open for bookings", "2025-06-02T09:00:00Z", "2025-06-02T12:00:00Z"),
		timed("b1", "Busy", "2025-06-02T10:00:00Z", "2025-06-02T10:30:00Z"),
	}}
	r := newTestRouter(t, cal, &stubDispatcher{}, stubRenderer{})

	w := serve(r, http.MethodGet, "/api/availability?date=2025-06-02&duration=50", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var starts []string
	if err := json.Unmarshal(w.Body.Bytes(), &starts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"2025-06-02T09:00:00Z", "2025-06-02T10:30:00Z", "2025-06-02T10:45:00Z", "2025-06-02T11:00:00Z"}
	if strings.Join(starts, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v", starts)
	}
}

func TestGetAvailabilityEmptyIsArray(t *testing.T) {
	r := newTestRouter(t, &stubCalendar{}, &stubDispatcher{}, stubRenderer{})
	w := serve(r, http.MethodGet, "/api/availability?date=2025-06-02&duration=50", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestGetAvailabilityValidation(t *testing.T) {
	r := newTestRouter(t, &stubCalendar{}, &stubDispatcher{}, stubRenderer{})
	for _, target := range []string{
		"/api/availability?date=2025-06-02",
		"/api/availability?date=June&duration=50",
		"/api/availability?date=2025-06-02&duration=abc",
	} {
		w := serve(r, http.MethodGet, target, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", target, w.Code)
		}
	}
	w := serve(r, http.MethodGet, "/api/availability?duration=50", "")
	if msg := decodeError(t, w); msg != "Both 'date' and 'duration' query parameters are required." {
		t.Fatalf("message: %q", msg)
	}
}

func TestCalendarNotConfiguredIs503(t *testing.T) {
	r := newTestRouter(t, calendar.Unavailable{Reason: errors.New("no key.json")}, &stubDispatcher{}, stubRenderer{})
	w := serve(r, http.MethodGet, "/api/availability?date=2025-06-02&duration=50", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", w.Code)
	}
	w = serve(r, http.MethodGet, "/api/available-days", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("available-days status %d", w.Code)
	}
}

func TestGetAvailableDays(t *testing.T) {
	cal := &stubCalendar{events: []models.CalendarEvent{
		timed("o1", "Open For Bookings", "2025-06-01T13:00:00Z", "2025-06-01T17:00:00Z"),
	}}
	r := newTestRouter(t, cal, &stubDispatcher{}, stubRenderer{})

	w := serve(r, http.MethodGet, "/api/available-days?range=30", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `["2025-06-01"]` {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if cal.lastSpan != 30*24*time.Hour {
		t.Fatalf("range=30 scanned %v", cal.lastSpan)
	}
	for _, bad := range []string{"0", "366", "x", "-4"} {
		w := serve(r, http.MethodGet, "/api/available-days?range="+bad, "")
		if w.Code != http.StatusOK {
			t.Errorf("range=%s: status %d", bad, w.Code)
		}
		if cal.lastSpan != 90*24*time.Hour {
			t.Errorf("range=%s: expected default 90 day scan, got %v", bad, cal.lastSpan)
		}
	}
}

const bookBody = `{"start_time":"2025-06-02T14:00:00Z","service_duration":"50","summary":"Massage","description":"Comments: Sore neck","client":{"first_name":"Ann","last_name":"Lee","email":"ann@example.com","phone":"555"}}`

func TestBookAppointment(t *testing.T) {
	cal := &stubCalendar{}
	disp := &stubDispatcher{}
	r := newTestRouter(t, cal, disp, stubRenderer{})

	w := serve(r, http.MethodPost, "/api/book", bookBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var conf map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &conf)
	if conf["message"] != "Booking successful!" || conf["event_link"] == "" {
		t.Fatalf("body: %v", conf)
	}
	if _, leaked := conf["EventID"]; leaked {
		t.Fatalf("event ID should not be serialized")
	}
	if len(disp.bookings) != 1 || disp.bookings[0].Comments != "Sore neck" {
		t.Fatalf("dispatch: %+v", disp.bookings)
	}
}

func TestBookAppointmentConflict(t *testing.T) {
	cal := &stubCalendar{events: []models.CalendarEvent{
		timed("b1", "Busy", "2025-06-02T14:30:00Z", "2025-06-02T14:45:00Z"),
	}}
	r := newTestRouter(t, cal, &stubDispatcher{}, stubRenderer{})

	w := serve(r, http.MethodPost, "/api/book", bookBody)
	if w.Code != http.StatusConflict {
		t.Fatalf("status %d", w.Code)
	}
	if msg := decodeError(t, w); !strings.Contains(msg, "no longer available") {
		t.Fatalf("message: %q", msg)
	}
}

func TestBookAppointmentIdempotentRetry(t *testing.T) {
	cal := &stubCalendar{}
	disp := &stubDispatcher{}
	r := newTestRouter(t, cal, disp, stubRenderer{})

	first := serve(r, http.MethodPost, "/api/book", bookBody, handlers.IdempotencyHeader, "abc-123")
	second := serve(r, http.MethodPost, "/api/book", bookBody, handlers.IdempotencyHeader, "abc-123")
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses %d %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() || len(disp.bookings) != 1 {
		t.Fatalf("retry should replay the first confirmation")
	}
	// A retry without the key hits the event it created.
	if w := serve(r, http.MethodPost, "/api/book", bookBody); w.Code != http.StatusConflict {
		t.Fatalf("status %d", w.Code)
	}
}

func TestBookAppointmentBadInput(t *testing.T) {
	r := newTestRouter(t, &stubCalendar{}, &stubDispatcher{}, stubRenderer{})
	for _, body := range []string{
		`not json`,
		`{"service_duration":50,"summary":"Massage"}`,
		`{"start_time":"soon","service_duration":50,"summary":"Massage"}`,
		`{"start_time":"2025-06-02T14:00:00Z","service_duration":"an hour","summary":"Massage"}`,
	} {
		if w := serve(r, http.MethodPost, "/api/book", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d", body, w.Code)
		}
	}
}

func TestSubmitIntake(t *testing.T) {
	disp := &stubDispatcher{}
	r := newTestRouter(t, &stubCalendar{}, disp, stubRenderer{})

	body := `{"firstName":"Ann","lastName":"Lee","email":"ann@example.com","conditions":"Back pain","extra":"ignored"}`
	w := serve(r, http.MethodPost, "/api/submit-intake", body)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Intake form submitted successfully.") {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if len(disp.intakes) != 1 || string(disp.intakes[0].PDF) != "%PDF-1.3" || disp.intakes[0].Form.Conditions.String() != "Back pain" {
		t.Fatalf("dispatch: %+v", disp.intakes)
	}

	if w := serve(r, http.MethodPost, "/api/submit-intake", "{oops"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json status %d", w.Code)
	}
}

func TestSubmitIntakeRejectsOversizedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	disp := &stubDispatcher{}
	ih := handlers.NewIntakeHandler(stubRenderer{}, disp, zap.NewNop())
	ih.MaxBodyBytes = 64
	r := gin.New()
	r.POST("/api/submit-intake", ih.SubmitIntake)

	body := `{"firstName":"Ann","drawingFront":"data:image/png;base64,` + strings.Repeat("A", 256) + `"}`
	w := serve(r, http.MethodPost, "/api/submit-intake", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status %d", w.Code)
	}
	if len(disp.intakes) != 0 {
		t.Fatalf("oversized form was dispatched")
	}
}

func TestSubmitIntakeRenderFailure(t *testing.T) {
	r := newTestRouter(t, &stubCalendar{}, &stubDispatcher{}, stubRenderer{err: errors.New("font missing")})
	w := serve(r, http.MethodPost, "/api/submit-intake", `{"firstName":"Ann"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "Server error while processing the form." {
		t.Fatalf("message: %q", msg)
	}
}

func TestPagesServeTemplates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Booking.html"), []byte("<h1>Book</h1>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := gin.New()
	routes.RegisterPageRoutes(r, &handlers.HandlerBundle{Pages: handlers.NewPageHandler(dir)})

	if w := serve(r, http.MethodGet, "/Booking.html", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Book") {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodGet, "/intake.html", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing page status %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &stubCalendar{}, &stubDispatcher{}, stubRenderer{})
	w := serve(r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status"`) {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}
