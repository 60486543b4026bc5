package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbook/internal/config"
	"calbook/internal/models"
	"calbook/internal/notify"
)

type fakeBackend struct {
	mu       sync.Mutex
	days     []models.AvailabilityDay
	availErr error
	eventErr error
	createFn func(models.CreateMeetingPayload) (models.MeetingConfirmation, error)
	payloads []models.CreateMeetingPayload
}

func (f *fakeBackend) PublicEvent(_ context.Context, eventID string) (models.EventType, error) {
	if f.eventErr != nil {
		return models.EventType{}, f.eventErr
	}
	return models.EventType{ID: eventID, Title: "Intro call", Duration: 30}, nil
}

func (f *fakeBackend) PublicAvailability(context.Context, string, string, civil.Date) ([]models.AvailabilityDay, error) {
	return f.days, f.availErr
}

func (f *fakeBackend) CreatePublicMeeting(_ context.Context, p models.CreateMeetingPayload) (models.MeetingConfirmation, error) {
	f.mu.Lock()
	f.payloads = append(f.payloads, p)
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(p)
	}
	return models.MeetingConfirmation{MeetLink: "https://meet.example.com/abc"}, nil
}

func june3Days() []models.AvailabilityDay {
	return []models.AvailabilityDay{{DateStr: "2025-06-03", Slots: []string{"09:00", "09:30"}}}
}

func newTestRouter(t *testing.T, backend *fakeBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()
	cfg.Booking.AppURL = "https://book.example.com"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(logger, backend, cfg, WithClock(func() time.Time {
		return time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return srv.Router(cfg.CORS)
}

func do(t *testing.T, r http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) BookingView {
	t.Helper()
	var v BookingView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func location(t *testing.T, w *httptest.ResponseRecorder) url.Values {
	t.Helper()
	u, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/book/ev1", u.Path)
	return u.Query()
}

func TestViewBooking(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{days: june3Days()})

	w := do(t, r, http.MethodGet, "/book/ev1?date=2025-06-03&timezone=UTC&slot=2025-06-03T09%253A00", nil)
	require.Equal(t, http.StatusOK, w.Code)

	v := decodeView(t, w)
	assert.Equal(t, "ev1", v.EventID)
	require.NotNil(t, v.Event)
	assert.Equal(t, 30, v.Event.Duration)
	require.Len(t, v.Slots, 2)
	assert.True(t, v.Slots[0].Selected)
	assert.False(t, v.Slots[1].Selected)
	assert.Equal(t, "2025-06-03T09%3A30", v.Slots[1].Value)
	assert.Equal(t, "Jun 3, 2025 09:00 (UTC)", v.SelectedSlot)
	assert.Empty(t, v.Notifications)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestViewBookingDegradesOnAvailabilityError(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{availErr: errors.New("bad gateway")})

	w := do(t, r, http.MethodGet, "/book/ev1?date=2025-06-03", nil)
	require.Equal(t, http.StatusOK, w.Code)

	v := decodeView(t, w)
	assert.NotNil(t, v.Slots)
	assert.Empty(t, v.Slots)
	require.Len(t, v.Notifications, 1)
	assert.Equal(t, notify.LevelError, v.Notifications[0].Level)
}

func TestViewBookingDropsSlotNotOffered(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{days: june3Days()})

	w := do(t, r, http.MethodGet, "/book/ev1?date=2025-06-03&timezone=UTC&slot=2025-06-03T03%253A17", nil)
	require.Equal(t, http.StatusOK, w.Code)

	v := decodeView(t, w)
	assert.Empty(t, v.State.Slot)
	assert.Empty(t, v.SelectedSlot)
	for _, s := range v.Slots {
		assert.False(t, s.Selected)
	}
	assert.NotContains(t, v.Link, "slot=")
}

func TestConfirmRejectsSlotNotOffered(t *testing.T) {
	backend := &fakeBackend{days: june3Days()}
	r := newTestRouter(t, backend)

	w := do(t, r, http.MethodPost, "/book/ev1/confirm?date=2025-06-03&timezone=UTC&next=true&slot=2025-06-03T03%253A17",
		url.Values{"name": {"Ada"}, "email": {"ada@example.com"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, backend.payloads)

	v := decodeView(t, w)
	assert.False(t, v.State.Success)
	assert.Equal(t, "2025-06-03T03%3A17", v.State.Slot)
	require.NotEmpty(t, v.Notifications)
}

func TestSelectSlotRedirects(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{days: june3Days()})

	w := do(t, r, http.MethodPost, "/book/ev1/slot?date=2025-06-03&timezone=UTC", url.Values{"time": {"09:30"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	q := location(t, w)
	assert.Equal(t, "2025-06-03T09%3A30", q.Get("slot"))
	assert.Equal(t, "2025-06-03", q.Get("date"))
}

func TestSelectSlotNotOffered(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{days: june3Days()})

	w := do(t, r, http.MethodPost, "/book/ev1/slot?date=2025-06-03", url.Values{"time": {"17:00"}})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, decodeView(t, w).State.Slot)
}

func TestSelectDateClearsSlot(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{days: june3Days()})

	w := do(t, r, http.MethodPost, "/book/ev1/date?date=2025-06-03&slot=2025-06-03T09%253A00", url.Values{"date": {"2025-06-04"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	q := location(t, w)
	assert.Equal(t, "2025-06-04", q.Get("date"))
	assert.False(t, q.Has("slot"))
}

func TestNextRequiresSlot(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	w := do(t, r, http.MethodPost, "/book/ev1/next?date=2025-06-03", url.Values{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, r, http.MethodPost, "/book/ev1/next?date=2025-06-03&slot=2025-06-03T09%253A00", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "true", location(t, w).Get("next"))
}

func TestConfirm(t *testing.T) {
	backend := &fakeBackend{days: june3Days()}
	r := newTestRouter(t, backend)

	w := do(t, r, http.MethodPost, "/book/ev1/confirm?date=2025-06-03&timezone=UTC&next=true&slot=2025-06-03T09%253A00",
		url.Values{"name": {"Ada"}, "email": {"ada@example.com"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	q := location(t, w)
	assert.Equal(t, "true", q.Get("success"))
	assert.Equal(t, "https://meet.example.com/abc", decodeView(t, w).MeetLink)

	require.Len(t, backend.payloads, 1)
	assert.Equal(t, "2025-06-03T09:00", backend.payloads[0].StartTime)
	assert.Equal(t, "2025-06-03T09:30", backend.payloads[0].EndTime)
}

func TestConfirmFailureKeepsState(t *testing.T) {
	backend := &fakeBackend{days: june3Days(), createFn: func(models.CreateMeetingPayload) (models.MeetingConfirmation, error) {
		return models.MeetingConfirmation{}, errors.New("connection reset")
	}}
	r := newTestRouter(t, backend)

	w := do(t, r, http.MethodPost, "/book/ev1/confirm?date=2025-06-03&next=true&slot=2025-06-03T09%253A00",
		url.Values{"name": {"Ada"}, "email": {"ada@example.com"}})
	require.Equal(t, http.StatusBadGateway, w.Code)

	v := decodeView(t, w)
	assert.False(t, v.State.Success)
	assert.True(t, v.State.Next)
	assert.Equal(t, "2025-06-03T09%3A00", v.State.Slot)
	require.NotEmpty(t, v.Notifications)
}

func TestConfirmInvalidGuest(t *testing.T) {
	backend := &fakeBackend{days: june3Days()}
	r := newTestRouter(t, backend)

	w := do(t, r, http.MethodPost, "/book/ev1/confirm?date=2025-06-03&slot=2025-06-03T09%253A00",
		url.Values{"name": {"Ada"}, "email": {"not-an-email"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, backend.payloads)
}

func TestIntegrationReturn(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	w := do(t, r, http.MethodGet, "/integrations/return?success=true&app_type=ZOOM_MEETING&tab=apps", nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://book.example.com/integrations?tab=apps", w.Header().Get("Location"))

	var body struct {
		Notifications []notify.Notification `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, notify.LevelSuccess, body.Notifications[0].Level)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t, &fakeBackend{})

	req := httptest.NewRequest(http.MethodOptions, "/book/ev1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
