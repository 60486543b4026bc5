package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calbook/internal/models"
)

type staticToken string

func (s staticToken) AccessToken() (string, error) { return string(s), nil }

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api", append([]Option{WithTokenSource(staticToken("tok-123"))}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8000")
	assert.Error(t, err)
}

func TestPublicAvailability(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/availability/public/E1", r.URL.Path)
		assert.Equal(t, "Europe/Berlin", r.URL.Query().Get("timezone"))
		assert.Equal(t, "2025-06-03", r.URL.Query().Get("date"))
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		io.WriteString(w, `{"data":[{"dateStr":"2025-06-03","day":"TUESDAY","isAvailable":true,"slots":["09:00","09:30"]}]}`)
	})

	days, err := c.PublicAvailability(context.Background(), "E1", "Europe/Berlin", civil.Date{Year: 2025, Month: time.June, Day: 3})
	require.NoError(t, err)
	assert.Equal(t, []models.AvailabilityDay{{DateStr: "2025-06-03", Day: "TUESDAY", IsAvailable: true, Slots: []string{"09:00", "09:30"}}}, days)
}

func TestAuthenticatedCallSendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.URL.Query().Get("writableOnly"))
		io.WriteString(w, `{"calendars":[{"id":"primary","name":"Work","isWritable":true,"accessRole":"owner"}]}`)
	})

	cals, err := c.ListCalendars(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, cals, 1)
	assert.Equal(t, "primary", cals[0].ID)
	assert.Equal(t, models.AccessOwner, cals[0].AccessRole)
}

func TestUnauthorizedRunsHook(t *testing.T) {
	var cleared int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"token expired"}`)
	}, WithUnauthorizedHandler(func() { cleared++ }))

	_, err := c.ListMeetings(context.Background(), models.MeetingFilterUpcoming)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, cleared)
}

func TestValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"Validation failed","errors":[{"field":"guestEmail","message":"invalid email"}]}`)
	})

	_, err := c.CreatePublicMeeting(context.Background(), models.CreateMeetingPayload{EventID: "E1"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Validation())
	assert.Equal(t, "Validation failed", apiErr.Error())
	assert.Equal(t, []FieldError{{Field: "guestEmail", Message: "invalid email"}}, apiErr.Fields)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestPlainTextError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusBadGateway)
	})
	err := c.DeleteEventType(context.Background(), "E1")
	assert.EqualError(t, err, "upstream timeout")
}

func TestCreatePublicMeetingBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/meeting/public/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got models.CreateMeetingPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "2025-06-03T09:00", got.StartTime)
		assert.Equal(t, "2025-06-03T09:30", got.EndTime)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data":{"meetLink":"https://zoom.us/j/1","meeting":{"id":"M1","status":"SCHEDULED"}}}`)
	})

	conf, err := c.CreatePublicMeeting(context.Background(), models.CreateMeetingPayload{
		EventID: "E1", StartTime: "2025-06-03T09:00", EndTime: "2025-06-03T09:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://zoom.us/j/1", conf.MeetLink)
	assert.Equal(t, "M1", conf.Meeting.ID)
}

func TestCheckIntegration(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/integration/check/ZOOM_MEETING", r.URL.Path)
		io.WriteString(w, `{"isConnected":true}`)
	})
	ok, err := c.CheckIntegration(context.Background(), models.AppZoomMeeting)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.ListIntegrations(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}
