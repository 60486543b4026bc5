package api

import (
	"context"
	"net/http"
	"net/url"

	"calbook/internal/models"
)

// ListCalendars returns the user's synced calendars. With writableOnly the
// backend drops calendars events cannot be created on.
func (c *Client) ListCalendars(ctx context.Context, writableOnly bool) ([]models.CalendarDescriptor, error) {
	var out struct {
		Calendars []models.CalendarDescriptor `json:"calendars"`
	}
	q := url.Values{}
	if writableOnly {
		q.Set("writableOnly", "true")
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/calendars", query: q, auth: true}, &out)
	return out.Calendars, err
}

// SyncCalendars asks the backend to refresh its calendar list from the
// connected providers and returns how many calendars it now holds.
func (c *Client) SyncCalendars(ctx context.Context) (int, error) {
	var out struct {
		Synced int `json:"synced"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/calendars/sync", auth: true}, &out)
	return out.Synced, err
}

func (c *Client) GetCalendar(ctx context.Context, calendarID string) (models.CalendarDescriptor, error) {
	var out struct {
		Calendar models.CalendarDescriptor `json:"calendar"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/calendars/" + url.PathEscape(calendarID), auth: true}, &out)
	return out.Calendar, err
}
