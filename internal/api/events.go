package api

import (
	"context"
	"net/http"
	"net/url"

	"calbook/internal/models"
)

// EventTypeList is the host's event types page.
type EventTypeList struct {
	Username string             `json:"username"`
	Events   []models.EventType `json:"events"`
}

func (c *Client) ListEventTypes(ctx context.Context) (EventTypeList, error) {
	var out struct {
		Data EventTypeList `json:"data"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/event/all", auth: true}, &out)
	return out.Data, err
}

func (c *Client) CreateEventType(ctx context.Context, draft models.EventTypeDraft) (models.EventType, error) {
	var out struct {
		Event models.EventType `json:"event"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/event/create", body: draft, auth: true}, &out)
	return out.Event, err
}

func (c *Client) DeleteEventType(ctx context.Context, eventID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/event/" + url.PathEscape(eventID), auth: true}, nil)
}

// ToggleEventPrivacy flips an event type between public and private.
func (c *Client) ToggleEventPrivacy(ctx context.Context, eventID string) (models.EventType, error) {
	var out struct {
		Event models.EventType `json:"event"`
	}
	err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/event/toggle-privacy",
		body:   map[string]string{"eventId": eventID},
		auth:   true,
	}, &out)
	return out.Event, err
}

// PublicEvent returns a published event type without authentication.
func (c *Client) PublicEvent(ctx context.Context, eventID string) (models.EventType, error) {
	var out struct {
		Event models.EventType `json:"event"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/event/public/" + url.PathEscape(eventID)}, &out)
	return out.Event, err
}
