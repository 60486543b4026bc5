package api

import (
	"context"
	"net/http"
	"net/url"

	"calbook/internal/models"
)

func (c *Client) ListMeetings(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, error) {
	var out struct {
		Meetings []models.Meeting `json:"meetings"`
	}
	q := url.Values{}
	if filter != "" {
		q.Set("filter", string(filter))
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/meeting/user/all", query: q, auth: true}, &out)
	return out.Meetings, err
}

func (c *Client) CancelMeeting(ctx context.Context, meetingID string) error {
	return c.do(ctx, request{method: http.MethodPut, path: "/meeting/cancel/" + url.PathEscape(meetingID), auth: true}, nil)
}

// CreatePublicMeeting books a slot as a guest.
func (c *Client) CreatePublicMeeting(ctx context.Context, payload models.CreateMeetingPayload) (models.MeetingConfirmation, error) {
	var out struct {
		Data models.MeetingConfirmation `json:"data"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/meeting/public/create", body: payload}, &out)
	return out.Data, err
}
