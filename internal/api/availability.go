package api

import (
	"context"
	"net/http"
	"net/url"

	"cloud.google.com/go/civil"

	"calbook/internal/models"
)

// PublicAvailability returns the bookable days of an event for the guest
// timezone around date. No session is sent.
func (c *Client) PublicAvailability(ctx context.Context, eventID, timezone string, date civil.Date) ([]models.AvailabilityDay, error) {
	var out struct {
		Data []models.AvailabilityDay `json:"data"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/availability/public/" + url.PathEscape(eventID),
		query:  url.Values{"timezone": {timezone}, "date": {date.String()}},
	}, &out)
	return out.Data, err
}

func (c *Client) UserAvailability(ctx context.Context) (models.WeeklyAvailability, error) {
	var out struct {
		Availability models.WeeklyAvailability `json:"availability"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/availability/me", auth: true}, &out)
	return out.Availability, err
}

func (c *Client) UpdateAvailability(ctx context.Context, a models.WeeklyAvailability) error {
	return c.do(ctx, request{method: http.MethodPut, path: "/availability/update", body: a, auth: true}, nil)
}
