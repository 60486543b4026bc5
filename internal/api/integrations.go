package api

import (
	"context"
	"net/http"
	"net/url"

	"calbook/internal/models"
)

func (c *Client) ListIntegrations(ctx context.Context) ([]models.IntegrationStatus, error) {
	var out struct {
		Integrations []models.IntegrationStatus `json:"integrations"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/integration/all", auth: true}, &out)
	return out.Integrations, err
}

// CheckIntegration reports whether appType is connected for the user.
func (c *Client) CheckIntegration(ctx context.Context, appType models.IntegrationAppType) (bool, error) {
	var out struct {
		IsConnected bool `json:"isConnected"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/integration/check/" + url.PathEscape(string(appType)), auth: true}, &out)
	return out.IsConnected, err
}

// ConnectIntegration returns the provider's OAuth consent URL.
func (c *Client) ConnectIntegration(ctx context.Context, appType models.IntegrationAppType) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/integration/connect/" + url.PathEscape(string(appType)), auth: true}, &out)
	return out.URL, err
}
