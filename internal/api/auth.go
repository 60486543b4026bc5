package api

import (
	"context"
	"net/http"
	"time"

	"calbook/internal/models"
)

// LoginResult is a successful login.
type LoginResult struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: r}, &out)
	return out.User, err
}
