package backend

import (
	"context"
	"encoding/json"
	"net/http"
)

type generateTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type generateTokenResponse struct {
	APIToken string `json:"apiToken"`
}

// LoginResponse is the body of a successful admin login.
type LoginResponse struct {
	AccessToken string          `json:"accessToken"`
	User        json.RawMessage `json:"user"`
}

// GenerateToken mints a service token for the given client credentials.
func (c *Client) GenerateToken(ctx context.Context, clientID, clientSecret string) (string, error) {
	var resp generateTokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/generate-token", "",
		generateTokenRequest{ClientID: clientID, ClientSecret: clientSecret}, &resp)
	if err != nil {
		return "", err
	}
	return resp.APIToken, nil
}

// AdminLogin authenticates an administrator. The service token is sent as an
// explicit per-call header so a stale user token in the shared slot is ignored.
func (c *Client) AdminLogin(ctx context.Context, serviceToken, identity, password string) (*LoginResponse, error) {
	body := map[string]string{"identity": identity, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/admin/login", serviceToken, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout asks the backend to invalidate the user session.
func (c *Client) Logout(ctx context.Context, userToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", userToken, nil, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, serviceToken, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", serviceToken,
		map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, serviceToken, token, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", serviceToken,
		map[string]string{"token": token, "password": password}, nil)
}
