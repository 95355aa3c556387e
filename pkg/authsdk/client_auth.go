package authsdk

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/tabgate/pkg/httpx"
)

// Login authenticates with email and password. The access token is kept for
// later calls and the refresh token lands in the cookie jar.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	}, nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	c.SetAccessToken(out.Data.Token)
	return &out, nil
}

// Refresh exchanges the refresh cookie for a new token pair.
func (c *Client) Refresh(ctx context.Context) (*RefreshResponse, error) {
	csrf := c.cachedCSRF()
	if csrf == "" {
		var err error
		if csrf, err = c.CSRFToken(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/refresh-token", nil, map[string]string{
		httpx.CSRFHeader: csrf,
	})
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	c.SetAccessToken(out.Data.Token)
	return &out, nil
}

// Logout revokes the current access token, if any, and forgets it.
func (c *Client) Logout(ctx context.Context) (*MessageResponse, error) {
	headers := map[string]string{}
	if token := c.AccessToken(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	resp, err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, headers)
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	c.SetAccessToken("")
	return &out, nil
}

// CSRFToken fetches a fresh CSRF token. The cookie half is stored in the jar
// and the token is cached for Refresh.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/csrf-token", nil, nil)
	if err != nil {
		return "", err
	}

	var out CSRFTokenResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}

	c.setCSRF(out.CSRFToken)
	return out.CSRFToken, nil
}
