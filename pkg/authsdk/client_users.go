package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	return c.getUser(ctx, http.MethodGet, "/users/me", nil, http.StatusOK)
}

// GetUser returns a user by id. Admin only.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	return c.getUser(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, http.StatusOK)
}

// CreateUser creates an account. Admin only.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	return c.getUser(ctx, http.MethodPost, "/users", req, http.StatusCreated)
}

// ChangeRole sets a user's role. Admin only. The user's tokens pick up the
// new role on their next refresh.
func (c *Client) ChangeRole(ctx context.Context, id, role string) (*User, error) {
	return c.getUser(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/role",
		ChangeRoleRequest{Role: role}, http.StatusOK)
}

// ChangePassword changes the logged-in user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := c.doAuthJSON(ctx, http.MethodPost, "/users/me/password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

func (c *Client) getUser(ctx context.Context, method, path string, body any, status int) (*User, error) {
	resp, err := c.doAuthJSON(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, status); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
