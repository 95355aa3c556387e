package authsdk

import "time"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// User is the public view of an account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LoginData carries the user and its access token. The refresh token only
// travels in the refreshToken cookie.
type LoginData struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginResponse struct {
	Message string    `json:"message"`
	Data    LoginData `json:"data"`
}

type RefreshData struct {
	Token string `json:"token"`
}

type RefreshResponse struct {
	Message string      `json:"message"`
	Data    RefreshData `json:"data"`
}

// MessageResponse is returned by endpoints with nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

type UserResponse struct {
	Data User `json:"data"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// ChangeRoleRequest is the body of PUT /users/{id}/role.
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// ChangePasswordRequest is the body of POST /users/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok", "disabled" or "error: ...".
type HealthChecks struct {
	Database   string `json:"database"`
	Revocation string `json:"revocation"`
}
