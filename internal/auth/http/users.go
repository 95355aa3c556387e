package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
	"github.com/aussiebroadwan/tabgate/internal/auth/service"
	"github.com/aussiebroadwan/tabgate/pkg/authsdk"
	"github.com/aussiebroadwan/tabgate/pkg/httpx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse	"Please authenticate"
//	@Router			/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.ErrUnauthorized.WriteError(w)
		return
	}

	user, err := h.UserService.Get(r.Context(), id.Subject)
	if errors.Is(err, service.ErrUserNotFound) {
		// Token outlived its user.
		httpx.ErrUnauthorized.WriteError(w)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to load user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{Data: toUser(user)})
}

// HandleGet godoc
//
//	@Summary		Get a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{object}	authsdk.ErrorResponse
//	@Failure		403	{object}	authsdk.ErrorResponse	"Admin only"
//	@Failure		404	{object}	authsdk.ErrorResponse
//	@Router			/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, service.ErrUserNotFound) {
		httpx.ErrNotFound.WithDescription("user not found").WriteError(w)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to load user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{Data: toUser(user)})
}

// HandleCreate godoc
//
//	@Summary		Create a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"New user; role defaults to user"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse	"Admin only"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Email already taken"
//	@Router			/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := h.UserService.Create(r.Context(), service.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		httpx.ErrConflict.WithDescription("Email already taken").WriteError(w)
		return
	case errors.Is(err, service.ErrInvalidRole):
		httpx.ErrInvalidRequest.WithDescription("unknown role").WriteError(w)
		return
	case err != nil:
		h.serverError(w, r, "failed to create user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.UserResponse{Data: toUser(user)})
}

// HandleChangeRole godoc
//
//	@Summary		Change a user's role
//	@Description	Takes effect in the user's tokens on their next refresh.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"User ID"
//	@Param			request	body		authsdk.ChangeRoleRequest	true	"New role"
//	@Success		200		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		403		{object}	authsdk.ErrorResponse	"Admin only"
//	@Failure		404		{object}	authsdk.ErrorResponse
//	@Router			/users/{id}/role [put].
func (h *UsersHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ChangeRoleRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, err := h.UserService.ChangeRole(r.Context(), r.PathValue("id"), domain.Role(req.Role))
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		httpx.ErrNotFound.WithDescription("user not found").WriteError(w)
		return
	case errors.Is(err, service.ErrInvalidRole):
		httpx.ErrInvalidRequest.WithDescription("unknown role").WriteError(w)
		return
	case err != nil:
		h.serverError(w, r, "failed to change role", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{Data: toUser(user)})
}

// HandleChangePassword godoc
//
//	@Summary		Change own password
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.MessageResponse
//	@Failure		400		{object}	authsdk.ErrorResponse
//	@Failure		401		{object}	authsdk.ErrorResponse	"Current password is incorrect"
//	@Router			/users/me/password [post].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		httpx.ErrUnauthorized.WriteError(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	err := h.UserService.ChangePassword(r.Context(), id.Subject, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.ErrBadCredentials.WithDescription("Current password is incorrect").WriteError(w)
		return
	case errors.Is(err, service.ErrUserNotFound):
		httpx.ErrUnauthorized.WriteError(w)
		return
	case err != nil:
		h.serverError(w, r, "failed to change password", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password changed"})
}

func (h *UsersHandler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slogx.FromContext(r.Context()).Error(msg, "error", err)
	httpx.ErrServerError.WriteError(w)
}

func toUser(u domain.User) authsdk.User {
	return authsdk.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
