package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabgate/internal/auth/service"
	"github.com/aussiebroadwan/tabgate/pkg/authsdk"
	"github.com/aussiebroadwan/tabgate/pkg/httpx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

// LoginHandler serves POST /auth/login.
type LoginHandler struct {
	AuthService *service.AuthService
	Cookie      *RefreshCookie
}

// ServeHTTP godoc
//
//	@Summary		Log in with email and password
//	@Description	Returns the user and an access token. The refresh token is set as an encrypted httpOnly cookie scoped to /auth/refresh-token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"message, data.user, data.token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Missing or invalid fields"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Incorrect email or password"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many attempts"
//	@Header			200		{string}	Set-Cookie				"refreshToken"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	user, pair, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		httpx.ErrBadCredentials.WriteError(w)
		return
	}
	if err != nil {
		log.Error("login failed", "error", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	if err := h.Cookie.Set(w, pair.Refresh); err != nil {
		log.Error("failed to set refresh cookie", "error", err)
		httpx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Message: "Login successfully",
		Data: authsdk.LoginData{
			User:  toUser(user),
			Token: pair.Access.Token,
		},
	})
}
