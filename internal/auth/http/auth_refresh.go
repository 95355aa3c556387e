package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tabgate/internal/auth/service"
	"github.com/aussiebroadwan/tabgate/pkg/authsdk"
	"github.com/aussiebroadwan/tabgate/pkg/httpx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

// RefreshHandler serves POST /auth/refresh-token.
type RefreshHandler struct {
	AuthService *service.AuthService
	Cookie      *RefreshCookie
}

// ServeHTTP godoc
//
//	@Summary		Rotate the refresh token
//	@Description	Exchanges the refreshToken cookie for a new access token and a new refresh cookie. The old refresh token is revoked and cannot be used again.
//	@Description	Browsers must send the X-CSRF-Token header obtained from /csrf-token. The cookie is cleared on any failure.
//	@Tags			Auth
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token"
//	@Success		200				{object}	authsdk.RefreshResponse	"message, data.token"
//	@Failure		401				{object}	authsdk.ErrorResponse	"Please authenticate"
//	@Failure		403				{object}	authsdk.ErrorResponse	"invalid_csrf_token"
//	@Header			200				{string}	Set-Cookie				"refreshToken"
//	@Router			/auth/refresh-token [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw, err := h.Cookie.Read(r)
	if err != nil {
		log.Debug("refresh rejected", "reason", "cookie", "error", err)
		h.Cookie.Clear(w)
		httpx.ErrUnauthorized.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(ctx, raw)
	if errors.Is(err, service.ErrInvalidRefresh) {
		h.Cookie.Clear(w)
		httpx.ErrUnauthorized.WriteError(w)
		return
	}
	if err != nil {
		log.Error("refresh failed", "error", err)
		h.Cookie.Clear(w)
		httpx.ErrServerError.WriteError(w)
		return
	}

	if err := h.Cookie.Set(w, pair.Refresh); err != nil {
		log.Error("failed to set refresh cookie", "error", err)
		h.Cookie.Clear(w)
		httpx.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{
		Message: "Token refreshed",
		Data:    authsdk.RefreshData{Token: pair.Access.Token},
	})
}
