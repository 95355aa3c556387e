package http

import (
	"net/http"

	"github.com/aussiebroadwan/tabgate/internal/auth/service"
	"github.com/aussiebroadwan/tabgate/pkg/authsdk"
	"github.com/aussiebroadwan/tabgate/pkg/httpx"
)

// LogoutHandler serves POST /auth/logout.
type LogoutHandler struct {
	AuthService *service.AuthService
	Cookie      *RefreshCookie
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Revokes the bearer access token when one is sent and clears the refresh cookie. Always succeeds.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"Logout successfully"
//	@Router			/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if token, ok := httpx.BearerToken(r); ok {
		h.AuthService.Logout(r.Context(), token)
	}

	h.Cookie.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logout successfully"})
}
