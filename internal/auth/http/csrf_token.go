package http

import (
	"net/http"

	"github.com/aussiebroadwan/tabgate/pkg/authsdk"
	"github.com/aussiebroadwan/tabgate/pkg/httpx"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

// CSRFTokenHandler godoc
//
//	@Summary		Issue a CSRF token
//	@Description	Sets the CSRF cookie and returns the token to echo back in X-CSRF-Token on state-changing requests that carry the session cookie.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.CSRFTokenResponse	"csrfToken"
//	@Failure		500	{object}	authsdk.ErrorResponse
//	@Router			/csrf-token [get].
func CSRFTokenHandler(csrf *httpx.CSRF) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := csrf.Issue(w, r)
		if err != nil {
			slogx.FromContext(r.Context()).Error("failed to issue csrf token", "error", err)
			httpx.ErrServerError.WriteError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, authsdk.CSRFTokenResponse{CSRFToken: token})
	}
}
