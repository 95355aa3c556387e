package authsdk

import (
	"errors"

	"github.com/aussiebroadwan/tabgate/pkg/httpx"
)

// ErrNotLoggedIn is returned by calls that need a bearer token before Login
// or after Logout.
var ErrNotLoggedIn = errors.New("authsdk: not logged in")

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	return hasStatus(err, 401)
}

// IsForbidden reports whether err is a role check failure. CSRF failures
// are also 403 but are not reported here.
func IsForbidden(err error) bool {
	var apiErr *httpx.APIError
	return errors.As(err, &apiErr) && apiErr.Code == httpx.ErrorCodeForbidden
}

// IsCSRF reports whether err is a CSRF rejection.
func IsCSRF(err error) bool {
	var apiErr *httpx.APIError
	return errors.As(err, &apiErr) && apiErr.Code == httpx.ErrorCodeInvalidCSRFToken
}

func hasStatus(err error, status int) bool {
	var apiErr *httpx.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
