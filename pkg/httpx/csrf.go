package httpx

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tabgate/pkg/cryptox"
	"github.com/aussiebroadwan/tabgate/pkg/slogx"
)

const (
	// CSRFHeader is the header clients echo the token back in.
	CSRFHeader = "X-CSRF-Token"
	// CSRFHeaderAlt is accepted for clients that follow the XSRF naming.
	CSRFHeaderAlt = "X-XSRF-Token"

	csrfCookieSecure   = "__Host-csrf"
	csrfCookieInsecure = "csrf"
)

var errCSRFMissing = errors.New("csrf token missing")

// CSRF implements the double-submit cookie pattern.
//
// A token is "<random>.<mac>" where mac is HMAC-SHA256 over the session id
// and the random part. The token is set as a cookie and returned to the
// client, which echoes it in CSRFHeader on unsafe requests. A request passes
// when the header equals the cookie and the mac verifies for its session id.
type CSRF struct {
	secret []byte

	// SessionCookie marks a request as carrying an ambient browser
	// credential. Requests without it are exempt.
	SessionCookie string

	// Secure sets the Secure attribute and the __Host- cookie prefix.
	Secure bool

	// SessionID binds tokens to a client. Defaults to IPKeyExtractor; set it to
	// ClientIP.Key behind a reverse proxy.
	SessionID KeyExtractor
}

func NewCSRF(secret, sessionCookie string, secure bool) *CSRF {
	return &CSRF{
		secret:        []byte(secret),
		SessionCookie: sessionCookie,
		Secure:        secure,
		SessionID:     IPKeyExtractor,
	}
}

// CookieName is "__Host-csrf" when Secure, "csrf" otherwise; browsers reject
// __Host- cookies without the Secure attribute.
func (c *CSRF) CookieName() string {
	if c.Secure {
		return csrfCookieSecure
	}
	return csrfCookieInsecure
}

// Issue generates a token for r, sets it as the CSRF cookie on w and returns it.
func (c *CSRF) Issue(w http.ResponseWriter, r *http.Request) (string, error) {
	random, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	token := random + "." + c.mac(c.SessionID(r), random)

	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// Verify checks the submitted header against the cookie and the session id.
func (c *CSRF) Verify(r *http.Request) error {
	header := r.Header.Get(CSRFHeader)
	if header == "" {
		header = r.Header.Get(CSRFHeaderAlt)
	}
	cookie, err := r.Cookie(c.CookieName())
	if header == "" || err != nil || cookie.Value == "" {
		return errCSRFMissing
	}

	if subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
		return errors.New("csrf header does not match cookie")
	}

	random, mac, ok := strings.Cut(cookie.Value, ".")
	if !ok || random == "" {
		return errors.New("csrf token malformed")
	}
	expected := c.mac(c.SessionID(r), random)
	if !hmac.Equal([]byte(mac), []byte(expected)) {
		return errors.New("csrf token not valid for this session")
	}
	return nil
}

// Exempt reports whether r skips CSRF verification: safe methods, bearer
// authenticated requests and requests without the session cookie.
func (c *CSRF) Exempt(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	if _, ok := BearerToken(r); ok {
		return true
	}
	if _, err := r.Cookie(c.SessionCookie); err != nil {
		return true
	}
	return false
}

// Middleware rejects non-exempt requests that fail Verify with ErrCSRF.
func (c *CSRF) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c.Exempt(r) {
				next.ServeHTTP(w, r)
				return
			}

			if err := c.Verify(r); err != nil {
				slogx.FromContext(r.Context()).Debug("csrf check failed",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
				)
				ErrCSRF.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (c *CSRF) mac(sessionID, random string) string {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(sessionID))
	h.Write([]byte("!"))
	h.Write([]byte(random))
	return hex.EncodeToString(h.Sum(nil))
}
