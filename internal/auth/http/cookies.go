package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabgate/internal/auth/domain"
)

const (
	RefreshCookieName = "refreshToken"
	RefreshCookiePath = "/auth/refresh-token"
)

var errNoRefreshCookie = errors.New("no refresh token cookie")

// CookieCipher seals cookie values. *cryptox.Cipher implements it.
type CookieCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(envelope string) (string, error)
}

// RefreshCookie stores the refresh token in an httpOnly cookie, encrypted
// with Cipher. Browsers only send it to RefreshCookiePath.
type RefreshCookie struct {
	Cipher CookieCipher
	Secure bool
}

// Set writes tok as the refresh cookie, expiring with the token.
func (c *RefreshCookie) Set(w http.ResponseWriter, tok domain.IssuedToken) error {
	envelope, err := c.Cipher.Encrypt(tok.Token)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    envelope,
		Path:     RefreshCookiePath,
		Expires:  tok.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Read returns the decrypted refresh token from r. A missing cookie and an
// envelope that fails to decrypt are both errors.
func (c *RefreshCookie) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", errNoRefreshCookie
	}
	return c.Cipher.Decrypt(cookie.Value)
}

// Clear expires the refresh cookie.
func (c *RefreshCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     RefreshCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
