package domain

import "time"

// IssuedToken is a signed token and the moment it stops being valid.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenPair is what login and refresh hand back. The access token goes to
// the client body, the refresh token only ever into an httpOnly cookie.
type TokenPair struct {
	Access  IssuedToken `json:"access"`
	Refresh IssuedToken `json:"refresh"`
}
