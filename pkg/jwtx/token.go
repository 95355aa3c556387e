package jwtx

import "time"

// Token is a verified token. It is either an AccessToken or a RefreshToken;
// use a type switch or VerifyAccess/VerifyRefresh to get the variant.
type Token interface {
	Type() TokenType
	ID() string
	Expiry() time.Time

	sealed()
}

// AccessToken authorizes API calls on behalf of Subject.
type AccessToken struct {
	Subject   string
	Role      string
	JTI       string
	ExpiresAt time.Time
}

func (AccessToken) Type() TokenType     { return TypeAccess }
func (t AccessToken) ID() string        { return t.JTI }
func (t AccessToken) Expiry() time.Time { return t.ExpiresAt }
func (AccessToken) sealed()             {}

// RefreshToken is exchanged for a new token pair. It carries no role; the
// role is looked up again on every refresh.
type RefreshToken struct {
	Subject   string
	JTI       string
	ExpiresAt time.Time
}

func (RefreshToken) Type() TokenType     { return TypeRefresh }
func (t RefreshToken) ID() string        { return t.JTI }
func (t RefreshToken) Expiry() time.Time { return t.ExpiresAt }
func (RefreshToken) sealed()             {}

// Remaining returns how long tok stays valid after now, or zero once it has expired.
func Remaining(tok Token, now time.Time) time.Duration {
	d := tok.Expiry().Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
