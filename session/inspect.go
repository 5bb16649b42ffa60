package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotAToken is returned by [InspectAccessToken] for strings that do not
// decode as a JWT.
var ErrNotAToken = errors.New("access token is not a decodable JWT")

// TokenInfo is display metadata decoded from an access token without
// signature verification. It exists so a client can show "signed in as …"
// and an expiry hint; it carries no authority. Whether the token is actually
// still honored is decided by the planner service, never locally.
type TokenInfo struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// InspectAccessToken decodes the claims of an access token without
// validating its signature or expiry.
func InspectAccessToken(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAToken, err)
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
