// ABOUTME: Access token claim inspection without signature verification
// ABOUTME: Drives expiry-based proactive refresh decisions client-side

package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshSkew is how close to expiry a token may get before NeedsRefresh
// reports true.
const refreshSkew = 5 * time.Minute

// TokenClaims holds the subset of JWT claims the client cares about.
// The signature is deliberately not verified here: validating the token
// is the server's job, and the client treats a 401 as the final word.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken decodes the claims of an access token without verifying
// its signature.
func InspectToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}

	out := &TokenClaims{}

	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	return out, nil
}

// NeedsRefresh reports whether the held access token expires within the
// skew window. An absent or unreadable token reports false; acquisition
// and recovery are the boot and 401-retry paths' concern, not this one's.
func (m *Manager) NeedsRefresh() bool {
	token := m.AccessToken()
	if token == "" {
		return false
	}

	claims, err := InspectToken(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return false
	}

	return time.Until(claims.ExpiresAt) <= refreshSkew
}
