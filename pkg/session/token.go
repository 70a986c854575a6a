package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/formio/formio.go/pkg/constants"
)

// Ref is an `{_id: ...}` reference embedded in token claims.
type Ref struct {
	ID string `json:"_id"`
}

// Claims is the payload the form store signs into x-jwt-token.
type Claims struct {
	jwt.RegisteredClaims
	User    *Ref `json:"user,omitempty"`
	Form    *Ref `json:"form,omitempty"`
	Project *Ref `json:"project,omitempty"`
}

// UserID returns the id of the user the token was issued to.
func (c *Claims) UserID() string {
	if c.User == nil {
		return ""
	}
	return c.User.ID
}

// Inspect decodes token without checking its signature, which only the
// server can do. A token that does not decode yields ErrBadToken; one whose
// exp lies before now yields ErrSessionExpired.
func Inspect(token string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrBadToken, err)
	}

	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return claims, fmt.Errorf("%w: token expired at %s", constants.ErrSessionExpired, claims.ExpiresAt.Format(time.RFC3339))
	}

	return claims, nil
}
