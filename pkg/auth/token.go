// Package auth models the minimal session token the remote API issues at
// login. The token carries identity and role only; the full profile lives
// in the user slice.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/luminacart/storefront/pkg/enums"
)

// SessionClaims is the typed claim set inside the API-issued JWT.
type SessionClaims struct {
	UserID uuid.UUID      `json:"id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionToken is the decoded identity+role pair plus the raw bearer value
// sent back to the API on authenticated calls.
type SessionToken struct {
	Raw    string
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the token unlocks the back-office route tree.
func (t *SessionToken) IsAdmin() bool {
	return t != nil && t.Role == enums.UserRoleAdmin
}

// DecodeSessionToken extracts the claims from a raw JWT. The signature is
// not verified here; the signing secret never leaves the remote API and the
// token is only trusted after the API accepts it on a session check.
func DecodeSessionToken(raw string) (*SessionToken, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty session token")
	}

	claims := &SessionClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("decode session token: %w", err)
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("session token missing user id")
	}
	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("invalid session role %q", claims.Role)
	}

	return &SessionToken{
		Raw:    raw,
		UserID: claims.UserID,
		Role:   claims.Role,
	}, nil
}
