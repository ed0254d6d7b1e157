package auth

import "github.com/golang-jwt/jwt/v5"

// Claims identify the application user calling the internal API.
// The gateway trusts the upstream application to have authenticated them.
type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"user_id"`
}
