package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the platform role carried in the backend-issued token.
type Role string

const (
	RoleDonor   Role = "donor"
	RoleStudent Role = "student"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// CanModerate reports whether the role may create, delete, and triage
// student records.
func (r Role) CanModerate() bool {
	return r == RoleManager || r == RoleAdmin
}

// Claims is the identity the backend encodes into its JWTs. The web
// tier only verifies and reads it; it never issues tokens.
type Claims struct {
	Subject string `json:"sub"`
	Role    Role   `json:"role"`
	jwt.RegisteredClaims
}

// Parse validates a backend token and returns its claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token claims")
	}
	if issuer != "" {
		iss, err := claims.GetIssuer()
		if err != nil || iss != issuer {
			return Claims{}, errors.New("unexpected issuer")
		}
	}
	return *claims, nil
}

// Issue signs a token for tests and local development; production
// tokens come from the backend.
func Issue(subject string, role Role, issuer, key string, ttl time.Duration) (string, error) {
	claims := Claims{
		Subject: subject,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
}
