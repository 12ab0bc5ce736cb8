// Package auth holds the two credential schemes of the server: HS256 admin
// JWTs carrying a role claim, and opaque per-app bearer tokens stored as
// digests.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the caller capability passed into management operations.
type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether r grants management access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

var (
	ErrInvalidToken     = errors.New("invalid admin token")
	ErrLifetimeExceeded = errors.New("admin token lifetime exceeds the server limit")
)

// Claims carries the registered claims plus the caller role.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

func GenerateAdminToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Role: RoleAdmin,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseRole validates tokenString and returns its role claim. Only HS256
// signatures are accepted.
func ParseRole(tokenString string, secretKey []byte) (Role, error) {
	return ParseRoleWithMaxLifetime(tokenString, secretKey, 0)
}

// ParseRoleWithMaxLifetime is ParseRole that also rejects tokens whose
// exp - iat exceeds maxLifetime. Zero disables the check.
func ParseRoleWithMaxLifetime(tokenString string, secretKey []byte, maxLifetime time.Duration) (Role, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return RoleNone, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid {
		return RoleNone, ErrInvalidToken
	}

	if maxLifetime > 0 {
		if claims.IssuedAt == nil {
			return RoleNone, errors.Join(ErrInvalidToken, ErrLifetimeExceeded)
		}
		if claims.ExpiresAt.Sub(claims.IssuedAt.Time) > maxLifetime {
			return RoleNone, errors.Join(ErrInvalidToken, ErrLifetimeExceeded)
		}
	}

	return claims.Role, nil
}
