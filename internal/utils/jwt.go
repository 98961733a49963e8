package utils // helpers for token signing and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are carried inside the signed JWT. The subject of the
// token is the user ID; username and role ride along so the client can
// render the session without an extra round trip.
type TokenClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// ErrInvalidToken is returned when a token fails signature or claim
// validation for any reason.
var ErrInvalidToken = errors.New("invalid or expired token")

// NewToken builds and signs an HS256 JWT for a user. ttl controls how
// long the session lasts; the back office issues week-long tokens since
// agents stay signed in on shared office machines.
func NewToken(secret, userID, username, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := TokenClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of a token produced by
// NewToken and returns its claims. Tokens signed with any method other
// than HS256 are rejected.
func ParseToken(secret, tokenStr string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
