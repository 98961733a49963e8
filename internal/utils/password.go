package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when callers pass a cost of zero.
const DefaultBcryptCost = 10

// ErrPasswordTooShort is returned for passwords under six characters.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

// HashPassword validates the plain password and returns its bcrypt hash.
func HashPassword(plain string, cost int) (string, error) {
	if len(plain) < 6 {
		return "", ErrPasswordTooShort
	}
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
