package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredential marks a failed secret comparison.
var ErrInvalidCredential = errors.New("invalid credential")

// Verifier is the credential-checking capability. It is passed explicitly
// into the services that need it rather than hanging off request state, so
// the hashing scheme stays a swappable implementation detail.
type Verifier interface {
	Hash(secret string) (string, error)
	Verify(hash, secret string) error
}

// BcryptVerifier implements Verifier with bcrypt at the default cost.
type BcryptVerifier struct{}

// Hash derives a storable hash from the secret.
func (BcryptVerifier) Hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares a stored hash with the presented secret.
func (BcryptVerifier) Verify(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrInvalidCredential
	}
	return nil
}
