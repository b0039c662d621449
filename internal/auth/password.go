// Package auth provides the credential store (bcrypt password hashing and
// strength policy), the JWT token issuer/verifier, and the permission
// hierarchy used by every protected operation.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength caps plaintext passwords before hashing.
const MaxPasswordLength = 128

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt and a configurable
// cost. A fresh random salt is generated per hash by bcrypt itself.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Non-positive cost falls back to
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash hashes the password. Passwords longer than MaxPasswordLength are
// rejected before touching bcrypt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", fmt.Errorf("password exceeds %d characters", MaxPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. The comparison is done by
// bcrypt's own constant-time routine; the plaintext is never logged.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckStrength validates the password policy: 8 to 128 characters with at
// least one letter and one digit. The first failing rule wins, in a fixed
// order: missing or too short, too long, no letter, no digit. The returned
// reason is empty when the password is acceptable.
func CheckStrength(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return false, fmt.Sprintf("password must not exceed %d characters", MaxPasswordLength)
	}
	hasLetter := false
	hasDigit := false
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter {
		return false, "password must contain at least one letter"
	}
	if !hasDigit {
		return false, "password must contain at least one digit"
	}
	return true, ""
}
