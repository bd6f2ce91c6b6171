// Package auth holds the credential and access primitives used by the
// franchisee back office: bcrypt password hashing, the session-backed
// RequireAuth middleware, and signed short-lived resume links.
//
// WHY BCRYPT?
// bcrypt is deliberately slow and salts every hash, so a leaked users table
// cannot be reversed with precomputed tables. The salt and cost travel inside
// the hash string:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for stored passwords.
const defaultCost = 12

// Password length limits enforced at registration. bcrypt ignores
// everything past 72 bytes, so longer input is rejected outright.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// ErrInvalidCredentials is returned by Verify for a wrong password.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// PasswordService hashes and checks franchisee passwords.
//
// It's a struct so tests can inject a low cost; cost 4 hashes in
// milliseconds instead of ~250ms.
type PasswordService struct {
	cost int
	// dummy is compared against when the username does not exist, so a
	// failed login costs the same whether or not the account is real.
	dummy []byte
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return NewPasswordServiceWithCost(defaultCost)
}

// NewPasswordServiceWithCost is for tests in other packages. Never use a
// cost below 10 in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &PasswordService{cost: cost, dummy: dummy}
}

// CheckPolicy reports whether plaintext is acceptable as a new password.
func CheckPolicy(plaintext string) error {
	if utf8.RuneCountInString(plaintext) < MinPasswordLength {
		return fmt.Errorf("auth: password must be at least %d characters", MinPasswordLength)
	}
	if len(plaintext) > MaxPasswordBytes {
		return fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}
	return nil
}

// Hash returns the bcrypt hash to store in users.password.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plaintext against a stored hash. It returns
// ErrInvalidCredentials on mismatch. The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	return fmt.Errorf("auth: comparing password hash: %w", err)
}

// VerifyMissing burns one bcrypt comparison for a username that does not
// exist and always returns ErrInvalidCredentials.
func (p *PasswordService) VerifyMissing(plaintext string) error {
	_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(plaintext))
	return ErrInvalidCredentials
}
