package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier hashes and checks admin passwords with bcrypt.
type PasswordVerifier struct {
	cost int
	// dummy is compared against when no account exists so that unknown emails
	// take as long as wrong passwords.
	dummy []byte
}

// NewPasswordVerifier creates a verifier. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewPasswordVerifier(cost int) *PasswordVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("amp-unknown-account"), cost)
	return &PasswordVerifier{cost: cost, dummy: dummy}
}

// Hash hashes a password with the configured bcrypt cost.
func (v *PasswordVerifier) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares a plaintext password against a stored hash.
// An empty or malformed hash is reported as a mismatch.
func (v *PasswordVerifier) Verify(hash, password string) bool {
	if hash == "" {
		v.VerifyMissing(password)
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyMissing burns one comparison for an account that does not exist.
func (v *PasswordVerifier) VerifyMissing(password string) {
	if len(v.dummy) == 0 {
		return
	}
	_ = bcrypt.CompareHashAndPassword(v.dummy, []byte(password))
}
