package service

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier hashes and checks credentials under a storage mode fixed
// at construction. The mode must match the one used when the account was
// registered: a credential written in one mode never verifies in the other,
// so flipping the mode on a live system locks out every existing account.
type PasswordVerifier struct {
	hashed bool
}

// NewPasswordVerifier builds a verifier. hashed selects bcrypt storage;
// false stores the plaintext (legacy mode, default).
func NewPasswordVerifier(hashed bool) PasswordVerifier {
	return PasswordVerifier{hashed: hashed}
}

// Hash produces the credential to store for password.
func (v PasswordVerifier) Hash(password string) (string, error) {
	if !v.hashed {
		return password, nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether submitted matches the stored credential. Plain mode
// compares in constant time. Bcrypt verification is deliberately slow;
// callers must not assume sub-millisecond latency.
func (v PasswordVerifier) Verify(submitted, stored string) bool {
	if !v.hashed {
		return len(submitted) == len(stored) &&
			subtle.ConstantTimeCompare([]byte(submitted), []byte(stored)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)) == nil
}
