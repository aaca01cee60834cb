package utils

import "golang.org/x/crypto/bcrypt"

// HashCredential returns the bcrypt hash of a secret (password or one-time
// code) using the given cost. Plaintext secrets are never persisted; every
// stored credential goes through this function first.
func HashCredential(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyCredential compares a bcrypt hash against a plaintext candidate.
// It never fails on malformed input; any mismatch or bad hash is false.
func VerifyCredential(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
