package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for new password hashes.
const HashCost = 12

// HashPassword hashes a plaintext password with a fresh random salt. The
// returned blob embeds the salt and cost, so it is self-describing and can be
// stored as-is.
func HashPassword(plaintext string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// CheckPassword reports whether plaintext matches the stored hash. The digest
// comparison is constant time. A malformed hash counts as a mismatch, never
// an error.
func CheckPassword(plaintext string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}
