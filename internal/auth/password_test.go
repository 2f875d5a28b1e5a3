package auth

import (
	"bytes"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("pw1", hash) {
		t.Error("correct password did not verify")
	}
	if CheckPassword("pw2", hash) {
		t.Error("wrong password verified")
	}
}

func TestHashPassword_SaltUniqueness(t *testing.T) {
	h1, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if bytes.Equal(h1, h2) {
		t.Error("two hashes of the same password are identical (salt reuse)")
	}
	if !CheckPassword("same password", h1) || !CheckPassword("same password", h2) {
		t.Error("both hashes should verify against the original password")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("pw", []byte("not a bcrypt blob")) {
		t.Error("malformed hash verified")
	}
	if CheckPassword("pw", nil) {
		t.Error("nil hash verified")
	}
}
