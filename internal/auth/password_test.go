package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash equals plaintext")
	}

	if !CheckPassword("secret123", hash) {
		t.Fatal("CheckPassword() = false for correct password")
	}
	if CheckPassword("secret124", hash) {
		t.Fatal("CheckPassword() = true for wrong password")
	}
}

func TestHashPasswordUsesConfiguredCost(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != PasswordHashCost {
		t.Fatalf("cost = %d, want %d", cost, PasswordHashCost)
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	b, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if strings.Compare(a, b) == 0 {
		t.Fatal("two hashes of the same password are identical, expected unique salts")
	}
}
