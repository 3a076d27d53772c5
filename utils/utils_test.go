package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost

	hash, err := HashPassword("fastball")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !CheckPasswordHash("fastball", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPasswordHash("curveball", hash) {
		t.Error("expected wrong password to be rejected")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Coach@Team.COM "); got != "coach@team.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
