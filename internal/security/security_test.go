package security

import (
	"errors"
	"testing"
	"time"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, errSign := GenerateAdminToken("secret", 7, "founder", "viewer", "sess-1", time.Hour)
	if errSign != nil {
		t.Fatalf("sign: %v", errSign)
	}
	claims, errParse := ParseAdminToken("secret", token)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.AdminID != 7 || claims.Username != "founder" || claims.Role != "viewer" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.SessionID() != "sess-1" {
		t.Fatalf("expected session id, got %q", claims.SessionID())
	}
}

func TestParseAdminTokenRejectsWrongSecret(t *testing.T) {
	token, _ := GenerateAdminToken("secret", 1, "a", "founder", "s", time.Hour)
	if _, errParse := ParseAdminToken("other", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", errParse)
	}
}

func TestParseAdminTokenExpired(t *testing.T) {
	token, _ := GenerateAdminToken("secret", 1, "a", "founder", "s", -time.Minute)
	if _, errParse := ParseAdminToken("secret", token); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected expired token, got %v", errParse)
	}
}

func TestGenerateAdminTokenRequiresSecret(t *testing.T) {
	if _, errSign := GenerateAdminToken("", 1, "a", "founder", "s", time.Hour); errSign == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, errHash := HashPassword("correct horse")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Fatalf("expected mismatch")
	}
}

func TestValidatePassword(t *testing.T) {
	if !errors.Is(ValidatePassword("short"), ErrWeakPassword) {
		t.Fatalf("expected weak password error")
	}
	if errValidate := ValidatePassword("long enough"); errValidate != nil {
		t.Fatalf("unexpected error: %v", errValidate)
	}
}
