package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, errHash := HashPassword("s3cret-pass")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestGeneratePasswordUsesUnambiguousAlphabet(t *testing.T) {
	password, errGenerate := GeneratePassword()
	if errGenerate != nil {
		t.Fatalf("generate password: %v", errGenerate)
	}
	if len(password) != generatedPasswordLength {
		t.Fatalf("expected length %d, got %d", generatedPasswordLength, len(password))
	}
	for _, r := range password {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Fatalf("unexpected character %q", r)
		}
	}
}

func TestGenerateTokenRoundTrip(t *testing.T) {
	token, errGenerate := GenerateToken("test-secret", "profile-1", "seller@comptoir.fr", time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}

	claims, errParse := ParseToken("test-secret", token)
	if errParse != nil {
		t.Fatalf("parse token: %v", errParse)
	}
	if claims.Subject != "profile-1" {
		t.Fatalf("expected subject profile-1, got %s", claims.Subject)
	}
	if claims.Email != "seller@comptoir.fr" {
		t.Fatalf("expected email claim, got %s", claims.Email)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, errGenerate := GenerateToken("test-secret", "profile-1", "seller@comptoir.fr", time.Hour)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}
	if _, errParse := ParseToken("other-secret", token); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}

func TestParseTokenRejectsExpiredToken(t *testing.T) {
	token, errGenerate := GenerateToken("test-secret", "profile-1", "seller@comptoir.fr", -time.Minute)
	if errGenerate != nil {
		t.Fatalf("generate token: %v", errGenerate)
	}
	if _, errParse := ParseToken("test-secret", token); !errors.Is(errParse, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", errParse)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, errParse := ParseToken("test-secret", "not-a-jwt"); !errors.Is(errParse, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", errParse)
	}
}
