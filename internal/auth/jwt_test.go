package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.GenerateToken("user-1", "trader@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}

	if claims.UserID != "user-1" || claims.Email != "trader@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewTokenService("secret-a", time.Hour)
	other := NewTokenService("secret-b", time.Hour)

	token, _ := svc.GenerateToken("user-1", "trader@example.com")

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure with wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, _ := svc.GenerateToken("user-1", "trader@example.com")

	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	if _, err := svc.ValidateToken("not.a.token"); err == nil {
		t.Fatal("expected validation failure for garbage token")
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if err := svc.VerifyPassword(hash, "hunter22"); err != nil {
		t.Fatalf("VerifyPassword failed for correct password: %v", err)
	}

	if err := svc.VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected failure for wrong password")
	}
}
