package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("secret")
	tok, err := svc.GenerateToken(42, "admin", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := svc.ValidateToken(tok)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "admin" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, _ := NewJWTService("one").GenerateToken(1, "u", "viewer")
	if _, err := NewJWTService("two").ValidateToken(tok); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestTokenExpired(t *testing.T) {
	svc := NewJWTService("secret")
	svc.ttl = -time.Minute
	tok, err := svc.GenerateToken(1, "u", "viewer")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateToken(tok); err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword("hunter2", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("hunter3", hash) {
		t.Fatal("wrong password accepted")
	}
}
