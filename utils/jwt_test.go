package utils

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := NewSessionToken("test-secret", 42, "admin", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	claims, err := ParseSessionToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("role = %q, want admin", claims.Role)
	}
}

func TestSessionTokenRejections(t *testing.T) {
	token, err := NewSessionToken("test-secret", 7, "user", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}

	if _, err := ParseSessionToken("wrong-secret", token); err == nil {
		t.Error("token accepted under the wrong secret")
	}
	if _, err := ParseSessionToken("test-secret", "not.a.token"); err == nil {
		t.Error("malformed token accepted")
	}

	expired, err := NewSessionToken("test-secret", 7, "user", -time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	if _, err := ParseSessionToken("test-secret", expired); err == nil {
		t.Error("expired token accepted")
	}
}
