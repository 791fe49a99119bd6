package auth

import (
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewTokenService("s3cret", "aigreeter")

	token, err := svc.Issue("lobby", "kiosk-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "lobby" || claims.Kiosk != "kiosk-1" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	svc := NewTokenService("s3cret", "aigreeter")

	other, _ := NewTokenService("other", "aigreeter").Issue("lobby", "", time.Hour)
	if _, err := svc.Validate(other); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for wrong secret, got %v", err)
	}

	wrongIssuer, _ := NewTokenService("s3cret", "someone-else").Issue("lobby", "", time.Hour)
	if _, err := svc.Validate(wrongIssuer); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for wrong issuer, got %v", err)
	}

	expired, _ := svc.Issue("lobby", "", -time.Minute)
	if _, err := svc.Validate(expired); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := svc.Validate("not-a-token"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestDisabled(t *testing.T) {
	svc := NewTokenService("", "aigreeter")
	if svc.Enabled() {
		t.Error("Expected service without secret to be disabled")
	}
	if _, err := svc.Issue("x", "", time.Minute); err == nil {
		t.Error("Expected Issue to fail without a secret")
	}
}
