package auth

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret")

	token, err := issuer.Issue(42, "dr.salma", RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected uid 42, got %d", claims.UserID)
	}
	if claims.Username != "dr.salma" {
		t.Errorf("expected username dr.salma, got %s", claims.Username)
	}
	if claims.Role != RoleDoctor {
		t.Errorf("expected role doctor, got %s", claims.Role)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewIssuer("secret-a").Issue(1, "admin", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = NewIssuer("secret-b").Verify(token)
	if err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
	if !strings.Contains(err.Error(), "invalid session token") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestVerify_ExpiredTokenHasDistinctMessage(t *testing.T) {
	issued := time.Now().Add(-25 * time.Hour)
	past := NewIssuerWithClock("test-secret", func() time.Time { return issued })

	token, err := past.Issue(1, "admin", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = NewIssuer("test-secret").Verify(token)
	if err == nil {
		t.Fatal("expected expired-token failure")
	}
	if !strings.Contains(err.Error(), "session expired") {
		t.Errorf("expected distinct expiry message, got: %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	if _, err := NewIssuer("test-secret").Verify("not.a.token"); err == nil {
		t.Fatal("expected failure for malformed token")
	}
}
