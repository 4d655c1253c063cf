package auth

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "smartsales", "smartsales", time.Hour)

	token, err := a.GenerateSessionToken("sess-123")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	sid, err := a.ValidateSessionToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if sid != "sess-123" {
		t.Errorf("session id = %q, want sess-123", sid)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	a := NewJWTAuthenticator("secret", "smartsales", "smartsales", time.Hour)
	b := NewJWTAuthenticator("other", "smartsales", "smartsales", time.Hour)

	token, err := a.GenerateSessionToken("sess-123")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.ValidateSessionToken(token); err == nil {
		t.Error("token signed with a different secret validated")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	a := NewJWTAuthenticator("secret", "smartsales", "smartsales", -time.Minute)

	token, err := a.GenerateSessionToken("sess-123")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.ValidateSessionToken(token); err == nil {
		t.Error("expired token validated")
	}
}

func TestSessionTokenGarbage(t *testing.T) {
	a := NewJWTAuthenticator("secret", "smartsales", "smartsales", time.Hour)

	if _, err := a.ValidateSessionToken("not.a.token"); err == nil {
		t.Error("garbage token validated")
	}
}
