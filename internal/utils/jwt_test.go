package utils

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndValidate(t *testing.T) {
	iss := NewTokenIssuer("secret", "campaign-companion", "clients", time.Hour)
	tok, err := iss.Issue("u1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := iss.Validate(tok.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if id.UserID != "u1" || id.Username != "alice" {
		t.Fatalf("identity = %+v", id)
	}
	if tok.Exp.Before(time.Now().Add(59 * time.Minute)) {
		t.Fatalf("exp = %v, want about an hour from now", tok.Exp)
	}
}

func TestValidateRejects(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	iss := NewTokenIssuer("secret", "campaign-companion", "clients", time.Minute).WithClock(func() time.Time { return start })
	tok, err := iss.Issue("u1", "alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name      string
		validator *TokenIssuer
		raw       string
	}{
		{"at expiry", iss.WithClock(func() time.Time { return start.Add(time.Minute) }), tok.Token},
		{"after expiry", iss.WithClock(func() time.Time { return start.Add(time.Minute + time.Millisecond) }), tok.Token},
		{"wrong secret", NewTokenIssuer("other", "campaign-companion", "clients", time.Minute).WithClock(func() time.Time { return start }), tok.Token},
		{"wrong issuer", NewTokenIssuer("secret", "someone-else", "clients", time.Minute).WithClock(func() time.Time { return start }), tok.Token},
		{"wrong audience", NewTokenIssuer("secret", "campaign-companion", "others", time.Minute).WithClock(func() time.Time { return start }), tok.Token},
		{"garbage", iss, "not.a.token"},
		{"tampered", iss, tok.Token + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.validator.Validate(tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("got %v, want ErrInvalidToken", err)
			}
		})
	}

	if _, err := iss.WithClock(func() time.Time { return start.Add(59 * time.Second) }).Validate(tok.Token); err != nil {
		t.Fatalf("just before expiry: %v", err)
	}
}
