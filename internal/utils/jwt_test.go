package utils

import (
	"errors"
	"testing"
	"time"
)

const (
	testAccessSecret  = "access-secret-for-tests"
	testRefreshSecret = "refresh-secret-for-tests"
)

func TestNewTokenRoundTrip(t *testing.T) {
	tok, err := NewToken(testAccessSecret, 42, "rep@example.com", []string{"SALES_REP"}, time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	claims, err := ParseToken(tok.Raw, testAccessSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
	if claims.Email != "rep@example.com" {
		t.Errorf("email = %q, want rep@example.com", claims.Email)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "SALES_REP" {
		t.Errorf("roles = %v, want [SALES_REP]", claims.Roles)
	}
	if claims.ID == "" {
		t.Error("jti claim is empty")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	tok, err := NewToken(testAccessSecret, 1, "a@b.c", nil, time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	// A token signed with the access secret must never verify against the
	// refresh secret, and the failure must not be reported as expiry.
	if _, err := ParseToken(tok.Raw, testRefreshSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	tok, err := NewToken(testAccessSecret, 1, "a@b.c", nil, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if _, err := ParseToken(tok.Raw, testAccessSecret); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseTokenExpiredWrongSecret(t *testing.T) {
	tok, err := NewToken("forged-secret", 1, "a@b.c", nil, -time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	// A token that is both expired and wrongly signed must report
	// ErrTokenInvalid: the refresh fallback only opens for expiry, and it
	// must never open for a forged token.
	if _, err := ParseToken(tok.Raw, testAccessSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ParseToken(raw, testAccessSecret); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ParseToken(%q) err = %v, want ErrTokenInvalid", raw, err)
		}
	}
}

func TestNewTokenDistinctIssuances(t *testing.T) {
	a, err := NewToken(testAccessSecret, 7, "x@y.z", []string{"USER"}, time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	b, err := NewToken(testAccessSecret, 7, "x@y.z", []string{"USER"}, time.Minute)
	if err != nil {
		t.Fatalf("NewToken: %v", err)
	}
	if a.Raw == b.Raw {
		t.Error("two issuances for the same user produced identical tokens")
	}
}

func TestClaimsUserIDBadSubject(t *testing.T) {
	c := &Claims{}
	c.Subject = "not-a-number"
	if _, err := c.UserID(); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}
