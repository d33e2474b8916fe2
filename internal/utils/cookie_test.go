package utils

import (
	"testing"
	"time"
)

func TestNewRefreshCookie(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour)
	ck := NewRefreshCookie("tok", exp, true)
	if ck.Name != RefreshCookieName {
		t.Errorf("name = %q", ck.Name)
	}
	if ck.Value != "tok" || !ck.HttpOnly || !ck.Secure || ck.Path != "/" {
		t.Errorf("cookie attributes wrong: %+v", ck)
	}
	if !ck.Expires.Equal(exp) {
		t.Errorf("expires = %v, want %v", ck.Expires, exp)
	}
}

func TestExpiredRefreshCookie(t *testing.T) {
	ck := ExpiredRefreshCookie(false)
	if ck.Value != "" || ck.MaxAge >= 0 {
		t.Errorf("expired cookie does not clear: %+v", ck)
	}
}
