package utils

import (
    "net/http"
    "time"
)

// RefreshCookieName is the cookie under which the refresh token travels.
const RefreshCookieName = "refresh_token"

// NewRefreshCookie builds the httpOnly cookie carrying a refresh token.
// SameSite is strict so the browser never attaches it to cross-site
// requests; Secure is enabled in production environments only so local
// development over plain HTTP keeps working.
func NewRefreshCookie(raw string, exp time.Time, secure bool) *http.Cookie {
    return &http.Cookie{
        Name:     RefreshCookieName,
        Value:    raw,
        Path:     "/",
        Expires:  exp,
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteStrictMode,
    }
}

// ExpiredRefreshCookie returns a cookie that instructs the browser to drop
// the stored refresh token.  Used by logout; there is no server-side
// revocation list, so clearing the client copy is the whole operation.
func ExpiredRefreshCookie(secure bool) *http.Cookie {
    return &http.Cookie{
        Name:     RefreshCookieName,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   secure,
        SameSite: http.SameSiteStrictMode,
    }
}
