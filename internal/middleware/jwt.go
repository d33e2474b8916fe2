package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/crm-api/internal/service"
    "github.com/iliyamo/crm-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject, email and role claims into the request
// context under "user_id", "email" and "roles".
//
// When verification fails specifically because the access token expired,
// the middleware attempts a transparent refresh: it looks for a refresh
// token in the refresh_token cookie (falling back to the X-Refresh-Token
// header), exchanges it through the session controller, rotates the cookie,
// exposes the new access token to the client via the X-Access-Token
// response header, and lets the request proceed as authenticated under the
// new claims. Any other verification failure, a missing refresh token, or
// a failed refresh rejects the request with 401 so the client restarts the
// login flow.
func JWTAuth(sess *service.Session) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := sess.VerifyAccess(raw)
            if err == nil {
                return proceed(c, next, claims)
            }
            if !errors.Is(err, utils.ErrTokenExpired) {
                // Bad signature, wrong algorithm, malformed — never worth a
                // refresh attempt.
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid token"})
            }

            refreshRaw := refreshTokenFrom(c)
            if refreshRaw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "token expired"})
            }

            _, pair, err := sess.Refresh(c.Request().Context(), refreshRaw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "session expired, please log in again"})
            }

            // Hand the rotated pair back: cookie for the refresh token, a
            // response header for the access token so the client can persist
            // it, and a rewritten Authorization header so anything reading
            // the request downstream sees valid credentials.
            c.SetCookie(utils.NewRefreshCookie(pair.Refresh.Raw, pair.Refresh.Exp, sess.CookieSecure()))
            c.Response().Header().Set("X-Access-Token", pair.Access.Raw)
            c.Request().Header.Set("Authorization", "Bearer "+pair.Access.Raw)

            newClaims, err := sess.VerifyAccess(pair.Access.Raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid token"})
            }
            return proceed(c, next, newClaims)
        }
    }
}

// proceed stores the decoded identity in the context and calls the next
// handler. The roles slice is stored as []string for RequireRole.
func proceed(c echo.Context, next echo.HandlerFunc, claims *utils.Claims) error {
    id, err := claims.UserID()
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid token"})
    }
    c.Set("user_id", id)
    c.Set("email", claims.Email)
    c.Set("roles", claims.Roles)
    return next(c)
}

// refreshTokenFrom pulls a refresh token from the httpOnly cookie, falling
// back to the X-Refresh-Token header for non-browser clients.
func refreshTokenFrom(c echo.Context) string {
    if ck, err := c.Cookie(utils.RefreshCookieName); err == nil && ck.Value != "" {
        return ck.Value
    }
    return strings.TrimSpace(c.Request().Header.Get("X-Refresh-Token"))
}
