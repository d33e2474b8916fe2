package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds at least one of the specified roles.  The
// roles accepted correspond to the values stored in the JWT's "roles"
// claim.  If the caller's role set does not intersect the allowed set,
// the request is aborted with a 403 Forbidden response.  It assumes a
// previous middleware has extracted the roles into the context under
// the key "roles".
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant‑time lookups.  The map
    // value is a boolean and is always true when present.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Retrieve the role set from context.  It should have been
            // stored by JWTAuth middleware as a []string.  If not
            // present or of wrong type, treat as missing.
            held, ok := c.Get("roles").([]string)
            if ok {
                for _, r := range held {
                    if allowed[r] {
                        // Intersection non-empty: call the next handler.
                        return next(c)
                    }
                }
            }
            // Roles missing or none allowed: return 403.
            return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "forbidden"})
        }
    }
}
