package middleware

// identity.go provides helpers shared across middleware and handlers
// for reading the authenticated identity that JWTAuth stored in the
// Echo context.

import "github.com/labstack/echo/v4"

// Actor returns the authenticated caller's identity (the token's
// subject), or "unknown" when none is present.  Audit entries and
// rate-limit keys use this value.
func Actor(c echo.Context) string {
	if v, ok := c.Get("actor").(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// Role returns the caller's role claim, or the empty string when the
// request is unauthenticated.
func Role(c echo.Context) string {
	if v, ok := c.Get("role").(string); ok {
		return v
	}
	return ""
}
