package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Roles carried in the access token's "role" claim.
const (
	RoleAdmin     = "ADMIN"
	RolePerformer = "PERFORMER"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated subject, or "" when JWTAuth did not
// run for this route.
func UserID(c echo.Context) string {
	s, _ := c.Get(ctxUserID).(string)
	return s
}

// Role returns the authenticated role, or "".
func Role(c echo.Context) string {
	s, _ := c.Get(ctxRole).(string)
	return s
}

// rateSubject is the user segment of rate-limit keys.
func rateSubject(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}

func deny(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"error":   echo.Map{"code": code, "message": msg},
	})
}

func unauthorized(c echo.Context, msg string) error {
	return deny(c, http.StatusUnauthorized, "UNAUTHORIZED", msg)
}
