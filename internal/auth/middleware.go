package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/qoldai/helpdesk/internal/domain"
)

// Locals keys set by the middleware.
const (
	LocalUserID = "auth_user_id"
	LocalRole   = "auth_role"
)

// Middleware returns a Fiber handler that requires a valid bearer token and
// stores the caller's identity in locals.
func Middleware(issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals(LocalUserID, claims.SubjectID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// UserID reads the authenticated user id from locals.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// Role reads the authenticated role from locals.
func Role(c *fiber.Ctx) domain.UserRole {
	role, _ := c.Locals(LocalRole).(domain.UserRole)
	return role
}
