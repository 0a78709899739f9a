package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/qoldai/helpdesk/internal/domain"
)

// RequireRole returns a handler that rejects callers whose role is not in
// the allow list. Must run after Middleware.
func RequireRole(allowed ...domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range allowed {
			if role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// RequireStaff allows operators and admins only.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.UserRoleOperator, domain.UserRoleAdmin)
}
