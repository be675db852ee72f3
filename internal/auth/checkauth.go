package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mnuddindev/foodgram/pkg/utils"
)

// RequireAuth rejects anonymous callers. It must run after Authenticate.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CallerID(c) == 0 {
			return utils.SendError(c, utils.NewError(fiber.StatusUnauthorized, "Authentication credentials were not provided"))
		}
		return c.Next()
	}
}

// CallerID returns the authenticated user id, or 0 for anonymous callers.
func CallerID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}

// CallerClaims returns the verified token claims of the request, if any.
func CallerClaims(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(claimsLocal).(*Claims)
	return claims
}
