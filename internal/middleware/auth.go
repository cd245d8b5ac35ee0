package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/rfaria/vendaszap-backend/internal/auth"
)

// Protected rejects requests without a valid Bearer session token and
// stores the authenticated user ID in c.Locals("userID").
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization token",
			})
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userID", claims.UserID)
		return c.Next()
	}
}
