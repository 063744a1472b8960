// Package auth guards the administrative API surface.
package auth

import (
	"crypto/subtle"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminToken middleware validates the bearer token on administrative
// routes. The expected token comes from ADMIN_API_TOKEN; when the variable is
// unset the admin surface stays open, which keeps single-operator deployments
// simple.
func RequireAdminToken(c *fiber.Ctx) error {
	expected := os.Getenv("ADMIN_API_TOKEN")
	if expected == "" {
		return c.Next()
	}

	header := c.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid admin token",
		})
	}

	c.Locals("is_admin", true)
	return c.Next()
}
