// middleware/gateway.go
package middleware

import (
	"crypto/subtle"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAuthMiddleware validates the service token the admin gateway sends
// on result-submission and force-resolve routes.
func AdminAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("PICKS_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Fatal("❌ PICKS_SERVICE_TOKEN is not set — service cannot authenticate the admin gateway")
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Printf("🚫 [ADMIN_AUTH] Missing Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token missing",
			})
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			log.Printf("🚫 [ADMIN_AUTH] Malformed Authorization header for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "gateway authentication token must use the Bearer scheme",
			})
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
			log.Printf("❌ [ADMIN_AUTH] Invalid token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid gateway authentication token",
			})
		}

		return c.Next()
	}
}
