package middleware

import (
	"strings"

	"ecoms/internal/services"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// BootstrapOrAuth lets requests through without a token while no staff account
// exists, so the first account can be created. After that it behaves as AuthRequired.
func BootstrapOrAuth(authService *services.AuthService) fiber.Handler {
	authRequired := AuthRequired(authService)
	return func(c *fiber.Ctx) error {
		open, err := authService.RegistrationOpen(c.UserContext())
		if err != nil {
			log.WithError(err).Error("failed to check for existing staff accounts")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		}
		if open {
			return c.Next()
		}
		return authRequired(c)
	}
}

// AuthRequired is a Fiber middleware that admits only requests carrying a valid staff token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Info("rejected staff request")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		return c.Next()
	}
}
