package middleware

import (
	"strings"

	"herboscope/internal/models"
	"herboscope/internal/services"
	apperrors "herboscope/pkg/errors"
	"herboscope/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// userKey is the request-local key the authenticated user is stored under.
const userKey = "user"

// AuthRequired is a Fiber middleware to check for a valid bearer token and
// resolve the account it was issued for.
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
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		user, err := authService.VerifyToken(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			if !apperrors.IsCode(err, apperrors.CodeUnauthorized) {
				return err
			}
			logger.L().Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by AuthRequired, or nil when the
// route is not protected.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}
