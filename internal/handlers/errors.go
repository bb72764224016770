package handlers

import (
	"errors"
	"fmt"

	apperrors "herboscope/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler translates errors returned by handlers into JSON responses.
// Application errors keep their message; internal errors are logged and
// answered with a generic one.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		status := apperrors.HTTPStatus(err)
		if status >= fiber.StatusInternalServerError && apperrors.CodeOf(err) == apperrors.CodeInternal {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(status).JSON(fiber.Map{"message": "Internal server error"})
		}

		body := fiber.Map{"message": err.Error()}
		var ae *apperrors.AppError
		if errors.As(err, &ae) {
			body["message"] = ae.Message
			if ae.Err != nil && status == fiber.StatusBadRequest {
				body["error"] = ae.Err.Error()
			}
		}
		return c.Status(status).JSON(body)
	}
}

// badBody answers a request whose body could not be decoded.
func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validationFailed answers a request that failed struct validation.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badBody(c, err)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
