package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"ecoms/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// writeError maps a service error onto an HTTP status and the standard error body.
func writeError(c *fiber.Ctx, err error) error {
	status, message := fiber.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		status, message = fiber.StatusNotFound, "Order not found"
	case errors.Is(err, services.ErrProductNotFound):
		status, message = fiber.StatusNotFound, "Product not found"
	case errors.Is(err, services.ErrInsufficientStock):
		status, message = fiber.StatusConflict, "Insufficient stock"
	case errors.Is(err, services.ErrDuplicateProductInOrder):
		status, message = fiber.StatusConflict, "Duplicate product in order"
	case errors.Is(err, services.ErrInvalidOrderOperation):
		status, message = fiber.StatusBadRequest, "Invalid operation"
	case errors.Is(err, services.ErrAccountExists):
		status, message = fiber.StatusConflict, "Registration failed"
	case errors.Is(err, services.ErrInvalidCredentials):
		status, message = fiber.StatusUnauthorized, "Authentication failed"
	}

	entry := log.WithError(err).WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"status": status,
	})
	if status == fiber.StatusInternalServerError {
		entry.Error("request failed")
		return c.Status(status).JSON(fiber.Map{"message": message})
	}
	entry.Info("request rejected")
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// validationFailed reports every failed field of a validator error.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badRequest(c, "Validation failed", err)
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		errorMessages[e.Namespace()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// idParam parses the ":id" route parameter as a positive integer key.
func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Params("id"))
	}
	return uint(id), nil
}

// intQuery parses an integer query parameter, returning def when it is absent.
func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

func unescapedParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if value, err := url.PathUnescape(raw); err == nil {
		return value
	}
	return raw
}
