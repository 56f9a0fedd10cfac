package utils

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse creates a standardized error response. Unexpected failures
// (5xx) are reported to Sentry when it is configured; the wire message stays
// generic.
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	if status >= fiber.StatusInternalServerError && err != nil {
		sentry.CaptureException(err)
	}
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil && status < fiber.StatusInternalServerError {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// ParseUint safely parses a string to uint, returning 0 on malformed input
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}
