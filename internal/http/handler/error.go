package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"ariesctl/internal/admin"
	"ariesctl/internal/connections"
	"ariesctl/internal/http/middleware"
	"ariesctl/internal/protocol"
	"ariesctl/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// writeControllerError maps connection and admin API failures to HTTP responses.
func writeControllerError(c *fiber.Ctx, err error) error {
	var urlErr *url.Error
	switch {
	case errors.Is(err, protocol.ErrConnectionIDRequired):
		return writeError(c, fiber.StatusBadRequest, "CONNECTION_ID_REQUIRED", "connection id is required")
	case errors.Is(err, connections.ErrConnectionNotFound):
		return writeError(c, fiber.StatusNotFound, "CONNECTION_NOT_FOUND", "connection not found")
	case errors.Is(err, protocol.ErrConnectionNotActive):
		return writeError(c, fiber.StatusConflict, "CONNECTION_NOT_ACTIVE", "connection is not active")
	}
	if se, ok := admin.IsStatusError(err); ok {
		return writeError(c, fiber.StatusBadGateway, "ADMIN_API_ERROR",
			fmt.Sprintf("admin api returned status %d", se.StatusCode))
	}
	if errors.As(err, &urlErr) {
		return writeError(c, fiber.StatusBadGateway, "ADMIN_UNREACHABLE", "admin api unreachable")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// writeTestRunError maps test run lookups to HTTP responses.
func writeTestRunError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "test run not found")
	case errors.Is(err, service.ErrNoResponse):
		return writeError(c, fiber.StatusNotFound, "NO_RESPONSE", "test run has no archived response")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
