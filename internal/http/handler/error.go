package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"despesas/internal/http/middleware"
	"despesas/internal/service"
)

type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiError struct {
	code    string
	message string
}

var statusErrors = map[int]apiError{
	fiber.StatusBadRequest:          {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:            {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:    {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusConflict:            {"CONFLICT", "conflict"},
	fiber.StatusServiceUnavailable:  {"SERVICE_UNAVAILABLE", "dependency unavailable"},
	fiber.StatusInternalServerError: {"INTERNAL_ERROR", "internal server error"},
}

// writeError writes the JSON error envelope. message must be safe for clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// ErrorHandler maps fiber and pipeline errors onto the JSON error envelope.
// Internal error text never reaches the client.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			status = fe.Code
		case errors.Is(err, service.ErrBusy):
			return writeError(c, fiber.StatusConflict, "JOB_RUNNING", "a pipeline job is already running")
		case errors.Is(err, service.ErrStoreUnavailable):
			status = fiber.StatusServiceUnavailable
		}

		e, ok := statusErrors[status]
		if !ok {
			e = apiError{"ERROR", utils.StatusMessage(status)}
		}
		return writeError(c, status, e.code, e.message)
	}
}
