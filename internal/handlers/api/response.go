package api

import (
	"github.com/gofiber/fiber/v3"
)

// Envelope statuses.
const (
	statusOK    = "ok"
	statusError = "error"
)

// envelope is the shape of every JSON API response except analyze, which
// flattens the verdict next to Status.
type envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(envelope{Status: statusOK, Data: data})
}

func jsonCreated(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(envelope{Status: statusOK, Data: data})
}

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{Status: statusError, Error: message})
}
