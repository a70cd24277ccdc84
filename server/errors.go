package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	salesforecaster "github.com/aouyang1/go-salesforecaster"
)

var (
	ErrBadUpload = errors.New("invalid upload")
	ErrNoFile    = errors.New("no file in form field " + FormField)
)

// StatusCode maps an error to the response status. Upload and parse failures are the client's,
// summarizer failures are upstream, anything else is internal.
func StatusCode(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ErrBadUpload):
		return fiber.StatusBadRequest
	case errors.Is(err, salesforecaster.ErrExternalService):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func errorHandler(c *fiber.Ctx, err error) error {
	return c.Status(StatusCode(err)).JSON(fiber.Map{"error": err.Error()})
}
