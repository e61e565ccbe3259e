package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

const friendlyMessage = "Something went wrong. Please try again."

// ErrorHandler maps service errors onto HTTP statuses. Anything unrecognised
// is logged and reported without internal details.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := friendlyMessage

	var fe *fiber.Error
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, msg = fiber.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrBadRequest):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrGateway):
		status, msg = fiber.StatusBadGateway, "The payment provider is unavailable. Please try again later."
	case errors.As(err, &fe):
		status = fe.Code
		if status < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}

	c.Status(status)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	if wantsJSON(c) {
		return c.JSON(fiber.Map{"error": msg})
	}
	if rerr := render(c, "notfound", fiber.Map{"Title": "Error", "Message": msg}); rerr != nil {
		return c.SendString(msg)
	}
	return nil
}

// NotFound is the catch-all route.
func NotFound(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotFound, "Page not found")
}
