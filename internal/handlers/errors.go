package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/services"
)

// ErrorHandler renders every error as {"success": false, "error": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		logging.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.Status(code).JSON(fiber.Map{"success": false, "error": message})
}

// statusError maps domain errors onto HTTP errors. Unknown errors pass through.
func statusError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrInvalidOption),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidSelection),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidCustomer):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}
