package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

// OrderHandler manages checkout and receipts.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Checkout places an order for the session's cart.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var req services.Customer
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.orders.Checkout(c.UserContext(), sid, req)
	if err != nil {
		return statusError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"data":          result,
		"notifications": result.Notifications,
	})
}

// GetReceipt verifies a receipt token and returns the order summary it carries.
func (h *OrderHandler) GetReceipt(c *fiber.Ctx) error {
	receipt, err := h.orders.Receipt(c.Params("token"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "receipt not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order_id":     receipt.OrderID,
			"order_number": receipt.OrderNumber,
			"total":        receipt.Total,
			"currency":     receipt.Currency,
			"item_count":   receipt.ItemCount,
			"issued_at":    receipt.IssuedAt,
		},
	})
}
