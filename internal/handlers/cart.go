package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/services"
)

// CartHandler exposes the session's cart ledger.
type CartHandler struct {
	carts   *services.CartService
	catalog *catalog.Catalog
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(carts *services.CartService, c *catalog.Catalog) *CartHandler {
	return &CartHandler{carts: carts, catalog: c}
}

type addItemRequest struct {
	catalog.Request
	Quantity *int `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing cart session")
	}
	return id, nil
}

func cartResponse(c *fiber.Ctx, snap cart.Snapshot, events []cart.Notification) error {
	if events == nil {
		events = []cart.Notification{}
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"data":          snap,
		"notifications": events,
	})
}

// mutate runs fn against the session's ledger and responds with the
// resulting snapshot.
func (h *CartHandler) mutate(c *fiber.Ctx, fn func(*cart.Ledger) error) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var snap cart.Snapshot
	events, err := h.carts.Do(sid, func(l *cart.Ledger) error {
		if err := fn(l); err != nil {
			return err
		}
		snap = l.Snapshot()
		return nil
	})
	if err != nil {
		return statusError(err)
	}
	return cartResponse(c, snap, events)
}

// GetCart returns the items, total, count and editing pointer.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	return cartResponse(c, h.carts.View(sid), nil)
}

// AddItem adds a configured product, or re-specifies the line being edited.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	sel, err := h.catalog.Resolve(req.Request)
	if err != nil {
		return statusError(err)
	}

	return h.mutate(c, func(l *cart.Ledger) error {
		return l.AddOrUpdate(sel, quantity)
	})
}

// UpdateQuantity overwrites a line's quantity; zero or less removes it.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return fiber.NewError(fiber.StatusBadRequest, "quantity is required")
	}

	lineID := c.Params("lineId")
	return h.mutate(c, func(l *cart.Ledger) error {
		l.SetQuantity(lineID, *req.Quantity)
		return nil
	})
}

// RemoveItem deletes a line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	lineID := c.Params("lineId")
	return h.mutate(c, func(l *cart.Ledger) error {
		l.Remove(lineID)
		return nil
	})
}

// BeginEdit points the editor at a line and returns what the configuration
// modal needs to prefill itself.
func (h *CartHandler) BeginEdit(c *fiber.Ctx) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	lineID := c.Params("lineId")
	var (
		editing cart.Editing
		line    cart.LineItem
		product catalog.Product
		found   bool
	)
	if _, err := h.carts.Do(sid, func(l *cart.Ledger) error {
		if line, found = l.Line(lineID); found {
			// The pointer only moves once the modal can be prefilled.
			p, err := h.catalog.Lookup(line.ProductType, line.ProductID)
			if err != nil {
				return err
			}
			product = p
		}
		editing, found = l.BeginEdit(lineID)
		return nil
	}); err != nil {
		return statusError(err)
	}
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "line item not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"editing": editing,
			"line":    line,
			"product": product,
		},
	})
}

// CancelEdit abandons the edit in progress.
func (h *CartHandler) CancelEdit(c *fiber.Ctx) error {
	return h.mutate(c, func(l *cart.Ledger) error {
		l.CancelEdit()
		return nil
	})
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	return h.mutate(c, func(l *cart.Ledger) error {
		l.Clear()
		return nil
	})
}
