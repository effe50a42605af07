package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/utils"
)

// CatalogHandler serves the read-only product catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

// ListProducts returns paginated products, optionally filtered by type.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	productType := cart.ProductType(c.Query("type"))
	if productType != "" && !productType.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "unknown product type")
	}

	pg := utils.ParsePagination(c)
	products := h.catalog.Products(productType)

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       utils.Paginate(products, pg),
		"currency":   h.catalog.Currency(),
		"pagination": pg.Meta(len(products)),
	})
}

// GetProduct returns a single product by type and id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	p, err := h.catalog.Lookup(cart.ProductType(c.Params("type")), c.Params("id"))
	if err != nil {
		return statusError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": p})
}

// ListCharms returns every bracelet charm.
func (h *CatalogHandler) ListCharms(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": h.catalog.Charms()})
}
