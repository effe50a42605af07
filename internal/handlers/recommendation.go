package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront/internal/services"
)

const (
	defaultRecommendations = 4
	maxRecommendations     = 12
)

// RecommendationHandler suggests products for the session's cart.
type RecommendationHandler struct {
	carts       *services.CartService
	recommender services.Recommender
}

// NewRecommendationHandler constructs RecommendationHandler.
func NewRecommendationHandler(carts *services.CartService, recommender services.Recommender) *RecommendationHandler {
	return &RecommendationHandler{carts: carts, recommender: recommender}
}

// List returns up to ?limit products that go with the cart.
func (h *RecommendationHandler) List(c *fiber.Ctx) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", defaultRecommendations)
	if limit <= 0 {
		limit = defaultRecommendations
	}
	if limit > maxRecommendations {
		limit = maxRecommendations
	}

	products, err := h.recommender.Recommend(c.UserContext(), h.carts.View(sid), limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": products})
}
