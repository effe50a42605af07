package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
)

// Recommender suggests catalog products to go with a cart.
type Recommender interface {
	Recommend(ctx context.Context, snap cart.Snapshot, limit int) ([]catalog.Product, error)
}

func productKey(t cart.ProductType, id string) string {
	return string(t) + "/" + id
}

func inCart(snap cart.Snapshot) map[string]bool {
	seen := make(map[string]bool, len(snap.Items))
	for _, item := range snap.Items {
		seen[productKey(item.ProductType, item.ProductID)] = true
	}
	return seen
}

// CatalogRecommender picks products of types the shopper has not added yet,
// then fills up with the rest of the catalog. Products already in the cart
// are never suggested.
type CatalogRecommender struct {
	catalog *catalog.Catalog
}

// NewCatalogRecommender constructs CatalogRecommender.
func NewCatalogRecommender(c *catalog.Catalog) *CatalogRecommender {
	return &CatalogRecommender{catalog: c}
}

// Recommend returns up to limit products, missing product types first.
func (r *CatalogRecommender) Recommend(_ context.Context, snap cart.Snapshot, limit int) ([]catalog.Product, error) {
	if limit <= 0 {
		return []catalog.Product{}, nil
	}

	seen := inCart(snap)
	typesInCart := make(map[cart.ProductType]bool)
	for _, item := range snap.Items {
		typesInCart[item.ProductType] = true
	}

	var fresh, rest []catalog.Product
	for _, p := range r.catalog.Products("") {
		if seen[productKey(p.Type, p.ID)] {
			continue
		}
		if typesInCart[p.Type] {
			rest = append(rest, p)
		} else {
			fresh = append(fresh, p)
		}
	}

	out := append(fresh, rest...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []catalog.Product{}
	}
	return out, nil
}

// contentGenerator is the part of the genai client used for recommendations.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

const recommendationPrompt = `You are a stylist for a teen apparel and accessories store.
The shopper's cart contains:
{{range .Cart}}- {{.Name}} ({{.ProductType}}) x{{.Quantity}}
{{else}}- nothing yet
{{end}}
Products you may suggest, as "key: name (type)":
{{range .Products}}- {{.Type}}/{{.ID}}: {{.Name}} ({{.Type}})
{{end}}
Suggest up to {{.Limit}} products that complete the look. Never suggest a product that is already in the cart.
Answer with a JSON array of keys only, for example ["hoodie/h-cloud"].`

var promptTemplate = template.Must(template.New("recommendation").Parse(recommendationPrompt))

// GenAIRecommender asks a Gemini model to pick products from the catalog.
type GenAIRecommender struct {
	models  contentGenerator
	model   string
	catalog *catalog.Catalog
}

// NewGenAIRecommender connects to the Gemini API.
func NewGenAIRecommender(ctx context.Context, apiKey, model string, c *catalog.Catalog) (*GenAIRecommender, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIRecommender{models: client.Models, model: model, catalog: c}, nil
}

// Recommend asks the model for product keys and maps them back onto the catalog.
// Unknown keys and products already in the cart are skipped.
func (r *GenAIRecommender) Recommend(ctx context.Context, snap cart.Snapshot, limit int) ([]catalog.Product, error) {
	if limit <= 0 {
		return []catalog.Product{}, nil
	}

	var prompt strings.Builder
	err := promptTemplate.Execute(&prompt, map[string]any{
		"Cart":     snap.Items,
		"Products": r.catalog.Products(""),
		"Limit":    limit,
	})
	if err != nil {
		return nil, err
	}

	resp, err := r.models.GenerateContent(ctx, r.model, genai.Text(prompt.String()), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("genai generate failed: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Text())), &keys); err != nil {
		return nil, fmt.Errorf("unexpected recommendation answer: %w", err)
	}

	seen := inCart(snap)
	out := make([]catalog.Product, 0, limit)
	for _, key := range keys {
		if len(out) == limit {
			break
		}
		t, id, ok := strings.Cut(key, "/")
		if !ok || seen[key] {
			continue
		}
		p, err := r.catalog.Lookup(cart.ProductType(t), id)
		if err != nil {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out, nil
}

// RecommendationService tries the primary recommender and falls back when it
// fails or returns nothing.
type RecommendationService struct {
	primary  Recommender
	fallback Recommender
	logger   *zap.Logger
}

// NewRecommendationService builds the service. primary may be nil.
func NewRecommendationService(primary, fallback Recommender, logger *zap.Logger) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecommendationService{primary: primary, fallback: fallback, logger: logger}
}

// Recommend implements Recommender.
func (s *RecommendationService) Recommend(ctx context.Context, snap cart.Snapshot, limit int) ([]catalog.Product, error) {
	if s.primary != nil {
		products, err := s.primary.Recommend(ctx, snap, limit)
		if err == nil && len(products) > 0 {
			return products, nil
		}
		if err != nil {
			s.logger.Warn("recommendations unavailable, using catalog fallback", zap.Error(err))
		}
	}
	return s.fallback.Recommend(ctx, snap, limit)
}
