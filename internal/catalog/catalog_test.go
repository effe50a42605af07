package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/cart"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Equal(t, "USD", c.Currency())
	for _, pt := range cart.ProductTypes {
		assert.NotEmpty(t, c.Products(pt), "no %s products", pt)
	}
	assert.Len(t, c.Products(""), len(c.Products(cart.ProductHoodie))+
		len(c.Products(cart.ProductSweatpants))+
		len(c.Products(cart.ProductBracelet))+
		len(c.Products(cart.ProductMatchingSet)))

	p, err := c.Lookup(cart.ProductBracelet, "b-classic")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("25")))

	// Sizes shared through a YAML anchor.
	s, err := c.Lookup(cart.ProductSweatpants, "s-flare")
	require.NoError(t, err)
	assert.Len(t, s.Sizes, 5)
}

func TestLookupNotFound(t *testing.T) {
	c := Default()
	_, err := c.Lookup(cart.ProductHoodie, "b-classic")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestResolveApparel(t *testing.T) {
	c := Default()

	sel, err := c.Resolve(Request{ProductType: cart.ProductHoodie, ProductID: "h-cloud", ColorID: "lilac", SizeID: "m"})
	require.NoError(t, err)
	assert.Equal(t, cart.HoodieConfig{ColorID: "lilac", SizeID: "m"}, sel.Config)
	assert.Equal(t, "Cloud Nine Hoodie", sel.Name)
	assert.True(t, sel.Price.Base.Equal(decimal.RequireFromString("45")))

	sel, err = c.Resolve(Request{ProductType: cart.ProductSweatpants, ProductID: "s-lounge", ColorID: "grey", SizeID: "xs"})
	require.NoError(t, err)
	assert.Equal(t, cart.SweatpantsConfig{ColorID: "grey", SizeID: "xs"}, sel.Config)

	_, err = c.Resolve(Request{ProductType: cart.ProductHoodie, ProductID: "h-cloud", ColorID: "orange", SizeID: "m"})
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = c.Resolve(Request{ProductType: cart.ProductHoodie, ProductID: "h-cloud", ColorID: "lilac"})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestResolveBracelet(t *testing.T) {
	c := Default()

	lineID, price, err := c.Quote(Request{
		ProductType: cart.ProductBracelet,
		ProductID:   "b-classic",
		CharmIDs:    []string{"star", "heart", "moon", "sun", "flower"},
	})
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("28.00")), price.String())

	reordered, _, err := c.Quote(Request{
		ProductType: cart.ProductBracelet,
		ProductID:   "b-classic",
		CharmIDs:    []string{"flower", "sun", "moon", "heart", "star"},
	})
	require.NoError(t, err)
	assert.Equal(t, lineID, reordered)

	_, err = c.Resolve(Request{ProductType: cart.ProductBracelet, ProductID: "b-classic", CharmIDs: []string{"pearl"}})
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = c.Resolve(Request{ProductType: cart.ProductBracelet, ProductID: "b-classic", CharmIDs: []string{"star", "star"}})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestResolveMatchingSetNormalizes(t *testing.T) {
	c := Default()

	sel, err := c.Resolve(Request{
		ProductType: cart.ProductMatchingSet,
		ProductID:   "ms-bff",
		Bracelets:   []cart.SubBraceletConfig{{BraceletID: "ms-bff-b", CharmIDs: []string{"initial"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, cart.MatchingSetConfig{Bracelets: []cart.SubBraceletConfig{
		{BraceletID: "ms-bff-a", CharmIDs: []string{}},
		{BraceletID: "ms-bff-b", CharmIDs: []string{"initial"}},
	}}, sel.Config)
	assert.True(t, sel.Price.Charms["initial"].Equal(decimal.RequireFromString("4.00")))

	_, err = c.Resolve(Request{
		ProductType: cart.ProductMatchingSet,
		ProductID:   "ms-bff",
		Bracelets:   []cart.SubBraceletConfig{{BraceletID: "ms-sisters-1"}},
	})
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = c.Resolve(Request{
		ProductType: cart.ProductMatchingSet,
		ProductID:   "ms-bff",
		Bracelets:   []cart.SubBraceletConfig{{BraceletID: "ms-bff-a"}, {BraceletID: "ms-bff-a"}},
	})
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestLoadRejectsBadData(t *testing.T) {
	tests := map[string]string{
		"bad price": `
charms: []
hoodies:
  - {id: h1, name: H, price: "forty"}
`,
		"unknown charm": `
charms: [{id: star, name: Star, price: "1"}]
bracelets:
  - {id: b1, name: B, price: "10", charms: [moon]}
`,
		"duplicate product": `
hoodies:
  - {id: h1, name: H, price: "1"}
  - {id: h1, name: H, price: "2"}
`,
		"not yaml": `[`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
