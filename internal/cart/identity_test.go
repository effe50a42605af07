package cart

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineIDDeterministic(t *testing.T) {
	cfgs := []Configuration{
		HoodieConfig{ColorID: "lilac", SizeID: "m"},
		SweatpantsConfig{ColorID: "grey", SizeID: "s"},
		BraceletConfig{CharmIDs: []string{"star", "heart"}},
		MatchingSetConfig{Bracelets: []SubBraceletConfig{{BraceletID: "a", CharmIDs: []string{"moon"}}}},
	}
	for _, cfg := range cfgs {
		t.Run(string(cfg.ProductType()), func(t *testing.T) {
			id := LineID("p-1", cfg)
			assert.Equal(t, id, LineID("p-1", cfg))
			assert.True(t, strings.HasPrefix(id, string(cfg.ProductType())+":p-1:"), id)
		})
	}
}

func TestLineIDIgnoresCharmOrder(t *testing.T) {
	a := LineID("b-classic", BraceletConfig{CharmIDs: []string{"star", "heart", "moon"}})
	b := LineID("b-classic", BraceletConfig{CharmIDs: []string{"moon", "star", "heart"}})
	assert.Equal(t, a, b)

	set1 := MatchingSetConfig{Bracelets: []SubBraceletConfig{
		{BraceletID: "ms-a", CharmIDs: []string{"star", "heart"}},
		{BraceletID: "ms-b", CharmIDs: []string{"sun"}},
	}}
	set2 := MatchingSetConfig{Bracelets: []SubBraceletConfig{
		{BraceletID: "ms-b", CharmIDs: []string{"sun"}},
		{BraceletID: "ms-a", CharmIDs: []string{"heart", "star"}},
	}}
	assert.Equal(t, LineID("ms-bff", set1), LineID("ms-bff", set2))
}

func TestLineIDDistinguishesConfigurations(t *testing.T) {
	ids := map[string]string{
		"hoodie lilac m":     LineID("h-cloud", HoodieConfig{ColorID: "lilac", SizeID: "m"}),
		"hoodie lilac l":     LineID("h-cloud", HoodieConfig{ColorID: "lilac", SizeID: "l"}),
		"other hoodie":       LineID("h-storm", HoodieConfig{ColorID: "lilac", SizeID: "m"}),
		"sweatpants lilac m": LineID("h-cloud", SweatpantsConfig{ColorID: "lilac", SizeID: "m"}),
		"bracelet none":      LineID("b-classic", BraceletConfig{}),
		"bracelet star":      LineID("b-classic", BraceletConfig{CharmIDs: []string{"star"}}),
		"bracelet star moon": LineID("b-classic", BraceletConfig{CharmIDs: []string{"star", "moon"}}),
		"set charm on a": LineID("ms-bff", MatchingSetConfig{Bracelets: []SubBraceletConfig{
			{BraceletID: "a", CharmIDs: []string{"star"}}, {BraceletID: "b"},
		}}),
		"set charm on b": LineID("ms-bff", MatchingSetConfig{Bracelets: []SubBraceletConfig{
			{BraceletID: "a"}, {BraceletID: "b", CharmIDs: []string{"star"}},
		}}),
	}

	seen := map[string]string{}
	for name, id := range ids {
		if prev, dup := seen[id]; dup {
			t.Fatalf("%q and %q share line id %s", prev, name, id)
		}
		seen[id] = name
	}
}

func TestLineIDDereferencesPointerVariants(t *testing.T) {
	lilac := LineID("h-cloud", &HoodieConfig{ColorID: "lilac", SizeID: "m"})
	black := LineID("h-cloud", &HoodieConfig{ColorID: "black", SizeID: "xl"})
	assert.NotEqual(t, lilac, black)
	assert.Equal(t, LineID("h-cloud", HoodieConfig{ColorID: "lilac", SizeID: "m"}), lilac)

	assert.Equal(t,
		LineID("b-classic", BraceletConfig{CharmIDs: []string{"star"}}),
		LineID("b-classic", &BraceletConfig{CharmIDs: []string{"star"}}))
	assert.NotEqual(t,
		LineID("s-lounge", &SweatpantsConfig{ColorID: "grey", SizeID: "s"}),
		LineID("s-lounge", &SweatpantsConfig{ColorID: "grey", SizeID: "m"}))
	assert.NotEqual(t,
		LineID("ms-bff", &MatchingSetConfig{Bracelets: []SubBraceletConfig{{BraceletID: "a", CharmIDs: []string{"star"}}}}),
		LineID("ms-bff", &MatchingSetConfig{Bracelets: []SubBraceletConfig{{BraceletID: "a", CharmIDs: []string{"moon"}}}}))
}

func TestCanonicalFormOrdersRepeatedBracelets(t *testing.T) {
	ab := MatchingSetConfig{Bracelets: []SubBraceletConfig{
		{BraceletID: "a", CharmIDs: []string{"star"}},
		{BraceletID: "a", CharmIDs: []string{"moon"}},
	}}
	ba := MatchingSetConfig{Bracelets: []SubBraceletConfig{
		{BraceletID: "a", CharmIDs: []string{"moon"}},
		{BraceletID: "a", CharmIDs: []string{"star"}},
	}}
	assert.Equal(t, string(CanonicalForm("ms-bff", ab)), string(CanonicalForm("ms-bff", ba)))
}

func TestCanonicalFormSortsKeys(t *testing.T) {
	got := string(CanonicalForm("b-classic", BraceletConfig{CharmIDs: []string{"star", "heart", "star"}}))
	assert.Equal(t, `{"charmIds":["heart","star"],"productId":"b-classic","productType":"bracelet"}`, got)

	got = string(CanonicalForm("h-cloud", HoodieConfig{ColorID: "lilac", SizeID: "m"}))
	assert.Equal(t, `{"colorId":"lilac","productId":"h-cloud","productType":"hoodie","sizeId":"m"}`, got)
}

func TestUnitPrice(t *testing.T) {
	base := decimal.RequireFromString("25.00")
	tests := []struct {
		name string
		cfg  Configuration
		want string
	}{
		{"apparel ignores configuration", HoodieConfig{ColorID: "lilac", SizeID: "xl"}, "25.00"},
		{"sweatpants", SweatpantsConfig{ColorID: "grey", SizeID: "s"}, "25.00"},
		{"bracelet within allowance", BraceletConfig{CharmIDs: []string{"star", "heart", "moon", "sun"}}, "25.00"},
		{"bracelet charges charms past the allowance", BraceletConfig{CharmIDs: []string{"star", "heart", "moon", "sun", "flower"}}, "28.00"},
		{"allowance follows selection order", BraceletConfig{CharmIDs: []string{"flower", "heart", "moon", "sun", "star"}}, "27.00"},
		{"set charges each bracelet separately", MatchingSetConfig{Bracelets: []SubBraceletConfig{
			{BraceletID: "a", CharmIDs: []string{"star", "heart", "moon", "sun", "flower"}},
			{BraceletID: "b", CharmIDs: []string{"star", "heart", "moon", "sun", "sun", "flower"}},
		}}, "31.00"},
		{"repeated charm is charged once", BraceletConfig{CharmIDs: []string{"star", "heart", "moon", "sun", "star"}}, "25.00"},
		{"pointer variant", &BraceletConfig{CharmIDs: []string{"star", "heart", "moon", "sun", "flower"}}, "28.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnitPrice(tt.cfg, PriceInputs{Base: base, Charms: charmPrices})
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestLineItemJSON(t *testing.T) {
	l, _, _ := newTestLedger()
	_ = l.AddOrUpdate(bracelet("star", "heart"), 2)
	item := l.Items()[0]

	data, err := item.MarshalJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"productType":"bracelet"`)
	assert.Contains(t, string(data), `"configuration":{"charmIds":["star","heart"]}`)

	var decoded LineItem
	assert.NoError(t, decoded.UnmarshalJSON(data))
	assert.Equal(t, item.LineID, decoded.LineID)
	assert.Equal(t, item.Config, decoded.Config)
	assert.True(t, item.UnitPrice.Equal(decoded.UnitPrice))

	_, err = DecodeConfiguration("scarf", []byte(`{}`))
	assert.Error(t, err)
}
