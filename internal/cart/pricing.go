package cart

import "github.com/shopspring/decimal"

// IncludedCharms is the number of charms bundled into a bracelet's base price.
// Charms selected after the first IncludedCharms are charged individually.
// Repeated charm ids are charged once, matching how identity treats them.
const IncludedCharms = 4

// PriceInputs carries the catalog prices needed to price a configuration.
type PriceInputs struct {
	// Base is the unit price for apparel, the base price for a bracelet or
	// the fixed price of a matching set.
	Base decimal.Decimal
	// Charms maps charm id to its incremental price.
	Charms map[string]decimal.Decimal
}

// UnitPrice derives the price of one unit of a configured product.
func UnitPrice(cfg Configuration, in PriceInputs) decimal.Decimal {
	if n, ok := normalize(cfg); ok {
		cfg = n
	}
	switch c := cfg.(type) {
	case HoodieConfig, SweatpantsConfig:
		return in.Base
	case BraceletConfig:
		return in.Base.Add(extraCharms(c.CharmIDs, in.Charms))
	case MatchingSetConfig:
		price := in.Base
		for _, b := range c.Bracelets {
			price = price.Add(extraCharms(b.CharmIDs, in.Charms))
		}
		return price
	}
	return in.Base
}

func extraCharms(selected []string, prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	selected = distinct(selected)
	if len(selected) <= IncludedCharms {
		return total
	}
	for _, id := range selected[IncludedCharms:] {
		total = total.Add(prices[id])
	}
	return total
}

// distinct drops repeated ids and keeps the first occurrence of each.
func distinct(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
