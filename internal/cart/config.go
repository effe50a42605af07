package cart

import "fmt"

// ProductType tags the four product shapes the storefront sells.
type ProductType string

const (
	ProductHoodie      ProductType = "hoodie"
	ProductSweatpants  ProductType = "sweatpants"
	ProductBracelet    ProductType = "bracelet"
	ProductMatchingSet ProductType = "matchingSet"
)

// ProductTypes lists every known product type in display order.
var ProductTypes = []ProductType{ProductHoodie, ProductSweatpants, ProductBracelet, ProductMatchingSet}

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	switch t {
	case ProductHoodie, ProductSweatpants, ProductBracelet, ProductMatchingSet:
		return true
	}
	return false
}

// Configuration is the set of user-chosen options that participate in line identity.
// The four value types below are the only variants. Pointers to them also
// satisfy the interface, so the ledger dereferences them through normalize.
type Configuration interface {
	ProductType() ProductType
	isConfiguration()
}

// HoodieConfig selects a hoodie color and size.
type HoodieConfig struct {
	ColorID string `json:"colorId"`
	SizeID  string `json:"sizeId"`
}

// SweatpantsConfig selects a sweatpants color and size.
type SweatpantsConfig struct {
	ColorID string `json:"colorId"`
	SizeID  string `json:"sizeId"`
}

// BraceletConfig holds the add-on charms in the order they were selected.
type BraceletConfig struct {
	CharmIDs []string `json:"charmIds"`
}

// SubBraceletConfig is the charm selection for one bracelet of a matching set.
type SubBraceletConfig struct {
	BraceletID string   `json:"braceletId"`
	CharmIDs   []string `json:"charmIds"`
}

// MatchingSetConfig holds the charm selections of every bracelet in a set.
type MatchingSetConfig struct {
	Bracelets []SubBraceletConfig `json:"bracelets"`
}

func (HoodieConfig) ProductType() ProductType      { return ProductHoodie }
func (SweatpantsConfig) ProductType() ProductType  { return ProductSweatpants }
func (BraceletConfig) ProductType() ProductType    { return ProductBracelet }
func (MatchingSetConfig) ProductType() ProductType { return ProductMatchingSet }

func (HoodieConfig) isConfiguration()      {}
func (SweatpantsConfig) isConfiguration()  {}
func (BraceletConfig) isConfiguration()    {}
func (MatchingSetConfig) isConfiguration() {}

// normalize dereferences pointer variants. It reports false for a nil
// configuration, a nil pointer or a type outside the four variants.
func normalize(cfg Configuration) (Configuration, bool) {
	switch c := cfg.(type) {
	case HoodieConfig, SweatpantsConfig, BraceletConfig, MatchingSetConfig:
		return c, true
	case *HoodieConfig:
		if c != nil {
			return *c, true
		}
	case *SweatpantsConfig:
		if c != nil {
			return *c, true
		}
	case *BraceletConfig:
		if c != nil {
			return *c, true
		}
	case *MatchingSetConfig:
		if c != nil {
			return *c, true
		}
	}
	return nil, false
}

// validate rejects selections whose identity would hide part of the price:
// a charm picked twice on one bracelet or a set bracelet listed twice.
func validate(cfg Configuration) error {
	switch c := cfg.(type) {
	case BraceletConfig:
		return uniqueCharms(c.CharmIDs)
	case MatchingSetConfig:
		seen := make(map[string]struct{}, len(c.Bracelets))
		for _, b := range c.Bracelets {
			if _, dup := seen[b.BraceletID]; dup {
				return fmt.Errorf("%w: bracelet %q listed twice", ErrInvalidSelection, b.BraceletID)
			}
			seen[b.BraceletID] = struct{}{}
			if err := uniqueCharms(b.CharmIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

func uniqueCharms(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: charm %q selected twice", ErrInvalidSelection, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// cloneConfig returns a copy that shares no slices with cfg.
func cloneConfig(cfg Configuration) Configuration {
	if n, ok := normalize(cfg); ok {
		cfg = n
	}
	switch c := cfg.(type) {
	case HoodieConfig:
		return c
	case SweatpantsConfig:
		return c
	case BraceletConfig:
		return BraceletConfig{CharmIDs: append([]string(nil), c.CharmIDs...)}
	case MatchingSetConfig:
		out := MatchingSetConfig{Bracelets: make([]SubBraceletConfig, len(c.Bracelets))}
		for i, b := range c.Bracelets {
			out.Bracelets[i] = SubBraceletConfig{
				BraceletID: b.BraceletID,
				CharmIDs:   append([]string(nil), b.CharmIDs...),
			}
		}
		return out
	}
	return cfg
}
