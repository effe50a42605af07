package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/storefront/internal/cart"
)

// Request is a shopper's option choice for one product, as sent by the
// product card or configuration modal.
type Request struct {
	ProductType cart.ProductType         `json:"productType"`
	ProductID   string                   `json:"productId"`
	ColorID     string                   `json:"colorId,omitempty"`
	SizeID      string                   `json:"sizeId,omitempty"`
	CharmIDs    []string                 `json:"charmIds,omitempty"`
	Bracelets   []cart.SubBraceletConfig `json:"bracelets,omitempty"`
}

// Resolve validates a request against the catalog and returns the priced
// selection. Matching sets are normalized so every bracelet of the set
// appears once, in catalog order.
func (c *Catalog) Resolve(req Request) (cart.Selection, error) {
	p, err := c.Lookup(req.ProductType, req.ProductID)
	if err != nil {
		return cart.Selection{}, err
	}

	var cfg cart.Configuration
	switch p.Type {
	case cart.ProductHoodie, cart.ProductSweatpants:
		if !hasOption(p.Colors, req.ColorID) {
			return cart.Selection{}, fmt.Errorf("%w: color %q not offered for %s", ErrInvalidOption, req.ColorID, p.ID)
		}
		if !hasOption(p.Sizes, req.SizeID) {
			return cart.Selection{}, fmt.Errorf("%w: size %q not offered for %s", ErrInvalidOption, req.SizeID, p.ID)
		}
		if p.Type == cart.ProductHoodie {
			cfg = cart.HoodieConfig{ColorID: req.ColorID, SizeID: req.SizeID}
		} else {
			cfg = cart.SweatpantsConfig{ColorID: req.ColorID, SizeID: req.SizeID}
		}

	case cart.ProductBracelet:
		if err := checkCharms(p.ID, p.Charms, req.CharmIDs); err != nil {
			return cart.Selection{}, err
		}
		cfg = cart.BraceletConfig{CharmIDs: append([]string{}, req.CharmIDs...)}

	case cart.ProductMatchingSet:
		chosen := make(map[string][]string, len(req.Bracelets))
		for _, b := range req.Bracelets {
			if _, dup := chosen[b.BraceletID]; dup {
				return cart.Selection{}, fmt.Errorf("%w: bracelet %q listed twice", ErrInvalidOption, b.BraceletID)
			}
			chosen[b.BraceletID] = b.CharmIDs
		}

		set := cart.MatchingSetConfig{Bracelets: make([]cart.SubBraceletConfig, 0, len(p.Bracelets))}
		for _, sub := range p.Bracelets {
			charms := chosen[sub.ID]
			delete(chosen, sub.ID)
			if err := checkCharms(sub.ID, sub.Charms, charms); err != nil {
				return cart.Selection{}, err
			}
			set.Bracelets = append(set.Bracelets, cart.SubBraceletConfig{
				BraceletID: sub.ID,
				CharmIDs:   append([]string{}, charms...),
			})
		}
		for id := range chosen {
			return cart.Selection{}, fmt.Errorf("%w: bracelet %q is not part of %s", ErrInvalidOption, id, p.ID)
		}
		cfg = set
	}

	return cart.Selection{
		ProductID: p.ID,
		Name:      p.Name,
		Config:    cfg,
		Price:     cart.PriceInputs{Base: p.Price, Charms: c.charmPrices(cfg)},
	}, nil
}

// Quote resolves a request and prices one unit without touching any ledger.
func (c *Catalog) Quote(req Request) (lineID string, unitPrice decimal.Decimal, err error) {
	sel, err := c.Resolve(req)
	if err != nil {
		return "", decimal.Zero, err
	}
	return cart.LineID(sel.ProductID, sel.Config), cart.UnitPrice(sel.Config, sel.Price), nil
}

func (c *Catalog) charmPrices(cfg cart.Configuration) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal)
	addAll := func(ids []string) {
		for _, id := range ids {
			if ch, ok := c.Charm(id); ok {
				prices[id] = ch.Price
			}
		}
	}
	switch v := cfg.(type) {
	case cart.BraceletConfig:
		addAll(v.CharmIDs)
	case cart.MatchingSetConfig:
		for _, b := range v.Bracelets {
			addAll(b.CharmIDs)
		}
	}
	return prices
}

func hasOption(options []Option, id string) bool {
	for _, o := range options {
		if o.ID == id {
			return true
		}
	}
	return false
}

func checkCharms(owner string, available, selected []string) error {
	offered := make(map[string]bool, len(available))
	for _, id := range available {
		offered[id] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !offered[id] {
			return fmt.Errorf("%w: charm %q not offered for %s", ErrInvalidOption, id, owner)
		}
		if seen[id] {
			return fmt.Errorf("%w: charm %q selected twice for %s", ErrInvalidOption, id, owner)
		}
		seen[id] = true
	}
	return nil
}
