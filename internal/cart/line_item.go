package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Selection is a fully resolved line configuration ready to be added to a ledger.
type Selection struct {
	ProductID string
	// Name is the display name used in notifications.
	Name   string
	Config Configuration
	Price  PriceInputs
}

// LineItem is one row of the cart.
type LineItem struct {
	LineID      string
	ProductID   string
	ProductType ProductType
	Name        string
	Config      Configuration
	UnitPrice   decimal.Decimal
	Quantity    int
}

// LineTotal is the unit price times the quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type lineItemJSON struct {
	LineID        string          `json:"lineId"`
	ProductID     string          `json:"productId"`
	ProductType   ProductType     `json:"productType"`
	Name          string          `json:"name"`
	Configuration json.RawMessage `json:"configuration"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
}

// MarshalJSON writes the configuration alongside its productType tag.
func (li LineItem) MarshalJSON() ([]byte, error) {
	cfg, err := json.Marshal(li.Config)
	if err != nil {
		return nil, err
	}
	return json.Marshal(lineItemJSON{
		LineID:        li.LineID,
		ProductID:     li.ProductID,
		ProductType:   li.ProductType,
		Name:          li.Name,
		Configuration: cfg,
		UnitPrice:     li.UnitPrice,
		Quantity:      li.Quantity,
	})
}

// UnmarshalJSON decodes the configuration variant named by productType.
func (li *LineItem) UnmarshalJSON(data []byte) error {
	var raw lineItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	cfg, err := DecodeConfiguration(raw.ProductType, raw.Configuration)
	if err != nil {
		return err
	}

	*li = LineItem{
		LineID:      raw.LineID,
		ProductID:   raw.ProductID,
		ProductType: raw.ProductType,
		Name:        raw.Name,
		Config:      cfg,
		UnitPrice:   raw.UnitPrice,
		Quantity:    raw.Quantity,
	}
	return nil
}

// DecodeConfiguration decodes a JSON configuration for the given product type.
func DecodeConfiguration(t ProductType, data []byte) (Configuration, error) {
	var (
		cfg Configuration
		err error
	)
	switch t {
	case ProductHoodie:
		var c HoodieConfig
		err = json.Unmarshal(data, &c)
		cfg = c
	case ProductSweatpants:
		var c SweatpantsConfig
		err = json.Unmarshal(data, &c)
		cfg = c
	case ProductBracelet:
		var c BraceletConfig
		err = json.Unmarshal(data, &c)
		cfg = c
	case ProductMatchingSet:
		var c MatchingSetConfig
		err = json.Unmarshal(data, &c)
		cfg = c
	default:
		return nil, fmt.Errorf("unknown product type %q", t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s configuration: %w", t, err)
	}
	return cfg, nil
}
