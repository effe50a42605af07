package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"
	"github.com/shopspring/decimal"
)

// DefaultShippingRule ships free from a 75.00 subtotal and charges 5.99 below it.
const DefaultShippingRule = `{"if": [{">=": [{"var": "subtotal"}, 75]}, 0, 5.99]}`

// ShippingRules prices shipping with a JSON Logic rule evaluated against
// {"subtotal": number, "count": number}.
type ShippingRules struct {
	rule []byte
}

// NewShippingRules validates and keeps a rule.
func NewShippingRules(rule string) (*ShippingRules, error) {
	if !json.Valid([]byte(rule)) {
		return nil, errors.New("shipping rule is not valid JSON")
	}
	return &ShippingRules{rule: []byte(rule)}, nil
}

// Fee evaluates the rule for a cart.
func (r *ShippingRules) Fee(subtotal decimal.Decimal, count int) (decimal.Decimal, error) {
	data, err := json.Marshal(map[string]any{
		"subtotal": subtotal.InexactFloat64(),
		"count":    count,
	})
	if err != nil {
		return decimal.Zero, err
	}

	var out bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(r.rule), bytes.NewReader(data), &out); err != nil {
		return decimal.Zero, fmt.Errorf("evaluate shipping rule: %w", err)
	}

	raw := bytes.TrimSpace(out.Bytes())
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, errors.New("shipping rule returned no fee")
	}

	var fee decimal.Decimal
	if err := json.Unmarshal(raw, &fee); err != nil {
		return decimal.Zero, fmt.Errorf("shipping rule returned %q: %w", raw, err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("shipping rule returned negative fee %s", fee)
	}
	return fee.Round(2), nil
}
