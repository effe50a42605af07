package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the payload built from a cart snapshot at checkout. Orders are
// announced, not stored.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	PlacedAt      time.Time       `json:"placed_at"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	Items         []OrderItem     `json:"items"`
	ItemCount     int             `json:"item_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	Notes         string          `json:"notes"`
}

type OrderItem struct {
	LineID       string          `json:"line_id"`
	ProductID    string          `json:"product_id"`
	ProductType  string          `json:"product_type"`
	ProductName  string          `json:"product_name"`
	VariantLabel string          `json:"variant_label"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineTotal    decimal.Decimal `json:"line_total"`
}
