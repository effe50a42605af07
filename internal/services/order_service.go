package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

const receiptTTL = 30 * 24 * time.Hour

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCustomer = errors.New("invalid customer details")
)

// Customer is who the order ships to.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

func (c Customer) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCustomer)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidCustomer, c.Email)
	}
	return nil
}

// OrderNotifier is told about every placed order.
type OrderNotifier interface {
	NotifyNewOrder(ctx context.Context, order models.Order) error
}

// CheckoutResult is what the shopper gets back after placing an order.
type CheckoutResult struct {
	Order         models.Order        `json:"order"`
	ReceiptToken  string              `json:"receipt_token"`
	Notifications []cart.Notification `json:"-"`
}

// OrderService places orders from session carts and issues receipt tokens.
type OrderService struct {
	carts     *CartService
	catalog   *catalog.Catalog
	shipping  *ShippingRules
	notifiers []OrderNotifier
	secret    string
	logger    *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewOrderService constructs OrderService. Every notifier is told about each placed order.
func NewOrderService(carts *CartService, c *catalog.Catalog, shipping *ShippingRules, secret string, logger *zap.Logger, notifiers ...OrderNotifier) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		carts:     carts,
		catalog:   c,
		shipping:  shipping,
		notifiers: notifiers,
		secret:    secret,
		logger:    logger,
		now:       time.Now,
	}
}

// Checkout turns the session's cart into an order and clears the cart.
func (s *OrderService) Checkout(ctx context.Context, sessionID uuid.UUID, customer Customer) (*CheckoutResult, error) {
	customer.Name = strings.TrimSpace(customer.Name)
	customer.Email = strings.TrimSpace(customer.Email)
	if err := customer.validate(); err != nil {
		return nil, err
	}

	var order models.Order
	events, err := s.carts.Do(sessionID, func(l *cart.Ledger) error {
		snap := l.Snapshot()
		if len(snap.Items) == 0 {
			return ErrEmptyCart
		}

		var err error
		order, err = s.buildOrder(snap, customer)
		if err != nil {
			return err
		}
		l.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateReceiptToken(s.secret, utils.ReceiptClaims{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Total:       order.TotalAmount.StringFixed(2),
		Currency:    order.Currency,
		ItemCount:   order.ItemCount,
	}, receiptTTL)
	if err != nil {
		return nil, fmt.Errorf("sign receipt: %w", err)
	}

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", order.ItemCount),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	s.dispatch(order)

	return &CheckoutResult{Order: order, ReceiptToken: token, Notifications: events}, nil
}

// Receipt verifies a receipt token.
func (s *OrderService) Receipt(token string) (utils.ReceiptClaims, error) {
	return utils.ParseReceiptToken(s.secret, token)
}

// Wait blocks until every pending order notification has been delivered.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

func (s *OrderService) dispatch(order models.Order) {
	for _, n := range s.notifiers {
		s.wg.Add(1)
		go func(n OrderNotifier) {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := n.NotifyNewOrder(ctx, order); err != nil {
				s.logger.Error("order notification failed",
					zap.String("order_number", order.OrderNumber),
					zap.Error(err),
				)
			}
		}(n)
	}
}

func (s *OrderService) buildOrder(snap cart.Snapshot, customer Customer) (models.Order, error) {
	fee, err := s.shipping.Fee(snap.Total, snap.Count)
	if err != nil {
		return models.Order{}, err
	}

	id := uuid.New()
	order := models.Order{
		ID:            id,
		OrderNumber:   "SF-" + strings.ToUpper(id.String()[:8]),
		Status:        "placed",
		PlacedAt:      s.now().UTC(),
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		Items:         make([]models.OrderItem, 0, len(snap.Items)),
		ItemCount:     snap.Count,
		Subtotal:      snap.Total,
		ShippingFee:   fee,
		TotalAmount:   snap.Total.Add(fee),
		Currency:      s.catalog.Currency(),
		Notes:         strings.TrimSpace(customer.Notes),
	}

	for _, item := range snap.Items {
		order.Items = append(order.Items, models.OrderItem{
			LineID:       item.LineID,
			ProductID:    item.ProductID,
			ProductType:  string(item.ProductType),
			ProductName:  item.Name,
			VariantLabel: VariantLabel(s.catalog, item),
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			LineTotal:    item.LineTotal(),
		})
	}
	return order, nil
}

// VariantLabel describes a line's configuration with catalog names, for
// example "Lilac / M" or "Star, Heart".
func VariantLabel(c *catalog.Catalog, item cart.LineItem) string {
	p, _ := c.Lookup(item.ProductType, item.ProductID)

	switch cfg := item.Config.(type) {
	case cart.HoodieConfig:
		return optionName(p.Colors, cfg.ColorID) + " / " + optionName(p.Sizes, cfg.SizeID)
	case cart.SweatpantsConfig:
		return optionName(p.Colors, cfg.ColorID) + " / " + optionName(p.Sizes, cfg.SizeID)
	case cart.BraceletConfig:
		return charmNames(c, cfg.CharmIDs)
	case cart.MatchingSetConfig:
		parts := make([]string, 0, len(cfg.Bracelets))
		for _, b := range cfg.Bracelets {
			name := b.BraceletID
			for _, sub := range p.Bracelets {
				if sub.ID == b.BraceletID {
					name = sub.Name
				}
			}
			parts = append(parts, name+": "+charmNames(c, b.CharmIDs))
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func optionName(options []catalog.Option, id string) string {
	for _, o := range options {
		if o.ID == id {
			return o.Name
		}
	}
	return id
}

func charmNames(c *catalog.Catalog, ids []string) string {
	if len(ids) == 0 {
		return "no charms"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if charm, ok := c.Charm(id); ok {
			names = append(names, charm.Name)
		} else {
			names = append(names, id)
		}
	}
	return strings.Join(names, ", ")
}
