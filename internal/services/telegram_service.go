package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/models"
)

const telegramAPIURL = "https://api.telegram.org"

// TelegramService sends new-order alerts to the shop's admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPIURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		logging.Debug("telegram bot token not configured")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)

	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// NotifyNewOrder posts an order summary to the admin chat.
func (s *TelegramService) NotifyNewOrder(ctx context.Context, order models.Order) error {
	if s.adminChatID == "" {
		return nil
	}

	var itemsList strings.Builder
	for i, item := range order.Items {
		fmt.Fprintf(&itemsList, "%d. <b>%s</b> (%s)\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.ProductName),
			html.EscapeString(item.VariantLabel),
			item.Quantity,
			FormatPrice(item.UnitPrice, order.Currency),
			FormatPrice(item.LineTotal, order.Currency),
		)
	}

	message := fmt.Sprintf(`<b>🛒 NEW ORDER</b>
<b>📋 Order:</b> %s
<b>👤 Customer:</b> %s
<b>✉️ Email:</b> %s
<b>📦 Items:</b>
%s
<b>🚚 Shipping:</b> %s
<b>💰 Total:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.OrderNumber,
		html.EscapeString(order.CustomerName),
		html.EscapeString(order.CustomerEmail),
		itemsList.String(),
		FormatPrice(order.ShippingFee, order.Currency),
		FormatPrice(order.TotalAmount, order.Currency),
	)

	if err := s.SendMessage(ctx, s.adminChatID, strings.TrimSpace(message)); err != nil {
		return err
	}
	logging.Info("telegram order alert sent", zap.String("order_number", order.OrderNumber))
	return nil
}

// FormatPrice formats an amount with thousand separators, two decimals and the currency code.
func FormatPrice(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = "USD"
	}

	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var result strings.Builder
	if amount.IsNegative() {
		result.WriteString("-")
	}
	length := len(whole)
	for i, digit := range whole {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + "." + frac + " " + currency
}
