package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionAudience = "cart-session"
	receiptAudience = "order-receipt"
)

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// ReceiptClaims summarize a placed order for the confirmation page.
type ReceiptClaims struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	ItemCount   int    `json:"item_count"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs an anonymous cart session handle.
func GenerateSessionToken(secret string, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates the token and returns the embedded session ID.
func ParseSessionToken(secret, tokenString string) (uuid.UUID, error) {
	claims := &sessionClaims{}
	if err := parse(secret, tokenString, sessionAudience, claims); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.SessionID)
}

// GenerateReceiptToken signs the receipt of a placed order.
func GenerateReceiptToken(secret string, receipt ReceiptClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	receipt.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   receipt.OrderID,
		Audience:  jwt.ClaimStrings{receiptAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &receipt)
	return token.SignedString([]byte(secret))
}

// ParseReceiptToken validates a receipt token.
func ParseReceiptToken(secret, tokenString string) (ReceiptClaims, error) {
	claims := &ReceiptClaims{}
	if err := parse(secret, tokenString, receiptAudience, claims); err != nil {
		return ReceiptClaims{}, err
	}
	return *claims, nil
}

func parse(secret, tokenString, audience string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
	)
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token")
	}
	return nil
}
