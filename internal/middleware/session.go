package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/utils"
)

// SessionHeader carries the cart session token for clients that do not keep cookies.
const SessionHeader = "X-Cart-Session"

const sessionContextKey = "cartSessionID"

// CartSession resolves the anonymous cart session of a request. A missing or
// invalid token starts a new session and hands its token back as a cookie
// and a response header.
func CartSession(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.SessionCookie)
		if token == "" {
			token = c.Get(SessionHeader)
		}

		if token != "" {
			if id, err := utils.ParseSessionToken(cfg.SessionSecret, token); err == nil {
				c.Locals(sessionContextKey, id)
				return c.Next()
			}
		}

		id := uuid.New()
		token, err := utils.GenerateSessionToken(cfg.SessionSecret, id, cfg.SessionTTL)
		if err != nil {
			return err
		}
		logging.Debug("started cart session", zap.String("session", id.String()))

		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(cfg.SessionTTL),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Set(SessionHeader, token)
		c.Locals(sessionContextKey, id)
		return c.Next()
	}
}

// GetSessionID extracts the cart session ID from context.
func GetSessionID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(sessionContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}
