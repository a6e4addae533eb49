package adminauth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HeaderName carries the shared admin secret.
const HeaderName = "X-Admin-Secret"

type Config struct {
	Secret string
	Logger *zap.Logger
}

// Middleware gates admin routes on an exact shared-secret match. Failures are
// reported as a bare 401; nothing about the expected value leaks.
func Middleware(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.Secret == "" {
			// No secret configured means the admin surface is disabled
			// outright, not open.
			return unauthorized(c, cfg.Logger, "admin secret not configured")
		}

		supplied := c.Get(HeaderName)
		if supplied == "" {
			return unauthorized(c, cfg.Logger, "missing admin secret header")
		}

		if subtle.ConstantTimeCompare([]byte(supplied), []byte(cfg.Secret)) != 1 {
			return unauthorized(c, cfg.Logger, "admin secret mismatch")
		}

		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, log *zap.Logger, why string) error {
	if log != nil {
		log.Warn("Admin request rejected",
			zap.String("reason", why),
			zap.String("ip", c.IP()),
			zap.String("path", c.Path()),
		)
	}
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
