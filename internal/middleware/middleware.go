package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kofoworola/geogate/internal/config"
	"github.com/kofoworola/geogate/pkg/cache"
)

type RateLimiter struct {
	cache  *cache.Cache
	config *config.RateLimitConfig
}

func NewRateLimiter(cache *cache.Cache, config *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		cache:  cache,
		config: config,
	}
}

// LimitByIP rate limits requests by client IP address.
func (rl *RateLimiter) LimitByIP() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := fmt.Sprintf("ip:%s", c.IP())

		allowed, err := rl.cache.CheckRateLimit(
			c.Context(),
			identifier,
			rl.config.Requests,
			rl.config.Window,
		)

		// Limiter outage must not block verification traffic.
		if err != nil {
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": rl.config.Window.Seconds(),
			})
		}

		return c.Next()
	}
}

// LimitByFingerprint rate limits by the client's device fingerprint.
// Requests without a fingerprint fall through to the IP limiter alone.
func (rl *RateLimiter) LimitByFingerprint() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var probe struct {
			DeviceFingerprint string `json:"device_fingerprint"`
		}
		if err := c.BodyParser(&probe); err != nil || probe.DeviceFingerprint == "" {
			return c.Next()
		}

		identifier := fmt.Sprintf("fp:%s", probe.DeviceFingerprint)

		allowed, err := rl.cache.CheckRateLimit(
			c.Context(),
			identifier,
			rl.config.RequestsByDevice,
			rl.config.DeviceWindow,
		)

		if err != nil {
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Device rate limit exceeded",
				"retry_after": rl.config.DeviceWindow.Seconds(),
			})
		}

		return c.Next()
	}
}

func CORS(origins []string) fiber.Handler {
	allowedOrigins := make(map[string]bool)
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")

		if allowedOrigins["*"] || allowedOrigins[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Set("Access-Control-Max-Age", "3600")
		}

		if c.Method() == "OPTIONS" {
			return c.SendStatus(http.StatusNoContent)
		}

		return c.Next()
	}
}

func Logger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := c.Context().Time()
		err := c.Next()
		duration := c.Context().Time().Sub(start)

		fmt.Printf("[%s] %s %s - %d (%v) - IP: %s\n",
			start.Format("2006-01-02 15:04:05"),
			c.Method(), c.Path(), c.Response().StatusCode(), duration, AnonymizeIP(c.IP()),
		)

		return err
	}
}

func Recover() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("PANIC: %v\n", r)
				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
		}()
		return c.Next()
	}
}

// AnonymizeIP removes the last octet for request logs. The verification
// sample itself keeps the precise IP; the IP vector needs it.
func AnonymizeIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return fmt.Sprintf("%s.%s.%s.0", parts[0], parts[1], parts[2])
	}
	return ip
}
