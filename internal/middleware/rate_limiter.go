package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// ============================================================================
// RATE LIMITING MIDDLEWARE
// ============================================================================
// Protege el backend contra abuso
// Implementa diferentes niveles según criticidad del endpoint

// GlobalRateLimiter - Limitador general para todos los endpoints
// 1000 requests por minuto por IP (producción moderada)
func GlobalRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": 60,
				"message":     "Too many requests. Please try again in 1 minute.",
			})
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
		LimiterMiddleware:      limiter.SlidingWindow{},
	})
}

// AuthRateLimiter - Limitador para endpoints de autenticación
// 10 requests por minuto (protege contra fuerza bruta)
func AuthRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			// Rate limit por IP + endpoint para mejor granularidad
			return c.IP() + ":" + c.Path()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Authentication rate limit exceeded",
				"retry_after": 60,
				"message":     "Too many login attempts. Please try again in 1 minute.",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// APIRateLimiter - Limitador para endpoints de API general
// 200 requests por minuto (balance entre usabilidad y protección)
func APIRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        200,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "API rate limit exceeded",
				"retry_after": 60,
				"limit":       200,
				"window":      "1 minute",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// PlannerRateLimiter - Para el planificador de itinerarios
// La búsqueda en grafo es la operación más cara del API:
// 30 requests por minuto por IP
func PlannerRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Planner rate limit exceeded",
				"retry_after": 60,
				"message":     "Itinerary planning is rate-limited to 30 requests per minute.",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
