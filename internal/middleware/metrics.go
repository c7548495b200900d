package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitcl/internal/metrics"
)

// Metrics cuenta cada request por ruta y código de respuesta.
// Usa c.Route().Path (patrón registrado, ej: /api/routes/:id/stops)
// para no explotar la cardinalidad con IDs concretos.
func Metrics(col *metrics.Collector) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if col == nil {
			return c.Next()
		}

		err := c.Next()

		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		col.HTTPRequests.WithLabelValues(route, status).Inc()

		return err
	}
}
