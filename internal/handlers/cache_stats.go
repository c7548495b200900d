package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitcl/internal/cache"
)

// ============================================================================
// CACHE STATISTICS ENDPOINT
// ============================================================================
// Endpoint para monitorear el estado del caché en producción
// GET /api/cache/stats

// GetCacheStats retorna estadísticas de todos los cachés activos
func GetCacheStats(c *fiber.Ctx) error {
	stats := cache.GetAllCacheStats()

	// Calcular totales
	var totalItems, totalValid, totalExpired int

	for _, s := range stats {
		totalItems += s.TotalItems
		totalValid += s.ValidItems
		totalExpired += s.ExpiredItems
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"summary": fiber.Map{
			"total_items":   totalItems,
			"valid_items":   totalValid,
			"expired_items": totalExpired,
		},
		"caches": stats,
	})
}

// ClearCache limpia un caché específico o todos
// DELETE /api/cache?type=routes
// DELETE /api/cache?type=all
func ClearCache(c *fiber.Ctx) error {
	cacheType := c.Query("type", "all")

	var cleared int

	switch cacheType {
	case "routes":
		if cache.RoutesCache != nil {
			cache.RoutesCache.Clear()
			cleared = 1
		}
	case "stops":
		if cache.StopsCache != nil {
			cache.StopsCache.Clear()
			cleared = 1
		}
	case "schedules":
		if cache.SchedulesCache != nil {
			cache.SchedulesCache.Clear()
			cleared = 1
		}
	case "planner":
		if cache.PlannerCache != nil {
			cache.PlannerCache.Clear()
			cleared = 1
		}
	case "all":
		cache.ClearAllCaches()
		cleared = 4
	default:
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid cache type. Use: routes, stops, schedules, planner, or all",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Cache cleared",
		"type":    cacheType,
		"cleared": cleared,
	})
}
