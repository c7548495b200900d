package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/yourorg/transitcl/internal/handlers"
	"github.com/yourorg/transitcl/internal/middleware"
	"github.com/yourorg/transitcl/internal/monitor"
)

// Register monta todos los endpoints del API sobre la app Fiber.
// Las dependencias compartidas ya deben estar cableadas vía
// handlers.Setup().
func Register(app *fiber.App, hub *monitor.Hub) {
	// ============================================================================
	// API PÚBLICA
	// ============================================================================
	api := app.Group("/api")

	// Health check (sin rate limiting)
	api.Get("/health", handlers.Health)

	// ============================================================================
	// AUTENTICACIÓN (con rate limiting estricto)
	// ============================================================================
	api.Post("/login", middleware.AuthRateLimiter(), handlers.Login)
	api.Post("/register", middleware.AuthRateLimiter(), handlers.Register)

	// ============================================================================
	// RUTAS - paraderos, geometría y lookup
	// ============================================================================
	routesGroup := api.Group("/routes")
	routesGroup.Use(middleware.APIRateLimiter())

	routesGroup.Get("/lookup", handlers.LookupRoute)
	// GET /api/routes/lookup?number=221&transport_type_id=1&direction=forward

	routesGroup.Get("/:id/stops", handlers.RouteStops)
	// GET /api/routes/12/stops - paraderos en orden de recorrido con tiempos

	routesGroup.Get("/:id/points", handlers.RoutePoints)
	// GET /api/routes/12/points - polilínea completa como GeoJSON

	routesGroup.Get("/:id/schedule", handlers.RouteSchedule)
	// GET /api/routes/12/schedule?stop_id=443&now=08:30 - salidas y llegadas

	// ============================================================================
	// PARADEROS - búsqueda espacial
	// ============================================================================
	api.Get("/stops/near", middleware.APIRateLimiter(), handlers.NearbyStops)
	// GET /api/stops/near?lon=-70.65&lat=-33.45&radius_m=800&limit=10

	// ============================================================================
	// PLANIFICADOR DE ITINERARIOS (operación costosa)
	// ============================================================================
	api.Post("/planner/itinerary", middleware.PlannerRateLimiter(), handlers.PlanItinerary)
	// POST /api/planner/itinerary
	// Body: {origin_lon, origin_lat, dest_lon, dest_lat, radius_m, max_wait_min, max_results, now}

	// ============================================================================
	// VIAJES DESPACHADOS
	// ============================================================================
	api.Get("/trips/:id/deviation", middleware.APIRateLimiter(), handlers.TripDeviation)
	// GET /api/trips/511/deviation - clasifica el viaje contra su horario

	// ============================================================================
	// OPERACIONES (requieren autenticación)
	// ============================================================================
	ops := api.Group("", handlers.RequireAuth)

	ops.Post("/tickets/purchase", handlers.PurchaseTicket)
	// POST /api/tickets/purchase - delega en sp_purchase_ticket

	ops.Post("/fines", handlers.RequireDispatcher, handlers.IssueFine)
	// POST /api/fines - delega en sp_issue_fine (solo despachadores)

	ops.Get("/vehicles", handlers.ListVehicles)
	ops.Get("/drivers", handlers.ListDrivers)

	// ============================================================================
	// ADMINISTRACIÓN DE CACHÉ (solo despachadores)
	// ============================================================================
	ops.Get("/cache/stats", handlers.GetCacheStats)
	ops.Delete("/cache", handlers.RequireDispatcher, handlers.ClearCache)

	// ============================================================================
	// PANEL DE DESPACHO (WebSocket)
	// ============================================================================
	app.Use("/ws/dispatch", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/dispatch", websocket.New(func(c *websocket.Conn) {
		hub.HandleConn(c)
	}))
}
