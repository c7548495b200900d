package handlers

import (
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitcl/internal/geometry"
	"github.com/yourorg/transitcl/internal/models"
)

// ============================================================================
// HANDLERS DE RUTAS - paraderos, geometría y lookup
// ============================================================================

// parseRouteID extrae y valida el :id de la URL
func parseRouteID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid route id")
	}
	return id, nil
}

// RouteStops handles GET /api/routes/:id/stops
// Retorna los paraderos de la ruta en orden de recorrido, con distancia
// al siguiente paradero y tiempos estimados a velocidad comercial.
func RouteStops(c *fiber.Ctx) error {
	s := getService()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	routeID, err := parseRouteID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	route, err := s.RouteByID(routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "route not found"})
		}
		log.Printf("❌ Error consultando ruta %d: %v", routeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	timed, _, err := s.TimedStops(routeID)
	if err != nil {
		log.Printf("❌ Error proyectando paraderos de ruta %d: %v", routeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	return c.JSON(fiber.Map{
		"route_id":   route.ID,
		"number":     route.Number,
		"direction":  route.Direction,
		"stop_count": len(timed),
		"stops":      timed,
	})
}

// RoutePoints handles GET /api/routes/:id/points
// Retorna la polilínea completa de la ruta como GeoJSON LineString.
func RoutePoints(c *fiber.Ctx) error {
	s := getService()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	routeID, err := parseRouteID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	if _, err := s.RouteByID(routeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "route not found"})
		}
		log.Printf("❌ Error consultando ruta %d: %v", routeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	points, err := s.OrderedPoints(routeID)
	if err != nil {
		log.Printf("❌ Error consultando puntos de ruta %d: %v", routeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	return c.JSON(fiber.Map{
		"route_id":    routeID,
		"point_count": len(points),
		"geometry":    geometry.FullLineString(points),
	})
}

// LookupRoute handles GET /api/routes/lookup?number=&transport_type_id=&direction=
// Resuelve una ruta por su tríada operativa.
func LookupRoute(c *fiber.Ctx) error {
	s := getService()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	number := strings.TrimSpace(c.Query("number"))
	direction := strings.TrimSpace(c.Query("direction"))
	ttID, err := strconv.ParseInt(c.Query("transport_type_id"), 10, 64)

	if number == "" || err != nil || ttID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "number and transport_type_id required"})
	}
	if direction != "forward" && direction != "reverse" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "direction must be forward or reverse"})
	}

	route, err := s.RouteByNumber(number, ttID, direction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "route not found"})
		}
		log.Printf("❌ Error en lookup de ruta %s: %v", number, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	return c.JSON(route)
}

// NearbyStops handles GET /api/stops/near?lon=&lat=&radius_m=&limit=
// Retorna los paraderos dentro del radio, ordenados por cercanía.
func NearbyStops(c *fiber.Ctx) error {
	s := getService()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	if errLon != nil || errLat != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "lon and lat required"})
	}

	radiusM, err := strconv.ParseFloat(c.Query("radius_m", "800"), 64)
	if err != nil || radiusM <= 0 || radiusM > 5000 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "radius_m must be between 0 and 5000"})
	}
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 || limit > 50 {
		limit = 10
	}

	stops, err := s.StopsNear(lon, lat, radiusM, limit)
	if err != nil {
		log.Printf("❌ Error buscando paraderos cercanos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	return c.JSON(fiber.Map{
		"count": len(stops),
		"stops": stops,
	})
}
