package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitcl/internal/cache"
	"github.com/yourorg/transitcl/internal/models"
	"github.com/yourorg/transitcl/internal/planner"
	"github.com/yourorg/transitcl/internal/timetable"
	"github.com/yourorg/transitcl/internal/validation"
)

// ============================================================================
// HANDLER DEL PLANIFICADOR DE ITINERARIOS
// ============================================================================

// PlanRequest es el cuerpo de POST /api/planner/itinerary
type PlanRequest struct {
	OriginLon  float64 `json:"origin_lon"`
	OriginLat  float64 `json:"origin_lat"`
	DestLon    float64 `json:"dest_lon"`
	DestLat    float64 `json:"dest_lat"`
	RadiusM    float64 `json:"radius_m,omitempty"`
	MaxWaitMin float64 `json:"max_wait_min,omitempty"`
	MaxResults int     `json:"max_results,omitempty"`
	Now        string  `json:"now,omitempty"` // "HH:MM"
}

// PlanItinerary handles POST /api/planner/itinerary
// Busca hasta max_results itinerarios entre origen y destino usando el
// snapshot de rutas activas. Respuestas sin alternativas retornan 200
// con lista vacía (no es un error del cliente).
func PlanItinerary(c *fiber.Ctx) error {
	s := getService()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}

	if err := validation.ValidateCoordinatePair(req.OriginLat, req.OriginLon, "origin"); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if err := validation.ValidateCoordinatePair(req.DestLat, req.DestLon, "dest"); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if validation.IsZeroCoordinate(req.OriginLat, req.OriginLon) || validation.IsZeroCoordinate(req.DestLat, req.DestLon) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "coordinates required"})
	}
	if err := validation.ValidateServiceArea(req.OriginLat, req.OriginLon); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if err := validation.ValidateServiceArea(req.DestLat, req.DestLon); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: err.Error()})
	}
	if req.RadiusM < 0 || req.RadiusM > 5000 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "radius_m must be between 0 and 5000"})
	}

	nowClock := strings.TrimSpace(req.Now)
	if nowClock == "" {
		nowClock = time.Now().Format("15:04")
	} else if _, err := timetable.ParseClock(nowClock); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "invalid now, expected HH:MM"})
	}

	if col := getCollector(); col != nil {
		col.PlannerRequests.Inc()
	}

	// Cache por consulta redondeada a ~11 m (4 decimales)
	cacheKey := fmt.Sprintf("plan:%.4f:%.4f:%.4f:%.4f:%.0f:%.0f:%d:%s",
		req.OriginLon, req.OriginLat, req.DestLon, req.DestLat,
		req.RadiusM, req.MaxWaitMin, req.MaxResults, nowClock)
	if cache.PlannerCache != nil {
		if v, found := cache.PlannerCache.Get(cacheKey); found {
			return c.JSON(v)
		}
	}

	snapshot, err := s.PlannerSnapshot()
	if err != nil {
		log.Printf("❌ Error armando snapshot del planner: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	start := time.Now()
	options := planner.New(snapshot).Plan(planner.Request{
		OriginLon:  req.OriginLon,
		OriginLat:  req.OriginLat,
		DestLon:    req.DestLon,
		DestLat:    req.DestLat,
		RadiusM:    req.RadiusM,
		MaxWaitMin: req.MaxWaitMin,
		MaxResults: req.MaxResults,
		NowClock:   nowClock,
	})
	elapsed := time.Since(start)

	if col := getCollector(); col != nil {
		col.PlannerDuration.Observe(elapsed.Seconds())
		if len(options) == 0 {
			col.PlannerNoResults.Inc()
		}
	}
	log.Printf("🗺️ Planner: %d opciones en %v", len(options), elapsed)

	resp := fiber.Map{
		"now":     nowClock,
		"count":   len(options),
		"options": options,
	}
	if cache.PlannerCache != nil {
		cache.PlannerCache.Set(cacheKey, resp)
	}
	return c.JSON(resp)
}
