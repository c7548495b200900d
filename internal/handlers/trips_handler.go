package handlers

import (
	"database/sql"
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitcl/internal/models"
	"github.com/yourorg/transitcl/internal/timetable"
)

// ============================================================================
// HANDLERS DE VIAJES DESPACHADOS
// ============================================================================

// TripDeviation handles GET /api/trips/:id/deviation
// Compara la salida real contra la planificada y clasifica el viaje.
// Cada desviación resuelta se difunde al panel de despacho conectado.
func TripDeviation(c *fiber.Ctx) error {
	s := getService()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	tripID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || tripID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid trip id"})
	}

	trip, err := s.TripByID(tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "trip not found"})
		}
		log.Printf("❌ Error consultando viaje %d: %v", tripID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	dev := timetable.Deviation(trip)

	if col := getCollector(); col != nil {
		col.DeviationChecks.WithLabelValues(dev.Status).Inc()
	}
	if h := getHub(); h != nil {
		h.BroadcastDeviation(dev)
	}

	return c.JSON(dev)
}
