package timetable

import (
	"math"

	"github.com/yourorg/transitcl/internal/models"
)

// ============================================================================
// CÁLCULO DE DESVIACIÓN DE VIAJES
// ============================================================================

// Estados posibles de desviación
const (
	StatusEarly   = "early"
	StatusOnTime  = "on time"
	StatusLate    = "late"
	StatusUnknown = "unknown"
)

// DelayToleranceMin es el umbral de tolerancia en minutos (± 5).
// Regla de negocio fija de la capa operacional, no configurable aquí.
const DelayToleranceMin = 5

// Deviation compara inicio real vs planificado de un viaje.
// Sin hora real registrada, el delay queda en nil y el estado "unknown".
func Deviation(trip models.Trip) models.TripDeviation {
	dev := models.TripDeviation{
		TripID:  trip.ID,
		RouteID: trip.RouteID,
		Status:  StatusUnknown,
	}

	if trip.ActualStart == nil {
		return dev
	}

	diffMs := trip.ActualStart.Sub(trip.PlannedStart).Milliseconds()
	delay := int(math.Round(float64(diffMs) / 60000.0))
	dev.DelayMinutes = &delay

	switch {
	case delay > DelayToleranceMin:
		dev.Status = StatusLate
	case delay < -DelayToleranceMin:
		dev.Status = StatusEarly
	default:
		dev.Status = StatusOnTime
	}

	return dev
}
