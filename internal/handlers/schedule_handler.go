package handlers

import (
	"database/sql"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yourorg/transitcl/internal/models"
	"github.com/yourorg/transitcl/internal/timetable"
)

// ============================================================================
// HANDLERS DE HORARIOS
// ============================================================================

// RouteSchedule handles GET /api/routes/:id/schedule?stop_id=&now=
// Retorna las salidas del terminal durante la ventana de operación.
// Con stop_id, corre cada salida por los minutos proyectados desde el
// inicio de la ruta hasta ese paradero. Con now (HH:MM), incluye la
// próxima salida respecto de esa hora.
func RouteSchedule(c *fiber.Ctx) error {
	s := getService()
	if s == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	routeID, err := parseRouteID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	sched, err := s.ScheduleForRoute(routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "schedule not found"})
		}
		log.Printf("❌ Error consultando horario de ruta %d: %v", routeID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	departures := timetable.GenerateDepartures(sched.WorkStartTime, sched.WorkEndTime, sched.IntervalMin)

	resp := fiber.Map{
		"route_id":     routeID,
		"work_start":   sched.WorkStartTime,
		"work_end":     sched.WorkEndTime,
		"interval_min": sched.IntervalMin,
		"departures":   departures,
	}

	// Llegadas a un paradero específico: salida + minutos desde inicio
	if stopParam := strings.TrimSpace(c.Query("stop_id")); stopParam != "" {
		stopID, err := strconv.ParseInt(stopParam, 10, 64)
		if err != nil || stopID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid stop_id"})
		}

		timed, _, err := s.TimedStops(routeID)
		if err != nil {
			log.Printf("❌ Error proyectando paraderos de ruta %d: %v", routeID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
		}

		var offset *float64
		for _, ts := range timed {
			if ts.StopID == stopID {
				offset = ts.MinutesFromStart
				break
			}
		}
		if offset == nil {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "stop not on route"})
		}

		arrivals := make([]string, len(departures))
		for i, dep := range departures {
			arrivals[i] = timetable.AddMinutes(dep, *offset)
		}
		resp["stop_id"] = stopID
		resp["minutes_from_start"] = *offset
		resp["arrivals"] = arrivals
	}

	// Próxima salida: respecto de ?now= o de la hora del servidor
	nowClock := strings.TrimSpace(c.Query("now"))
	if nowClock == "" {
		nowClock = time.Now().Format("15:04")
	}
	nowMin, err := timetable.ParseClock(nowClock)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid now, expected HH:MM"})
	}
	resp["now"] = nowClock
	resp["next_departure"] = timetable.NearestDeparture(sched.WorkStartTime, sched.WorkEndTime, sched.IntervalMin, nowMin)

	return c.JSON(resp)
}
