package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/yourorg/transitcl/internal/models"
)

// ============================================================================
// HANDLERS OPERACIONALES - boletos, multas y flota
// ============================================================================
// La venta de boletos y la emisión de multas viven en procedimientos
// almacenados (los movimientos monetarios se auditan en la base). El
// API solo valida, genera el id de transacción y delega.

// PurchaseTicketRequest es el cuerpo de POST /api/tickets/purchase
type PurchaseTicketRequest struct {
	RouteID     int64   `json:"route_id"`
	PassengerID int64   `json:"passenger_id"`
	Amount      float64 `json:"amount"`
}

// PurchaseTicket handles POST /api/tickets/purchase
func PurchaseTicket(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	var req PurchaseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	if req.RouteID <= 0 || req.PassengerID <= 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "route_id and passenger_id required"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "amount must be positive"})
	}

	txID := uuid.NewString()
	if _, err := db.Exec(`CALL sp_purchase_ticket(?, ?, ?, ?)`,
		txID, req.RouteID, req.PassengerID, req.Amount); err != nil {
		log.Printf("❌ Error en sp_purchase_ticket tx=%s: %v", txID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "purchase failed"})
	}

	log.Printf("🎫 Boleto vendido: tx=%s ruta=%d pasajero=%d", txID, req.RouteID, req.PassengerID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"transaction_id": txID,
		"route_id":       req.RouteID,
		"passenger_id":   req.PassengerID,
		"amount":         req.Amount,
	})
}

// IssueFineRequest es el cuerpo de POST /api/fines
type IssueFineRequest struct {
	TripID      int64   `json:"trip_id"`
	PassengerID int64   `json:"passenger_id"`
	Reason      string  `json:"reason"`
	Amount      float64 `json:"amount"`
}

// IssueFine handles POST /api/fines
func IssueFine(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	var req IssueFineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: "invalid json"})
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.TripID <= 0 || req.PassengerID <= 0 || req.Reason == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "trip_id, passenger_id and reason required"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ErrorResponse{Error: "amount must be positive"})
	}

	fineID := uuid.NewString()
	if _, err := db.Exec(`CALL sp_issue_fine(?, ?, ?, ?, ?)`,
		fineID, req.TripID, req.PassengerID, req.Reason, req.Amount); err != nil {
		log.Printf("❌ Error en sp_issue_fine id=%s: %v", fineID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "fine registration failed"})
	}

	log.Printf("🚫 Multa emitida: id=%s viaje=%d pasajero=%d", fineID, req.TripID, req.PassengerID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"fine_id":      fineID,
		"trip_id":      req.TripID,
		"passenger_id": req.PassengerID,
		"reason":       req.Reason,
		"amount":       req.Amount,
	})
}

// ListVehicles handles GET /api/vehicles
func ListVehicles(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	rows, err := db.Query(`SELECT id, plate, transport_type_id, capacity, active FROM vehicles ORDER BY id`)
	if err != nil {
		log.Printf("❌ Error consultando vehículos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	defer rows.Close()

	vehicles := make([]models.Vehicle, 0, 32)
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.TransportTypeID, &v.Capacity, &v.Active); err != nil {
			log.Printf("❌ Error leyendo vehículo: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	return c.JSON(fiber.Map{"count": len(vehicles), "vehicles": vehicles})
}

// ListDrivers handles GET /api/drivers
func ListDrivers(c *fiber.Ctx) error {
	db := getDBConn()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "server not ready"})
	}

	rows, err := db.Query(`SELECT id, full_name, license, active FROM drivers ORDER BY full_name`)
	if err != nil {
		log.Printf("❌ Error consultando conductores: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}
	defer rows.Close()

	drivers := make([]models.Driver, 0, 32)
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.FullName, &d.License, &d.Active); err != nil {
			log.Printf("❌ Error leyendo conductor: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{Error: "db error"})
	}

	return c.JSON(fiber.Map{"count": len(drivers), "drivers": drivers})
}
