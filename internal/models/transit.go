package models

import "time"

// ============================================================================
// ENTIDADES DE REFERENCIA (propiedad de los colaboradores administrativos)
// ============================================================================
// El motor de geometría solo LEE estas entidades; la creación y edición
// ocurre vía procedimientos almacenados en MySQL.

// Stop representa un paradero físico del sistema
type Stop struct {
	ID        int64   `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Latitude  float64 `json:"latitude" db:"latitude"`
}

// Route representa una línea de transporte direccional (ej: bus "12" ida)
type Route struct {
	ID              int64  `json:"id" db:"id"`
	TransportTypeID int64  `json:"transport_type_id" db:"transport_type_id"`
	Number          string `json:"number" db:"number"`
	Direction       string `json:"direction" db:"direction"` // "forward" | "reverse"
	Active          bool   `json:"active" db:"active"`
	PairedRouteID   *int64 `json:"paired_route_id,omitempty" db:"paired_route_id"`
}

// RoutePoint es un vértice crudo de la polilínea de una ruta.
// La secuencia se modela como lista doblemente enlazada por filas:
// exactamente un punto por ruta tiene PrevPointID = NULL (cabeza) y
// exactamente uno tiene NextPointID = NULL (cola).
type RoutePoint struct {
	ID          int64   `json:"id" db:"id"`
	RouteID     int64   `json:"route_id" db:"route_id"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	PrevPointID *int64  `json:"prev_point_id" db:"prev_point_id"`
	NextPointID *int64  `json:"next_point_id" db:"next_point_id"`
}

// ChainID implementa chain.Linked
func (p RoutePoint) ChainID() int64 { return p.ID }

// PrevID implementa chain.Linked
func (p RoutePoint) PrevID() *int64 { return p.PrevPointID }

// NextID implementa chain.Linked
func (p RoutePoint) NextID() *int64 { return p.NextPointID }

// RouteStop vincula un paradero a una ruta en orden de secuencia
// (misma forma de cadena enlazada que RoutePoint).
// DistanceToNextKm es autoritativo cuando está presente; si no,
// se deriva de la geometría de la polilínea.
type RouteStop struct {
	ID               int64    `json:"id" db:"id"`
	RouteID          int64    `json:"route_id" db:"route_id"`
	StopID           int64    `json:"stop_id" db:"stop_id"`
	PrevRouteStopID  *int64   `json:"prev_route_stop_id" db:"prev_route_stop_id"`
	NextRouteStopID  *int64   `json:"next_route_stop_id" db:"next_route_stop_id"`
	DistanceToNextKm *float64 `json:"distance_to_next_km" db:"distance_to_next_km"`

	// Datos del paradero, cargados con JOIN
	StopName  string  `json:"stop_name" db:"stop_name"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Latitude  float64 `json:"latitude" db:"latitude"`
}

// ChainID implementa chain.Linked
func (s RouteStop) ChainID() int64 { return s.ID }

// PrevID implementa chain.Linked
func (s RouteStop) PrevID() *int64 { return s.PrevRouteStopID }

// NextID implementa chain.Linked
func (s RouteStop) NextID() *int64 { return s.NextRouteStopID }

// Schedule representa la ventana de trabajo diaria de una ruta
type Schedule struct {
	ID            int64  `json:"id" db:"id"`
	RouteID       int64  `json:"route_id" db:"route_id"`
	WorkStartTime string `json:"work_start_time" db:"work_start_time"` // "HH:MM:SS"
	WorkEndTime   string `json:"work_end_time" db:"work_end_time"`
	IntervalMin   int    `json:"interval_min" db:"interval_min"`
}

// Trip representa un viaje despachado (producido por el despachador,
// consumido aquí solo para calcular desviación de horario)
type Trip struct {
	ID             int64      `json:"id" db:"id"`
	RouteID        int64      `json:"route_id" db:"route_id"`
	VehicleID      int64      `json:"vehicle_id" db:"vehicle_id"`
	DriverID       int64      `json:"driver_id" db:"driver_id"`
	PlannedStart   time.Time  `json:"planned_start" db:"planned_start"`
	PlannedEnd     *time.Time `json:"planned_end" db:"planned_end"`
	ActualStart    *time.Time `json:"actual_start" db:"actual_start"`
	ActualEnd      *time.Time `json:"actual_end" db:"actual_end"`
	PassengerCount int        `json:"passenger_count" db:"passenger_count"`
}

// Vehicle representa un vehículo de la flota
type Vehicle struct {
	ID              int64  `json:"id" db:"id"`
	Plate           string `json:"plate" db:"plate"`
	TransportTypeID int64  `json:"transport_type_id" db:"transport_type_id"`
	Capacity        int    `json:"capacity" db:"capacity"`
	Active          bool   `json:"active" db:"active"`
}

// Driver representa un conductor
type Driver struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
	License  string `json:"license" db:"license"`
	Active   bool   `json:"active" db:"active"`
}

// ============================================================================
// OBJETOS DE VISTA DEL MOTOR (derivados, nunca persistidos)
// ============================================================================

// TimedStop es un paradero de una ruta con distancias y tiempos derivados.
// Los campos puntero quedan en nil cuando los insumos no alcanzan para
// derivarlos (sin polilínea y sin distancia autoritativa).
type TimedStop struct {
	StopID           int64    `json:"stop_id"`
	Name             string   `json:"name"`
	Longitude        float64  `json:"longitude"`
	Latitude         float64  `json:"latitude"`
	DistanceToNextKm *float64 `json:"distance_to_next_km"`
	MinutesToNext    *float64 `json:"minutes_to_next"`
	MinutesFromStart *float64 `json:"minutes_from_start"`
}

// LineString es la forma GeoJSON con la que se expone geometría
type LineString struct {
	Type        string      `json:"type"` // siempre "LineString"
	Coordinates [][]float64 `json:"coordinates"`
}

// PlannedSegment es un tramo continuo sobre una sola ruta dentro de un
// itinerario planificado
type PlannedSegment struct {
	RouteID       int64      `json:"route_id"`
	RouteNumber   string     `json:"route_number"`
	TransportType int64      `json:"transport_type_id"`
	Direction     string     `json:"direction"`
	FromStop      TimedStop  `json:"from_stop"`
	ToStop        TimedStop  `json:"to_stop"`
	StopCount     int        `json:"stop_count"`
	DistanceKm    float64    `json:"distance_km"`
	TravelTimeMin float64    `json:"travel_time_min"`
	DepartureTime string     `json:"departure_time"` // "HH:MM"
	ArrivalTime   string     `json:"arrival_time"`
	Geometry      LineString `json:"geometry"`
}

// TransferPoint registra un transbordo entre dos segmentos
type TransferPoint struct {
	StopID      int64   `json:"stop_id"`
	StopName    string  `json:"stop_name"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
	FromRoute   string  `json:"from_route"`
	ToRoute     string  `json:"to_route"`
	WaitTimeMin float64 `json:"wait_time_min"`
}

// PlannedRouteOption es un itinerario completo, ya rankeado
type PlannedRouteOption struct {
	Segments      []PlannedSegment `json:"segments"`
	Transfers     []TransferPoint  `json:"transfers"`
	TransferCount int              `json:"transfer_count"`
	TotalKm       float64          `json:"total_km"`
	TotalTimeMin  float64          `json:"total_time_min"`
}

// TripDeviation clasifica la desviación de un viaje respecto a lo planificado
type TripDeviation struct {
	TripID       int64  `json:"trip_id"`
	RouteID      int64  `json:"route_id"`
	DelayMinutes *int   `json:"delay_minutes"` // nil si no hay hora real
	Status       string `json:"status"`        // "early" | "on time" | "late" | "unknown"
}
