// ============================================================================
// TRANSIT SERVICE - TransitCL
// ============================================================================
// Capa de lectura sobre el colaborador de persistencia (MySQL).
// Trae las filas crudas de referencia, reconstruye las secuencias
// enlazadas UNA vez por request (arena en memoria, nunca se vuelve a
// recorrer la cadena de punteros) y entrega vistas ya proyectadas al
// resto del sistema. No muta ninguna entidad.
// ============================================================================

package transit

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/yourorg/transitcl/internal/cache"
	"github.com/yourorg/transitcl/internal/chain"
	"github.com/yourorg/transitcl/internal/geo"
	"github.com/yourorg/transitcl/internal/geometry"
	"github.com/yourorg/transitcl/internal/models"
	"github.com/yourorg/transitcl/internal/planner"
)

// Service centraliza las lecturas de datos de referencia del motor
type Service struct {
	db *sql.DB
}

// NewService crea una instancia del servicio de datos de tránsito
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// ============================================================================
// RUTAS
// ============================================================================

// RouteByID busca una ruta por id. sql.ErrNoRows si no existe.
func (s *Service) RouteByID(id int64) (models.Route, error) {
	var r models.Route
	var paired sql.NullInt64
	err := s.db.QueryRow(`
		SELECT id, transport_type_id, number, direction, active, paired_route_id
		FROM routes
		WHERE id = ?
	`, id).Scan(&r.ID, &r.TransportTypeID, &r.Number, &r.Direction, &r.Active, &paired)
	if err != nil {
		return r, err
	}
	if paired.Valid {
		r.PairedRouteID = &paired.Int64
	}
	return r, nil
}

// RouteByNumber resuelve una ruta por número + tipo de transporte +
// dirección (la tríada con la que consultan los frontends operativos)
func (s *Service) RouteByNumber(number string, transportTypeID int64, direction string) (models.Route, error) {
	var r models.Route
	var paired sql.NullInt64
	err := s.db.QueryRow(`
		SELECT id, transport_type_id, number, direction, active, paired_route_id
		FROM routes
		WHERE number = ? AND transport_type_id = ? AND direction = ?
		LIMIT 1
	`, number, transportTypeID, direction).Scan(&r.ID, &r.TransportTypeID, &r.Number, &r.Direction, &r.Active, &paired)
	if err != nil {
		return r, err
	}
	if paired.Valid {
		r.PairedRouteID = &paired.Int64
	}
	return r, nil
}

// ============================================================================
// SECUENCIAS ENLAZADAS (paraderos y puntos)
// ============================================================================

// rawStopsForRoute trae las filas crudas de route_stops con el JOIN a stops
func (s *Service) rawStopsForRoute(routeID int64) ([]models.RouteStop, error) {
	rows, err := s.db.Query(`
		SELECT rs.id, rs.route_id, rs.stop_id,
		       rs.prev_route_stop_id, rs.next_route_stop_id, rs.distance_to_next_km,
		       st.name, st.longitude, st.latitude
		FROM route_stops rs
		JOIN stops st ON st.id = rs.stop_id
		WHERE rs.route_id = ?
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("query route stops: %w", err)
	}
	defer rows.Close()

	stops := make([]models.RouteStop, 0, 32)
	for rows.Next() {
		var rs models.RouteStop
		var prev, next sql.NullInt64
		var dist sql.NullFloat64
		if err := rows.Scan(&rs.ID, &rs.RouteID, &rs.StopID, &prev, &next, &dist,
			&rs.StopName, &rs.Longitude, &rs.Latitude); err != nil {
			return nil, fmt.Errorf("scan route stop: %w", err)
		}
		if prev.Valid {
			rs.PrevRouteStopID = &prev.Int64
		}
		if next.Valid {
			rs.NextRouteStopID = &next.Int64
		}
		if dist.Valid {
			rs.DistanceToNextKm = &dist.Float64
		}
		stops = append(stops, rs)
	}
	return stops, rows.Err()
}

// rawPointsForRoute trae las filas crudas de route_points
func (s *Service) rawPointsForRoute(routeID int64) ([]models.RoutePoint, error) {
	rows, err := s.db.Query(`
		SELECT id, route_id, longitude, latitude, prev_point_id, next_point_id
		FROM route_points
		WHERE route_id = ?
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("query route points: %w", err)
	}
	defer rows.Close()

	points := make([]models.RoutePoint, 0, 64)
	for rows.Next() {
		var p models.RoutePoint
		var prev, next sql.NullInt64
		if err := rows.Scan(&p.ID, &p.RouteID, &p.Longitude, &p.Latitude, &prev, &next); err != nil {
			return nil, fmt.Errorf("scan route point: %w", err)
		}
		if prev.Valid {
			p.PrevPointID = &prev.Int64
		}
		if next.Valid {
			p.NextPointID = &next.Int64
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// OrderedStops retorna la secuencia ordenada de paraderos de una ruta.
// Cadenas rotas degradan a orden por id (nunca error).
func (s *Service) OrderedStops(routeID int64) ([]models.RouteStop, error) {
	raw, err := s.rawStopsForRoute(routeID)
	if err != nil {
		return nil, err
	}
	return chain.Reconstruct(raw), nil
}

// OrderedPoints retorna la polilínea ordenada de una ruta
func (s *Service) OrderedPoints(routeID int64) ([]models.RoutePoint, error) {
	raw, err := s.rawPointsForRoute(routeID)
	if err != nil {
		return nil, err
	}
	return chain.Reconstruct(raw), nil
}

// TimedStops retorna los paraderos de una ruta con distancias y tiempos
// ya proyectados sobre la polilínea. Cachea por ruta (TTL corto).
func (s *Service) TimedStops(routeID int64) ([]models.TimedStop, []models.RoutePoint, error) {
	type cached struct {
		stops  []models.TimedStop
		points []models.RoutePoint
	}

	key := fmt.Sprintf("route:%d:timed", routeID)
	if cache.RoutesCache != nil {
		if v, found := cache.RoutesCache.Get(key); found {
			c := v.(cached)
			return c.stops, c.points, nil
		}
	}

	stops, err := s.OrderedStops(routeID)
	if err != nil {
		return nil, nil, err
	}
	points, err := s.OrderedPoints(routeID)
	if err != nil {
		return nil, nil, err
	}

	timed := geometry.ProjectStops(stops, points)

	if cache.RoutesCache != nil {
		cache.RoutesCache.Set(key, cached{stops: timed, points: points})
	}
	return timed, points, nil
}

// ============================================================================
// HORARIOS Y VIAJES
// ============================================================================

// ScheduleForRoute retorna el horario vigente de una ruta (cacheado)
func (s *Service) ScheduleForRoute(routeID int64) (models.Schedule, error) {
	key := fmt.Sprintf("schedule:%d", routeID)
	if cache.SchedulesCache != nil {
		if v, found := cache.SchedulesCache.Get(key); found {
			return v.(models.Schedule), nil
		}
	}

	var sc models.Schedule
	err := s.db.QueryRow(`
		SELECT id, route_id, work_start_time, work_end_time, interval_min
		FROM schedules
		WHERE route_id = ?
		LIMIT 1
	`, routeID).Scan(&sc.ID, &sc.RouteID, &sc.WorkStartTime, &sc.WorkEndTime, &sc.IntervalMin)
	if err != nil {
		return sc, err
	}

	if cache.SchedulesCache != nil {
		cache.SchedulesCache.Set(key, sc)
	}
	return sc, nil
}

// TripByID retorna un viaje despachado
func (s *Service) TripByID(id int64) (models.Trip, error) {
	var t models.Trip
	var plannedEnd, actualStart, actualEnd sql.NullTime
	err := s.db.QueryRow(`
		SELECT id, route_id, vehicle_id, driver_id,
		       planned_start, planned_end, actual_start, actual_end, passenger_count
		FROM trips
		WHERE id = ?
	`, id).Scan(&t.ID, &t.RouteID, &t.VehicleID, &t.DriverID,
		&t.PlannedStart, &plannedEnd, &actualStart, &actualEnd, &t.PassengerCount)
	if err != nil {
		return t, err
	}
	if plannedEnd.Valid {
		t.PlannedEnd = &plannedEnd.Time
	}
	if actualStart.Valid {
		t.ActualStart = &actualStart.Time
	}
	if actualEnd.Valid {
		t.ActualEnd = &actualEnd.Time
	}
	return t, nil
}

// ============================================================================
// BÚSQUEDA ESPACIAL
// ============================================================================

// StopsNear retorna hasta limit paraderos dentro del radio (metros),
// ordenados del más cercano al más lejano. El filtro grueso es un
// bounding box en SQL; la distancia fina se calcula con el Haversine
// compartido (una sola implementación en todo el sistema).
func (s *Service) StopsNear(lon, lat, radiusM float64, limit int) ([]models.Stop, error) {
	key := fmt.Sprintf("near:%.4f:%.4f:%.0f:%d", lon, lat, radiusM, limit)
	if cache.StopsCache != nil {
		if v, found := cache.StopsCache.Get(key); found {
			return v.([]models.Stop), nil
		}
	}

	// 1 grado ≈ 111 km en el ecuador
	radiusDeg := radiusM / 111000.0

	rows, err := s.db.Query(`
		SELECT id, name, longitude, latitude
		FROM stops
		WHERE latitude  BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`, lat-radiusDeg, lat+radiusDeg, lon-radiusDeg, lon+radiusDeg)
	if err != nil {
		return nil, fmt.Errorf("query nearby stops: %w", err)
	}
	defer rows.Close()

	type withDist struct {
		stop models.Stop
		dist float64
	}
	cands := make([]withDist, 0, 16)
	for rows.Next() {
		var st models.Stop
		if err := rows.Scan(&st.ID, &st.Name, &st.Longitude, &st.Latitude); err != nil {
			continue
		}
		d := geo.DistanceMeters(lon, lat, st.Longitude, st.Latitude)
		if d <= radiusM {
			cands = append(cands, withDist{stop: st, dist: d})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })
	if limit > 0 && len(cands) > limit {
		cands = cands[:limit]
	}

	stops := make([]models.Stop, len(cands))
	for i, c := range cands {
		stops[i] = c.stop
	}

	if cache.StopsCache != nil {
		cache.StopsCache.Set(key, stops)
	}
	return stops, nil
}

// ============================================================================
// SNAPSHOT PARA EL PLANNER
// ============================================================================

// PlannerSnapshot arma el snapshot de todas las rutas activas con sus
// secuencias reconstruidas y proyectadas. Es el insumo inmutable del
// planner; se cachea porque recorre todas las rutas.
func (s *Service) PlannerSnapshot() ([]planner.RouteData, error) {
	const key = "planner:snapshot"
	if cache.PlannerCache != nil {
		if v, found := cache.PlannerCache.Get(key); found {
			return v.([]planner.RouteData), nil
		}
	}

	rows, err := s.db.Query(`
		SELECT id, transport_type_id, number, direction, active, paired_route_id
		FROM routes
		WHERE active = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("query active routes: %w", err)
	}
	defer rows.Close()

	routes := make([]models.Route, 0, 32)
	for rows.Next() {
		var r models.Route
		var paired sql.NullInt64
		if err := rows.Scan(&r.ID, &r.TransportTypeID, &r.Number, &r.Direction, &r.Active, &paired); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		if paired.Valid {
			r.PairedRouteID = &paired.Int64
		}
		routes = append(routes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snapshot := make([]planner.RouteData, 0, len(routes))
	for _, r := range routes {
		timed, points, err := s.TimedStops(r.ID)
		if err != nil {
			return nil, fmt.Errorf("timed stops for route %d: %w", r.ID, err)
		}
		if len(timed) < 2 {
			// Una ruta sin al menos dos paraderos no aporta aristas
			continue
		}
		snapshot = append(snapshot, planner.RouteData{Route: r, Stops: timed, Points: points})
	}

	if cache.PlannerCache != nil {
		cache.PlannerCache.SetWithTTL(key, snapshot, 5*time.Minute)
	}
	return snapshot, nil
}
