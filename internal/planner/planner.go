package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourorg/transitcl/internal/geo"
	"github.com/yourorg/transitcl/internal/geometry"
	"github.com/yourorg/transitcl/internal/models"
	"github.com/yourorg/transitcl/internal/timetable"
)

// ============================================================================
// PLANIFICADOR DE ITINERARIOS
// ============================================================================
// Dado un par de puntos geográficos arbitrarios: busca paraderos
// candidatos cercanos a cada extremo, corre Dijkstra repetido (con
// remoción de aristas) sobre el grafo ruta/paradero y arma itinerarios
// legibles con segmentos y transbordos, rankeados.
//
// Todo el cálculo es puro y request-scoped: el snapshot de rutas entra
// como parámetro y "ahora" es un argumento explícito, nunca el reloj
// del sistema.

// Valores por defecto y constantes de ranking.
// El castigo de 5 min por transbordo y la velocidad promedio de 25 km/h
// (en geometry) son decisiones de producto heredadas, no necesidades
// del algoritmo; confirmar antes de cambiar.
const (
	DefaultRadiusM         = 800.0
	DefaultMaxWaitMin      = 10.0
	DefaultMaxResults      = 5
	TransferRankPenaltyMin = 5.0

	// candidatos máximos por extremo
	candidateStopLimit = 5
)

// RouteData es el snapshot de una ruta ya reconstruida y proyectada
type RouteData struct {
	Route  models.Route
	Stops  []models.TimedStop
	Points []models.RoutePoint
}

// Request describe una consulta de planificación
type Request struct {
	OriginLon, OriginLat float64
	DestLon, DestLat     float64
	RadiusM              float64
	MaxWaitMin           float64
	MaxResults           int
	NowClock             string // "HH:MM", hora explícita del request
}

// Planner planifica itinerarios sobre un snapshot inmutable de rutas
type Planner struct {
	routes []RouteData

	// paraderos únicos (cualquier aparición) y rutas que los sirven
	stops        map[int64]models.TimedStop
	routesAtStop map[int64][]int // índices en routes

	// lookup por ruta para armar segmentos
	stopOnRoute []map[int64]models.TimedStop
}

// New indexa el snapshot. No retiene referencias mutables.
func New(routes []RouteData) *Planner {
	p := &Planner{
		routes:       routes,
		stops:        make(map[int64]models.TimedStop),
		routesAtStop: make(map[int64][]int),
		stopOnRoute:  make([]map[int64]models.TimedStop, len(routes)),
	}

	for ri, rd := range routes {
		p.stopOnRoute[ri] = make(map[int64]models.TimedStop, len(rd.Stops))
		for _, ts := range rd.Stops {
			p.stopOnRoute[ri][ts.StopID] = ts
			if _, seen := p.stops[ts.StopID]; !seen {
				p.stops[ts.StopID] = ts
			}
			p.routesAtStop[ts.StopID] = append(p.routesAtStop[ts.StopID], ri)
		}
	}
	return p
}

// Plan ejecuta la búsqueda completa. Ausencia de resultados (sin
// candidatos, sin caminos) es un resultado vacío válido, nunca error.
func (p *Planner) Plan(req Request) []models.PlannedRouteOption {
	if req.RadiusM <= 0 {
		req.RadiusM = DefaultRadiusM
	}
	if req.MaxWaitMin <= 0 {
		req.MaxWaitMin = DefaultMaxWaitMin
	}
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}

	options := []models.PlannedRouteOption{}

	originStops := p.nearestStops(req.OriginLon, req.OriginLat, req.RadiusM)
	destStops := p.nearestStops(req.DestLon, req.DestLat, req.RadiusM)
	if len(originStops) == 0 || len(destStops) == 0 {
		return options
	}

	g := p.buildGraph(originStops, destStops, req.MaxWaitMin)
	source := nodeKey{RouteID: virtualOrigin}
	target := nodeKey{RouteID: virtualDest}

	seen := make(map[string]bool)
	for k := 0; k < req.MaxResults; k++ {
		path := g.shortestPath(source, target)
		if path == nil {
			break
		}

		opt, ok := p.assemble(path, req)

		// Remover las aristas de viaje usadas para forzar alternativas
		// distintas en la siguiente iteración
		removed := false
		for _, e := range path {
			if e.RouteID > 0 {
				e.removed = true
				removed = true
			}
		}

		if ok {
			sig := optionSignature(opt)
			if !seen[sig] {
				seen[sig] = true
				options = append(options, opt)
			}
		}
		if !removed {
			break
		}
	}

	rankOptions(options)
	if len(options) > req.MaxResults {
		options = options[:req.MaxResults]
	}
	return options
}

// nearestStops retorna hasta candidateStopLimit paraderos dentro del
// radio, ordenados del más cercano al más lejano
func (p *Planner) nearestStops(lon, lat, radiusM float64) []int64 {
	type cand struct {
		stopID int64
		dist   float64
	}

	cands := make([]cand, 0, 8)
	for id, ts := range p.stops {
		d := geo.DistanceMeters(lon, lat, ts.Longitude, ts.Latitude)
		if d <= radiusM {
			cands = append(cands, cand{stopID: id, dist: d})
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].stopID < cands[j].stopID
	})

	if len(cands) > candidateStopLimit {
		cands = cands[:candidateStopLimit]
	}

	out := make([]int64, len(cands))
	for i, c := range cands {
		out[i] = c.stopID
	}
	return out
}

// buildGraph arma el grafo del request: aristas de viaje por ruta,
// aristas de transbordo entre rutas que comparten paradero y aristas
// virtuales de costo cero hacia los candidatos
func (p *Planner) buildGraph(originStops, destStops []int64, transferWaitMin float64) *graph {
	g := newGraph()

	// Aristas de viaje: tramos consecutivos de cada ruta
	for _, rd := range p.routes {
		routeID := rd.Route.ID
		for i := 0; i+1 < len(rd.Stops); i++ {
			from, to := rd.Stops[i], rd.Stops[i+1]
			if from.MinutesToNext == nil {
				continue
			}
			km := 0.0
			if from.DistanceToNextKm != nil {
				km = *from.DistanceToNextKm
			}
			g.addEdge(
				nodeKey{RouteID: routeID, StopID: from.StopID},
				nodeKey{RouteID: routeID, StopID: to.StopID},
				*from.MinutesToNext, km, routeID, false,
			)
		}
	}

	// Aristas de transbordo: mismo paradero físico, ruta distinta
	for stopID, routeIdxs := range p.routesAtStop {
		if len(routeIdxs) < 2 {
			continue
		}
		for _, a := range routeIdxs {
			for _, b := range routeIdxs {
				if a == b {
					continue
				}
				g.addEdge(
					nodeKey{RouteID: p.routes[a].Route.ID, StopID: stopID},
					nodeKey{RouteID: p.routes[b].Route.ID, StopID: stopID},
					transferWaitMin, 0, 0, true,
				)
			}
		}
	}

	// Nodos virtuales de origen y destino
	source := nodeKey{RouteID: virtualOrigin}
	target := nodeKey{RouteID: virtualDest}
	for _, stopID := range originStops {
		for _, ri := range p.routesAtStop[stopID] {
			g.addEdge(source, nodeKey{RouteID: p.routes[ri].Route.ID, StopID: stopID}, 0, 0, 0, false)
		}
	}
	for _, stopID := range destStops {
		for _, ri := range p.routesAtStop[stopID] {
			g.addEdge(nodeKey{RouteID: p.routes[ri].Route.ID, StopID: stopID}, target, 0, 0, 0, false)
		}
	}

	return g
}

// assemble convierte un camino de aristas en un itinerario legible:
// viajes consecutivos sobre la misma ruta se funden en un segmento;
// un transbordo cierra el segmento y registra la espera
func (p *Planner) assemble(path []*edge, req Request) (models.PlannedRouteOption, bool) {
	opt := models.PlannedRouteOption{
		Segments:  []models.PlannedSegment{},
		Transfers: []models.TransferPoint{},
	}

	routeByID := make(map[int64]int, len(p.routes))
	for ri, rd := range p.routes {
		routeByID[rd.Route.ID] = ri
	}

	cumMin := 0.0
	var cur *models.PlannedSegment
	var curRouteIdx int
	var pendingTransfer *int // índice en opt.Transfers sin ToRoute aún

	closeSegment := func() {
		if cur == nil {
			return
		}
		cur.TravelTimeMin = round1(cur.TravelTimeMin)
		cur.DistanceKm = round3(cur.DistanceKm)
		cur.ArrivalTime = timetable.AddMinutes(cur.DepartureTime, cur.TravelTimeMin)
		cur.Geometry = geometry.SegmentLineString(p.routes[curRouteIdx].Points, cur.FromStop, cur.ToStop)
		opt.Segments = append(opt.Segments, *cur)
		cur = nil
	}

	for _, e := range path {
		switch {
		case e.RouteID > 0: // viaje sobre una ruta
			ri := routeByID[e.RouteID]
			if cur == nil || cur.RouteID != e.RouteID {
				closeSegment()
				rd := p.routes[ri]
				fromStop := p.stopOnRoute[ri][e.From.StopID]
				seg := models.PlannedSegment{
					RouteID:       rd.Route.ID,
					RouteNumber:   rd.Route.Number,
					TransportType: rd.Route.TransportTypeID,
					Direction:     rd.Route.Direction,
					FromStop:      fromStop,
					ToStop:        p.stopOnRoute[ri][e.To.StopID],
					StopCount:     1,
					DepartureTime: timetable.AddMinutes(req.NowClock, cumMin),
				}
				cur = &seg
				curRouteIdx = ri
				if pendingTransfer != nil {
					opt.Transfers[*pendingTransfer].ToRoute = rd.Route.Number
					pendingTransfer = nil
				}
			} else {
				cur.ToStop = p.stopOnRoute[ri][e.To.StopID]
				cur.StopCount++
			}
			cur.DistanceKm += e.Km
			cur.TravelTimeMin += e.WeightMin
			cumMin += e.WeightMin

		case e.Transfer:
			fromNumber := ""
			if cur != nil {
				fromNumber = cur.RouteNumber
			}
			closeSegment()

			ts := p.stops[e.From.StopID]
			opt.Transfers = append(opt.Transfers, models.TransferPoint{
				StopID:      ts.StopID,
				StopName:    ts.Name,
				Longitude:   ts.Longitude,
				Latitude:    ts.Latitude,
				FromRoute:   fromNumber,
				WaitTimeMin: e.WeightMin,
			})
			idx := len(opt.Transfers) - 1
			pendingTransfer = &idx
			cumMin += e.WeightMin

		default:
			// arista virtual de origen/destino, costo cero
		}
	}
	closeSegment()

	if len(opt.Segments) == 0 {
		return opt, false
	}

	// StopCount cuenta paraderos, no tramos
	for i := range opt.Segments {
		opt.Segments[i].StopCount++
	}

	total := 0.0
	for _, s := range opt.Segments {
		total += s.TravelTimeMin
		opt.TotalKm += s.DistanceKm
	}
	for _, t := range opt.Transfers {
		total += t.WaitTimeMin
	}
	opt.TotalTimeMin = round1(total)
	opt.TotalKm = round3(opt.TotalKm)
	opt.TransferCount = len(opt.Transfers)

	return opt, true
}

// rankOptions ordena por tiempo total + castigo fijo por transbordo,
// desempatando por menos transbordos
func rankOptions(options []models.PlannedRouteOption) {
	sort.SliceStable(options, func(i, j int) bool {
		si := options[i].TotalTimeMin + float64(options[i].TransferCount)*TransferRankPenaltyMin
		sj := options[j].TotalTimeMin + float64(options[j].TransferCount)*TransferRankPenaltyMin
		if si != sj {
			return si < sj
		}
		return options[i].TransferCount < options[j].TransferCount
	})
}

func optionSignature(opt models.PlannedRouteOption) string {
	sig := ""
	for _, s := range opt.Segments {
		sig += fmt.Sprintf("%d:%d:%d|", s.RouteID, s.FromStop.StopID, s.ToStop.StopID)
	}
	return sig
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
