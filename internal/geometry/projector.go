package geometry

import (
	"math"

	"github.com/yourorg/transitcl/internal/geo"
	"github.com/yourorg/transitcl/internal/models"
)

// ============================================================================
// PROYECCIÓN DE PARADEROS SOBRE LA POLILÍNEA DE RUTA
// ============================================================================
// Mapea cada paradero ordenado al vértice más cercano de la polilínea
// física de la ruta y deriva distancia acumulada y tiempo de viaje por
// tramo. El escaneo de vértices es lineal: las rutas tienen decenas de
// puntos, no hace falta índice espacial.

// AverageSpeedKmh es la velocidad comercial promedio asumida para
// convertir distancia en tiempo. Constante de negocio heredada del
// despacho; confirmar con producto antes de ajustar.
const AverageSpeedKmh = 25.0

// coordEpsilonDeg umbral en grados para decidir si el vértice más
// cercano coincide "exactamente" con el paradero (~11 m en latitud)
const coordEpsilonDeg = 0.0001

// MinutesForKm convierte kilómetros a minutos de viaje a velocidad
// promedio, redondeado a un decimal
func MinutesForKm(km float64) float64 {
	return round1(km / AverageSpeedKmh * 60.0)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// CumulativeKm calcula la distancia acumulada a lo largo de la
// polilínea en cada vértice (índice 0 = 0, monótona no decreciente).
// Con menos de 2 puntos no hay polilínea utilizable: retorna nil.
func CumulativeKm(points []models.RoutePoint) []float64 {
	if len(points) < 2 {
		return nil
	}

	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		cum[i] = cum[i-1] + geo.DistanceKm(prev.Longitude, prev.Latitude, cur.Longitude, cur.Latitude)
	}
	return cum
}

// NearestPointIndex encuentra el índice del vértice más cercano a la
// coordenada dada (escaneo completo)
func NearestPointIndex(points []models.RoutePoint, lon, lat float64) int {
	minDist := math.MaxFloat64
	closest := 0

	for i, p := range points {
		d := geo.DistanceKm(lon, lat, p.Longitude, p.Latitude)
		if d < minDist {
			minDist = d
			closest = i
		}
	}
	return closest
}

// ProjectStops deriva distancias y tiempos por paradero a partir de la
// secuencia ordenada de paraderos y la polilínea ordenada de la ruta
// (posiblemente vacía).
//
// Con polilínea disponible, los minutos-desde-inicio se calculan
// directamente desde la distancia acumulada relativa al primer paradero
// para no componer error de redondeo; la sumatoria de tramos es solo el
// fallback cuando no existe polilínea.
func ProjectStops(stops []models.RouteStop, points []models.RoutePoint) []models.TimedStop {
	out := make([]models.TimedStop, len(stops))
	for i, s := range stops {
		out[i] = models.TimedStop{
			StopID:    s.StopID,
			Name:      s.StopName,
			Longitude: s.Longitude,
			Latitude:  s.Latitude,
		}
	}
	if len(stops) == 0 {
		return out
	}

	cum := CumulativeKm(points)

	if cum != nil {
		// Mapear cada paradero a su vértice más cercano
		cumAtStop := make([]float64, len(stops))
		for i, s := range stops {
			idx := NearestPointIndex(points, s.Longitude, s.Latitude)
			cumAtStop[i] = cum[idx]
		}

		// Un paradero mapeado a un vértice anterior al de su predecesor
		// (cadena y polilínea desalineadas) no puede hacer retroceder la
		// distancia acumulada: se fija al valor del paradero anterior.
		prevFromStart := 0.0
		for i := range stops {
			if i < len(stops)-1 {
				d := cumAtStop[i+1] - cumAtStop[i]
				if d < 0 {
					d = 0
				}
				d = round3(d)
				m := MinutesForKm(d)
				out[i].DistanceToNextKm = &d
				out[i].MinutesToNext = &m
			}

			fromStart := cumAtStop[i] - cumAtStop[0]
			if fromStart < prevFromStart {
				fromStart = prevFromStart
			}
			prevFromStart = fromStart
			m := MinutesForKm(fromStart)
			out[i].MinutesFromStart = &m
		}
		return out
	}

	// Sin polilínea: usar el DistanceToNextKm autoritativo cuando exista
	for i, s := range stops {
		if i < len(stops)-1 && s.DistanceToNextKm != nil {
			d := round3(*s.DistanceToNextKm)
			m := MinutesForKm(d)
			out[i].DistanceToNextKm = &d
			out[i].MinutesToNext = &m
		}
	}

	// Minutos desde inicio por sumatoria; si falta un tramo intermedio,
	// los paraderos siguientes quedan sin valor (nil)
	zero := 0.0
	out[0].MinutesFromStart = &zero
	acc := 0.0
	known := true
	for i := 1; i < len(out); i++ {
		if !known || out[i-1].MinutesToNext == nil {
			known = false
			continue
		}
		acc += *out[i-1].MinutesToNext
		m := round1(acc)
		out[i].MinutesFromStart = &m
	}

	return out
}

// ============================================================================
// GEOMETRÍA EXPUESTA (GeoJSON LineString)
// ============================================================================

// FullLineString arma el LineString completo de la polilínea de una ruta
func FullLineString(points []models.RoutePoint) models.LineString {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Longitude, p.Latitude}
	}
	return models.LineString{Type: "LineString", Coordinates: coords}
}

// SegmentLineString extrae el tramo de polilínea entre dos paraderos.
// El resultado empieza y termina EXACTAMENTE en las coordenadas de los
// paraderos: si el vértice más cercano difiere en más de 0.0001° en
// cualquier eje, se inserta la coordenada propia del paradero.
func SegmentLineString(points []models.RoutePoint, from, to models.TimedStop) models.LineString {
	if len(points) < 2 {
		// Sin polilínea: línea recta entre paraderos
		return models.LineString{
			Type: "LineString",
			Coordinates: [][]float64{
				{from.Longitude, from.Latitude},
				{to.Longitude, to.Latitude},
			},
		}
	}

	startIdx := NearestPointIndex(points, from.Longitude, from.Latitude)
	endIdx := NearestPointIndex(points, to.Longitude, to.Latitude)
	if startIdx > endIdx {
		// Índices invertidos: anomalía de datos, degradar a línea recta
		return models.LineString{
			Type: "LineString",
			Coordinates: [][]float64{
				{from.Longitude, from.Latitude},
				{to.Longitude, to.Latitude},
			},
		}
	}

	coords := make([][]float64, 0, endIdx-startIdx+3)

	first := points[startIdx]
	if coordDiffers(first.Longitude, first.Latitude, from.Longitude, from.Latitude) {
		coords = append(coords, []float64{from.Longitude, from.Latitude})
	}
	for i := startIdx; i <= endIdx; i++ {
		coords = append(coords, []float64{points[i].Longitude, points[i].Latitude})
	}
	last := points[endIdx]
	if coordDiffers(last.Longitude, last.Latitude, to.Longitude, to.Latitude) {
		coords = append(coords, []float64{to.Longitude, to.Latitude})
	}

	return models.LineString{Type: "LineString", Coordinates: coords}
}

func coordDiffers(lon1, lat1, lon2, lat2 float64) bool {
	return math.Abs(lon1-lon2) > coordEpsilonDeg || math.Abs(lat1-lat2) > coordEpsilonDeg
}
