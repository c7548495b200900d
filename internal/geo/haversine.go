package geo

import "math"

// ============================================================================
// DISTANCIA GEODÉSICA - Haversine
// ============================================================================
// Única implementación de Haversine del sistema. Todos los demás
// componentes (reconstrucción, proyección, planner, búsqueda espacial)
// dependen de este paquete; no duplicar la fórmula en otros módulos.

// EarthRadiusKm radio medio de la Tierra usado por todo el sistema
const EarthRadiusKm = 6371.0

// DistanceKm calcula la distancia de círculo máximo entre dos
// coordenadas (lon, lat) en grados, en kilómetros.
// Función pura: sin efectos; NaN en la entrada se propaga a la salida.
func DistanceKm(lon1, lat1, lon2, lat2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceMeters es la misma distancia expresada en metros
// (los radios de búsqueda de los handlers se reciben en metros)
func DistanceMeters(lon1, lat1, lon2, lat2 float64) float64 {
	return DistanceKm(lon1, lat1, lon2, lat2) * 1000.0
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
