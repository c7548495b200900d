package timetable

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// GENERADOR DE HORARIOS
// ============================================================================
// Toda la aritmética de horas se hace en minutos-desde-medianoche
// (float64, resolución de segundos); los strings "HH:MM[:SS]" solo se
// parsean y formatean en el borde. No se intenta cruzar medianoche en
// esta capa: una ventana con fin < inicio produce lista vacía, nunca
// un error (los consumidores solo chequean "¿lista vacía?").

const minutesPerDay = 24 * 60

// ParseClock convierte "HH:MM" o "HH:MM:SS" a minutos desde medianoche
func ParseClock(clock string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("hora inválida %q: se espera HH:MM o HH:MM:SS", clock)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("hora inválida %q: horas fuera de rango", clock)
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("hora inválida %q: minutos fuera de rango", clock)
	}

	total := float64(hours*60 + mins)
	if len(parts) == 3 {
		secs, err := strconv.Atoi(parts[2])
		if err != nil || secs < 0 || secs > 59 {
			return 0, fmt.Errorf("hora inválida %q: segundos fuera de rango", clock)
		}
		total += float64(secs) / 60.0
	}

	return total, nil
}

// FormatClock convierte minutos desde medianoche a "HH:MM",
// envolviendo en el límite de 24h (entradas negativas incluidas)
func FormatClock(minutes float64) string {
	total := int(math.Round(minutes))
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// AddMinutes suma un desplazamiento (posiblemente negativo) a una hora
// del día, envolviendo en medianoche
func AddMinutes(clock string, offset float64) string {
	base, err := ParseClock(clock)
	if err != nil {
		return clock
	}
	return FormatClock(base + offset)
}

// GenerateDepartures enumera las salidas desde workStart, cada
// intervalMin minutos, incluyendo cualquier instante <= workEnd.
// Configuración inválida (intervalo <= 0, fin < inicio, horas mal
// formadas) produce lista vacía.
func GenerateDepartures(workStart, workEnd string, intervalMin int) []string {
	if intervalMin <= 0 {
		return []string{}
	}

	start, err := ParseClock(workStart)
	if err != nil {
		return []string{}
	}
	end, err := ParseClock(workEnd)
	if err != nil {
		return []string{}
	}
	if end < start {
		return []string{}
	}

	departures := make([]string, 0, int((end-start)/float64(intervalMin))+1)
	for t := start; t <= end+1e-9; t += float64(intervalMin) {
		departures = append(departures, FormatClock(t))
	}
	return departures
}

// NearestDeparture mapea una hora arbitraria (minutos desde medianoche)
// a la salida planificada válida más cercana hacia atrás:
//   - en o antes del inicio de la ventana -> primera salida
//   - dentro de la ventana -> la mayor salida <= now
//   - después de la ventana -> última salida planificada
//
// Con configuración inválida retorna cadena vacía.
func NearestDeparture(workStart, workEnd string, intervalMin int, nowMin float64) string {
	if intervalMin <= 0 {
		return ""
	}

	start, err := ParseClock(workStart)
	if err != nil {
		return ""
	}
	end, err := ParseClock(workEnd)
	if err != nil || end < start {
		return ""
	}

	if nowMin <= start {
		return FormatClock(start)
	}

	n := math.Floor((nowMin - start) / float64(intervalMin))
	dep := start + n*float64(intervalMin)

	last := start + math.Floor((end-start)/float64(intervalMin))*float64(intervalMin)
	if dep > last {
		dep = last
	}

	return FormatClock(dep)
}
