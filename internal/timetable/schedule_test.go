package timetable

import (
	"testing"
	"time"

	"github.com/yourorg/transitcl/internal/models"
)

func TestGenerateDeparturesSingleInstant(t *testing.T) {
	got := GenerateDepartures("08:00", "08:00", 10)

	if len(got) != 1 || got[0] != "08:00" {
		t.Errorf("Expected [08:00], got %v", got)
	}
}

func TestGenerateDeparturesInclusiveWindow(t *testing.T) {
	got := GenerateDepartures("08:00", "08:25", 10)

	want := []string{"08:00", "08:10", "08:20"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestGenerateDeparturesEndInclusive(t *testing.T) {
	got := GenerateDepartures("08:00", "08:30", 10)

	if len(got) != 4 || got[3] != "08:30" {
		t.Errorf("Expected last departure 08:30 included, got %v", got)
	}
}

func TestGenerateDeparturesInvalidConfig(t *testing.T) {
	cases := []struct {
		name     string
		start    string
		end      string
		interval int
	}{
		{"interval zero", "08:00", "10:00", 0},
		{"interval negative", "08:00", "10:00", -5},
		{"end before start", "10:00", "08:00", 10},
		{"bad start", "25:00", "10:00", 10},
		{"bad end", "08:00", "garbage", 10},
	}

	for _, tc := range cases {
		got := GenerateDepartures(tc.start, tc.end, tc.interval)
		if len(got) != 0 {
			t.Errorf("%s: expected empty list, got %v", tc.name, got)
		}
	}
}

func TestGenerateDeparturesSecondsResolution(t *testing.T) {
	// workStartTime con segundos (formato de la tabla schedules)
	got := GenerateDepartures("06:30:00", "07:00:00", 15)

	if len(got) != 3 || got[0] != "06:30" || got[2] != "07:00" {
		t.Errorf("Expected [06:30 06:45 07:00], got %v", got)
	}
}

func TestAddMinutesWrapsMidnight(t *testing.T) {
	if got := AddMinutes("23:50", 20); got != "00:10" {
		t.Errorf("Expected 00:10, got %s", got)
	}
}

func TestAddMinutesNegativeWrap(t *testing.T) {
	if got := AddMinutes("00:10", -20); got != "23:50" {
		t.Errorf("Expected 23:50, got %s", got)
	}
}

func TestAddMinutesPlain(t *testing.T) {
	if got := AddMinutes("08:00", 95); got != "09:35" {
		t.Errorf("Expected 09:35, got %s", got)
	}
}

func TestNearestDepartureBeforeWindow(t *testing.T) {
	// 07:30 -> primera salida
	if got := NearestDeparture("08:00", "20:00", 10, 450); got != "08:00" {
		t.Errorf("Expected 08:00, got %s", got)
	}
}

func TestNearestDepartureInsideWindow(t *testing.T) {
	// 08:17 -> la mayor salida <= now es 08:10
	if got := NearestDeparture("08:00", "20:00", 10, 497); got != "08:10" {
		t.Errorf("Expected 08:10, got %s", got)
	}
}

func TestNearestDepartureAfterWindow(t *testing.T) {
	// 21:00 -> clamp a la última salida (08:25 con intervalo 10 -> 08:20)
	if got := NearestDeparture("08:00", "08:25", 10, 1260); got != "08:20" {
		t.Errorf("Expected 08:20, got %s", got)
	}
}

func TestNearestDepartureInvalid(t *testing.T) {
	if got := NearestDeparture("08:00", "07:00", 10, 500); got != "" {
		t.Errorf("Expected empty string, got %q", got)
	}
}

func TestParseClockFormats(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"00:00", 0},
		{"08:30", 510},
		{"23:59", 1439},
		{"06:30:30", 390.5},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q): expected %f, got %f", tc.in, tc.want, got)
		}
	}
}

func TestParseClockInvalid(t *testing.T) {
	for _, in := range []string{"", "8", "24:00", "08:60", "aa:bb", "08:00:99"} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q): expected error", in)
		}
	}
}

// ============================================================================
// Desviación de viajes
// ============================================================================

func mkTrip(planned string, actual string) models.Trip {
	p, _ := time.Parse("15:04:05", planned)
	trip := models.Trip{ID: 1, RouteID: 10, PlannedStart: p}
	if actual != "" {
		a, _ := time.Parse("15:04:05", actual)
		trip.ActualStart = &a
	}
	return trip
}

func TestDeviationLate(t *testing.T) {
	dev := Deviation(mkTrip("08:00:00", "08:07:00"))

	if dev.DelayMinutes == nil || *dev.DelayMinutes != 7 {
		t.Fatalf("Expected delay 7, got %v", dev.DelayMinutes)
	}
	if dev.Status != StatusLate {
		t.Errorf("Expected late, got %s", dev.Status)
	}
}

func TestDeviationEarly(t *testing.T) {
	dev := Deviation(mkTrip("08:00:00", "07:54:00"))

	if dev.DelayMinutes == nil || *dev.DelayMinutes != -6 {
		t.Fatalf("Expected delay -6, got %v", dev.DelayMinutes)
	}
	if dev.Status != StatusEarly {
		t.Errorf("Expected early, got %s", dev.Status)
	}
}

func TestDeviationOnTime(t *testing.T) {
	dev := Deviation(mkTrip("08:00:00", "08:02:00"))

	if dev.DelayMinutes == nil || *dev.DelayMinutes != 2 {
		t.Fatalf("Expected delay 2, got %v", dev.DelayMinutes)
	}
	if dev.Status != StatusOnTime {
		t.Errorf("Expected on time, got %s", dev.Status)
	}
}

func TestDeviationBoundary(t *testing.T) {
	// Exactamente +5 sigue siendo "on time" (el umbral es estricto)
	dev := Deviation(mkTrip("08:00:00", "08:05:00"))
	if dev.Status != StatusOnTime {
		t.Errorf("Expected on time at +5, got %s", dev.Status)
	}

	dev = Deviation(mkTrip("08:00:00", "08:06:00"))
	if dev.Status != StatusLate {
		t.Errorf("Expected late at +6, got %s", dev.Status)
	}
}

func TestDeviationUnknown(t *testing.T) {
	dev := Deviation(mkTrip("08:00:00", ""))

	if dev.DelayMinutes != nil {
		t.Errorf("Expected nil delay, got %d", *dev.DelayMinutes)
	}
	if dev.Status != StatusUnknown {
		t.Errorf("Expected unknown, got %s", dev.Status)
	}
}
