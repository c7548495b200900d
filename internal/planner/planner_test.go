package planner

import (
	"math"
	"testing"

	"github.com/yourorg/transitcl/internal/models"
)

func fptr(v float64) *float64 { return &v }

// timedStop arma un TimedStop con tramo siguiente conocido
func timedStop(stopID int64, name string, lon, lat float64, kmNext, minNext float64) models.TimedStop {
	ts := models.TimedStop{StopID: stopID, Name: name, Longitude: lon, Latitude: lat}
	if minNext >= 0 {
		ts.DistanceToNextKm = fptr(kmNext)
		ts.MinutesToNext = fptr(minNext)
	}
	return ts
}

// Red de prueba:
//
//	Ruta 101 (directa):    A -> B -> C -> D   (7 + 7 + 6 = 20 min)
//	Ruta 202:              A -> E             (8 min)
//	Ruta 303:              E -> D             (8 min)
//
// El camino con transbordo A-E-D suma 16 min de viaje + espera;
// con espera corta es más rápido en crudo que la directa.
func testNetwork() []RouteData {
	a := func(kmNext, minNext float64) models.TimedStop {
		return timedStop(1, "Plaza A", -70.700, -33.450, kmNext, minNext)
	}
	b := timedStop(2, "Avenida B", -70.690, -33.450, 1.5, 7)
	c := timedStop(3, "Calle C", -70.680, -33.450, 1.5, 6)
	d := timedStop(4, "Terminal D", -70.670, -33.450, 0, -1)
	e := timedStop(5, "Intermodal E", -70.690, -33.440, 2.0, 8)
	dEnd := timedStop(4, "Terminal D", -70.670, -33.450, 0, -1)
	eEnd := timedStop(5, "Intermodal E", -70.690, -33.440, 0, -1)

	return []RouteData{
		{
			Route: models.Route{ID: 1, Number: "101", Direction: "forward", TransportTypeID: 1, Active: true},
			Stops: []models.TimedStop{a(1.5, 7), b, c, d},
		},
		{
			Route: models.Route{ID: 2, Number: "202", Direction: "forward", TransportTypeID: 1, Active: true},
			Stops: []models.TimedStop{a(2.0, 8), eEnd},
		},
		{
			Route: models.Route{ID: 3, Number: "303", Direction: "forward", TransportTypeID: 1, Active: true},
			Stops: []models.TimedStop{e, dEnd},
		},
	}
}

func testRequest() Request {
	return Request{
		OriginLon: -70.7001, OriginLat: -33.4501, // junto a Plaza A
		DestLon: -70.6701, DestLat: -33.4501, // junto a Terminal D
		RadiusM:    300,
		MaxWaitMin: 2,
		MaxResults: 5,
		NowClock:   "08:00",
	}
}

func TestPlanPrefersDirectRouteWithinPenalty(t *testing.T) {
	p := New(testNetwork())

	options := p.Plan(testRequest())

	if len(options) < 2 {
		t.Fatalf("Expected at least 2 options, got %d", len(options))
	}

	// El camino con transbordo es más rápido en crudo (18 vs 20 min),
	// pero el castigo de 5 min por transbordo debe dejar primero a la directa
	top := options[0]
	if top.TransferCount != 0 {
		t.Fatalf("Expected zero-transfer option ranked first, got %d transfers", top.TransferCount)
	}
	if top.Segments[0].RouteNumber != "101" {
		t.Errorf("Expected direct route 101 first, got %s", top.Segments[0].RouteNumber)
	}
}

func TestPlanDirectSegmentShape(t *testing.T) {
	p := New(testNetwork())

	options := p.Plan(testRequest())
	if len(options) == 0 {
		t.Fatal("Expected options")
	}

	var direct *models.PlannedRouteOption
	for i := range options {
		if options[i].TransferCount == 0 {
			direct = &options[i]
			break
		}
	}
	if direct == nil {
		t.Fatal("Expected a direct option")
	}

	if len(direct.Segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(direct.Segments))
	}
	seg := direct.Segments[0]

	if seg.FromStop.StopID != 1 || seg.ToStop.StopID != 4 {
		t.Errorf("Expected segment A->D, got %d->%d", seg.FromStop.StopID, seg.ToStop.StopID)
	}
	if seg.StopCount != 4 {
		t.Errorf("Expected 4 stops, got %d", seg.StopCount)
	}
	if seg.TravelTimeMin != 20 {
		t.Errorf("Expected 20 min, got %f", seg.TravelTimeMin)
	}
	if seg.DepartureTime != "08:00" || seg.ArrivalTime != "08:20" {
		t.Errorf("Expected 08:00 -> 08:20, got %s -> %s", seg.DepartureTime, seg.ArrivalTime)
	}
	if seg.Geometry.Type != "LineString" || len(seg.Geometry.Coordinates) < 2 {
		t.Errorf("Expected LineString geometry, got %+v", seg.Geometry)
	}
}

func TestPlanTransferOption(t *testing.T) {
	p := New(testNetwork())

	options := p.Plan(testRequest())

	var withTransfer *models.PlannedRouteOption
	for i := range options {
		if options[i].TransferCount == 1 {
			withTransfer = &options[i]
			break
		}
	}
	if withTransfer == nil {
		t.Fatal("Expected an option with one transfer")
	}

	if len(withTransfer.Segments) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(withTransfer.Segments))
	}
	if withTransfer.Segments[0].RouteNumber != "202" || withTransfer.Segments[1].RouteNumber != "303" {
		t.Errorf("Expected 202 then 303, got %s then %s",
			withTransfer.Segments[0].RouteNumber, withTransfer.Segments[1].RouteNumber)
	}

	tr := withTransfer.Transfers[0]
	if tr.StopID != 5 {
		t.Errorf("Expected transfer at Intermodal E (5), got %d", tr.StopID)
	}
	if tr.FromRoute != "202" || tr.ToRoute != "303" {
		t.Errorf("Expected transfer 202->303, got %s->%s", tr.FromRoute, tr.ToRoute)
	}
	if tr.WaitTimeMin != 2 {
		t.Errorf("Expected wait 2 min, got %f", tr.WaitTimeMin)
	}

	// 8 + 2 de espera + 8 = 18
	if withTransfer.TotalTimeMin != 18 {
		t.Errorf("Expected total 18 min, got %f", withTransfer.TotalTimeMin)
	}
}

func TestPlanTotalTimeConsistency(t *testing.T) {
	p := New(testNetwork())

	for _, opt := range p.Plan(testRequest()) {
		sum := 0.0
		for _, s := range opt.Segments {
			sum += s.TravelTimeMin
		}
		for _, tr := range opt.Transfers {
			sum += tr.WaitTimeMin
		}
		if math.Abs(sum-opt.TotalTimeMin) > 0.1 {
			t.Errorf("Total %f does not match segment+wait sum %f", opt.TotalTimeMin, sum)
		}
	}
}

func TestPlanNoCandidates(t *testing.T) {
	p := New(testNetwork())

	req := testRequest()
	req.OriginLon, req.OriginLat = -71.5, -34.5 // lejos de toda la red

	options := p.Plan(req)
	if options == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(options) != 0 {
		t.Errorf("Expected no options, got %d", len(options))
	}
}

func TestPlanNoPath(t *testing.T) {
	// Dos rutas sin paradero compartido: origen y destino quedan en
	// componentes desconectadas
	network := []RouteData{
		{
			Route: models.Route{ID: 1, Number: "101", Direction: "forward"},
			Stops: []models.TimedStop{
				timedStop(1, "A", -70.700, -33.450, 1, 5),
				timedStop(2, "B", -70.690, -33.450, 0, -1),
			},
		},
		{
			Route: models.Route{ID: 2, Number: "202", Direction: "forward"},
			Stops: []models.TimedStop{
				timedStop(3, "C", -70.600, -33.450, 1, 5),
				timedStop(4, "D", -70.590, -33.450, 0, -1),
			},
		},
	}
	p := New(network)

	req := testRequest()
	req.DestLon, req.DestLat = -70.5901, -33.4501 // junto a D

	options := p.Plan(req)
	if len(options) != 0 {
		t.Errorf("Expected no options across disconnected routes, got %d", len(options))
	}
}

func TestPlanDefaults(t *testing.T) {
	p := New(testNetwork())

	req := testRequest()
	req.RadiusM = 0
	req.MaxWaitMin = 0
	req.MaxResults = 0

	// No debe entrar en pánico ni retornar más de DefaultMaxResults
	options := p.Plan(req)
	if len(options) > DefaultMaxResults {
		t.Errorf("Expected at most %d options, got %d", DefaultMaxResults, len(options))
	}
}

func BenchmarkPlan(b *testing.B) {
	p := New(testNetwork())
	req := testRequest()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Plan(req)
	}
}
