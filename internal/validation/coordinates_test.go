package validation

import (
	"math"
	"testing"
)

func TestValidateLatitudeRange(t *testing.T) {
	if err := ValidateLatitude(-33.45, "lat"); err != nil {
		t.Fatalf("latitud válida rechazada: %v", err)
	}
	if err := ValidateLatitude(91, "lat"); err == nil {
		t.Fatal("latitud 91 debería ser inválida")
	}
	if err := ValidateLatitude(-91, "lat"); err == nil {
		t.Fatal("latitud -91 debería ser inválida")
	}
}

func TestValidateLongitudeRange(t *testing.T) {
	if err := ValidateLongitude(-70.65, "lon"); err != nil {
		t.Fatalf("longitud válida rechazada: %v", err)
	}
	if err := ValidateLongitude(181, "lon"); err == nil {
		t.Fatal("longitud 181 debería ser inválida")
	}
}

func TestValidateRejectsNaNAndInf(t *testing.T) {
	if err := ValidateLatitude(math.NaN(), "lat"); err == nil {
		t.Fatal("NaN debería ser inválido")
	}
	if err := ValidateLongitude(math.Inf(1), "lon"); err == nil {
		t.Fatal("Inf debería ser inválido")
	}
}

func TestValidateCoordinatePairFieldNames(t *testing.T) {
	err := ValidateCoordinatePair(95, -70.65, "origin")
	if err == nil {
		t.Fatal("par inválido aceptado")
	}
	cerr, ok := err.(*CoordinateError)
	if !ok {
		t.Fatalf("tipo de error inesperado: %T", err)
	}
	if cerr.Field != "origin_lat" {
		t.Fatalf("Field = %q, esperado origin_lat", cerr.Field)
	}
}

func TestValidateServiceArea(t *testing.T) {
	// Santiago centro
	if err := ValidateServiceArea(-33.4372, -70.6506); err != nil {
		t.Fatalf("Santiago rechazado: %v", err)
	}
	// Valparaíso
	if err := ValidateServiceArea(-33.0458, -71.6197); err != nil {
		t.Fatalf("Valparaíso rechazado: %v", err)
	}
	// Antofagasta, fuera del área
	if err := ValidateServiceArea(-23.6509, -70.3975); err == nil {
		t.Fatal("Antofagasta debería quedar fuera del área de servicio")
	}
}

func TestIsZeroCoordinate(t *testing.T) {
	if !IsZeroCoordinate(0, 0) {
		t.Fatal("(0,0) debería detectarse")
	}
	if IsZeroCoordinate(-33.45, -70.65) {
		t.Fatal("coordenada real marcada como cero")
	}
}
