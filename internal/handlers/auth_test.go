package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// Setup sin base de datos: suficiente para probar emisión y
// verificación de tokens y el guard de autenticación.
func setupForTests() {
	Setup(nil, nil, nil)
}

func TestIssueAndParseToken(t *testing.T) {
	setupForTests()

	token, expires, err := issueToken(7, "demo", "dispatcher")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if token == "" || expires.IsZero() {
		t.Fatal("token vacío o sin expiración")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Username != "demo" {
		t.Fatalf("Username = %q, esperado demo", claims.Username)
	}
	if claims.Role != "dispatcher" {
		t.Fatalf("Role = %q, esperado dispatcher", claims.Role)
	}
	if claims.Subject != "7" {
		t.Fatalf("Subject = %q, esperado 7", claims.Subject)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	setupForTests()

	if _, err := ParseToken("not-a-jwt"); err == nil {
		t.Fatal("token basura aceptado")
	}
}

func newGuardedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", RequireAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": c.Locals("username")})
	})
	app.Get("/dispatch", RequireAuth, RequireDispatcher, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireAuthMissingToken(t *testing.T) {
	setupForTests()
	app := newGuardedApp()

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, esperado 401", resp.StatusCode)
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	setupForTests()
	app := newGuardedApp()

	token, _, err := issueToken(1, "demo", "operator")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, esperado 200", resp.StatusCode)
	}
}

func TestRequireDispatcherRejectsOperator(t *testing.T) {
	setupForTests()
	app := newGuardedApp()

	token, _, err := issueToken(1, "demo", "operator")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/dispatch", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, esperado 403", resp.StatusCode)
	}
}

func TestRequireDispatcherAllowsDispatcher(t *testing.T) {
	setupForTests()
	app := newGuardedApp()

	token, _, err := issueToken(1, "jefa", "dispatcher")
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/dispatch", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, esperado 200", resp.StatusCode)
	}
}
