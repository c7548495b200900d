package handlers

import (
	"database/sql"
	"log"
	"os"
	"sync"
	"time"

	"github.com/yourorg/transitcl/internal/metrics"
	"github.com/yourorg/transitcl/internal/monitor"
	"github.com/yourorg/transitcl/internal/transit"
)

// package-level dependencies
var (
	setupOnce sync.Once    // Garantiza inicialización única
	setupMu   sync.RWMutex // Protege acceso a variables globales
	dbConn    *sql.DB
	svc       *transit.Service
	collector *metrics.Collector
	hub       *monitor.Hub
	jwtSecret []byte
	tokenTTL  = 24 * time.Hour
)

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(db *sql.DB, col *metrics.Collector, h *monitor.Hub) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()

		dbConn = db
		svc = transit.NewService(db)
		collector = col
		hub = h

		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			// Verificar si estamos en producción
			if os.Getenv("ENV") == "production" || os.Getenv("ENVIRONMENT") == "production" {
				log.Fatal("❌ CRITICAL: JWT_SECRET must be set in production environment")
			}
			log.Println("⚠️ WARNING: Using default JWT secret (development only)")
			secret = "dev-secret-change-me-32-characters!!"
		}

		// Validar longitud mínima del secret
		if len(secret) < 32 {
			log.Fatalf("❌ CRITICAL: JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
		}

		jwtSecret = []byte(secret)

		if ttl := os.Getenv("JWT_TTL"); ttl != "" {
			dur, err := time.ParseDuration(ttl)
			if err != nil || dur <= 0 {
				log.Printf("invalid JWT_TTL=%q, using default %s", ttl, tokenTTL)
			} else {
				tokenTTL = dur
			}
		}
	})
}

// getDBConn retorna la conexión de base de datos de forma segura
func getDBConn() *sql.DB {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return dbConn
}

// getService retorna el servicio de datos de tránsito de forma segura
func getService() *transit.Service {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return svc
}

// getCollector retorna el colector de métricas (puede ser nil en tests)
func getCollector() *metrics.Collector {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return collector
}

// getHub retorna el hub de monitoreo de despacho (puede ser nil)
func getHub() *monitor.Hub {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return hub
}

// getJWTSecret retorna el secret JWT de forma segura
func getJWTSecret() []byte {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return jwtSecret
}
