package main

import (
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/yourorg/transitcl/internal/cache"
	"github.com/yourorg/transitcl/internal/chain"
	appdb "github.com/yourorg/transitcl/internal/db"
	"github.com/yourorg/transitcl/internal/handlers"
	"github.com/yourorg/transitcl/internal/metrics"
	"github.com/yourorg/transitcl/internal/middleware"
	"github.com/yourorg/transitcl/internal/monitor"
	"github.com/yourorg/transitcl/internal/routes"
)

func main() {
	_ = godotenv.Load()

	app := fiber.New()
	app.Use(logger.New())
	app.Use(middleware.GlobalRateLimiter())

	// ============================================================================
	// CACHÉS Y MÉTRICAS
	// ============================================================================
	cache.InitCaches()

	collector := metrics.NewCollector()
	chain.OnFallback = collector.ChainFallbacks.Inc
	app.Use(middleware.Metrics(collector))

	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9091"
	}
	metricsSrv := collector.Serve(metricsAddr)

	hub := monitor.NewHub()
	hub.OnClientCount = func(n int) { collector.WSClients.Set(float64(n)) }

	// ============================================================================
	// DB CONNECTION
	// ============================================================================
	var dbReady atomic.Bool

	go func() {
		for {
			db, err := appdb.Connect()
			if err != nil {
				log.Printf("db connect error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			if err := appdb.EnsureSchema(db); err != nil {
				log.Printf("ensure schema error: %v (retrying in 5s)", err)
				time.Sleep(5 * time.Second)
				continue
			}
			handlers.Setup(db, collector, hub)
			routes.Register(app, hub)
			dbReady.Store(true)
			log.Printf("✅ Database ready and routes registered")
			return
		}
	}()

	// Wait briefly for DB to be ready
	for i := 0; i < 10 && !dbReady.Load(); i++ {
		time.Sleep(500 * time.Millisecond)
	}

	// ============================================================================
	// GRACEFUL SHUTDOWN
	// ============================================================================
	// Capturar señales de terminación (Ctrl+C, kill, etc.)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Señal de terminación recibida, cerrando servidor...")

		if err := metricsSrv.Close(); err != nil {
			log.Printf("⚠️  Error cerrando servidor de métricas: %v", err)
		}
		cache.StopCaches()

		// Cerrar servidor Fiber
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️  Error cerrando servidor: %v", err)
		}

		log.Println("✅ Servidor cerrado correctamente")
		os.Exit(0)
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Servidor escuchando en :%s", port)
	log.Println("📍 Endpoints disponibles:")
	log.Println("   ═══ RUTAS Y PARADEROS ═══")
	log.Println("   GET  /api/routes/lookup             - Resolver ruta por número")
	log.Println("   GET  /api/routes/:id/stops          - Paraderos en orden de recorrido")
	log.Println("   GET  /api/routes/:id/points         - Polilínea GeoJSON")
	log.Println("   GET  /api/routes/:id/schedule       - Salidas y llegadas")
	log.Println("   GET  /api/stops/near                - Paraderos cercanos")
	log.Println("")
	log.Println("   ═══ PLANIFICACIÓN Y DESPACHO ═══")
	log.Println("   POST /api/planner/itinerary         - Itinerarios origen → destino")
	log.Println("   GET  /api/trips/:id/deviation       - Desviación de horario")
	log.Println("   WS   /ws/dispatch                   - Panel de despacho en vivo")
	log.Println("")
	log.Println("💡 Presiona Ctrl+C para detener")
	log.Printf("💡 Métricas Prometheus en %s/metrics", metricsAddr)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
