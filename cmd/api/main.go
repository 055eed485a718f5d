/**
 * @description
 * Main entry point for the Dira Backend API.
 * Initializes the Fiber web server, loads configuration, hydrates the market
 * ledger from Postgres, and sets up the REST and GraphQL routes.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2: Web framework
 * - backend/internal/config: Config loader
 * - backend/internal/db: Database connections
 *
 * @notes
 * - Connects to Postgres and Redis on startup.
 * - Sets up basic middleware (CORS, Logger, Recover).
 */

package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dira-markets/backend/internal/api"
	"github.com/dira-markets/backend/internal/config"
	"github.com/dira-markets/backend/internal/db"
	"github.com/dira-markets/backend/internal/ledger"
	"github.com/dira-markets/backend/internal/services"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize Database Connections
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// 3. Hydrate the shared market ledger
	marketLedger := ledger.New()
	marketService := services.NewMarketService(marketLedger, pgDB, redisClient, cfg.Cache.TTL)
	if err := marketService.LoadFromDatabase(context.Background()); err != nil {
		log.Fatalf("Failed to hydrate ledger: %v", err)
	}
	if marketLedger.Len() == 0 {
		log.Println("⚠️  No markets in database. Run cmd/seed to load the seed dataset.")
	}

	hub := services.NewUpdateStreamHub(redisClient, services.BetUpdateChannel)

	// 4. Initialize Fiber App
	app := fiber.New(fiber.Config{
		AppName: "Dira Markets API",
	})

	// 5. Global Middleware
	app.Use(recover.New())     // Panic recovery
	app.Use(fiberlogger.New()) // Request logging
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// 6. Routes
	if err := api.SetupRoutes(app, marketService, hub); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// 7. Start Server
	log.Printf("🚀 Dira API server running on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
