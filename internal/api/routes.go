/**
 * @description
 * API Route definitions.
 * Sets up the router groups and assigns handlers. Both the REST and GraphQL
 * surfaces are wired to the one shared market service.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/graph
 * - backend/internal/services
 */

package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dira-markets/backend/internal/api/handlers"
	"github.com/dira-markets/backend/internal/graph"
	"github.com/dira-markets/backend/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.MarketService, hub *services.UpdateStreamHub) error {
	// 1. Initialize Handlers
	marketHandler := handlers.NewMarketHandler(svc, hub)
	betHandler := handlers.NewBetHandler(svc)
	gqlHandler, err := graph.NewHandler(svc)
	if err != nil {
		return err
	}

	// 2. Define Routes
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "message": "Dira API is running"})
	})

	markets := api.Group("/markets")
	markets.Get("/", marketHandler.GetMarkets)
	markets.Get("/featured", marketHandler.GetFeaturedMarkets)
	markets.Get("/stream", marketHandler.StreamUpdates)
	markets.Get("/:id", marketHandler.GetMarket)
	markets.Get("/:id/bets", betHandler.GetMarketBets)

	api.Post("/bets", betHandler.PostBet)

	app.Post("/graphql", gqlHandler.Post)

	return nil
}
