/**
 * @description
 * Market API Handlers.
 * Exposes endpoints to fetch market data (list, featured, by id) and an SSE
 * stream of bet updates.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/dira-markets/backend/internal/ledger"
	"github.com/dira-markets/backend/internal/services"
)

type MarketHandler struct {
	Service *services.MarketService
	Hub     *services.UpdateStreamHub
}

func NewMarketHandler(service *services.MarketService, hub *services.UpdateStreamHub) *MarketHandler {
	return &MarketHandler{Service: service, Hub: hub}
}

// GetMarkets returns the full unfiltered market list
// GET /api/markets
func (h *MarketHandler) GetMarkets(c *fiber.Ctx) error {
	markets, err := h.Service.ListMarkets(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch markets",
		})
	}
	return c.JSON(markets)
}

// GetFeaturedMarkets returns the featured subset
// GET /api/markets/featured
func (h *MarketHandler) GetFeaturedMarkets(c *fiber.Ctx) error {
	markets, err := h.Service.FeaturedMarkets(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch featured markets",
		})
	}
	return c.JSON(markets)
}

// GetMarket returns one market by id
// GET /api/markets/:id
func (h *MarketHandler) GetMarket(c *fiber.Ctx) error {
	market, err := h.Service.GetMarket(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ledger.ErrMarketNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Market not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch market"})
	}
	return c.JSON(market)
}

// StreamUpdates streams live bet updates over SSE
// GET /api/markets/stream
func (h *MarketHandler) StreamUpdates(c *fiber.Ctx) error {
	if h.Hub == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Streaming not available"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	requestCtx := c.Context()
	ch, unsubscribe := h.Hub.Subscribe()

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		requestDone := requestCtx.Done()

		for {
			select {
			case <-requestDone:
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", msg)
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}
