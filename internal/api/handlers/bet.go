/**
 * @description
 * HTTP Handlers for bet placement.
 * Validates the request body at the boundary and maps ledger errors to HTTP
 * statuses; all mutation goes through the shared market service.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 * - backend/internal/ledger
 */

package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/dira-markets/backend/internal/ledger"
	"github.com/dira-markets/backend/internal/logger"
	"github.com/dira-markets/backend/internal/services"
)

type BetHandler struct {
	Service *services.MarketService
}

func NewBetHandler(service *services.MarketService) *BetHandler {
	return &BetHandler{Service: service}
}

// PlaceBetRequest is the POST /api/bets payload.
type PlaceBetRequest struct {
	MarketID string  `json:"marketId"`
	Outcome  string  `json:"outcome"`
	Amount   float64 `json:"amount"`
	UserID   string  `json:"userId"`
}

// PostBet handles POST /api/bets
// On success returns {success: true, bet, updatedMarket}.
func (h *BetHandler) PostBet(c *fiber.Ctx) error {
	var req PlaceBetRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}

	if strings.TrimSpace(req.MarketID) == "" || strings.TrimSpace(req.Outcome) == "" || strings.TrimSpace(req.UserID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields",
		})
	}

	bet, updated, err := h.Service.PlaceBet(c.Context(), req.MarketID, req.Outcome, req.Amount, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrMarketNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Market not found"})
		case errors.Is(err, ledger.ErrOutcomeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Outcome not found"})
		case errors.Is(err, ledger.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
		case errors.Is(err, ledger.ErrMarketClosed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Market is closed"})
		case errors.Is(err, ledger.ErrInvalidMarketState):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Outcome cannot be priced"})
		default:
			logger.Error("Error placing bet on %s: %v", req.MarketID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"bet":           bet,
		"updatedMarket": updated,
	})
}

// GetMarketBets returns a market's bet history
// GET /api/markets/:id/bets
func (h *BetHandler) GetMarketBets(c *fiber.Ctx) error {
	limit, offset, parseErr := parsePagination(c.Query("limit"), c.Query("offset"))
	if parseErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": parseErr.Error()})
	}

	bets, total, err := h.Service.ListBets(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		if errors.Is(err, ledger.ErrMarketNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Market not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bets"})
	}

	return c.JSON(fiber.Map{
		"data":   bets,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func parsePagination(limitRaw, offsetRaw string) (int, int, error) {
	limit := 50
	offset := 0
	if limitRaw != "" {
		val, err := strconv.Atoi(limitRaw)
		if err != nil || val <= 0 {
			return 0, 0, fmt.Errorf("invalid limit")
		}
		limit = val
	}
	if offsetRaw != "" {
		val, err := strconv.Atoi(offsetRaw)
		if err != nil || val < 0 {
			return 0, 0, fmt.Errorf("invalid offset")
		}
		offset = val
	}
	return limit, offset, nil
}
