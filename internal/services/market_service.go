/**
 * @description
 * Service layer for market data and bet placement.
 * Orchestrates the in-memory ledger (the source of truth both API surfaces
 * share), the Postgres persistence collaborator, and the Redis cache /
 * pub-sub fan-out.
 *
 * @dependencies
 * - backend/internal/ledger
 * - backend/internal/models
 * - gorm.io/gorm
 * - github.com/redis/go-redis/v9
 */

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dira-markets/backend/internal/ledger"
	"github.com/dira-markets/backend/internal/logger"
	"github.com/dira-markets/backend/internal/models"
)

const (
	CacheKeyMarkets = "markets:all"
	DefaultCacheTTL = 5 * time.Minute

	// BetUpdateChannel carries one JSON BetUpdate per accepted placement.
	BetUpdateChannel = "market:updates"
)

// BetUpdate is the pub/sub payload published after each accepted bet.
type BetUpdate struct {
	Bet    ledger.Bet    `json:"bet"`
	Market ledger.Market `json:"market"`
}

// MarketService wires the ledger to its collaborators. DB and Redis may be
// nil (tests, mock mode); the ledger then runs purely in memory.
type MarketService struct {
	Ledger   *ledger.Ledger
	DB       *gorm.DB
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewMarketService(l *ledger.Ledger, db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *MarketService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &MarketService{
		Ledger:   l,
		DB:       db,
		Redis:    rdb,
		CacheTTL: cacheTTL,
	}
}

// LoadFromDatabase hydrates the ledger from Postgres. Markets come back in
// seed order so List keeps a stable ordering across restarts.
func (s *MarketService) LoadFromDatabase(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}

	var rows []models.Market
	if err := s.DB.WithContext(ctx).Preload("Outcomes").Order("created_at, id").Find(&rows).Error; err != nil {
		return fmt.Errorf("load markets: %w", err)
	}

	for i := range rows {
		if err := s.Ledger.Create(rows[i].ToLedger()); err != nil {
			return fmt.Errorf("hydrate market %s: %w", rows[i].ID, err)
		}
	}

	logger.Info("Hydrated ledger with %d markets", len(rows))
	return nil
}

// ListMarkets returns every market, preferring Cache -> Ledger
func (s *MarketService) ListMarkets(ctx context.Context) ([]ledger.Market, error) {
	if s.Redis != nil {
		val, err := s.Redis.Get(ctx, CacheKeyMarkets).Result()
		if err == nil {
			var markets []ledger.Market
			if err := json.Unmarshal([]byte(val), &markets); err == nil {
				return markets, nil
			}
			// If unmarshal fails, fall through to the ledger
		}
	}

	markets := s.Ledger.List()

	if s.Redis != nil {
		data, err := json.Marshal(markets)
		if err != nil {
			logger.Error("Failed to marshal markets for cache: %v", err)
		} else if err := s.Redis.Set(ctx, CacheKeyMarkets, data, s.CacheTTL).Err(); err != nil {
			logger.Error("Failed to set markets cache: %v", err)
		}
	}

	return markets, nil
}

// GetMarket returns one market by id.
func (s *MarketService) GetMarket(ctx context.Context, id string) (ledger.Market, error) {
	return s.Ledger.Get(id)
}

// FeaturedMarkets returns the featured subset.
func (s *MarketService) FeaturedMarkets(ctx context.Context) ([]ledger.Market, error) {
	return s.Ledger.Featured(), nil
}

// PlaceBet applies a bet through the ledger with the durable write inside the
// same atomic step: the Postgres transaction runs under the market's lock and
// a failed write discards the in-memory mutation. On success the market list
// cache is invalidated and a BetUpdate is published for streaming clients.
func (s *MarketService) PlaceBet(ctx context.Context, marketID, outcome string, amount float64, userID string) (ledger.Bet, ledger.Market, error) {
	bet, updated, err := s.Ledger.PlaceBet(marketID, outcome, amount, userID, s.persistBet(ctx))
	if err != nil {
		return ledger.Bet{}, ledger.Market{}, err
	}

	s.invalidateCache(ctx)
	s.publishUpdate(ctx, bet, updated)

	return bet, updated, nil
}

// CreateMarket registers a new market in the ledger and persists it. If the
// durable write fails the ledger entry is removed again.
func (s *MarketService) CreateMarket(ctx context.Context, m ledger.Market) (ledger.Market, error) {
	if err := s.Ledger.Create(m); err != nil {
		return ledger.Market{}, err
	}

	created, err := s.Ledger.Get(m.ID)
	if err != nil {
		return ledger.Market{}, err
	}

	if s.DB != nil {
		row := models.MarketFromLedger(created)
		if err := s.DB.WithContext(ctx).Create(&row).Error; err != nil {
			s.Ledger.Delete(m.ID)
			return ledger.Market{}, fmt.Errorf("persist market: %w", err)
		}
	}

	s.invalidateCache(ctx)
	return created, nil
}

// ListBets returns a market's bet history from Postgres, newest first.
func (s *MarketService) ListBets(ctx context.Context, marketID string, limit, offset int) ([]models.Bet, int64, error) {
	if _, err := s.Ledger.Get(marketID); err != nil {
		return nil, 0, err
	}
	if s.DB == nil {
		return []models.Bet{}, 0, nil
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Bet{}).Where("market_id = ?", marketID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bets []models.Bet
	if err := s.DB.WithContext(ctx).
		Where("market_id = ?", marketID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error; err != nil {
		return nil, 0, err
	}

	return bets, total, nil
}

// persistBet builds the PersistFunc handed to the ledger: one transaction
// covering the bet row, the market aggregates, and every outcome row.
func (s *MarketService) persistBet(ctx context.Context) ledger.PersistFunc {
	if s.DB == nil {
		return nil
	}

	return func(bet ledger.Bet, updated ledger.Market) error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			row := models.BetFromLedger(bet)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.Market{}).
				Where("id = ?", updated.ID).
				Updates(map[string]interface{}{
					"total_volume": updated.TotalVolume,
					"total_trades": updated.TotalTrades,
				}).Error; err != nil {
				return err
			}

			for _, o := range updated.Outcomes {
				if err := tx.Model(&models.Outcome{}).
					Where("market_id = ? AND name = ?", updated.ID, o.Name).
					Updates(map[string]interface{}{
						"volume":      o.Volume,
						"probability": o.Probability,
					}).Error; err != nil {
					return err
				}
			}

			return nil
		})
	}
}

func (s *MarketService) invalidateCache(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, CacheKeyMarkets).Err(); err != nil {
		logger.Error("Failed to invalidate markets cache: %v", err)
	}
}

func (s *MarketService) publishUpdate(ctx context.Context, bet ledger.Bet, market ledger.Market) {
	if s.Redis == nil {
		return
	}

	payload, err := json.Marshal(BetUpdate{Bet: bet, Market: market})
	if err != nil {
		logger.Error("Failed to marshal bet update: %v", err)
		return
	}
	if err := s.Redis.Publish(ctx, BetUpdateChannel, payload).Err(); err != nil {
		logger.Error("Failed to publish bet update: %v", err)
	}
}
