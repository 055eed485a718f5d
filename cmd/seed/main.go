/**
 * @description
 * Database seeder.
 * Migrates the schema, upserts the canonical market dataset into Postgres,
 * and warms the market list cache. Idempotent: re-running refreshes the
 * descriptive fields and leaves bet history alone.
 *
 * @dependencies
 * - backend/internal/seed
 * - backend/internal/models
 * - gorm.io/gorm (clause.OnConflict upserts)
 * - github.com/jackc/pgconn (retryable Postgres error codes)
 */

package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dira-markets/backend/internal/config"
	"github.com/dira-markets/backend/internal/db"
	"github.com/dira-markets/backend/internal/ledger"
	"github.com/dira-markets/backend/internal/models"
	"github.com/dira-markets/backend/internal/seed"
	"github.com/dira-markets/backend/internal/services"
)

func main() {
	log.Println("🌍 Seeding Dira database with African prediction markets...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}

	if err := pgDB.AutoMigrate(&models.Market{}, &models.Outcome{}, &models.Bet{}); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// Run the dataset through a scratch ledger so the persisted rows carry
	// normalized volumes and probabilities.
	scratch := ledger.New()
	for _, m := range seed.Markets() {
		if err := scratch.Create(m); err != nil {
			log.Fatalf("invalid seed market %s: %v", m.ID, err)
		}
	}

	var marketRows []models.Market
	var outcomeRows []models.Outcome
	for _, m := range scratch.List() {
		row := models.MarketFromLedger(m)
		outcomeRows = append(outcomeRows, row.Outcomes...)
		row.Outcomes = nil
		marketRows = append(marketRows, row)
	}

	if err := upsertWithRetry(pgDB, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "category", "end_date",
				"is_featured", "tags", "total_volume", "total_trades",
			}),
		}).CreateInBatches(marketRows, 100).Error
	}); err != nil {
		log.Fatalf("failed to upsert markets: %v", err)
	}

	if err := upsertWithRetry(pgDB, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "market_id"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"volume", "probability"}),
		}).CreateInBatches(outcomeRows, 100).Error
	}); err != nil {
		log.Fatalf("failed to upsert outcomes: %v", err)
	}

	for _, m := range marketRows {
		log.Printf("✅ Seeded market: %s", m.Title)
	}

	// Warm the market list cache. Falls back to a throwaway in-memory Redis
	// when no real one is reachable, so seeding works in CI.
	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		log.Printf("⚠️  Redis unavailable (%v), warming an in-memory instance instead", err)
		mr, mrErr := miniredis.Run()
		if mrErr != nil {
			log.Fatalf("failed to start in-memory redis: %v", mrErr)
		}
		defer mr.Close()
		redisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}

	hydrated := ledger.New()
	service := services.NewMarketService(hydrated, pgDB, redisClient, cfg.Cache.TTL)

	ctx := context.Background()
	if err := service.LoadFromDatabase(ctx); err != nil {
		log.Fatalf("failed to reload markets: %v", err)
	}
	if _, err := service.ListMarkets(ctx); err != nil {
		log.Printf("⚠️  Failed to warm markets cache: %v", err)
	}

	var marketCount int64
	if err := pgDB.Model(&models.Market{}).Count(&marketCount).Error; err == nil {
		log.Printf("✅ Markets stored in Postgres: %d", marketCount)
	}

	log.Println("🎉 Database seeding completed!")
}

// upsertWithRetry retries the write on Postgres serialization failures and
// deadlocks (40001, 40P01) with jittered backoff.
func upsertWithRetry(pgDB *gorm.DB, fn func(tx *gorm.DB) error) error {
	const maxRetries = 5

	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = fn(pgDB)
		if err == nil {
			return nil
		}

		if pgErr, ok := err.(*pgconn.PgError); ok && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
			backoff := time.Duration(attempt*100+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		return err
	}
	return err
}
