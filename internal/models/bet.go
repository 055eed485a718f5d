/**
 * @description
 * Bet database model.
 * Maps to the 'bets' table in PostgreSQL. One row per accepted placement,
 * immutable after creation.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/google/uuid
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dira-markets/backend/internal/ledger"
)

// Bet represents a single stake placed by a user on one outcome of a market.
type Bet struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MarketID        string    `gorm:"column:market_id;index:idx_bets_market" json:"marketId"`
	Outcome         string    `gorm:"column:outcome;type:varchar(128)" json:"outcome"`
	Amount          float64   `gorm:"column:amount" json:"amount"`
	UserID          string    `gorm:"column:user_id;index:idx_bets_user" json:"userId"`
	PotentialPayout float64   `gorm:"column:potential_payout" json:"potentialPayout"`

	CreatedAt time.Time `gorm:"column:created_at" json:"timestamp"`
}

// TableName overrides the table name used by Bet to `bets`
func (Bet) TableName() string {
	return "bets"
}

// BeforeCreate ensures UUID is generated if not present
func (b *Bet) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}

// BetFromLedger converts a ledger bet receipt into its persisted shape.
func BetFromLedger(b ledger.Bet) Bet {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		id = uuid.New()
	}
	return Bet{
		ID:              id,
		MarketID:        b.MarketID,
		Outcome:         b.Outcome,
		Amount:          b.Amount,
		UserID:          b.UserID,
		PotentialPayout: b.PotentialPayout,
		CreatedAt:       b.Timestamp,
	}
}
