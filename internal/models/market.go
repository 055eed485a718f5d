/**
 * @description
 * Market and Outcome database models.
 * Maps to the 'markets' and 'outcomes' tables in PostgreSQL; outcomes are a
 * one-to-many child of their market, mirroring the ledger's serialized shape.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dira-markets/backend/internal/ledger"
)

// StringArray is a helper type to handle string arrays in Postgres (TEXT[])
type StringArray []string

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		// PostgreSQL returns arrays as strings like "{value1,value2}"
		return a.parsePostgresArray(string(v))
	case string:
		return a.parsePostgresArray(v)
	default:
		return errors.New("type assertion failed for StringArray")
	}
}

func (a *StringArray) parsePostgresArray(s string) error {
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if s == "" {
		*a = []string{}
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			part = part[1 : len(part)-1]
		}
		result = append(result, part)
	}
	*a = result
	return nil
}

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(a))
	for i, v := range a {
		if strings.ContainsAny(v, `,"\{} `) {
			escaped := strings.ReplaceAll(v, `\`, `\\`)
			escaped = strings.ReplaceAll(escaped, `"`, `\"`)
			quoted[i] = fmt.Sprintf(`"%s"`, escaped)
		} else {
			quoted[i] = v
		}
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

// Market maps to the 'markets' table. Descriptive fields are immutable after
// seeding; total_volume and total_trades are rewritten on every accepted bet.
type Market struct {
	ID          string      `gorm:"primaryKey;column:id" json:"id"`
	Title       string      `gorm:"column:title" json:"title"`
	Description string      `gorm:"column:description" json:"description"`
	Category    string      `gorm:"column:category" json:"category"`
	EndDate     time.Time   `gorm:"column:end_date" json:"endDate"`
	IsFeatured  bool        `gorm:"column:is_featured;default:false" json:"isFeatured"`
	Tags        StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	TotalVolume float64     `gorm:"column:total_volume" json:"totalVolume"`
	TotalTrades int64       `gorm:"column:total_trades" json:"totalTrades"`

	Outcomes []Outcome `gorm:"foreignKey:MarketID;constraint:OnDelete:CASCADE" json:"outcomes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName overrides the table name used by Market to `markets`
func (Market) TableName() string {
	return "markets"
}

// Outcome maps to the 'outcomes' table. It has no identity outside its
// market; (market_id, name) is unique.
type Outcome struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"-"`
	MarketID    string  `gorm:"column:market_id;uniqueIndex:idx_outcomes_market_name" json:"-"`
	Name        string  `gorm:"column:name;uniqueIndex:idx_outcomes_market_name" json:"name"`
	Probability float64 `gorm:"column:probability" json:"probability"`
	Volume      float64 `gorm:"column:volume" json:"volume"`
}

// TableName overrides the table name used by Outcome to `outcomes`
func (Outcome) TableName() string {
	return "outcomes"
}

// ToLedger converts the persisted row into the ledger's domain type.
func (m *Market) ToLedger() ledger.Market {
	out := ledger.Market{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		EndDate:     m.EndDate,
		IsFeatured:  m.IsFeatured,
		Tags:        append([]string(nil), m.Tags...),
		TotalVolume: m.TotalVolume,
		TotalTrades: m.TotalTrades,
	}
	for _, o := range m.Outcomes {
		out.Outcomes = append(out.Outcomes, ledger.Outcome{
			Name:        o.Name,
			Probability: o.Probability,
			Volume:      o.Volume,
		})
	}
	return out
}

// MarketFromLedger converts a ledger snapshot into its persisted shape.
func MarketFromLedger(m ledger.Market) Market {
	row := Market{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Category:    m.Category,
		EndDate:     m.EndDate,
		IsFeatured:  m.IsFeatured,
		Tags:        StringArray(append([]string(nil), m.Tags...)),
		TotalVolume: m.TotalVolume,
		TotalTrades: m.TotalTrades,
	}
	for _, o := range m.Outcomes {
		row.Outcomes = append(row.Outcomes, Outcome{
			MarketID:    m.ID,
			Name:        o.Name,
			Probability: o.Probability,
			Volume:      o.Volume,
		})
	}
	return row
}
