/**
 * @description
 * Core domain types for the Dira market ledger.
 * These are plain in-memory structs; the gorm models in internal/models
 * mirror them for persistence.
 *
 * @dependencies
 * - standard "time"
 */

package ledger

import "time"

// Outcome is one possible resolution of a market. Probability is derived:
// volume / market.TotalVolume whenever TotalVolume > 0.
type Outcome struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Volume      float64 `json:"volume"`
}

// Market is a single prediction question with a closing time and a set of
// mutually exclusive outcomes.
type Market struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	EndDate     time.Time `json:"endDate"`
	IsFeatured  bool      `json:"isFeatured"`
	Tags        []string  `json:"tags"`
	TotalVolume float64   `json:"totalVolume"`
	TotalTrades int64     `json:"totalTrades"`
	Outcomes    []Outcome `json:"outcomes"`
}

// Bet is the immutable receipt produced by a single accepted placement.
// PotentialPayout locks in the price the bettor saw: amount divided by the
// chosen outcome's probability before the bet was applied.
type Bet struct {
	ID              string    `json:"id"`
	MarketID        string    `json:"marketId"`
	Outcome         string    `json:"outcome"`
	Amount          float64   `json:"amount"`
	UserID          string    `json:"userId"`
	Timestamp       time.Time `json:"timestamp"`
	PotentialPayout float64   `json:"potentialPayout"`
}

// Clone returns a deep copy so callers can never reach into ledger-owned
// state through a returned snapshot.
func (m Market) Clone() Market {
	out := m
	out.Tags = append([]string(nil), m.Tags...)
	out.Outcomes = append([]Outcome(nil), m.Outcomes...)
	return out
}

// Closed reports whether the market no longer accepts bets at the given time.
// A zero EndDate means the market never closes.
func (m Market) Closed(now time.Time) bool {
	return !m.EndDate.IsZero() && now.After(m.EndDate)
}

// OutcomeIndex returns the position of the outcome with the given name, or -1.
func (m Market) OutcomeIndex(name string) int {
	for i := range m.Outcomes {
		if m.Outcomes[i].Name == name {
			return i
		}
	}
	return -1
}
