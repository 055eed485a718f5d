/**
 * @description
 * The market ledger: owns every market and applies bets as atomic
 * read-modify-write transactions. One ledger instance is shared by the REST
 * and GraphQL surfaces so both always see the same state.
 *
 * Concurrency discipline: a coarse RWMutex guards the market index, and each
 * market carries its own mutex that serializes bet placement against it.
 * Independent markets take bets fully in parallel. Every Market handed out
 * is a deep copy, so readers observe atomic snapshots and can never see a
 * half-applied bet.
 *
 * @dependencies
 * - github.com/google/uuid: bet receipt IDs
 */

package ledger

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PersistFunc is the hook through which the durable store participates in a
// placement. It runs while the market's lock is held: if it returns an error
// the in-memory mutation is discarded, so the ledger and the store either
// both record the bet or neither does.
type PersistFunc func(bet Bet, updated Market) error

type entry struct {
	mu     sync.Mutex
	market Market
}

// Ledger maps market IDs to markets, preserving insertion order for List.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string

	now func() time.Time
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Create registers a new market. Volumes are authoritative: TotalVolume is
// recomputed as their sum and, when positive, every outcome probability is
// normalized to volume / TotalVolume. A zero-volume market keeps the
// probabilities it was created with (its prior).
func (l *Ledger) Create(m Market) error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidMarket)
	}
	if len(m.Outcomes) < 2 {
		return fmt.Errorf("%w: market %q needs at least 2 outcomes", ErrInvalidMarket, m.ID)
	}
	seen := make(map[string]struct{}, len(m.Outcomes))
	for _, o := range m.Outcomes {
		if o.Name == "" {
			return fmt.Errorf("%w: market %q has an unnamed outcome", ErrInvalidMarket, m.ID)
		}
		if _, dup := seen[o.Name]; dup {
			return fmt.Errorf("%w: market %q repeats outcome %q", ErrInvalidMarket, m.ID, o.Name)
		}
		seen[o.Name] = struct{}{}
		if o.Volume < 0 || math.IsNaN(o.Volume) || math.IsInf(o.Volume, 0) {
			return fmt.Errorf("%w: market %q outcome %q has invalid volume", ErrInvalidMarket, m.ID, o.Name)
		}
	}

	stored := m.Clone()
	normalize(&stored)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[stored.ID]; ok {
		return fmt.Errorf("%w: %s", ErrMarketExists, stored.ID)
	}
	l.entries[stored.ID] = &entry{market: stored}
	l.order = append(l.order, stored.ID)
	return nil
}

// Delete removes a market. Used as a compensating rollback when the durable
// write for a newly created market fails; existing markets with volume are
// never deleted in normal operation.
func (l *Ledger) Delete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[id]; !ok {
		return
	}
	delete(l.entries, id)
	for i, other := range l.order {
		if other == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// List returns a snapshot of every market in insertion order.
func (l *Ledger) List() []Market {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Market, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.entries[id].snapshot())
	}
	return out
}

// Featured returns the featured subset, in insertion order.
func (l *Ledger) Featured() []Market {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Market
	for _, id := range l.order {
		if m := l.entries[id].snapshot(); m.IsFeatured {
			out = append(out, m)
		}
	}
	return out
}

// Get returns one market by ID.
func (l *Ledger) Get(id string) (Market, error) {
	l.mu.RLock()
	e, ok := l.entries[id]
	l.mu.RUnlock()
	if !ok {
		return Market{}, ErrMarketNotFound
	}
	return e.snapshot(), nil
}

// Len reports the number of markets held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// PlaceBet applies a stake to one outcome of one market and returns the bet
// receipt plus the updated market snapshot.
//
// The algorithm runs under the market's lock: quote the payout at the
// pre-update probability, add the stake to the outcome and to the market
// aggregates, then recompute every outcome's probability from the new
// volumes so they sum to 1 exactly. If persist is non-nil it must succeed
// before the mutation is installed; on any error the market is left
// untouched.
func (l *Ledger) PlaceBet(marketID, outcomeName string, amount float64, userID string, persist PersistFunc) (Bet, Market, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Bet{}, Market{}, ErrInvalidAmount
	}

	l.mu.RLock()
	e, ok := l.entries[marketID]
	l.mu.RUnlock()
	if !ok {
		return Bet{}, Market{}, ErrMarketNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := l.now()
	if e.market.Closed(now) {
		return Bet{}, Market{}, ErrMarketClosed
	}

	idx := e.market.OutcomeIndex(outcomeName)
	if idx < 0 {
		return Bet{}, Market{}, ErrOutcomeNotFound
	}

	prior := e.market.Outcomes[idx].Probability
	if prior <= 0 {
		return Bet{}, Market{}, ErrInvalidMarketState
	}

	updated := e.market.Clone()
	updated.Outcomes[idx].Volume += amount
	updated.TotalVolume += amount
	updated.TotalTrades++
	recomputeProbabilities(&updated)

	bet := Bet{
		ID:              uuid.NewString(),
		MarketID:        marketID,
		Outcome:         outcomeName,
		Amount:          amount,
		UserID:          userID,
		Timestamp:       now,
		PotentialPayout: amount / prior,
	}

	if persist != nil {
		if err := persist(bet, updated.Clone()); err != nil {
			return Bet{}, Market{}, fmt.Errorf("persist bet: %w", err)
		}
	}

	e.market = updated
	return bet, updated.Clone(), nil
}

func (e *entry) snapshot() Market {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.market.Clone()
}

// normalize makes the stored market satisfy the ledger invariants:
// TotalVolume equals the sum of outcome volumes, and probabilities are
// derived from volumes whenever there is any volume at all.
func normalize(m *Market) {
	var total float64
	for _, o := range m.Outcomes {
		total += o.Volume
	}
	m.TotalVolume = total
	recomputeProbabilities(m)
}

func recomputeProbabilities(m *Market) {
	if m.TotalVolume <= 0 {
		return
	}
	for i := range m.Outcomes {
		m.Outcomes[i].Probability = m.Outcomes[i].Volume / m.TotalVolume
	}
}
