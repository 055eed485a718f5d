package ledger

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"
)

const eps = 1e-9

func afconMarket() Market {
	return Market{
		ID:          "1",
		Title:       "Will Kenya win AFCON 2025?",
		Description: "Will the Kenyan national football team win the 2025 Africa Cup of Nations?",
		Category:    "FOOTBALL",
		EndDate:     time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		IsFeatured:  true,
		Tags:        []string{"football", "afcon", "kenya"},
		TotalTrades: 1250,
		Outcomes: []Outcome{
			{Name: "YES", Volume: 15000},
			{Name: "NO", Volume: 28000},
		},
	}
}

func newTestLedger(t *testing.T, markets ...Market) *Ledger {
	t.Helper()
	l := New()
	l.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	for _, m := range markets {
		if err := l.Create(m); err != nil {
			t.Fatalf("create market %s: %v", m.ID, err)
		}
	}
	return l
}

func approxEq(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestCreateNormalizesProbabilities(t *testing.T) {
	l := newTestLedger(t, afconMarket())

	m, err := l.Get("1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.TotalVolume != 43000 {
		t.Fatalf("total volume = %v, want 43000", m.TotalVolume)
	}
	if !approxEq(m.Outcomes[0].Probability, 15000.0/43000.0) {
		t.Errorf("YES probability = %v, want %v", m.Outcomes[0].Probability, 15000.0/43000.0)
	}
	if !approxEq(m.Outcomes[0].Probability+m.Outcomes[1].Probability, 1) {
		t.Errorf("probabilities do not sum to 1: %v", m.Outcomes)
	}
}

func TestPlaceBetUpdatesMarket(t *testing.T) {
	l := newTestLedger(t, afconMarket())

	bet, updated, err := l.PlaceBet("1", "YES", 7000, "u1", nil)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}

	if updated.Outcomes[0].Volume != 22000 {
		t.Errorf("YES volume = %v, want 22000", updated.Outcomes[0].Volume)
	}
	if updated.Outcomes[1].Volume != 28000 {
		t.Errorf("NO volume = %v, want 28000", updated.Outcomes[1].Volume)
	}
	if updated.TotalVolume != 50000 {
		t.Errorf("total volume = %v, want 50000", updated.TotalVolume)
	}
	if updated.TotalTrades != 1251 {
		t.Errorf("total trades = %v, want 1251", updated.TotalTrades)
	}
	if !approxEq(updated.Outcomes[0].Probability, 0.44) {
		t.Errorf("YES probability = %v, want 0.44", updated.Outcomes[0].Probability)
	}
	if !approxEq(updated.Outcomes[1].Probability, 0.56) {
		t.Errorf("NO probability = %v, want 0.56", updated.Outcomes[1].Probability)
	}

	// Payout locks in the pre-bet price: 15000/43000.
	wantPayout := 7000 / (15000.0 / 43000.0)
	if !approxEq(bet.PotentialPayout, wantPayout) {
		t.Errorf("payout = %v, want %v", bet.PotentialPayout, wantPayout)
	}
	if bet.ID == "" {
		t.Error("bet id is empty")
	}
	if bet.MarketID != "1" || bet.Outcome != "YES" || bet.Amount != 7000 || bet.UserID != "u1" {
		t.Errorf("unexpected bet receipt: %+v", bet)
	}

	// Get must observe the same post-bet state, descriptive fields untouched.
	got, err := l.Get("1")
	if err != nil {
		t.Fatalf("get after bet: %v", err)
	}
	if !reflect.DeepEqual(got, updated) {
		t.Errorf("get after bet = %+v, want %+v", got, updated)
	}
	if got.Title != "Will Kenya win AFCON 2025?" || len(got.Tags) != 3 {
		t.Errorf("descriptive fields changed: %+v", got)
	}
}

func TestPlaceBetValidationLeavesStateUntouched(t *testing.T) {
	cases := []struct {
		name     string
		marketID string
		outcome  string
		amount   float64
		wantErr  error
	}{
		{"unknown market", "unknown-id", "YES", 100, ErrMarketNotFound},
		{"unknown outcome", "1", "MAYBE", 100, ErrOutcomeNotFound},
		{"negative amount", "1", "YES", -50, ErrInvalidAmount},
		{"zero amount", "1", "YES", 0, ErrInvalidAmount},
		{"nan amount", "1", "YES", math.NaN(), ErrInvalidAmount},
		{"inf amount", "1", "YES", math.Inf(1), ErrInvalidAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLedger(t, afconMarket())
			before, _ := l.Get("1")

			_, _, err := l.PlaceBet(tc.marketID, tc.outcome, tc.amount, "u1", nil)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}

			after, _ := l.Get("1")
			if !reflect.DeepEqual(before, after) {
				t.Errorf("market mutated by failed bet:\nbefore %+v\nafter  %+v", before, after)
			}
		})
	}
}

func TestPlaceBetOnClosedMarket(t *testing.T) {
	l := newTestLedger(t, afconMarket())
	l.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	_, _, err := l.PlaceBet("1", "YES", 100, "u1", nil)
	if !errors.Is(err, ErrMarketClosed) {
		t.Fatalf("err = %v, want ErrMarketClosed", err)
	}
}

func TestPlaceBetZeroProbabilityOutcome(t *testing.T) {
	m := Market{
		ID:    "cold",
		Title: "cold start",
		Outcomes: []Outcome{
			{Name: "YES", Volume: 0},
			{Name: "NO", Volume: 1000},
		},
	}
	l := newTestLedger(t, m)

	_, _, err := l.PlaceBet("cold", "YES", 100, "u1", nil)
	if !errors.Is(err, ErrInvalidMarketState) {
		t.Fatalf("err = %v, want ErrInvalidMarketState", err)
	}

	after, _ := l.Get("cold")
	if after.TotalVolume != 1000 || after.TotalTrades != 0 {
		t.Errorf("market mutated by rejected bet: %+v", after)
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	l := newTestLedger(t, afconMarket())
	before, _ := l.Get("1")

	persistErr := errors.New("db down")
	_, _, err := l.PlaceBet("1", "YES", 500, "u1", func(Bet, Market) error {
		return persistErr
	})
	if !errors.Is(err, persistErr) {
		t.Fatalf("err = %v, want wrapped persist error", err)
	}

	after, _ := l.Get("1")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("ledger mutated despite persist failure")
	}
}

func TestPersistSeesFinalSnapshot(t *testing.T) {
	l := newTestLedger(t, afconMarket())

	var persisted Market
	_, updated, err := l.PlaceBet("1", "YES", 7000, "u1", func(_ Bet, m Market) error {
		persisted = m
		return nil
	})
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if !reflect.DeepEqual(persisted, updated) {
		t.Errorf("persist snapshot differs from returned market")
	}
}

func TestConcurrentBetsConserveVolume(t *testing.T) {
	l := newTestLedger(t, afconMarket())

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	var wantDelta float64
	for i := 0; i < n; i++ {
		amount := float64(100 + i)
		outcome := "YES"
		if i%2 == 1 {
			outcome = "NO"
		}
		wantDelta += amount
		go func(outcome string, amount float64) {
			defer wg.Done()
			if _, _, err := l.PlaceBet("1", outcome, amount, "u", nil); err != nil {
				t.Errorf("concurrent bet failed: %v", err)
			}
		}(outcome, amount)
	}
	wg.Wait()

	m, _ := l.Get("1")
	if !approxEq(m.TotalVolume, 43000+wantDelta) {
		t.Errorf("total volume = %v, want %v", m.TotalVolume, 43000+wantDelta)
	}
	if m.TotalTrades != 1250+n {
		t.Errorf("total trades = %v, want %v", m.TotalTrades, 1250+n)
	}

	var sumVolumes, sumProbs float64
	for _, o := range m.Outcomes {
		sumVolumes += o.Volume
		sumProbs += o.Probability
	}
	if !approxEq(sumVolumes, m.TotalVolume) {
		t.Errorf("outcome volumes sum to %v, total is %v", sumVolumes, m.TotalVolume)
	}
	if !approxEq(sumProbs, 1) {
		t.Errorf("probabilities sum to %v, want 1", sumProbs)
	}
}

func TestProbabilitySumAfterBetSequence(t *testing.T) {
	l := newTestLedger(t, afconMarket())

	for i := 1; i <= 50; i++ {
		outcome := "YES"
		if i%3 == 0 {
			outcome = "NO"
		}
		if _, _, err := l.PlaceBet("1", outcome, float64(i)*17.5, "u1", nil); err != nil {
			t.Fatalf("bet %d: %v", i, err)
		}
		m, _ := l.Get("1")
		var sum float64
		for _, o := range m.Outcomes {
			sum += o.Probability
		}
		if !approxEq(sum, 1) {
			t.Fatalf("after bet %d probabilities sum to %v", i, sum)
		}
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	l := newTestLedger(t, afconMarket())

	first, _ := l.Get("1")
	first.Outcomes[0].Volume = -1
	first.Tags[0] = "tampered"

	second, _ := l.Get("1")
	if second.Outcomes[0].Volume == -1 || second.Tags[0] == "tampered" {
		t.Error("mutating a snapshot leaked into ledger state")
	}

	listA := l.List()
	listB := l.List()
	if !reflect.DeepEqual(listA, listB) {
		t.Error("List is not idempotent without intervening writes")
	}
}

func TestListOrderAndFeatured(t *testing.T) {
	m2 := afconMarket()
	m2.ID = "2"
	m2.IsFeatured = false
	m3 := afconMarket()
	m3.ID = "3"

	l := newTestLedger(t, afconMarket(), m2, m3)

	list := l.List()
	if len(list) != 3 {
		t.Fatalf("list len = %d, want 3", len(list))
	}
	for i, want := range []string{"1", "2", "3"} {
		if list[i].ID != want {
			t.Errorf("list[%d].ID = %s, want %s", i, list[i].ID, want)
		}
	}

	featured := l.Featured()
	if len(featured) != 2 || featured[0].ID != "1" || featured[1].ID != "3" {
		t.Errorf("featured = %v", featured)
	}
}

func TestCreateValidation(t *testing.T) {
	l := newTestLedger(t, afconMarket())

	dup := afconMarket()
	if err := l.Create(dup); !errors.Is(err, ErrMarketExists) {
		t.Errorf("duplicate id err = %v, want ErrMarketExists", err)
	}

	bad := []Market{
		{ID: "", Outcomes: []Outcome{{Name: "A"}, {Name: "B"}}},
		{ID: "one-outcome", Outcomes: []Outcome{{Name: "A"}}},
		{ID: "dup-outcome", Outcomes: []Outcome{{Name: "A"}, {Name: "A"}}},
		{ID: "neg-volume", Outcomes: []Outcome{{Name: "A", Volume: -1}, {Name: "B"}}},
	}
	for _, m := range bad {
		if err := l.Create(m); !errors.Is(err, ErrInvalidMarket) {
			t.Errorf("Create(%q) err = %v, want ErrInvalidMarket", m.ID, err)
		}
	}

	if l.Len() != 1 {
		t.Errorf("ledger len = %d, want 1", l.Len())
	}
}

func TestIndependentMarketsDoNotInterfere(t *testing.T) {
	m2 := afconMarket()
	m2.ID = "2"
	l := newTestLedger(t, afconMarket(), m2)

	if _, _, err := l.PlaceBet("1", "YES", 1000, "u1", nil); err != nil {
		t.Fatalf("bet on market 1: %v", err)
	}

	other, _ := l.Get("2")
	if other.TotalVolume != 43000 || other.TotalTrades != 1250 {
		t.Errorf("market 2 mutated by bet on market 1: %+v", other)
	}
}

func ExampleLedger_PlaceBet() {
	l := New()
	_ = l.Create(Market{
		ID: "btc-100k",
		Outcomes: []Outcome{
			{Name: "YES", Volume: 18000},
			{Name: "NO", Volume: 54000},
		},
	})

	_, updated, _ := l.PlaceBet("btc-100k", "YES", 9000, "u1", nil)
	fmt.Printf("%.2f %.2f\n", updated.Outcomes[0].Probability, updated.Outcomes[1].Probability)
	// Output: 0.33 0.67
}
