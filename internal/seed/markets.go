/**
 * @description
 * Canonical seed dataset: African-focused prediction markets.
 * Outcome probabilities are not stored here; the ledger derives them from
 * the volumes on load.
 */

package seed

import (
	"time"

	"github.com/dira-markets/backend/internal/ledger"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// Markets returns the seed markets in their canonical order.
func Markets() []ledger.Market {
	return []ledger.Market{
		{
			ID:          "1",
			Title:       "Will Kenya win AFCON 2025?",
			Description: "Will the Kenyan national football team win the 2025 Africa Cup of Nations?",
			Category:    "FOOTBALL",
			EndDate:     date(2025, time.February, 15),
			IsFeatured:  true,
			Tags:        []string{"football", "afcon", "kenya", "sports"},
			TotalTrades: 1250,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 15000},
				{Name: "NO", Volume: 28000},
			},
		},
		{
			ID:          "2",
			Title:       "Who will win the 2024 Nigerian Presidential Election?",
			Description: "Predict the winner of the upcoming Nigerian presidential election",
			Category:    "ELECTIONS",
			EndDate:     date(2024, time.December, 31),
			IsFeatured:  true,
			Tags:        []string{"nigeria", "elections", "politics", "president"},
			TotalTrades: 890,
			Outcomes: []ledger.Outcome{
				{Name: "Bola Tinubu", Volume: 25000},
				{Name: "Peter Obi", Volume: 20000},
				{Name: "Atiku Abubakar", Volume: 12000},
			},
		},
		{
			ID:          "3",
			Title:       "Will Nigeria qualify for World Cup 2026?",
			Description: "Will the Nigerian Super Eagles qualify for the 2026 FIFA World Cup?",
			Category:    "FOOTBALL",
			EndDate:     date(2025, time.June, 30),
			IsFeatured:  true,
			Tags:        []string{"football", "world-cup", "nigeria", "qualification"},
			TotalTrades: 1100,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 22000},
				{Name: "NO", Volume: 16000},
			},
		},
		{
			ID:          "4",
			Title:       "Will South Africa host the 2030 World Cup?",
			Description: "Will South Africa be selected as a host nation for the 2030 FIFA World Cup?",
			Category:    "FOOTBALL",
			EndDate:     date(2025, time.December, 31),
			IsFeatured:  true,
			Tags:        []string{"football", "world-cup", "south-africa", "hosting"},
			TotalTrades: 750,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 7000},
				{Name: "NO", Volume: 22000},
			},
		},
		{
			ID:          "5",
			Title:       "Will Ghana have a peaceful election in 2024?",
			Description: "Will Ghana's 2024 presidential election be conducted without major violence?",
			Category:    "ELECTIONS",
			EndDate:     date(2024, time.December, 7),
			Tags:        []string{"ghana", "elections", "politics", "peace"},
			TotalTrades: 680,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 18750},
				{Name: "NO", Volume: 6250},
			},
		},
		{
			ID:          "6",
			Title:       "Will Burna Boy win Grammy 2025?",
			Description: "Will Burna Boy win a Grammy Award in 2025?",
			Category:    "ENTERTAINMENT",
			EndDate:     date(2025, time.February, 9),
			Tags:        []string{"burna-boy", "grammy", "music", "nigeria"},
			TotalTrades: 780,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 9800},
				{Name: "NO", Volume: 18200},
			},
		},
		{
			ID:          "7",
			Title:       "Will Flutterwave IPO in 2024?",
			Description: "Will Flutterwave go public with an IPO in 2024?",
			Category:    "TECHNOLOGY",
			EndDate:     date(2024, time.December, 31),
			Tags:        []string{"flutterwave", "ipo", "fintech", "nigeria"},
			TotalTrades: 920,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 8750},
				{Name: "NO", Volume: 26250},
			},
		},
		{
			ID:          "8",
			Title:       "Will Nigeria's Naira strengthen against USD in 2024?",
			Description: "Will the Nigerian Naira strengthen against the US Dollar by end of 2024?",
			Category:    "ECONOMY",
			EndDate:     date(2024, time.December, 31),
			Tags:        []string{"nigeria", "naira", "currency", "economy"},
			TotalTrades: 1200,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 15750},
				{Name: "NO", Volume: 29250},
			},
		},
		{
			ID:          "9",
			Title:       "Will Kenya's inflation drop below 5% in 2024?",
			Description: "Will Kenya's annual inflation rate drop below 5% at any point in 2024?",
			Category:    "ECONOMY",
			EndDate:     date(2024, time.December, 31),
			Tags:        []string{"kenya", "inflation", "economy", "cpi"},
			TotalTrades: 720,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 11700},
				{Name: "NO", Volume: 14300},
			},
		},
		{
			ID:          "10",
			Title:       "Will Nigeria approve cryptocurrency regulations?",
			Description: "Will Nigeria approve comprehensive cryptocurrency regulations in 2024?",
			Category:    "TECHNOLOGY",
			EndDate:     date(2024, time.December, 31),
			Tags:        []string{"nigeria", "cryptocurrency", "regulation", "fintech"},
			TotalTrades: 850,
			Outcomes: []ledger.Outcome{
				{Name: "YES", Volume: 16000},
				{Name: "NO", Volume: 16000},
			},
		},
	}
}
