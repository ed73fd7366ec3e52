package domain

import "github.com/shopspring/decimal"

// Quote is the priced view of a prospective slip.
type Quote struct {
	Stake                decimal.Decimal `json:"stake"`
	CombinedOddsAmerican int             `json:"combined_odds_american"`
	CombinedOddsDisplay  string          `json:"combined_odds_display"`
	ImpliedProbability   float64         `json:"implied_probability"`
	PotentialPayout      decimal.Decimal `json:"potential_payout"`
	ToWin                decimal.Decimal `json:"to_win"`
}
