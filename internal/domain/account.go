package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a sportsbook bankroll. CurrentBalance moves only when a wager
// referencing the account settles.
type Account struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Book            string          `json:"book,omitempty"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AccountSummary aggregates settled results for an account.
type AccountSummary struct {
	AccountID      string          `json:"account_id"`
	Won            int             `json:"won"`
	Lost           int             `json:"lost"`
	Push           int             `json:"push"`
	Pending        int             `json:"pending"`
	Cancelled      int             `json:"cancelled"`
	TotalStaked    decimal.Decimal `json:"total_staked"`
	PendingStake   decimal.Decimal `json:"pending_stake"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	ROI            decimal.Decimal `json:"roi"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}
