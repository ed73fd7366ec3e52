package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WagerStatus tracks a wager through its one-way lifecycle.
type WagerStatus string

const (
	WagerStatusPending   WagerStatus = "pending"
	WagerStatusWon       WagerStatus = "won"
	WagerStatusLost      WagerStatus = "lost"
	WagerStatusPush      WagerStatus = "push"
	WagerStatusCancelled WagerStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s WagerStatus) Terminal() bool {
	return s != WagerStatusPending
}

// WagerKind distinguishes single bets from parlays.
type WagerKind string

const (
	WagerKindSingle WagerKind = "single"
	WagerKindParlay WagerKind = "parlay"
)

const (
	MinParlayLegs = 2
	MaxParlayLegs = 15
)

// Wager is a single bet (one leg) or a parlay (2-15 ordered legs).
type Wager struct {
	ID           string           `json:"id"`
	Kind         WagerKind        `json:"kind"`
	AccountID    *string          `json:"account_id,omitempty"`
	Book         string           `json:"book,omitempty"`
	Stake        decimal.Decimal  `json:"stake"`
	CombinedOdds int              `json:"combined_odds"`
	Legs         []Leg            `json:"legs"`
	Status       WagerStatus      `json:"status"`
	ProfitLoss   *decimal.Decimal `json:"profit_loss,omitempty"`
	Note         string           `json:"note,omitempty"`
	PlacedAt     time.Time        `json:"placed_at"`
	SettledAt    *time.Time       `json:"settled_at,omitempty"`
}

// IsPending returns true while the wager can still be settled, cancelled or deleted.
func (w *Wager) IsPending() bool {
	return w.Status == WagerStatusPending
}

// LegByID returns the leg with the given id.
func (w *Wager) LegByID(id string) (Leg, bool) {
	for _, l := range w.Legs {
		if l.ID == id {
			return l, true
		}
	}
	return Leg{}, false
}

// WagerFilter narrows wager list queries.
type WagerFilter struct {
	AccountID string
	Status    WagerStatus
	Since     *time.Time
	Until     *time.Time
}

// Settlement is the full outcome of grading a wager. It is committed atomically:
// status, per-leg statuses, profit/loss and the balance delta land together.
type Settlement struct {
	WagerID      string               `json:"wager_id"`
	Status       WagerStatus          `json:"status"`
	ProfitLoss   decimal.Decimal      `json:"profit_loss"`
	BalanceDelta decimal.Decimal      `json:"balance_delta"`
	CombinedOdds int                  `json:"combined_odds"`
	LegStatuses  map[string]LegStatus `json:"leg_statuses,omitempty"`
	SettledAt    time.Time            `json:"settled_at"`
}

// LegOutcomes maps leg id to its graded result.
type LegOutcomes map[string]LegStatus
