package domain

// LegStatus is the graded result of a single leg.
type LegStatus string

const (
	LegStatusPending LegStatus = "pending"
	LegStatusWon     LegStatus = "won"
	LegStatusLost    LegStatus = "lost"
	LegStatusPush    LegStatus = "push"
)

// Valid reports whether s is an outcome a leg can be graded with.
func (s LegStatus) Valid() bool {
	switch s {
	case LegStatusWon, LegStatusLost, LegStatusPush:
		return true
	}
	return false
}

// Side is the proposition side a leg backs.
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideDraw  Side = "draw"
	SideYes   Side = "yes"
	SideNo    Side = "no"
)

// Leg is one priced proposition within a single bet or parlay. Legs are frozen
// once the owning wager is placed; only Status changes, at settlement.
type Leg struct {
	ID           string    `json:"id"`
	WagerID      string    `json:"wager_id"`
	Position     int       `json:"position"`
	Sport        string    `json:"sport"`
	MarketKey    string    `json:"market_key"`
	Side         Side      `json:"side"`
	LineValue    *float64  `json:"line_value,omitempty"`
	OddsAmerican int       `json:"odds_american"`
	PlayerID     *string   `json:"player_id,omitempty"`
	TeamID       *string   `json:"team_id,omitempty"`
	GameID       *string   `json:"game_id,omitempty"`
	Note         string    `json:"note,omitempty"`
	Status       LegStatus `json:"status"`
}
