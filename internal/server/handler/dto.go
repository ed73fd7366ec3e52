package handler

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/odds"
)

var validate = validator.New()

// legRequest is one selection on a slip.
type legRequest struct {
	Sport        string   `json:"sport" validate:"max=32"`
	MarketKey    string   `json:"market_key" validate:"required,max=64"`
	Side         string   `json:"side" validate:"required,oneof=over under home away draw yes no"`
	LineValue    *float64 `json:"line_value"`
	OddsAmerican int      `json:"odds_american" validate:"required"`
	PlayerID     *string  `json:"player_id" validate:"omitempty,max=64"`
	TeamID       *string  `json:"team_id" validate:"omitempty,max=64"`
	GameID       *string  `json:"game_id" validate:"omitempty,max=64"`
	Note         string   `json:"note" validate:"max=500"`
}

func (l legRequest) toDomain() domain.Leg {
	return domain.Leg{
		Sport:        l.Sport,
		MarketKey:    l.MarketKey,
		Side:         domain.Side(l.Side),
		LineValue:    l.LineValue,
		OddsAmerican: l.OddsAmerican,
		PlayerID:     l.PlayerID,
		TeamID:       l.TeamID,
		GameID:       l.GameID,
		Note:         l.Note,
	}
}

type placeWagerRequest struct {
	AccountID *string         `json:"account_id" validate:"omitempty,min=1"`
	Book      string          `json:"book" validate:"max=64"`
	Stake     decimal.Decimal `json:"stake"`
	Note      string          `json:"note" validate:"max=500"`
	Legs      []legRequest    `json:"legs" validate:"required,min=1,dive"`
}

func (p *placeWagerRequest) Validate() error {
	return validate.Struct(p)
}

type quoteLeg struct {
	OddsAmerican int `json:"odds_american" validate:"required"`
}

type quoteRequest struct {
	Stake decimal.Decimal `json:"stake"`
	Legs  []quoteLeg      `json:"legs" validate:"required,min=1,dive"`
}

func (q *quoteRequest) Validate() error {
	return validate.Struct(q)
}

type settleRequest struct {
	LegOutcomes map[string]string `json:"leg_outcomes" validate:"required,min=1,dive,keys,required,endkeys,oneof=won lost push"`
}

func (s *settleRequest) Validate() error {
	return validate.Struct(s)
}

func (s settleRequest) outcomes() domain.LegOutcomes {
	out := make(domain.LegOutcomes, len(s.LegOutcomes))
	for id, o := range s.LegOutcomes {
		out[id] = domain.LegStatus(o)
	}
	return out
}

type createAccountRequest struct {
	Name            string          `json:"name" validate:"required,max=100"`
	Book            string          `json:"book" validate:"max=64"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
}

func (c *createAccountRequest) Validate() error {
	return validate.Struct(c)
}

// Responses carry money as two-place strings and odds with a display form.

type legResponse struct {
	ID           string   `json:"id"`
	Position     int      `json:"position"`
	Sport        string   `json:"sport,omitempty"`
	MarketKey    string   `json:"market_key"`
	Side         string   `json:"side"`
	LineValue    *float64 `json:"line_value,omitempty"`
	OddsAmerican int      `json:"odds_american"`
	OddsDisplay  string   `json:"odds_display"`
	PlayerID     *string  `json:"player_id,omitempty"`
	TeamID       *string  `json:"team_id,omitempty"`
	GameID       *string  `json:"game_id,omitempty"`
	Note         string   `json:"note,omitempty"`
	Status       string   `json:"status"`
}

type wagerResponse struct {
	ID                  string        `json:"id"`
	Kind                string        `json:"kind"`
	AccountID           *string       `json:"account_id,omitempty"`
	Book                string        `json:"book,omitempty"`
	Stake               string        `json:"stake"`
	CombinedOdds        int           `json:"combined_odds"`
	CombinedOddsDisplay string        `json:"combined_odds_display"`
	PotentialPayout     string        `json:"potential_payout"`
	ToWin               string        `json:"to_win"`
	Status              string        `json:"status"`
	ProfitLoss          *string       `json:"profit_loss,omitempty"`
	Note                string        `json:"note,omitempty"`
	PlacedAt            time.Time     `json:"placed_at"`
	SettledAt           *time.Time    `json:"settled_at,omitempty"`
	Legs                []legResponse `json:"legs"`
}

func newWagerResponse(w domain.Wager) wagerResponse {
	resp := wagerResponse{
		ID:                  w.ID,
		Kind:                string(w.Kind),
		AccountID:           w.AccountID,
		Book:                w.Book,
		Stake:               w.Stake.StringFixed(2),
		CombinedOdds:        w.CombinedOdds,
		CombinedOddsDisplay: odds.FormatAmerican(w.CombinedOdds),
		Status:              string(w.Status),
		Note:                w.Note,
		PlacedAt:            w.PlacedAt,
		SettledAt:           w.SettledAt,
		Legs:                make([]legResponse, len(w.Legs)),
	}
	if payout, err := odds.PayoutAmount(w.Stake, w.CombinedOdds); err == nil {
		resp.PotentialPayout = payout.StringFixed(2)
		resp.ToWin = payout.Sub(w.Stake).StringFixed(2)
	}
	if w.ProfitLoss != nil {
		pl := w.ProfitLoss.StringFixed(2)
		resp.ProfitLoss = &pl
	}
	for i, l := range w.Legs {
		resp.Legs[i] = legResponse{
			ID:           l.ID,
			Position:     l.Position,
			Sport:        l.Sport,
			MarketKey:    l.MarketKey,
			Side:         string(l.Side),
			LineValue:    l.LineValue,
			OddsAmerican: l.OddsAmerican,
			OddsDisplay:  odds.FormatAmerican(l.OddsAmerican),
			PlayerID:     l.PlayerID,
			TeamID:       l.TeamID,
			GameID:       l.GameID,
			Note:         l.Note,
			Status:       string(l.Status),
		}
	}
	return resp
}

type settleResponse struct {
	WagerID      string            `json:"wager_id"`
	Status       string            `json:"status"`
	ProfitLoss   string            `json:"profit_loss"`
	BalanceDelta string            `json:"balance_delta"`
	CombinedOdds int               `json:"combined_odds"`
	LegStatuses  map[string]string `json:"leg_statuses"`
	Wager        wagerResponse     `json:"wager"`
}

func newSettleResponse(s domain.Settlement, w domain.Wager) settleResponse {
	legs := make(map[string]string, len(s.LegStatuses))
	for id, st := range s.LegStatuses {
		legs[id] = string(st)
	}
	return settleResponse{
		WagerID:      s.WagerID,
		Status:       string(s.Status),
		ProfitLoss:   s.ProfitLoss.StringFixed(2),
		BalanceDelta: s.BalanceDelta.StringFixed(2),
		CombinedOdds: s.CombinedOdds,
		LegStatuses:  legs,
		Wager:        newWagerResponse(w),
	}
}

type quoteResponse struct {
	Stake                string  `json:"stake"`
	CombinedOddsAmerican int     `json:"combined_odds_american"`
	CombinedOddsDisplay  string  `json:"combined_odds_display"`
	ImpliedProbability   float64 `json:"implied_probability"`
	PotentialPayout      string  `json:"potential_payout"`
	ToWin                string  `json:"to_win"`
}

func newQuoteResponse(q domain.Quote) quoteResponse {
	return quoteResponse{
		Stake:                q.Stake.StringFixed(2),
		CombinedOddsAmerican: q.CombinedOddsAmerican,
		CombinedOddsDisplay:  q.CombinedOddsDisplay,
		ImpliedProbability:   q.ImpliedProbability,
		PotentialPayout:      q.PotentialPayout.StringFixed(2),
		ToWin:                q.ToWin.StringFixed(2),
	}
}

type accountResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Book            string    `json:"book,omitempty"`
	StartingBalance string    `json:"starting_balance"`
	CurrentBalance  string    `json:"current_balance"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		ID:              a.ID,
		Name:            a.Name,
		Book:            a.Book,
		StartingBalance: a.StartingBalance.StringFixed(2),
		CurrentBalance:  a.CurrentBalance.StringFixed(2),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type summaryResponse struct {
	AccountID      string `json:"account_id"`
	Record         string `json:"record"`
	Won            int    `json:"won"`
	Lost           int    `json:"lost"`
	Push           int    `json:"push"`
	Pending        int    `json:"pending"`
	Cancelled      int    `json:"cancelled"`
	TotalStaked    string `json:"total_staked"`
	PendingStake   string `json:"pending_stake"`
	NetProfit      string `json:"net_profit"`
	ROI            string `json:"roi"`
	CurrentBalance string `json:"current_balance"`
}

func newSummaryResponse(s domain.AccountSummary) summaryResponse {
	return summaryResponse{
		AccountID:      s.AccountID,
		Record:         record(s),
		Won:            s.Won,
		Lost:           s.Lost,
		Push:           s.Push,
		Pending:        s.Pending,
		Cancelled:      s.Cancelled,
		TotalStaked:    s.TotalStaked.StringFixed(2),
		PendingStake:   s.PendingStake.StringFixed(2),
		NetProfit:      s.NetProfit.StringFixed(2),
		ROI:            s.ROI.StringFixed(2),
		CurrentBalance: s.CurrentBalance.StringFixed(2),
	}
}

// record renders W-L-P.
func record(s domain.AccountSummary) string {
	return fmt.Sprintf("%d-%d-%d", s.Won, s.Lost, s.Push)
}
