// Package settlement grades wagers against leg outcomes and derives the
// profit/loss and bankroll movement of each transition.
package settlement

import (
	"fmt"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/odds"
	"github.com/shopspring/decimal"
)

// Reconciler computes settlement results. It holds no state besides a clock.
type Reconciler struct {
	now func() time.Time
}

// NewReconciler creates a Reconciler using the wall clock.
func NewReconciler() *Reconciler {
	return &Reconciler{now: time.Now}
}

// WithClock overrides the clock used to stamp settlements.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Settle grades a pending wager. Outcomes must name every leg of the wager
// and nothing else.
func (r *Reconciler) Settle(w domain.Wager, outcomes domain.LegOutcomes) (domain.Settlement, error) {
	if !w.IsPending() {
		return domain.Settlement{}, fmt.Errorf("settlement: wager %s is %s: %w", w.ID, w.Status, domain.ErrAlreadySettled)
	}
	if err := checkCoverage(w, outcomes); err != nil {
		return domain.Settlement{}, err
	}

	var (
		res domain.Settlement
		err error
	)
	switch w.Kind {
	case domain.WagerKindSingle:
		res, err = settleSingle(w, outcomes)
	case domain.WagerKindParlay:
		res, err = settleParlay(w, outcomes)
	default:
		return domain.Settlement{}, fmt.Errorf("settlement: wager %s: unknown kind %q", w.ID, w.Kind)
	}
	if err != nil {
		return domain.Settlement{}, err
	}

	res.WagerID = w.ID
	res.BalanceDelta = balanceDelta(w, res.Status, res.ProfitLoss)
	res.SettledAt = r.now().UTC()
	return res, nil
}

// Cancel voids a pending wager. Stake is returned and the balance is untouched.
func (r *Reconciler) Cancel(w domain.Wager) (domain.Settlement, error) {
	if !w.IsPending() {
		return domain.Settlement{}, fmt.Errorf("settlement: cancel wager %s is %s: %w", w.ID, w.Status, domain.ErrAlreadySettled)
	}
	return domain.Settlement{
		WagerID:      w.ID,
		Status:       domain.WagerStatusCancelled,
		ProfitLoss:   decimal.Zero,
		BalanceDelta: decimal.Zero,
		CombinedOdds: w.CombinedOdds,
		SettledAt:    r.now().UTC(),
	}, nil
}

func checkCoverage(w domain.Wager, outcomes domain.LegOutcomes) error {
	if len(w.Legs) == 0 {
		return fmt.Errorf("settlement: wager %s has no legs: %w", w.ID, domain.ErrIncompleteSettlement)
	}
	for id, status := range outcomes {
		if _, ok := w.LegByID(id); !ok {
			return fmt.Errorf("settlement: wager %s: unknown leg %s: %w", w.ID, id, domain.ErrIncompleteSettlement)
		}
		if !status.Valid() {
			return fmt.Errorf("settlement: wager %s: leg %s outcome %q: %w", w.ID, id, status, domain.ErrIncompleteSettlement)
		}
	}
	for _, l := range w.Legs {
		if _, ok := outcomes[l.ID]; !ok {
			return fmt.Errorf("settlement: wager %s: leg %s has no outcome: %w", w.ID, l.ID, domain.ErrIncompleteSettlement)
		}
	}
	return nil
}

func settleSingle(w domain.Wager, outcomes domain.LegOutcomes) (domain.Settlement, error) {
	leg := w.Legs[0]
	outcome := outcomes[leg.ID]
	res := domain.Settlement{
		CombinedOdds: leg.OddsAmerican,
		LegStatuses:  map[string]domain.LegStatus{leg.ID: outcome},
	}
	switch outcome {
	case domain.LegStatusWon:
		win, err := odds.ToWinAmount(w.Stake, leg.OddsAmerican)
		if err != nil {
			return domain.Settlement{}, fmt.Errorf("settlement: wager %s: %w", w.ID, err)
		}
		res.Status = domain.WagerStatusWon
		res.ProfitLoss = win
	case domain.LegStatusLost:
		res.Status = domain.WagerStatusLost
		res.ProfitLoss = odds.RoundCents(w.Stake.Neg())
	default:
		res.Status = domain.WagerStatusPush
		res.ProfitLoss = decimal.Zero
	}
	return res, nil
}

// settleParlay applies the parlay policy: any lost leg loses the ticket,
// all pushes push it, otherwise pushed legs drop out and the won legs are
// re-priced.
func settleParlay(w domain.Wager, outcomes domain.LegOutcomes) (domain.Settlement, error) {
	statuses := make(map[string]domain.LegStatus, len(w.Legs))
	var won []int
	lost := false
	for _, l := range w.Legs {
		o := outcomes[l.ID]
		statuses[l.ID] = o
		switch o {
		case domain.LegStatusLost:
			lost = true
		case domain.LegStatusWon:
			won = append(won, l.OddsAmerican)
		}
	}

	res := domain.Settlement{CombinedOdds: w.CombinedOdds, LegStatuses: statuses}
	switch {
	case lost:
		res.Status = domain.WagerStatusLost
		res.ProfitLoss = odds.RoundCents(w.Stake.Neg())
		return res, nil
	case len(won) == 0:
		res.Status = domain.WagerStatusPush
		res.ProfitLoss = decimal.Zero
		return res, nil
	}

	price, err := odds.Price(won)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement: reprice wager %s: %w", w.ID, err)
	}
	win, err := odds.ToWinAmount(w.Stake, price)
	if err != nil {
		return domain.Settlement{}, fmt.Errorf("settlement: wager %s: %w", w.ID, err)
	}
	res.Status = domain.WagerStatusWon
	res.CombinedOdds = price
	res.ProfitLoss = win
	return res, nil
}

func balanceDelta(w domain.Wager, status domain.WagerStatus, pl decimal.Decimal) decimal.Decimal {
	if w.AccountID == nil {
		return decimal.Zero
	}
	switch status {
	case domain.WagerStatusWon, domain.WagerStatusLost:
		return pl
	default:
		return decimal.Zero
	}
}
