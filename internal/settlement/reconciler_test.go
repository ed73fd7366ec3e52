package settlement

import (
	"testing"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestReconciler() *Reconciler {
	return NewReconciler().WithClock(func() time.Time { return fixedNow })
}

func strPtr(s string) *string { return &s }

func single(stake int64, price int, account *string) domain.Wager {
	return domain.Wager{
		ID:           "w1",
		Kind:         domain.WagerKindSingle,
		AccountID:    account,
		Stake:        decimal.NewFromInt(stake),
		CombinedOdds: price,
		Status:       domain.WagerStatusPending,
		Legs:         []domain.Leg{{ID: "l1", OddsAmerican: price, Status: domain.LegStatusPending}},
	}
}

func parlay(stake int64, combined int, prices ...int) domain.Wager {
	legs := make([]domain.Leg, len(prices))
	for i, p := range prices {
		legs[i] = domain.Leg{ID: string(rune('a' + i)), Position: i, OddsAmerican: p, Status: domain.LegStatusPending}
	}
	return domain.Wager{
		ID:           "p1",
		Kind:         domain.WagerKindParlay,
		AccountID:    strPtr("acct"),
		Stake:        decimal.NewFromInt(stake),
		CombinedOdds: combined,
		Status:       domain.WagerStatusPending,
		Legs:         legs,
	}
}

func TestSettleSingle(t *testing.T) {
	r := newTestReconciler()
	tests := []struct {
		name      string
		outcome   domain.LegStatus
		account   *string
		status    domain.WagerStatus
		pl, delta string
	}{
		{"won tracked", domain.LegStatusWon, strPtr("acct"), domain.WagerStatusWon, "75.00", "75.00"},
		{"lost tracked", domain.LegStatusLost, strPtr("acct"), domain.WagerStatusLost, "-50.00", "-50.00"},
		{"push tracked", domain.LegStatusPush, strPtr("acct"), domain.WagerStatusPush, "0.00", "0.00"},
		{"won untracked", domain.LegStatusWon, nil, domain.WagerStatusWon, "75.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Settle(single(50, 150, tt.account), domain.LegOutcomes{"l1": tt.outcome})
			require.NoError(t, err)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.pl, res.ProfitLoss.StringFixed(2))
			assert.Equal(t, tt.delta, res.BalanceDelta.StringFixed(2))
			assert.Equal(t, "w1", res.WagerID)
			assert.Equal(t, fixedNow, res.SettledAt)
			assert.Equal(t, tt.outcome, res.LegStatuses["l1"])
		})
	}
}

func TestSettleSingleFavorite(t *testing.T) {
	res, err := newTestReconciler().Settle(single(100, -110, nil), domain.LegOutcomes{"l1": domain.LegStatusWon})
	require.NoError(t, err)
	assert.Equal(t, "90.91", res.ProfitLoss.StringFixed(2))
}

func TestSettleParlayLostLeg(t *testing.T) {
	w := parlay(20, 596, -110, -110, 150)
	res, err := newTestReconciler().Settle(w, domain.LegOutcomes{
		"a": domain.LegStatusWon,
		"b": domain.LegStatusLost,
		"c": domain.LegStatusWon,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WagerStatusLost, res.Status)
	assert.Equal(t, "-20.00", res.ProfitLoss.StringFixed(2))
	assert.Equal(t, "-20.00", res.BalanceDelta.StringFixed(2))
}

func TestSettleParlayAllPush(t *testing.T) {
	w := parlay(20, 264, -110, -110)
	res, err := newTestReconciler().Settle(w, domain.LegOutcomes{"a": domain.LegStatusPush, "b": domain.LegStatusPush})
	require.NoError(t, err)
	assert.Equal(t, domain.WagerStatusPush, res.Status)
	assert.True(t, res.ProfitLoss.IsZero())
	assert.True(t, res.BalanceDelta.IsZero())
}

func TestSettleParlayPushDropsToSurvivor(t *testing.T) {
	w := parlay(100, 229, 110, -120)
	res, err := newTestReconciler().Settle(w, domain.LegOutcomes{"a": domain.LegStatusPush, "b": domain.LegStatusWon})
	require.NoError(t, err)
	assert.Equal(t, domain.WagerStatusWon, res.Status)
	assert.Equal(t, -120, res.CombinedOdds)
	assert.Equal(t, "83.33", res.ProfitLoss.StringFixed(2))
}

func TestSettleParlayPushRecombines(t *testing.T) {
	w := parlay(100, 596, -110, 200, -110)
	res, err := newTestReconciler().Settle(w, domain.LegOutcomes{
		"a": domain.LegStatusWon,
		"b": domain.LegStatusPush,
		"c": domain.LegStatusWon,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.WagerStatusWon, res.Status)
	assert.Equal(t, 264, res.CombinedOdds)
	assert.Equal(t, "264.00", res.ProfitLoss.StringFixed(2))
}

func TestSettleParlayAllWon(t *testing.T) {
	w := parlay(100, 264, -110, -110)
	res, err := newTestReconciler().Settle(w, domain.LegOutcomes{"a": domain.LegStatusWon, "b": domain.LegStatusWon})
	require.NoError(t, err)
	assert.Equal(t, 264, res.CombinedOdds)
	assert.Equal(t, "264.00", res.ProfitLoss.StringFixed(2))
	assert.Equal(t, "264.00", res.BalanceDelta.StringFixed(2))
}

func TestSettleIncompleteOutcomes(t *testing.T) {
	r := newTestReconciler()
	w := parlay(10, 596, -110, -110, 150)

	_, err := r.Settle(w, domain.LegOutcomes{"a": domain.LegStatusWon, "b": domain.LegStatusWon})
	assert.ErrorIs(t, err, domain.ErrIncompleteSettlement)

	_, err = r.Settle(w, domain.LegOutcomes{
		"a": domain.LegStatusWon, "b": domain.LegStatusWon, "c": domain.LegStatusWon, "z": domain.LegStatusWon,
	})
	assert.ErrorIs(t, err, domain.ErrIncompleteSettlement)

	_, err = r.Settle(w, domain.LegOutcomes{
		"a": domain.LegStatusWon, "b": domain.LegStatusPending, "c": domain.LegStatusWon,
	})
	assert.ErrorIs(t, err, domain.ErrIncompleteSettlement)

	_, err = r.Settle(single(10, -110, nil), domain.LegOutcomes{})
	assert.ErrorIs(t, err, domain.ErrIncompleteSettlement)
}

func TestSettleTerminalWager(t *testing.T) {
	r := newTestReconciler()
	for _, status := range []domain.WagerStatus{
		domain.WagerStatusWon, domain.WagerStatusLost, domain.WagerStatusPush, domain.WagerStatusCancelled,
	} {
		w := single(10, -110, nil)
		w.Status = status
		_, err := r.Settle(w, domain.LegOutcomes{"l1": domain.LegStatusWon})
		assert.ErrorIs(t, err, domain.ErrAlreadySettled, string(status))

		_, err = r.Cancel(w)
		assert.ErrorIs(t, err, domain.ErrAlreadySettled, string(status))
	}
}

func TestCancel(t *testing.T) {
	res, err := newTestReconciler().Cancel(single(10, -110, strPtr("acct")))
	require.NoError(t, err)
	assert.Equal(t, domain.WagerStatusCancelled, res.Status)
	assert.True(t, res.ProfitLoss.IsZero())
	assert.True(t, res.BalanceDelta.IsZero())
	assert.Equal(t, fixedNow, res.SettledAt)
}
