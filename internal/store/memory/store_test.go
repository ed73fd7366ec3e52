package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*Store, string) {
	t.Helper()
	s := New()
	ctx := context.Background()
	acct := domain.Account{ID: "a1", Name: "Main", StartingBalance: decimal.NewFromInt(500), CurrentBalance: decimal.NewFromInt(500)}
	require.NoError(t, s.Accounts().Create(ctx, acct))

	id := "a1"
	w := domain.Wager{
		ID:           "w1",
		Kind:         domain.WagerKindSingle,
		AccountID:    &id,
		Stake:        decimal.NewFromInt(50),
		CombinedOdds: 150,
		Status:       domain.WagerStatusPending,
		PlacedAt:     time.Now(),
		Legs:         []domain.Leg{{ID: "l1", WagerID: "w1", OddsAmerican: 150, Status: domain.LegStatusPending}},
	}
	require.NoError(t, s.Wagers().Create(ctx, w))
	return s, "w1"
}

func winFor(id string) domain.Settlement {
	return domain.Settlement{
		WagerID:      id,
		Status:       domain.WagerStatusWon,
		ProfitLoss:   decimal.NewFromInt(75),
		BalanceDelta: decimal.NewFromInt(75),
		CombinedOdds: 150,
		LegStatuses:  map[string]domain.LegStatus{"l1": domain.LegStatusWon},
		SettledAt:    time.Now(),
	}
}

func TestApplySettlementMovesBalanceOnce(t *testing.T) {
	s, id := seed(t)
	ctx := context.Background()

	w, err := s.Wagers().ApplySettlement(ctx, winFor(id))
	require.NoError(t, err)
	assert.Equal(t, domain.WagerStatusWon, w.Status)
	assert.Equal(t, domain.LegStatusWon, w.Legs[0].Status)
	require.NotNil(t, w.ProfitLoss)
	assert.True(t, w.ProfitLoss.Equal(decimal.NewFromInt(75)))

	_, err = s.Wagers().ApplySettlement(ctx, winFor(id))
	assert.ErrorIs(t, err, domain.ErrAlreadySettled)

	acct, err := s.Accounts().GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "575", acct.CurrentBalance.String())
}

func TestApplySettlementConcurrent(t *testing.T) {
	s, id := seed(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Wagers().ApplySettlement(ctx, winFor(id)); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	acct, err := s.Accounts().GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "575", acct.CurrentBalance.String())
}

func TestDeleteOnlyPending(t *testing.T) {
	s, id := seed(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.Wagers().Delete(ctx, "missing"), domain.ErrNotFound)

	_, err := s.Wagers().ApplySettlement(ctx, winFor(id))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Wagers().Delete(ctx, id), domain.ErrAlreadySettled)
}

func TestListFilters(t *testing.T) {
	s, _ := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Wagers().Create(ctx, domain.Wager{
		ID: "w2", Kind: domain.WagerKindSingle, Stake: decimal.NewFromInt(5),
		Status: domain.WagerStatusPending, PlacedAt: time.Now().Add(time.Minute),
	}))

	all, err := s.Wagers().List(ctx, domain.WagerFilter{}, domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "w2", all[0].ID)

	byAcct, err := s.Wagers().List(ctx, domain.WagerFilter{AccountID: "a1"}, domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, byAcct, 1)
	assert.Equal(t, "w1", byAcct[0].ID)

	paged, err := s.Wagers().List(ctx, domain.WagerFilter{}, domain.ListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "w1", paged[0].ID)
}

func TestReadsAreCopies(t *testing.T) {
	s, id := seed(t)
	ctx := context.Background()
	w, err := s.Wagers().GetByID(ctx, id)
	require.NoError(t, err)
	w.Legs[0].Status = domain.LegStatusLost

	again, err := s.Wagers().GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.LegStatusPending, again.Legs[0].Status)
}
