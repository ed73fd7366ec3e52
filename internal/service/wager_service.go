package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/market"
	"github.com/alanyoungcy/betledger/internal/odds"
	"github.com/alanyoungcy/betledger/internal/settlement"
)

// WagerOptions tunes placement checks and the settlement lock.
type WagerOptions struct {
	LockTTL        time.Duration
	EnforceBalance bool
	EnforceMarkets bool
}

// PlaceRequest is a new slip. A single leg makes a single bet, two or more a
// parlay.
type PlaceRequest struct {
	AccountID *string
	Book      string
	Stake     decimal.Decimal
	Note      string
	Legs      []domain.Leg
}

// WagerService runs the wager lifecycle: quote, place, settle, cancel, delete.
type WagerService struct {
	wagers     domain.WagerStore
	accounts   domain.AccountStore
	catalog    *market.Catalog
	reconciler *settlement.Reconciler
	locks      domain.LockManager
	quotes     domain.QuoteCache
	events     emitter
	opts       WagerOptions
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// NewWagerService wires a WagerService. quotes may be nil.
func NewWagerService(
	wagers domain.WagerStore,
	accounts domain.AccountStore,
	catalog *market.Catalog,
	reconciler *settlement.Reconciler,
	locks domain.LockManager,
	quotes domain.QuoteCache,
	bus domain.SignalBus,
	audit domain.AuditStore,
	notifier Notifier,
	opts WagerOptions,
	logger *slog.Logger,
) *WagerService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	logger = logger.With(slog.String("component", "wager_service"))
	return &WagerService{
		wagers:     wagers,
		accounts:   accounts,
		catalog:    catalog,
		reconciler: reconciler,
		locks:      locks,
		quotes:     quotes,
		events:     emitter{bus: bus, audit: audit, notifier: notifier, logger: logger},
		opts:       opts,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Quote prices a prospective slip without persisting anything.
func (s *WagerService) Quote(ctx context.Context, stake decimal.Decimal, prices []int) (domain.Quote, error) {
	key := quoteKey(stake, prices)
	if s.quotes != nil {
		if q, err := s.quotes.Get(ctx, key); err == nil {
			return q, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "quote cache read failed", slog.String("error", err.Error()))
		}
	}

	q, err := odds.Quote(stake, prices)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("wager_service: quote: %w", err)
	}

	if s.quotes != nil {
		if err := s.quotes.Set(ctx, key, q); err != nil {
			s.logger.WarnContext(ctx, "quote cache write failed", slog.String("error", err.Error()))
		}
	}
	return q, nil
}

func quoteKey(stake decimal.Decimal, prices []int) string {
	parts := make([]string, len(prices))
	for i, p := range prices {
		parts[i] = strconv.Itoa(p)
	}
	return odds.RoundCents(stake).StringFixed(2) + "|" + strings.Join(parts, ",")
}

// Place validates and records a new pending wager. Nothing is escrowed: the
// balance check only guards against staking more than the account holds.
func (s *WagerService) Place(ctx context.Context, req PlaceRequest) (domain.Wager, error) {
	stake := odds.RoundCents(req.Stake)
	if !stake.IsPositive() {
		return domain.Wager{}, fmt.Errorf("wager_service: place: %w", domain.ErrInvalidStake)
	}
	switch {
	case len(req.Legs) == 0:
		return domain.Wager{}, fmt.Errorf("wager_service: place: %w", domain.ErrEmptyLegs)
	case len(req.Legs) > domain.MaxParlayLegs:
		return domain.Wager{}, fmt.Errorf("wager_service: place %d legs: %w", len(req.Legs), domain.ErrTooManyLegs)
	}

	prices := make([]int, len(req.Legs))
	for i, l := range req.Legs {
		if !odds.ValidAmerican(l.OddsAmerican) {
			return domain.Wager{}, fmt.Errorf("wager_service: leg %d odds %d: %w", i, l.OddsAmerican, domain.ErrIncompleteLeg)
		}
		if s.opts.EnforceMarkets && s.catalog != nil {
			if err := s.catalog.ValidateLeg(l); err != nil {
				return domain.Wager{}, fmt.Errorf("wager_service: leg %d: %w", i, err)
			}
		}
		prices[i] = l.OddsAmerican
	}

	combined, err := odds.Price(prices)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("wager_service: price slip: %w", err)
	}

	if req.AccountID != nil {
		acct, err := s.accounts.GetByID(ctx, *req.AccountID)
		if err != nil {
			return domain.Wager{}, fmt.Errorf("wager_service: account %s: %w", *req.AccountID, err)
		}
		if s.opts.EnforceBalance && stake.GreaterThan(acct.CurrentBalance) {
			return domain.Wager{}, fmt.Errorf("wager_service: stake %s over balance %s: %w",
				stake.StringFixed(2), acct.CurrentBalance.StringFixed(2), domain.ErrInsufficientBalance)
		}
	}

	kind := domain.WagerKindParlay
	if len(req.Legs) == 1 {
		kind = domain.WagerKindSingle
	}

	w := domain.Wager{
		ID:           s.newID(),
		Kind:         kind,
		AccountID:    req.AccountID,
		Book:         req.Book,
		Stake:        stake,
		CombinedOdds: combined,
		Status:       domain.WagerStatusPending,
		Note:         req.Note,
		PlacedAt:     s.now().UTC(),
	}
	w.Legs = make([]domain.Leg, len(req.Legs))
	for i, l := range req.Legs {
		l.ID = s.newID()
		l.WagerID = w.ID
		l.Position = i
		l.Status = domain.LegStatusPending
		w.Legs[i] = l
	}

	if err := s.wagers.Create(ctx, w); err != nil {
		return domain.Wager{}, fmt.Errorf("wager_service: create wager: %w", err)
	}

	s.events.emit(ctx, domain.ChannelWagers, domain.WagerEvent{
		Type:      domain.EventWagerPlaced,
		WagerID:   w.ID,
		AccountID: w.AccountID,
		Wager:     &w,
		At:        w.PlacedAt,
	}, map[string]any{
		"wager_id":      w.ID,
		"kind":          string(w.Kind),
		"legs":          len(w.Legs),
		"stake":         w.Stake.StringFixed(2),
		"combined_odds": w.CombinedOdds,
	})

	s.logger.InfoContext(ctx, "wager placed",
		slog.String("wager_id", w.ID),
		slog.String("kind", string(w.Kind)),
		slog.Int("legs", len(w.Legs)),
		slog.String("stake", w.Stake.StringFixed(2)),
		slog.String("odds", odds.FormatAmerican(w.CombinedOdds)),
	)
	return w, nil
}

// Settle grades a pending wager and commits status, profit/loss and balance
// together. Concurrent or repeated calls for the same wager settle it at
// most once; the losers get ErrLockHeld or ErrAlreadySettled.
func (s *WagerService) Settle(ctx context.Context, id string, outcomes domain.LegOutcomes) (domain.Settlement, domain.Wager, error) {
	unlock, err := s.locks.Acquire(ctx, lockKey(id), s.opts.LockTTL)
	if err != nil {
		return domain.Settlement{}, domain.Wager{}, fmt.Errorf("wager_service: settle %s: %w", id, err)
	}
	defer unlock()

	w, err := s.wagers.GetByID(ctx, id)
	if err != nil {
		return domain.Settlement{}, domain.Wager{}, fmt.Errorf("wager_service: get wager %s: %w", id, err)
	}

	res, err := s.reconciler.Settle(w, outcomes)
	if err != nil {
		return domain.Settlement{}, domain.Wager{}, fmt.Errorf("wager_service: settle %s: %w", id, err)
	}

	updated, err := s.wagers.ApplySettlement(ctx, res)
	if err != nil {
		return domain.Settlement{}, domain.Wager{}, fmt.Errorf("wager_service: apply settlement %s: %w", id, err)
	}

	s.events.emit(ctx, domain.ChannelWagers, domain.WagerEvent{
		Type:       domain.EventWagerSettled,
		WagerID:    id,
		AccountID:  updated.AccountID,
		Wager:      &updated,
		Settlement: &res,
		At:         res.SettledAt,
	}, map[string]any{
		"wager_id":      id,
		"status":        string(res.Status),
		"profit_loss":   res.ProfitLoss.StringFixed(2),
		"balance_delta": res.BalanceDelta.StringFixed(2),
		"combined_odds": res.CombinedOdds,
	})
	s.events.notify(ctx, string(domain.EventWagerSettled),
		fmt.Sprintf("Wager %s", strings.ToUpper(string(res.Status))),
		fmt.Sprintf("%s %s at %s: %s",
			updated.Kind, odds.FormatCurrency(updated.Stake),
			odds.FormatAmerican(res.CombinedOdds), odds.FormatCurrency(res.ProfitLoss)),
	)

	s.logger.InfoContext(ctx, "wager settled",
		slog.String("wager_id", id),
		slog.String("status", string(res.Status)),
		slog.String("profit_loss", res.ProfitLoss.StringFixed(2)),
		slog.String("balance_delta", res.BalanceDelta.StringFixed(2)),
	)
	return res, updated, nil
}

// Cancel voids a pending wager with zero profit/loss and no balance change.
func (s *WagerService) Cancel(ctx context.Context, id string) (domain.Wager, error) {
	unlock, err := s.locks.Acquire(ctx, lockKey(id), s.opts.LockTTL)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("wager_service: cancel %s: %w", id, err)
	}
	defer unlock()

	w, err := s.wagers.GetByID(ctx, id)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("wager_service: get wager %s: %w", id, err)
	}
	res, err := s.reconciler.Cancel(w)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("wager_service: cancel %s: %w", id, err)
	}
	updated, err := s.wagers.ApplySettlement(ctx, res)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("wager_service: apply cancel %s: %w", id, err)
	}

	s.events.emit(ctx, domain.ChannelWagers, domain.WagerEvent{
		Type:       domain.EventWagerCancelled,
		WagerID:    id,
		AccountID:  updated.AccountID,
		Wager:      &updated,
		Settlement: &res,
		At:         res.SettledAt,
	}, map[string]any{"wager_id": id})
	s.events.notify(ctx, string(domain.EventWagerCancelled), "Wager CANCELLED",
		fmt.Sprintf("%s %s voided", updated.Kind, odds.FormatCurrency(updated.Stake)))

	s.logger.InfoContext(ctx, "wager cancelled", slog.String("wager_id", id))
	return updated, nil
}

// Delete removes a pending wager outright.
func (s *WagerService) Delete(ctx context.Context, id string) error {
	unlock, err := s.locks.Acquire(ctx, lockKey(id), s.opts.LockTTL)
	if err != nil {
		return fmt.Errorf("wager_service: delete %s: %w", id, err)
	}
	defer unlock()

	if err := s.wagers.Delete(ctx, id); err != nil {
		return fmt.Errorf("wager_service: delete %s: %w", id, err)
	}

	s.events.emit(ctx, domain.ChannelWagers, domain.WagerEvent{
		Type:    domain.EventWagerDeleted,
		WagerID: id,
	}, map[string]any{"wager_id": id})
	s.logger.InfoContext(ctx, "wager deleted", slog.String("wager_id", id))
	return nil
}

// Get returns one wager.
func (s *WagerService) Get(ctx context.Context, id string) (domain.Wager, error) {
	w, err := s.wagers.GetByID(ctx, id)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("wager_service: get wager %s: %w", id, err)
	}
	return w, nil
}

// List returns wagers newest first.
func (s *WagerService) List(ctx context.Context, filter domain.WagerFilter, opts domain.ListOpts) ([]domain.Wager, error) {
	list, err := s.wagers.List(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("wager_service: list wagers: %w", err)
	}
	return list, nil
}

func lockKey(wagerID string) string {
	return "wager:" + wagerID
}

// listAll pages through every wager matching filter.
func listAll(ctx context.Context, store domain.WagerStore, filter domain.WagerFilter) ([]domain.Wager, error) {
	const pageSize = 500
	var out []domain.Wager
	for offset := 0; ; offset += pageSize {
		page, err := store.List(ctx, filter, domain.ListOpts{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < pageSize {
			return out, nil
		}
	}
}
