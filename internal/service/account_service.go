package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/odds"
)

// AccountService manages bankrolls and their performance summaries.
type AccountService struct {
	accounts domain.AccountStore
	wagers   domain.WagerStore
	events   emitter
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewAccountService wires an AccountService.
func NewAccountService(
	accounts domain.AccountStore,
	wagers domain.WagerStore,
	bus domain.SignalBus,
	audit domain.AuditStore,
	logger *slog.Logger,
) *AccountService {
	logger = logger.With(slog.String("component", "account_service"))
	return &AccountService{
		accounts: accounts,
		wagers:   wagers,
		events:   emitter{bus: bus, audit: audit, logger: logger},
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create opens an account whose current balance starts at startingBalance.
func (s *AccountService) Create(ctx context.Context, name, book string, startingBalance decimal.Decimal) (domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Account{}, fmt.Errorf("account_service: name is required: %w", domain.ErrInvalidAccount)
	}
	if startingBalance.IsNegative() {
		return domain.Account{}, fmt.Errorf("account_service: negative starting balance %s: %w", startingBalance, domain.ErrInvalidAccount)
	}

	now := s.now().UTC()
	bal := odds.RoundCents(startingBalance)
	acct := domain.Account{
		ID:              s.newID(),
		Name:            name,
		Book:            strings.TrimSpace(book),
		StartingBalance: bal,
		CurrentBalance:  bal,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		return domain.Account{}, fmt.Errorf("account_service: create: %w", err)
	}

	s.events.emit(ctx, domain.ChannelAccounts, domain.WagerEvent{
		Type:      domain.EventAccountCreated,
		AccountID: &acct.ID,
		Account:   &acct,
		At:        now,
	}, map[string]any{
		"account_id":       acct.ID,
		"name":             acct.Name,
		"starting_balance": acct.StartingBalance.StringFixed(2),
	})
	s.logger.InfoContext(ctx, "account created",
		slog.String("account_id", acct.ID),
		slog.String("book", acct.Book),
	)
	return acct, nil
}

// Get returns one account.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	acct, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account_service: get %s: %w", id, err)
	}
	return acct, nil
}

// List returns accounts by name.
func (s *AccountService) List(ctx context.Context, opts domain.ListOpts) ([]domain.Account, error) {
	list, err := s.accounts.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("account_service: list: %w", err)
	}
	return list, nil
}

// Summary totals the account's record. Staked and ROI count decided wagers
// only (won, lost, push); pending stake is reported separately.
func (s *AccountService) Summary(ctx context.Context, id string) (domain.AccountSummary, error) {
	acct, err := s.Get(ctx, id)
	if err != nil {
		return domain.AccountSummary{}, err
	}
	wagers, err := listAll(ctx, s.wagers, domain.WagerFilter{AccountID: id})
	if err != nil {
		return domain.AccountSummary{}, fmt.Errorf("account_service: summary %s: %w", id, err)
	}
	sum := Summarize(wagers)
	sum.AccountID = acct.ID
	sum.CurrentBalance = acct.CurrentBalance
	return sum, nil
}

// Summarize aggregates a set of wagers.
func Summarize(wagers []domain.Wager) domain.AccountSummary {
	sum := domain.AccountSummary{
		TotalStaked:  decimal.Zero,
		PendingStake: decimal.Zero,
		NetProfit:    decimal.Zero,
		ROI:          decimal.Zero,
	}
	for _, w := range wagers {
		switch w.Status {
		case domain.WagerStatusPending:
			sum.Pending++
			sum.PendingStake = sum.PendingStake.Add(w.Stake)
			continue
		case domain.WagerStatusCancelled:
			sum.Cancelled++
			continue
		case domain.WagerStatusWon:
			sum.Won++
		case domain.WagerStatusLost:
			sum.Lost++
		case domain.WagerStatusPush:
			sum.Push++
		}
		sum.TotalStaked = sum.TotalStaked.Add(w.Stake)
		if w.ProfitLoss != nil {
			sum.NetProfit = sum.NetProfit.Add(*w.ProfitLoss)
		}
	}
	if sum.TotalStaked.IsPositive() {
		sum.ROI = sum.NetProfit.Div(sum.TotalStaked).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return sum
}
