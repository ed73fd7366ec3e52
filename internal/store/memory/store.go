// Package memory is an in-process ledger used for local runs and tests. One
// mutex guards accounts and wagers together so a settlement moves status and
// balance atomically.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// Store holds the shared ledger state.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	wagers   map[string]domain.Wager
	audit    []domain.AuditEntry
	now      func() time.Time
}

// New creates an empty ledger.
func New() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		wagers:   make(map[string]domain.Wager),
		now:      time.Now,
	}
}

// Accounts returns the account view of the ledger.
func (s *Store) Accounts() *AccountStore { return &AccountStore{s: s} }

// Wagers returns the wager view of the ledger.
func (s *Store) Wagers() *WagerStore { return &WagerStore{s: s} }

// Audit returns the audit log view of the ledger.
func (s *Store) Audit() *AuditStore { return &AuditStore{s: s} }

// AccountStore implements domain.AccountStore in memory.
type AccountStore struct{ s *Store }

func (a *AccountStore) Create(_ context.Context, acct domain.Account) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.accounts[acct.ID]; ok {
		return fmt.Errorf("memory: account %s: %w", acct.ID, domain.ErrAlreadyExists)
	}
	a.s.accounts[acct.ID] = acct
	return nil
}

func (a *AccountStore) GetByID(_ context.Context, id string) (domain.Account, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	acct, ok := a.s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return acct, nil
}

func (a *AccountStore) List(_ context.Context, opts domain.ListOpts) ([]domain.Account, error) {
	a.s.mu.RLock()
	out := make([]domain.Account, 0, len(a.s.accounts))
	for _, acct := range a.s.accounts {
		out = append(out, acct)
	}
	a.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

// WagerStore implements domain.WagerStore in memory.
type WagerStore struct{ s *Store }

func (w *WagerStore) Create(_ context.Context, wager domain.Wager) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	if _, ok := w.s.wagers[wager.ID]; ok {
		return fmt.Errorf("memory: wager %s: %w", wager.ID, domain.ErrAlreadyExists)
	}
	w.s.wagers[wager.ID] = cloneWager(wager)
	return nil
}

func (w *WagerStore) GetByID(_ context.Context, id string) (domain.Wager, error) {
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()
	wager, ok := w.s.wagers[id]
	if !ok {
		return domain.Wager{}, domain.ErrNotFound
	}
	return cloneWager(wager), nil
}

func (w *WagerStore) List(_ context.Context, f domain.WagerFilter, opts domain.ListOpts) ([]domain.Wager, error) {
	since, until := f.Since, f.Until
	if since == nil {
		since = opts.Since
	}
	if until == nil {
		until = opts.Until
	}

	w.s.mu.RLock()
	var out []domain.Wager
	for _, wager := range w.s.wagers {
		if f.AccountID != "" && (wager.AccountID == nil || *wager.AccountID != f.AccountID) {
			continue
		}
		if f.Status != "" && wager.Status != f.Status {
			continue
		}
		if since != nil && wager.PlacedAt.Before(*since) {
			continue
		}
		if until != nil && wager.PlacedAt.After(*until) {
			continue
		}
		out = append(out, cloneWager(wager))
	}
	w.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlacedAt.Equal(out[j].PlacedAt) {
			return out[i].PlacedAt.After(out[j].PlacedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, opts), nil
}

// ApplySettlement flips a pending wager to its settled state and moves the
// account balance under one lock.
func (w *WagerStore) ApplySettlement(_ context.Context, st domain.Settlement) (domain.Wager, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	wager, ok := w.s.wagers[st.WagerID]
	if !ok {
		return domain.Wager{}, domain.ErrNotFound
	}
	if !wager.IsPending() {
		return domain.Wager{}, fmt.Errorf("memory: wager %s is %s: %w", wager.ID, wager.Status, domain.ErrAlreadySettled)
	}

	var acct domain.Account
	moveBalance := wager.AccountID != nil && !st.BalanceDelta.IsZero()
	if moveBalance {
		acct, ok = w.s.accounts[*wager.AccountID]
		if !ok {
			return domain.Wager{}, fmt.Errorf("memory: account %s: %w", *wager.AccountID, domain.ErrNotFound)
		}
	}

	wager = cloneWager(wager)
	pl := st.ProfitLoss
	settledAt := st.SettledAt
	wager.Status = st.Status
	wager.ProfitLoss = &pl
	wager.CombinedOdds = st.CombinedOdds
	wager.SettledAt = &settledAt
	for i := range wager.Legs {
		if status, ok := st.LegStatuses[wager.Legs[i].ID]; ok {
			wager.Legs[i].Status = status
		}
	}
	w.s.wagers[wager.ID] = wager

	if moveBalance {
		acct.CurrentBalance = acct.CurrentBalance.Add(st.BalanceDelta)
		acct.UpdatedAt = st.SettledAt
		w.s.accounts[acct.ID] = acct
	}
	return cloneWager(wager), nil
}

func (w *WagerStore) Delete(_ context.Context, id string) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	wager, ok := w.s.wagers[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !wager.IsPending() {
		return fmt.Errorf("memory: wager %s is %s: %w", id, wager.Status, domain.ErrAlreadySettled)
	}
	delete(w.s.wagers, id)
	return nil
}

// AuditStore implements domain.AuditStore in memory.
type AuditStore struct{ s *Store }

func (a *AuditStore) Log(_ context.Context, event string, detail map[string]any) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.audit = append(a.s.audit, domain.AuditEntry{
		ID:        int64(len(a.s.audit) + 1),
		Event:     event,
		Detail:    detail,
		CreatedAt: a.s.now().UTC(),
	})
	return nil
}

func (a *AuditStore) List(_ context.Context, opts domain.ListOpts) ([]domain.AuditEntry, error) {
	a.s.mu.RLock()
	out := make([]domain.AuditEntry, 0, len(a.s.audit))
	for i := len(a.s.audit) - 1; i >= 0; i-- {
		e := a.s.audit[i]
		if opts.Since != nil && e.CreatedAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.CreatedAt.After(*opts.Until) {
			continue
		}
		out = append(out, e)
	}
	a.s.mu.RUnlock()
	return page(out, opts), nil
}

func page[T any](items []T, opts domain.ListOpts) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return []T{}
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

func cloneWager(w domain.Wager) domain.Wager {
	w.Legs = append([]domain.Leg(nil), w.Legs...)
	if w.ProfitLoss != nil {
		pl := *w.ProfitLoss
		w.ProfitLoss = &pl
	}
	if w.SettledAt != nil {
		at := *w.SettledAt
		w.SettledAt = &at
	}
	return w
}

var (
	_ domain.AccountStore = (*AccountStore)(nil)
	_ domain.WagerStore   = (*WagerStore)(nil)
	_ domain.AuditStore   = (*AuditStore)(nil)
)
