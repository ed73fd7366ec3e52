package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// AccountStore persists sportsbook bankrolls.
type AccountStore interface {
	Create(ctx context.Context, acct Account) error
	GetByID(ctx context.Context, id string) (Account, error)
	List(ctx context.Context, opts ListOpts) ([]Account, error)
}

// WagerStore persists wagers and their legs.
//
// ApplySettlement is a compare-and-swap: it commits the settlement only if
// the wager is still pending and returns ErrAlreadySettled otherwise. The
// status, leg statuses and the owning account's balance change in one
// transaction.
type WagerStore interface {
	Create(ctx context.Context, w Wager) error
	GetByID(ctx context.Context, id string) (Wager, error)
	List(ctx context.Context, filter WagerFilter, opts ListOpts) ([]Wager, error)
	ApplySettlement(ctx context.Context, s Settlement) (Wager, error)
	Delete(ctx context.Context, id string) error
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
