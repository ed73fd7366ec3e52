package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// AccountStore implements domain.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *pgxpool.Pool
}

// NewAccountStore creates a new AccountStore backed by the given pool.
func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

const accountColumns = `id, name, book, starting_balance::text, current_balance::text, created_at, updated_at`

// Create inserts a new account.
func (s *AccountStore) Create(ctx context.Context, a domain.Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, book, starting_balance, current_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4::text::numeric, $5::text::numeric, $6, $7)`,
		a.ID, a.Name, a.Book, a.StartingBalance.String(), a.CurrentBalance.String(), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("postgres: create account %s: %w", a.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("postgres: create account %s: %w", a.ID, err)
	}
	return nil
}

// GetByID returns the account with the given id.
func (s *AccountStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, domain.ErrNotFound
		}
		return domain.Account{}, fmt.Errorf("postgres: get account %s: %w", id, err)
	}
	return a, nil
}

// List returns accounts ordered by name.
func (s *AccountStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY name, id`
	args := []any{}
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list accounts rows: %w", err)
	}
	return out, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a                 domain.Account
		starting, current string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Book, &starting, &current, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return domain.Account{}, err
	}
	var err error
	if a.StartingBalance, err = parseMoney(starting); err != nil {
		return domain.Account{}, err
	}
	if a.CurrentBalance, err = parseMoney(current); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

var _ domain.AccountStore = (*AccountStore)(nil)
