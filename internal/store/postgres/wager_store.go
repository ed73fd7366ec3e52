package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/betledger/internal/domain"
)

// WagerStore implements domain.WagerStore using PostgreSQL.
type WagerStore struct {
	pool *pgxpool.Pool
}

// NewWagerStore creates a new WagerStore backed by the given pool.
func NewWagerStore(pool *pgxpool.Pool) *WagerStore {
	return &WagerStore{pool: pool}
}

const wagerColumns = `id, kind, account_id, book, stake::text, combined_odds, status, profit_loss::text, note, placed_at, settled_at`

const legColumns = `id, wager_id, position, sport, market_key, side, line_value, odds_american, player_id, team_id, game_id, note, status`

// Create inserts a wager and its legs in one transaction.
func (s *WagerStore) Create(ctx context.Context, w domain.Wager) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO wagers (id, kind, account_id, book, stake, combined_odds, status, note, placed_at)
		VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7, $8, $9)`,
		w.ID, string(w.Kind), w.AccountID, w.Book, w.Stake.String(), w.CombinedOdds,
		string(w.Status), w.Note, w.PlacedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("postgres: insert wager %s: %w", w.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("postgres: insert wager %s: %w", w.ID, err)
	}

	batch := &pgx.Batch{}
	for _, l := range w.Legs {
		batch.Queue(`
			INSERT INTO wager_legs (id, wager_id, position, sport, market_key, side, line_value, odds_american, player_id, team_id, game_id, note, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			l.ID, w.ID, l.Position, l.Sport, l.MarketKey, string(l.Side), l.LineValue,
			l.OddsAmerican, l.PlayerID, l.TeamID, l.GameID, l.Note, string(l.Status),
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: insert legs for wager %s: %w", w.ID, err)
	}

	return tx.Commit(ctx)
}

// GetByID returns a wager with its legs in placement order.
func (s *WagerStore) GetByID(ctx context.Context, id string) (domain.Wager, error) {
	w, err := scanWager(s.pool.QueryRow(ctx, `SELECT `+wagerColumns+` FROM wagers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Wager{}, domain.ErrNotFound
		}
		return domain.Wager{}, fmt.Errorf("postgres: get wager %s: %w", id, err)
	}

	legs, err := s.legsFor(ctx, []string{id})
	if err != nil {
		return domain.Wager{}, err
	}
	w.Legs = legs[id]
	return w, nil
}

// List returns wagers newest first, filtered and paginated.
func (s *WagerStore) List(ctx context.Context, filter domain.WagerFilter, opts domain.ListOpts) ([]domain.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE 1=1`
	args := []any{}
	next := func() int { return len(args) + 1 }

	if filter.AccountID != "" {
		query += fmt.Sprintf(" AND account_id = $%d", next())
		args = append(args, filter.AccountID)
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", next())
		args = append(args, string(filter.Status))
	}
	if since := firstTime(filter.Since, opts.Since); since != nil {
		query += fmt.Sprintf(" AND placed_at >= $%d", next())
		args = append(args, *since)
	}
	if until := firstTime(filter.Until, opts.Until); until != nil {
		query += fmt.Sprintf(" AND placed_at <= $%d", next())
		args = append(args, *until)
	}

	query += " ORDER BY placed_at DESC, id"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", next())
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", next())
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list wagers: %w", err)
	}
	defer rows.Close()

	var (
		out []domain.Wager
		ids []string
	)
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan wager: %w", err)
		}
		out = append(out, w)
		ids = append(ids, w.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list wagers rows: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	legs, err := s.legsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Legs = legs[out[i].ID]
	}
	return out, nil
}

// ApplySettlement commits a settlement if the wager is still pending. The
// status flip is a compare-and-swap on status = 'pending'; the leg statuses
// and the account balance change inside the same transaction.
func (s *WagerStore) ApplySettlement(ctx context.Context, st domain.Settlement) (domain.Wager, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Wager{}, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var accountID *string
	err = tx.QueryRow(ctx, `
		UPDATE wagers
		SET status = $2, profit_loss = $3::text::numeric, combined_odds = $4, settled_at = $5
		WHERE id = $1 AND status = 'pending'
		RETURNING account_id`,
		st.WagerID, string(st.Status), st.ProfitLoss.String(), st.CombinedOdds, st.SettledAt,
	).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Wager{}, s.missOrSettled(ctx, tx, st.WagerID)
		}
		return domain.Wager{}, fmt.Errorf("postgres: settle wager %s: %w", st.WagerID, err)
	}

	for legID, status := range st.LegStatuses {
		if _, err := tx.Exec(ctx,
			`UPDATE wager_legs SET status = $3 WHERE id = $1 AND wager_id = $2`,
			legID, st.WagerID, string(status),
		); err != nil {
			return domain.Wager{}, fmt.Errorf("postgres: settle leg %s: %w", legID, err)
		}
	}

	if accountID != nil && !st.BalanceDelta.IsZero() {
		tag, err := tx.Exec(ctx, `
			UPDATE accounts
			SET current_balance = current_balance + $2::text::numeric, updated_at = $3
			WHERE id = $1`,
			*accountID, st.BalanceDelta.String(), st.SettledAt,
		)
		if err != nil {
			return domain.Wager{}, fmt.Errorf("postgres: apply balance delta to %s: %w", *accountID, err)
		}
		if tag.RowsAffected() == 0 {
			return domain.Wager{}, fmt.Errorf("postgres: account %s: %w", *accountID, domain.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Wager{}, fmt.Errorf("postgres: commit settlement %s: %w", st.WagerID, err)
	}
	return s.GetByID(ctx, st.WagerID)
}

// Delete removes a pending wager and its legs.
func (s *WagerStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM wagers WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete wager %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return s.missOrSettled(ctx, s.pool, id)
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *WagerStore) missOrSettled(ctx context.Context, q querier, id string) error {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM wagers WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("postgres: lookup wager %s: %w", id, err)
	}
	return fmt.Errorf("postgres: wager %s is %s: %w", id, status, domain.ErrAlreadySettled)
}

func (s *WagerStore) legsFor(ctx context.Context, wagerIDs []string) (map[string][]domain.Leg, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+legColumns+` FROM wager_legs WHERE wager_id = ANY($1) ORDER BY wager_id, position`,
		wagerIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list legs: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Leg, len(wagerIDs))
	for rows.Next() {
		var (
			l            domain.Leg
			side, status string
		)
		if err := rows.Scan(&l.ID, &l.WagerID, &l.Position, &l.Sport, &l.MarketKey, &side,
			&l.LineValue, &l.OddsAmerican, &l.PlayerID, &l.TeamID, &l.GameID, &l.Note, &status); err != nil {
			return nil, fmt.Errorf("postgres: scan leg: %w", err)
		}
		l.Side = domain.Side(side)
		l.Status = domain.LegStatus(status)
		out[l.WagerID] = append(out[l.WagerID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list legs rows: %w", err)
	}
	return out, nil
}

func scanWager(row pgx.Row) (domain.Wager, error) {
	var (
		w                   domain.Wager
		kind, status, stake string
		profitLoss          *string
		settledAt           *time.Time
	)
	if err := row.Scan(&w.ID, &kind, &w.AccountID, &w.Book, &stake, &w.CombinedOdds,
		&status, &profitLoss, &w.Note, &w.PlacedAt, &settledAt); err != nil {
		return domain.Wager{}, err
	}
	w.Kind = domain.WagerKind(kind)
	w.Status = domain.WagerStatus(status)
	w.SettledAt = settledAt

	var err error
	if w.Stake, err = parseMoney(stake); err != nil {
		return domain.Wager{}, err
	}
	if w.ProfitLoss, err = parseMoneyPtr(profitLoss); err != nil {
		return domain.Wager{}, err
	}
	return w, nil
}

func firstTime(ts ...*time.Time) *time.Time {
	for _, t := range ts {
		if t != nil {
			return t
		}
	}
	return nil
}

var _ domain.WagerStore = (*WagerStore)(nil)
