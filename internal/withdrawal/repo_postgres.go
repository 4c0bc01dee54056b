package withdrawal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// NOTE: This store assumes the following table exists:
// - withdrawals (id, provider_id, amount NUMERIC, payment_method,
//   account_number, account_name, status, created_at, updated_at)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const withdrawalColumns = `
id, provider_id, amount, payment_method, account_number, account_name,
status, created_at, updated_at
`

func scanWithdrawal(row interface{ Scan(dest ...any) error }) (Withdrawal, error) {
	var w Withdrawal
	err := row.Scan(
		&w.ID,
		&w.ProviderID,
		&w.Amount,
		&w.PaymentMethod,
		&w.AccountNumber,
		&w.AccountName,
		&w.Status,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	return w, err
}

func (s *PostgresStore) Insert(ctx context.Context, w Withdrawal) error {
	const q = `
INSERT INTO withdrawals (
  id, provider_id, amount, payment_method, account_number, account_name,
  status, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := s.db.ExecContext(ctx, q,
		w.ID,
		w.ProviderID,
		w.Amount,
		w.PaymentMethod,
		w.AccountNumber,
		w.AccountName,
		w.Status,
		w.CreatedAt,
		w.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Withdrawal, error) {
	const q = `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`
	w, err := scanWithdrawal(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Withdrawal{}, ErrNotFound
		}
		return Withdrawal{}, err
	}
	return w, nil
}

func (s *PostgresStore) ListByProvider(ctx context.Context, providerID string) ([]Withdrawal, error) {
	const q = `SELECT ` + withdrawalColumns + `
FROM withdrawals WHERE provider_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) (Withdrawal, error) {
	const q = `
UPDATE withdrawals
SET status = $3, updated_at = $4
WHERE id = $1 AND status = $2
RETURNING ` + withdrawalColumns
	w, err := scanWithdrawal(s.db.QueryRowContext(ctx, q, id, from, to, at))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Withdrawal{}, err
	}
	// Distinguish a lost CAS race from a missing row.
	if _, getErr := s.Get(ctx, id); getErr != nil {
		return Withdrawal{}, getErr
	}
	return Withdrawal{}, ErrConflict
}

func (s *PostgresStore) Delete(ctx context.Context, providerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `DELETE FROM withdrawals WHERE provider_id = $1 AND id = ANY($2)`
	res, err := s.db.ExecContext(ctx, q, providerID, ids)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *PostgresStore) DeleteAllForProvider(ctx context.Context, providerID string) (int, error) {
	const q = `DELETE FROM withdrawals WHERE provider_id = $1`
	res, err := s.db.ExecContext(ctx, q, providerID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *PostgresStore) SumCountedAgainstBalance(ctx context.Context, providerID string) (decimal.Decimal, error) {
	const q = `
SELECT COALESCE(SUM(amount), 0)
FROM withdrawals
WHERE provider_id = $1 AND status IN ('approved', 'completed')`
	var sum decimal.Decimal
	if err := s.db.QueryRowContext(ctx, q, providerID).Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
