package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This store assumes the following table exists:
// - payments (id, provider_id, service_id, service_name, patient_id,
//   patient_name, amount NUMERIC, service_completed, released_to_provider,
//   completion_date, release_date, hidden, created_at)
//
// Amounts are stored as NUMERIC and scanned via their string form.

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const paymentColumns = `
id, provider_id, service_id, service_name, patient_id, patient_name,
amount, service_completed, released_to_provider, completion_date, release_date,
hidden, created_at
`

func scanPayment(row interface{ Scan(dest ...any) error }) (Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID,
		&p.ProviderID,
		&p.ServiceID,
		&p.ServiceName,
		&p.PatientID,
		&p.PatientName,
		&p.Amount,
		&p.ServiceCompleted,
		&p.ReleasedToProvider,
		&p.CompletionDate,
		&p.ReleaseDate,
		&p.Hidden,
		&p.CreatedAt,
	)
	return p, err
}

func (s *PostgresStore) Insert(ctx context.Context, p Payment) error {
	const q = `
INSERT INTO payments (
  id, provider_id, service_id, service_name, patient_id, patient_name,
  amount, service_completed, released_to_provider, completion_date, release_date,
  hidden, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)
`
	_, err := s.db.ExecContext(ctx, q,
		p.ID,
		p.ProviderID,
		p.ServiceID,
		p.ServiceName,
		p.PatientID,
		p.PatientName,
		p.Amount,
		p.ServiceCompleted,
		p.ReleasedToProvider,
		p.CompletionDate,
		p.ReleaseDate,
		p.Hidden,
		p.CreatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (s *PostgresStore) ListByProvider(ctx context.Context, providerID string, includeHidden bool) ([]Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE provider_id = $1`
	if !includeHidden {
		q += ` AND hidden = FALSE`
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, id string, at time.Time) (Payment, error) {
	const q = `
UPDATE payments
SET service_completed = TRUE, completion_date = $2
WHERE id = $1 AND service_completed = FALSE
RETURNING ` + paymentColumns
	p, err := scanPayment(s.db.QueryRowContext(ctx, q, id, at))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Payment{}, err
	}
	// Either already completed (idempotent success) or unknown id.
	return s.Get(ctx, id)
}

func (s *PostgresStore) MarkReleased(ctx context.Context, id string, at time.Time) (Payment, error) {
	const q = `
UPDATE payments
SET released_to_provider = TRUE, release_date = $2
WHERE id = $1 AND service_completed = TRUE AND released_to_provider = FALSE
RETURNING ` + paymentColumns
	p, err := scanPayment(s.db.QueryRowContext(ctx, q, id, at))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Payment{}, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if existing.ReleasedToProvider {
		// Idempotent retry.
		return existing, nil
	}
	return Payment{}, ErrNotCompleted
}

func (s *PostgresStore) SetHidden(ctx context.Context, providerID string, ids []string, hidden bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `
UPDATE payments
SET hidden = $3
WHERE provider_id = $1 AND id = ANY($2) AND hidden <> $3
`
	res, err := s.db.ExecContext(ctx, q, providerID, ids, hidden)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
