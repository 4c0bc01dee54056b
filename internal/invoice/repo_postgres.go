package invoice

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"healthpay-platform/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

// NOTE: This store assumes the following tables exist:
// - invoices (id, invoice_number UNIQUE, provider_id, provider_name,
//   provider_type, subtotal NUMERIC, commission_percentage NUMERIC,
//   commission_amount NUMERIC, net_total NUMERIC, notes, issued_at)
// - invoice_items (invoice_id REFERENCES invoices, payment_id, service_id,
//   service_name, patient_name, original_amount NUMERIC,
//   admin_commission_amount NUMERIC, net_amount NUMERIC, completion_date,
//   release_date, position)
// - invoice_payments (payment_id PRIMARY KEY, invoice_id REFERENCES invoices,
//   provider_id)
// - invoice_counters (scope PRIMARY KEY, next_value BIGINT)
//
// The invoice_payments primary key is what enforces the one-invoice-per-
// payment rule under concurrency.

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) NextNumber(ctx context.Context) (int64, error) {
	const q = `
INSERT INTO invoice_counters (scope, next_value)
VALUES ('global', 1)
ON CONFLICT (scope) DO UPDATE SET next_value = invoice_counters.next_value + 1
RETURNING next_value`
	var n int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *PostgresStore) Create(ctx context.Context, inv Invoice) error {
	if inv.ID == "" || len(inv.PaymentIDs) == 0 {
		return ErrValidation
	}

	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const insInvoice = `
INSERT INTO invoices (
  id, invoice_number, provider_id, provider_name, provider_type,
  subtotal, commission_percentage, commission_amount, net_total,
  notes, issued_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
		if _, err := tx.ExecContext(ctx, insInvoice,
			inv.ID,
			inv.InvoiceNumber,
			inv.ProviderID,
			inv.ProviderName,
			inv.ProviderType,
			inv.Subtotal,
			inv.CommissionPercentage,
			inv.CommissionAmount,
			inv.NetTotal,
			inv.Notes,
			inv.IssuedAt,
		); err != nil {
			return err
		}

		const insItem = `
INSERT INTO invoice_items (
  invoice_id, payment_id, service_id, service_name, patient_name,
  original_amount, admin_commission_amount, net_amount,
  completion_date, release_date, position
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
		for i, it := range inv.Items {
			if _, err := tx.ExecContext(ctx, insItem,
				inv.ID,
				it.PaymentID,
				it.ServiceID,
				it.ServiceName,
				it.PatientName,
				it.OriginalAmount,
				it.AdminCommissionAmount,
				it.NetAmount,
				it.CompletionDate,
				it.ReleaseDate,
				i,
			); err != nil {
				return err
			}
		}

		const insClaim = `
INSERT INTO invoice_payments (payment_id, invoice_id, provider_id)
VALUES ($1,$2,$3)
`
		for _, pid := range inv.PaymentIDs {
			if _, err := tx.ExecContext(ctx, insClaim, pid, inv.ID, inv.ProviderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return err
	}
	return nil
}

const invoiceColumns = `
id, invoice_number, provider_id, provider_name, provider_type,
subtotal, commission_percentage, commission_amount, net_total,
notes, issued_at
`

func scanInvoice(row interface{ Scan(dest ...any) error }) (Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.ProviderID,
		&inv.ProviderName,
		&inv.ProviderType,
		&inv.Subtotal,
		&inv.CommissionPercentage,
		&inv.CommissionAmount,
		&inv.NetTotal,
		&inv.Notes,
		&inv.IssuedAt,
	)
	return inv, err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Invoice, error) {
	const q = `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	if err := s.loadItems(ctx, &inv); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (s *PostgresStore) ClaimedPaymentIDs(ctx context.Context, providerID string) (map[string]struct{}, error) {
	const q = `SELECT payment_id FROM invoice_payments WHERE provider_id = $1`
	rows, err := s.db.QueryContext(ctx, q, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		out[pid] = struct{}{}
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListByProvider(ctx context.Context, providerID string) ([]Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
FROM invoices WHERE provider_id = $1
ORDER BY issued_at DESC, invoice_number DESC`
	return s.queryInvoices(ctx, q, providerID)
}

func (s *PostgresStore) List(ctx context.Context, opts ListOpts) ([]Invoice, int, error) {
	countQ := `SELECT COUNT(*) FROM invoices`
	listQ := `SELECT ` + invoiceColumns + ` FROM invoices`
	var args []any
	if opts.ProviderID != "" {
		countQ += ` WHERE provider_id = $1`
		listQ += ` WHERE provider_id = $1`
		args = append(args, opts.ProviderID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQ += ` ORDER BY issued_at DESC, invoice_number DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		listQ += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		listQ += ` OFFSET $` + strconv.Itoa(len(args))
	}

	out, err := s.queryInvoices(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *PostgresStore) queryInvoices(ctx context.Context, q string, args ...any) ([]Invoice, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.loadItems(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) loadItems(ctx context.Context, inv *Invoice) error {
	const q = `
SELECT payment_id, service_id, service_name, patient_name,
       original_amount, admin_commission_amount, net_amount,
       completion_date, release_date
FROM invoice_items
WHERE invoice_id = $1
ORDER BY position ASC`
	rows, err := s.db.QueryContext(ctx, q, inv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	inv.Items = nil
	inv.PaymentIDs = nil
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.PaymentID,
			&it.ServiceID,
			&it.ServiceName,
			&it.PatientName,
			&it.OriginalAmount,
			&it.AdminCommissionAmount,
			&it.NetAmount,
			&it.CompletionDate,
			&it.ReleaseDate,
		); err != nil {
			return err
		}
		inv.Items = append(inv.Items, it)
		inv.PaymentIDs = append(inv.PaymentIDs, it.PaymentID)
	}
	return rows.Err()
}
