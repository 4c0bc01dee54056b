package commission

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This repo assumes the following table exists:
// - commission_rules (id, provider_type, percent NUMERIC, effective_from,
//   effective_to NULL, status, created_at, updated_at)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const ruleColumns = `
id, provider_type, percent, effective_from, effective_to, status,
created_at, updated_at
`

func scanRule(row interface{ Scan(dest ...any) error }) (Rule, error) {
	var r Rule
	err := row.Scan(
		&r.ID,
		&r.ProviderType,
		&r.Percent,
		&r.EffectiveFrom,
		&r.EffectiveTo,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (p *PostgresRepo) Insert(ctx context.Context, r Rule) error {
	const q = `
INSERT INTO commission_rules (
  id, provider_type, percent, effective_from, effective_to, status,
  created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := p.db.ExecContext(ctx, q,
		r.ID,
		r.ProviderType,
		r.Percent,
		r.EffectiveFrom,
		r.EffectiveTo,
		r.Status,
		r.CreatedAt,
		r.UpdatedAt,
	)
	return err
}

func (p *PostgresRepo) Get(ctx context.Context, id string) (Rule, error) {
	const q = `SELECT ` + ruleColumns + ` FROM commission_rules WHERE id = $1`
	r, err := scanRule(p.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rule{}, ErrNotFound
		}
		return Rule{}, err
	}
	return r, nil
}

func (p *PostgresRepo) ActiveRule(ctx context.Context, providerType ProviderType, at time.Time) (Rule, bool, error) {
	const q = `
SELECT ` + ruleColumns + `
FROM commission_rules
WHERE provider_type = $1
  AND status = 'active'
  AND effective_from <= $2
  AND (effective_to IS NULL OR effective_to > $2)
ORDER BY effective_from DESC
LIMIT 1`
	r, err := scanRule(p.db.QueryRowContext(ctx, q, providerType, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rule{}, false, nil
		}
		return Rule{}, false, err
	}
	return r, true, nil
}

func (p *PostgresRepo) List(ctx context.Context) ([]Rule, error) {
	const q = `SELECT ` + ruleColumns + ` FROM commission_rules ORDER BY effective_from DESC, id DESC`
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresRepo) Retire(ctx context.Context, id string, at time.Time) (Rule, error) {
	const q = `
UPDATE commission_rules
SET status = 'retired', updated_at = $2
WHERE id = $1
RETURNING ` + ruleColumns
	r, err := scanRule(p.db.QueryRowContext(ctx, q, id, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Rule{}, ErrNotFound
		}
		return Rule{}, err
	}
	return r, nil
}
