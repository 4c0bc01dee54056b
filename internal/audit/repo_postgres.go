package audit

import (
	"context"
	"database/sql"
)

// NOTE: This repo assumes the following table exists:
// - audit_entries (id, action, provider_id, actor_user_id, actor_role,
//   subject_id, detail, created_at)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	if e.ID == "" || e.Action == "" {
		return ErrValidation
	}
	const q = `
INSERT INTO audit_entries (
  id, action, provider_id, actor_user_id, actor_role, subject_id, detail,
  created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.Action,
		e.ProviderID,
		e.ActorUserID,
		e.ActorRole,
		e.SubjectID,
		e.Detail,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListByProvider(ctx context.Context, providerID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id, action, provider_id, actor_user_id, actor_role, subject_id, detail,
       created_at
FROM audit_entries
WHERE provider_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, providerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.Action,
			&e.ProviderID,
			&e.ActorUserID,
			&e.ActorRole,
			&e.SubjectID,
			&e.Detail,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
