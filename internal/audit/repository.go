package audit

import (
	"context"
	"errors"
)

var ErrValidation = errors.New("audit: invalid entry")

type Repository interface {
	Append(ctx context.Context, e Entry) error

	// ListByProvider returns entries newest first, capped at limit.
	ListByProvider(ctx context.Context, providerID string, limit int) ([]Entry, error)
}
