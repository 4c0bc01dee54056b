package audit

import (
	"context"
	"log/slog"
	"time"

	"healthpay-platform/internal/auth"

	"github.com/google/uuid"
)

// Service records admin-visible actions. Writes are best effort: failures
// are logged and swallowed so audit never breaks the money path.
type Service struct {
	repo Repository
	log  *slog.Logger
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, log: log, clock: time.Now}
}

// Record appends an entry, stamping the acting identity from ctx when
// present.
func (s *Service) Record(ctx context.Context, action Action, providerID, subjectID, detail string) {
	if s == nil || s.repo == nil {
		return
	}
	e := Entry{
		ID:         uuid.NewString(),
		Action:     action,
		ProviderID: providerID,
		SubjectID:  subjectID,
		Detail:     detail,
		CreatedAt:  s.clock().UTC(),
	}
	if userID, err := auth.UserID(ctx); err == nil {
		e.ActorUserID = userID
	}
	if role, err := auth.Role(ctx); err == nil {
		e.ActorRole = role
	}
	if err := s.repo.Append(ctx, e); err != nil {
		s.log.Error("audit append failed", "action", action, "provider_id", providerID, "err", err)
	}
}

// ListByProvider exposes the trail to the back office.
func (s *Service) ListByProvider(ctx context.Context, providerID string, limit int) ([]Entry, error) {
	return s.repo.ListByProvider(ctx, providerID, limit)
}
