package ledger

import (
	"context"
	"time"

	"healthpay-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "healthpay:ledger:lock:"

// ProviderSerializer is the per-provider serialization boundary for
// balance-mutating operations (withdrawal requests, invoice issuance).
//
// A keyed in-process mutex serializes within one API instance; when a Redis
// client is configured, a TTL-guarded distributed lock extends the boundary
// across instances. Reads never pass through here.
type ProviderSerializer struct {
	local *utils.KeyedMutex
	rdb   *redis.Client
	ttl   time.Duration
}

func NewProviderSerializer(rdb *redis.Client, lockTTL time.Duration) *ProviderSerializer {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &ProviderSerializer{local: utils.NewKeyedMutex(), rdb: rdb, ttl: lockTTL}
}

// Serialize blocks until the caller exclusively owns the provider's boundary
// and returns the release function. Callers must release promptly; held
// operations are short local store writes by contract.
func (s *ProviderSerializer) Serialize(ctx context.Context, providerID string) (func(), error) {
	unlock := s.local.Lock(providerID)
	if s.rdb == nil {
		return unlock, nil
	}

	key := lockKeyPrefix + providerID
	token := uuid.NewString()
	for {
		ok, err := utils.AcquireProviderLock(ctx, s.rdb, key, token, s.ttl)
		if err != nil {
			unlock()
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			unlock()
			return nil, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}

	return func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = utils.ReleaseProviderLock(relCtx, s.rdb, key, token)
		unlock()
	}, nil
}
