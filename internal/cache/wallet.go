package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"healthpay-platform/internal/notify"
	"healthpay-platform/internal/wallet"

	"github.com/redis/go-redis/v9"
)

const walletKeyPrefix = "healthpay:wallet:"

// WalletCache is a read-through Redis cache for wallet snapshots.
//
// The cache is advisory only: every failure degrades to a recompute from the
// ledger, never to an error or a stale answer past the TTL. Consistency comes
// from invalidate-then-refetch, driven by the ledger event stream.
type WalletCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewWalletCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *WalletCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &WalletCache{rdb: rdb, ttl: ttl, log: log}
}

func walletKey(providerID string) string {
	return walletKeyPrefix + providerID
}

// Get returns the cached snapshot and whether it was present.
func (c *WalletCache) Get(ctx context.Context, providerID string) (wallet.Snapshot, bool) {
	if c == nil || c.rdb == nil {
		return wallet.Snapshot{}, false
	}
	data, err := c.rdb.Get(ctx, walletKey(providerID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("wallet cache read failed", "provider_id", providerID, "err", err)
		}
		return wallet.Snapshot{}, false
	}
	var snap wallet.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Warn("wallet cache decode failed", "provider_id", providerID, "err", err)
		return wallet.Snapshot{}, false
	}
	return snap, true
}

// Set stores a freshly derived snapshot. Best effort.
func (c *WalletCache) Set(ctx context.Context, snap wallet.Snapshot) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		c.log.Warn("wallet cache encode failed", "provider_id", snap.ProviderID, "err", err)
		return
	}
	if err := c.rdb.Set(ctx, walletKey(snap.ProviderID), data, c.ttl).Err(); err != nil {
		c.log.Warn("wallet cache write failed", "provider_id", snap.ProviderID, "err", err)
	}
}

// Invalidate drops the provider's cached snapshot.
func (c *WalletCache) Invalidate(ctx context.Context, providerID string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, walletKey(providerID)).Err(); err != nil {
		c.log.Warn("wallet cache invalidate failed", "provider_id", providerID, "err", err)
	}
}

// Run subscribes to the full event stream and invalidates the affected
// provider on every balance-relevant event. Blocks until ctx is cancelled.
func (c *WalletCache) Run(ctx context.Context, broker notify.Broker) {
	sub := broker.SubscribeAll()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.C:
			if !ok {
				return
			}
			if e.ProviderID != "" {
				c.Invalidate(ctx, e.ProviderID)
			}
		}
	}
}
