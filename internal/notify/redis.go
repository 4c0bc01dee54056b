package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const eventChannel = "healthpay:ledger:events"

// RedisBroadcaster bridges ledger events across API instances via Redis
// pub/sub. Publish pushes to Redis only; local fan-out happens when the
// message comes back through the subscription, so every instance (including
// the publisher) delivers each event exactly once to its own subscribers.
//
// Publishing is fire-and-forget: a Redis outage degrades push freshness but
// never blocks or fails the mutating request.
type RedisBroadcaster struct {
	rdb   *redis.Client
	local *Broadcaster
	log   *slog.Logger
}

func NewRedisBroadcaster(rdb *redis.Client, local *Broadcaster, log *slog.Logger) *RedisBroadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &RedisBroadcaster{rdb: rdb, local: local, log: log}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		b.log.Error("event marshal failed", "type", e.Type, "err", err)
		return
	}

	// Detach from the request context; the caller must not wait on delivery.
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := b.rdb.Publish(pubCtx, eventChannel, data).Err(); err != nil {
			b.log.Error("event publish failed", "type", e.Type, "provider_id", e.ProviderID, "err", err)
		}
	}()
}

func (b *RedisBroadcaster) Subscribe(providerID string) *Subscription {
	return b.local.Subscribe(providerID)
}

func (b *RedisBroadcaster) SubscribeAll() *Subscription {
	return b.local.SubscribeAll()
}

// Run consumes the Redis channel and fans messages out locally until ctx is
// cancelled. Malformed messages are logged and skipped.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	pubsub := b.rdb.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.log.Error("event decode failed", "err", err)
				continue
			}
			b.local.Publish(ctx, e)
		}
	}
}
