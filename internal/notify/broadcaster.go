package notify

import (
	"context"
	"sync"
)

// Broadcaster fans events out to in-process subscribers.
//
// Each subscriber owns a buffered channel; when the buffer is full the event
// is dropped for that subscriber (at-most-once delivery by contract).
type Broadcaster struct {
	mu     sync.Mutex
	topics map[string]map[*Subscription]struct{}
	all    map[*Subscription]struct{}
	buffer int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 16
	}
	return &Broadcaster{
		topics: make(map[string]map[*Subscription]struct{}),
		all:    make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscription is one open session's event feed.
type Subscription struct {
	C <-chan Event

	ch         chan Event
	b          *Broadcaster
	providerID string
	allScope   bool
	once       sync.Once
}

// Subscribe attaches to a single provider's topic.
func (b *Broadcaster) Subscribe(providerID string) *Subscription {
	sub := &Subscription{ch: make(chan Event, b.buffer), b: b, providerID: providerID}
	sub.C = sub.ch

	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.topics[providerID]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.topics[providerID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// SubscribeAll attaches to every provider topic (admin sessions, cache
// invalidation).
func (b *Broadcaster) SubscribeAll() *Subscription {
	sub := &Subscription{ch: make(chan Event, b.buffer), b: b, allScope: true}
	sub.C = sub.ch

	b.mu.Lock()
	defer b.mu.Unlock()
	b.all[sub] = struct{}{}
	return sub
}

// Close detaches the subscription and closes its channel.
// The channel is closed under the broadcaster lock so Publish can never send
// on a closed channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.b
		b.mu.Lock()
		defer b.mu.Unlock()
		if s.allScope {
			delete(b.all, s)
		} else if set, ok := b.topics[s.providerID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(b.topics, s.providerID)
			}
		}
		close(s.ch)
	})
}

// Publish delivers e to the provider's subscribers and all admin-scoped
// subscribers. It never blocks: slow subscribers lose the event.
func (b *Broadcaster) Publish(ctx context.Context, e Event) {
	_ = ctx

	b.mu.Lock()
	defer b.mu.Unlock()

	deliver := func(sub *Subscription) {
		select {
		case sub.ch <- e:
		default:
			// Subscriber buffer full: drop. The on-mount/refetch contract
			// makes missed events recoverable.
		}
	}
	for sub := range b.topics[e.ProviderID] {
		deliver(sub)
	}
	for sub := range b.all {
		deliver(sub)
	}
}
