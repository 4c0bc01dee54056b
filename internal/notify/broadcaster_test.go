package notify

import (
	"context"
	"testing"
	"time"
)

func recv(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e := <-sub.C:
		return e
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_ProviderScoping(t *testing.T) {
	b := NewBroadcaster(4)
	ctx := context.Background()

	subA := b.Subscribe("prov-a")
	defer subA.Close()
	subB := b.Subscribe("prov-b")
	defer subB.Close()

	b.Publish(ctx, Event{Type: EventPaymentReleased, ProviderID: "prov-a"})

	e := recv(t, subA)
	if e.ProviderID != "prov-a" || e.Type != EventPaymentReleased {
		t.Fatalf("unexpected event %+v", e)
	}

	select {
	case e := <-subB.C:
		t.Fatalf("prov-b should not receive prov-a events, got %+v", e)
	default:
	}
}

func TestBroadcaster_AdminScopeReceivesAll(t *testing.T) {
	b := NewBroadcaster(4)
	ctx := context.Background()

	admin := b.SubscribeAll()
	defer admin.Close()

	b.Publish(ctx, Event{Type: EventInvoiceIssued, ProviderID: "prov-a"})
	b.Publish(ctx, Event{Type: EventWithdrawalUpdated, ProviderID: "prov-b"})

	if e := recv(t, admin); e.ProviderID != "prov-a" {
		t.Fatalf("unexpected first event %+v", e)
	}
	if e := recv(t, admin); e.ProviderID != "prov-b" {
		t.Fatalf("unexpected second event %+v", e)
	}
}

func TestBroadcaster_DropsWhenSubscriberIsSlow(t *testing.T) {
	b := NewBroadcaster(1)
	ctx := context.Background()

	sub := b.Subscribe("prov-a")
	defer sub.Close()

	// Publish must never block, even past the buffer.
	for i := 0; i < 10; i++ {
		b.Publish(ctx, Event{Type: EventPaymentReleased, ProviderID: "prov-a"})
	}

	// Exactly the buffered event survives.
	recv(t, sub)
	select {
	case e, ok := <-sub.C:
		if ok {
			t.Fatalf("expected no more events, got %+v", e)
		}
	default:
	}
}

func TestSubscription_CloseStopsDelivery(t *testing.T) {
	b := NewBroadcaster(4)
	ctx := context.Background()

	sub := b.Subscribe("prov-a")
	sub.Close()
	sub.Close() // idempotent

	// Must not panic on publish after close.
	b.Publish(ctx, Event{Type: EventPaymentReleased, ProviderID: "prov-a"})

	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel")
	}
}
