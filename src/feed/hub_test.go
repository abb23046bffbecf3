package feed

import (
	"testing"
	"time"
)

func TestHubBroadcastDeliversToSubscribers(t *testing.T) {
	hub := NewHub[int]()
	sub := hub.Subscribe(1)
	defer hub.Unsubscribe(sub)

	hub.Broadcast(42)

	select {
	case v := <-sub.C():
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

func TestHubBroadcastNeverBlocksOnFullSubscriber(t *testing.T) {
	hub := NewHub[int]()
	sub := hub.Subscribe(1)
	defer hub.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		// fill the buffer, then try to overflow it; Broadcast must not block
		hub.Broadcast(1)
		hub.Broadcast(2)
		hub.Broadcast(3)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full subscriber buffer")
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub[int]()
	sub := hub.Subscribe(1)
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	hub.Unsubscribe(sub)
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after unsubscribe, got %d", hub.SubscriberCount())
	}

	_, open := <-sub.C()
	if open {
		t.Fatal("expected subscriber channel to be closed after unsubscribe")
	}
}

func TestHubUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub[int]()
	sub := hub.Subscribe(1)

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub) // must not panic on a double close
}

func TestHubBroadcastCountsDroppedFrames(t *testing.T) {
	hub := NewHub[int]()
	sub := hub.Subscribe(1)
	defer hub.Unsubscribe(sub)

	hub.Broadcast(1) // fills the buffer
	hub.Broadcast(2) // dropped
	hub.Broadcast(3) // dropped

	if sub.Dropped() != 2 {
		t.Fatalf("expected 2 dropped frames, got %d", sub.Dropped())
	}
	if hub.TotalDropped() != 2 {
		t.Fatalf("expected hub total dropped 2, got %d", hub.TotalDropped())
	}
}

func TestHubEvictsSubscriberThatFallsTooFarBehind(t *testing.T) {
	hub := NewHub[int]()
	sub := hub.Subscribe(1)

	hub.Broadcast(0) // fills the buffer so every subsequent send drops
	for i := 0; i < maxDroppedBeforeEvict; i++ {
		hub.Broadcast(i)
	}

	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected the chronically slow subscriber to be evicted, got %d remaining", hub.SubscriberCount())
	}
	<-sub.C() // drain the one frame that made it into the buffer
	if _, open := <-sub.C(); open {
		t.Fatal("expected evicted subscriber's channel to be closed")
	}
}
