// Package feed is the in-process pub/sub layer that makes engine events
// visible outside the process. It is grounded on the generic hub type in
// realmfikri-Limitless/server/hub.go: a buffered, non-blocking broadcaster
// so a slow websocket consumer can never stall a matching goroutine. Unlike
// the example, a subscriber that cannot keep up is tracked and eventually
// dropped rather than left to silently miss frames forever.
package feed

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// maxDroppedBeforeEvict is how many missed frames in total a
// subscriber tolerates before the hub gives up on it and unsubscribes it.
// A websocket client that is this far behind is not going to catch up;
// holding its channel open only costs memory.
const maxDroppedBeforeEvict = 256

// Subscription is a single consumer's channel handle.
type Subscription[T any] struct {
	ch      chan T
	dropped atomic.Int64
}

// C returns the channel to receive broadcast values on.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Dropped reports how many broadcasts this subscriber has missed because
// its buffer was full at the time.
func (s *Subscription[T]) Dropped() int64 { return s.dropped.Load() }

// Hub fans out broadcast values to every current subscriber.
type Hub[T any] struct {
	mu   sync.RWMutex
	subs map[*Subscription[T]]struct{}
}

// NewHub constructs an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Subscribe registers a new consumer with the given channel buffer size.
func (h *Hub[T]) Subscribe(buffer int) *Subscription[T] {
	sub := &Subscription[T]{ch: make(chan T, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes and closes sub's channel. It is safe to call more
// than once for the same subscription (eviction and a caller's own
// cleanup can race); only the call that actually removes the entry closes
// the channel.
func (h *Hub[T]) Unsubscribe(sub *Subscription[T]) {
	h.mu.Lock()
	_, present := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	if present {
		close(sub.ch)
	}
}

// Broadcast sends value to every current subscriber. A subscriber whose
// buffer is full is skipped rather than blocked, and its drop count is
// incremented; a subscriber that crosses maxDroppedBeforeEvict is evicted
// after the broadcast so one stalled consumer cannot accumulate unbounded
// backlog on the hub.
func (h *Hub[T]) Broadcast(value T) {
	h.mu.RLock()
	var evict []*Subscription[T]
	for sub := range h.subs {
		select {
		case sub.ch <- value:
		default:
			if sub.dropped.Add(1) == maxDroppedBeforeEvict {
				evict = append(evict, sub)
			}
		}
	}
	h.mu.RUnlock()

	for _, sub := range evict {
		log.Warn().Int64("dropped", sub.Dropped()).Msg("feed: evicting subscriber that fell too far behind")
		h.Unsubscribe(sub)
	}
}

// SubscriberCount reports how many consumers are currently registered.
func (h *Hub[T]) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// TotalDropped sums the drop count across every currently registered
// subscriber, used by the /metrics endpoint to surface feed backpressure.
func (h *Hub[T]) TotalDropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var total int64
	for sub := range h.subs {
		total += sub.Dropped()
	}
	return total
}
