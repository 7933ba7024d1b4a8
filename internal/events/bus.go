package events

import "sync"

// PointsChanged announces that a child's wallet figures may have moved.
// It is a best-effort refresh hint for open wallet views, not a durability
// guarantee: the datastore remains the source of truth.
type PointsChanged struct {
	ChildID string `json:"child_id"`
}

// Bus is a small in-process publish/subscribe fan-out for wallet refresh
// events. Each server gets its own instance, so tests can run isolated
// buses instead of sharing a process-global channel.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan PointsChanged
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan PointsChanged)}
}

// Subscribe registers a listener. The returned cancel func removes the
// subscription and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe() (<-chan PointsChanged, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan PointsChanged, 16)
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber. A subscriber with a full
// buffer is skipped rather than blocking the publisher.
func (b *Bus) Publish(ev PointsChanged) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			// Subscriber backlogged — drop, a later event will catch it up
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
