package events

import "testing"

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	ch1, cancel1 := bus.Subscribe()
	ch2, cancel2 := bus.Subscribe()
	defer cancel1()
	defer cancel2()

	bus.Publish(PointsChanged{ChildID: "abc"})

	for i, ch := range []<-chan PointsChanged{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.ChildID != "abc" {
				t.Errorf("subscriber %d got child %q, want %q", i, ev.ChildID, "abc")
			}
		default:
			t.Errorf("subscriber %d got no event", i)
		}
	}
}

func TestBusCancelRemovesSubscription(t *testing.T) {
	bus := NewBus()

	_, cancel := bus.Subscribe()
	if bus.SubscriberCount() != 1 {
		t.Fatalf("count = %d, want 1", bus.SubscriberCount())
	}

	cancel()
	cancel() // second call is a no-op
	if bus.SubscriberCount() != 0 {
		t.Fatalf("count = %d, want 0", bus.SubscriberCount())
	}

	// Publishing with no subscribers must not panic.
	bus.Publish(PointsChanged{ChildID: "abc"})
}

func TestBusDropsWhenSubscriberBacklogged(t *testing.T) {
	bus := NewBus()

	ch, cancel := bus.Subscribe()
	defer cancel()

	// Fill the buffer and then some; publisher must never block.
	for i := 0; i < 64; i++ {
		bus.Publish(PointsChanged{ChildID: "abc"})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained > 16 {
		t.Errorf("drained %d events, want 1..16", drained)
	}
}
