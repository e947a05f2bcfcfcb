package server

import (
	"encoding/json"
	"testing"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("team-001")
	other := b.Subscribe("team-002")

	b.Publish("team-001", Event{Type: eventZoneUnlocked, ZoneID: 3})

	select {
	case data := <-ch:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if ev.Type != eventZoneUnlocked || ev.ZoneID != 3 {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected an event for team-001")
	}

	select {
	case <-other:
		t.Fatal("team-002 must not receive team-001 events")
	default:
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("team-001")
	b.Unsubscribe("team-001", ch)

	b.Publish("team-001", Event{Type: eventZoneCleared})

	select {
	case <-ch:
		t.Fatal("unsubscribed channel must not receive events")
	default:
	}
}

func TestBrokerDropsWhenSlow(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("team-001")

	// Overfill the buffer; publishes past capacity are dropped, never block.
	for i := 0; i < 32; i++ {
		b.Publish("team-001", Event{Type: eventZoneCleared, ClueNumber: i})
	}
	if got := len(ch); got != cap(ch) {
		t.Errorf("expected a full buffer of %d, got %d", cap(ch), got)
	}
}
