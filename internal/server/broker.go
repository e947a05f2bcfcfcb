package server

import (
	"encoding/json"
	"sync"
)

// Event is the payload published to a team's SSE subscribers.
type Event struct {
	Type           string `json:"type"`
	ZoneID         int    `json:"zoneId,omitempty"`
	MemberSlot     *int   `json:"memberSlot,omitempty"`
	ClueNumber     int    `json:"clueNumber,omitempty"`
	GameEnded      bool   `json:"gameEnded,omitempty"`
	DistanceMeters int    `json:"distanceMeters,omitempty"`
}

// Event types published by the engine.
const (
	eventMemberLoggedIn = "member_logged_in"
	eventZoneUnlocked   = "zone_unlocked"
	eventZoneCleared    = "zone_cleared"
	eventGameCompleted  = "game_completed"
	eventMemberQuit     = "member_quit"
	eventGameEnded      = "game_ended"
)

// Broker is an in-process pub/sub for SSE events, keyed by team ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given team.
func (b *Broker) Subscribe(teamID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[teamID] == nil {
		b.subs[teamID] = make(map[chan []byte]struct{})
	}
	b.subs[teamID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the team's subscribers.
func (b *Broker) Unsubscribe(teamID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[teamID], ch)
	if len(b.subs[teamID]) == 0 {
		delete(b.subs, teamID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given team.
func (b *Broker) Publish(teamID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[teamID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
