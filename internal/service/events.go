package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventWellImported       EventType = "well_imported"
	EventWellFinalized      EventType = "well_finalized"
	EventCheckpointSaved    EventType = "checkpoint_saved"
	EventCheckpointRestored EventType = "checkpoint_restored"
	EventCheckpointDeleted  EventType = "checkpoint_deleted"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// WellPayload accompanies import and finalize events
type WellPayload struct {
	Well     string `json:"well"`
	Segments int    `json:"segments"`
	Source   string `json:"source,omitempty"`
}

// CheckpointPayload accompanies checkpoint events
type CheckpointPayload struct {
	Well       string `json:"well,omitempty"`
	Checkpoint string `json:"checkpoint"`
	Segments   int    `json:"segments,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
