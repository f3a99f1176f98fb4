package events

import "time"

// Event is anything published on the bus. Subscribers switch on EventType
// (e.g. "DOCUMENT_TEXT_EXTRACTED") and read the Payload map.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the common concrete implementation; the constructors in this
// package build every event through it.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string { return e.Type }

func (e BaseEvent) Payload() map[string]interface{} { return e.Data }

func (e BaseEvent) Timestamp() time.Time { return e.OccurredAt }
