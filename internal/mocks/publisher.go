package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mwhitney/taskloop-api/internal/events"
)

// PublishedEvent records one Publish call.
type PublishedEvent struct {
	EventType events.EventType
	UserID    string
	Payload   any
}

// Publisher is a recording implementation of events.Publisher.
type Publisher struct {
	mu        sync.Mutex
	published []PublishedEvent

	// Result is returned from every Publish call. Defaults to success.
	Result *bool
}

// NewPublisher creates a recording publisher that reports success.
func NewPublisher() *Publisher {
	return &Publisher{}
}

var _ events.Publisher = (*Publisher)(nil)

// Publish implements events.Publisher.
func (p *Publisher) Publish(_ context.Context, eventType events.EventType, userID string, payload any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.published = append(p.published, PublishedEvent{
		EventType: eventType,
		UserID:    userID,
		Payload:   payload,
	})

	if p.Result != nil {
		return *p.Result
	}
	return true
}

// Published returns a copy of all recorded events.
func (p *Publisher) Published() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]PublishedEvent, len(p.published))
	copy(out, p.published)
	return out
}

// PublishedOfType returns the recorded events with the given type.
func (p *Publisher) PublishedOfType(eventType events.EventType) []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []PublishedEvent
	for _, event := range p.published {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}

// Reset clears the recorded events.
func (p *Publisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = nil
}

// DecodePayload marshals the recorded payload through JSON into v, matching
// what a subscriber would see on the wire.
func (e PublishedEvent) DecodePayload(v any) error {
	body, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
