package mqtt

import (
	"sync"

	"github.com/sweeney/button-sensor/internal/press"
)

// FakePublisher records published events for test assertions. It builds
// the same messages RealPublisher would send, in publish order.
type FakePublisher struct {
	mu sync.Mutex

	// Events contains all press events that were published.
	Events []press.Event

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// Messages holds every message that would have reached the broker.
	Messages []Message

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the press event.
func (f *FakePublisher) Publish(event press.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	msg, err := PressMessage(event)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, event)
	f.Messages = append(f.Messages, msg)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	msg, err := SystemMessage(event)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.SystemEvents = append(f.SystemEvents, event)
	f.Messages = append(f.Messages, msg)
	return nil
}

// Payloads returns the payloads published on topic, in order.
func (f *FakePublisher) Payloads(topic string) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, m := range f.Messages {
		if m.Topic == topic {
			out = append(out, m.Payload)
		}
	}
	return out
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}
