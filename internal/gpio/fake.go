package gpio

import (
	"errors"
	"sync"

	"github.com/sweeney/button-sensor/internal/button"
)

// FakeReader is a test double holding settable pin levels.
type FakeReader struct {
	mu      sync.Mutex
	levels  map[button.Pin]button.Level
	handler func(button.Pin)

	// Released is the level returned for pins that were never set.
	Released button.Level

	// ReadError, if set, will be returned by ReadPin.
	ReadError error

	// WatchError, if set, will be returned by Watch.
	WatchError error

	// Reads counts ReadPin calls.
	Reads int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReader creates a FakeReader whose pins all read released.
func NewFakeReader(released button.Level) *FakeReader {
	return &FakeReader{
		levels:   make(map[button.Pin]button.Level),
		Released: released,
	}
}

// ReadPin returns the level last set for pin.
func (f *FakeReader) ReadPin(pin button.Pin) (button.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if l, ok := f.levels[pin]; ok {
		return l, nil
	}
	return f.Released, nil
}

// Watch records the edge handler.
func (f *FakeReader) Watch(onEdge func(button.Pin)) error {
	if f.WatchError != nil {
		return f.WatchError
	}
	if onEdge == nil {
		return errors.New("gpio: nil edge handler")
	}
	f.mu.Lock()
	f.handler = onEdge
	f.mu.Unlock()
	return nil
}

// Set changes a pin level without raising an edge.
func (f *FakeReader) Set(pin button.Pin, level button.Level) {
	f.mu.Lock()
	f.levels[pin] = level
	f.mu.Unlock()
}

// Edge changes a pin level and raises an edge, like a pin-change interrupt.
func (f *FakeReader) Edge(pin button.Pin, level button.Level) {
	f.mu.Lock()
	f.levels[pin] = level
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(pin)
	}
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}
