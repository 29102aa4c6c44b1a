package button

import (
	"fmt"
	"sync/atomic"
)

// record is the per-button state. Only deadline may be written outside the
// scanning goroutine, and only by OnPinChanged.
type record struct {
	pin  Pin
	cb   Callbacks
	last State
	cur  State
	// pressed is the last stable (debounced) level.
	pressed bool
	// elapsed is the tick at which the current press cycle began.
	elapsed  uint32
	deadline atomic.Uint64
}

func (r *record) reset() {
	r.pin = 0
	r.cb = Callbacks{}
	r.last = StateStop
	r.cur = StateStop
	r.pressed = false
	r.elapsed = 0
	r.deadline.Store(0)
}

// Registry is a fixed-capacity table of buttons and the scanner that drives
// their classifiers. Registration, Initialize and Tick must run on a single
// goroutine; OnPinChanged may be called concurrently from an edge handler.
type Registry struct {
	cfg     Config
	clock   Clock
	reader  PinReader
	records [MaxButtons]record
	count   int
}

// New validates cfg and returns an initialized, empty Registry.
func New(cfg Config, clock Clock, reader PinReader) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reg := &Registry{
		cfg:    cfg,
		clock:  clock,
		reader: reader,
	}
	reg.Initialize()
	return reg, nil
}

// Initialize forgets all registrations and classifier states. It must not be
// called while edge handlers may still fire.
func (reg *Registry) Initialize() {
	for i := range reg.records {
		reg.records[i].reset()
	}
	reg.count = 0
}

// Config returns the registry's thresholds.
func (reg *Registry) Config() Config {
	return reg.cfg
}

// Register adds a button on pin. The pin's current level becomes the initial
// stable level, so a button held during registration does not start a cycle
// until it is released and pressed again.
// On any error the registry is left unchanged.
func (reg *Registry) Register(pin Pin, cb Callbacks) error {
	if reg.count >= MaxButtons {
		return ErrCapacityExceeded
	}
	if _, ok := reg.Lookup(pin); ok {
		return fmt.Errorf("%w: %d", ErrDuplicatePin, pin)
	}
	level, err := reg.reader.ReadPin(pin)
	if err != nil {
		return fmt.Errorf("read pin %d: %w", pin, err)
	}

	r := &reg.records[reg.count]
	r.reset()
	r.pin = pin
	r.cb = cb
	r.pressed = level == reg.cfg.Polarity.PressedLevel()
	reg.count++
	return nil
}

// Lookup returns the registration index of pin.
func (reg *Registry) Lookup(pin Pin) (int, bool) {
	for i := 0; i < reg.count; i++ {
		if reg.records[i].pin == pin {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of registered buttons.
func (reg *Registry) Len() int {
	return reg.count
}

// Button returns a view of the i-th registered button.
func (reg *Registry) Button(i int) (Info, bool) {
	if i < 0 || i >= reg.count {
		return Info{}, false
	}
	r := &reg.records[i]
	return Info{
		Pin:             r.pin,
		State:           r.cur,
		Pressed:         r.pressed,
		DebouncePending: r.deadline.Load()&deadlinePending != 0,
	}, true
}
