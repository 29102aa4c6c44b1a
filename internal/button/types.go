// Package button classifies debounced push-button transitions into press events.
// This package has NO external dependencies (no GPIO, MQTT, OS, or logging).
// Time is injected through Clock as a millisecond tick, pin levels through PinReader.
package button

import "errors"

// MaxButtons is the fixed capacity of a Registry.
const MaxButtons = 8

// Pin identifies a physical button pin (GPIO line offset or MCU pin number).
type Pin int

// Level is a raw pin level.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Polarity selects which raw level means "pressed".
type Polarity uint8

const (
	// ActiveLow is pull-up wiring: the button shorts the pin to ground.
	ActiveLow Polarity = iota
	// ActiveHigh is pull-down wiring: the button connects the pin to VCC.
	ActiveHigh
)

// PressedLevel returns the raw level that reads as pressed.
func (p Polarity) PressedLevel() Level {
	if p == ActiveHigh {
		return High
	}
	return Low
}

// Clock is a monotonic millisecond tick source.
type Clock interface {
	Tick() uint32
}

// PinReader returns the instantaneous level of a pin.
type PinReader interface {
	ReadPin(pin Pin) (Level, error)
}

// Callbacks are the press actions for one button. A nil field is a no-op.
type Callbacks struct {
	Short    func()
	Long     func()
	VeryLong func()
	Double   func()
}

// State is a classifier state.
type State uint8

const (
	StateButtonDown State = iota
	StateButtonUp
	StateVeryLongPress
	StateLongPress
	StateShortPress
	StateDoublePress
	StateStop
)

var stateNames = [...]string{
	StateButtonDown:    "button_down",
	StateButtonUp:      "button_up",
	StateVeryLongPress: "very_long_press",
	StateLongPress:     "long_press",
	StateShortPress:    "short_press",
	StateDoublePress:   "double_press",
	StateStop:          "stop",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s <= StateStop
}

// Code is the result of a state step.
type Code uint8

const (
	CodeOK Code = iota
	CodeRepeat
	CodeToVeryLongPress
	CodeToLongPress
	CodeToShortPress
	CodeToDoublePress
)

// Info is a read-only view of a registered button.
type Info struct {
	Pin             Pin
	State           State
	Pressed         bool
	DebouncePending bool
}

var (
	ErrCapacityExceeded = errors.New("button: registry full")
	ErrUnknownPin       = errors.New("button: pin not registered")
	ErrDuplicatePin     = errors.New("button: pin already registered")
	ErrInvalidConfig    = errors.New("button: invalid config")
)
