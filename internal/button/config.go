package button

import "fmt"

// Default thresholds in milliseconds.
const (
	DefaultDebounceWindow    = 30
	DefaultShortBoundary     = 600
	DefaultLongThreshold     = 1000
	DefaultVeryLongThreshold = DefaultLongThreshold + 2000
)

// Config holds the timing thresholds, all in milliseconds.
//
// ShortBoundary doubles as the maximum gap for a double press: a press cycle
// that is still undecided when ShortBoundary elapses is a short press.
type Config struct {
	DebounceWindow    uint32
	ShortBoundary     uint32
	LongThreshold     uint32
	VeryLongThreshold uint32
	Polarity          Polarity
}

// DefaultConfig returns the stock thresholds for pull-up wired buttons.
func DefaultConfig() Config {
	return Config{
		DebounceWindow:    DefaultDebounceWindow,
		ShortBoundary:     DefaultShortBoundary,
		LongThreshold:     DefaultLongThreshold,
		VeryLongThreshold: DefaultVeryLongThreshold,
		Polarity:          ActiveLow,
	}
}

// Validate checks that thresholds are strictly ascending:
// debounce < short < long < very long.
func (c Config) Validate() error {
	if c.DebounceWindow == 0 {
		return fmt.Errorf("%w: debounce window must be positive", ErrInvalidConfig)
	}
	if c.DebounceWindow >= c.ShortBoundary {
		return fmt.Errorf("%w: debounce window %dms must be shorter than short boundary %dms",
			ErrInvalidConfig, c.DebounceWindow, c.ShortBoundary)
	}
	if c.ShortBoundary >= c.LongThreshold {
		return fmt.Errorf("%w: short boundary %dms must be shorter than long threshold %dms",
			ErrInvalidConfig, c.ShortBoundary, c.LongThreshold)
	}
	if c.LongThreshold >= c.VeryLongThreshold {
		return fmt.Errorf("%w: long threshold %dms must be shorter than very long threshold %dms",
			ErrInvalidConfig, c.LongThreshold, c.VeryLongThreshold)
	}
	if c.Polarity != ActiveLow && c.Polarity != ActiveHigh {
		return fmt.Errorf("%w: unknown polarity %d", ErrInvalidConfig, c.Polarity)
	}
	return nil
}
