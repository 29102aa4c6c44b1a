//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/button-sensor/internal/button"
)

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(chipName string, pins []int, polarity button.Polarity) (*RealReader, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadPin is not implemented on non-Linux platforms.
func (r *RealReader) ReadPin(pin button.Pin) (button.Level, error) {
	return 0, errors.New("gpio: not supported")
}

// Watch is not implemented on non-Linux platforms.
func (r *RealReader) Watch(onEdge func(button.Pin)) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error {
	return nil
}

// RpioReader is not available on non-Linux platforms.
type RpioReader struct{}

// NewRpioReader returns an error on non-Linux platforms.
func NewRpioReader(pins []int, polarity button.Polarity) (*RpioReader, error) {
	return nil, errors.New("rpio: not supported on this platform (requires Linux)")
}

// ReadPin is not implemented on non-Linux platforms.
func (r *RpioReader) ReadPin(pin button.Pin) (button.Level, error) {
	return 0, errors.New("rpio: not supported")
}

// Watch is not implemented on non-Linux platforms.
func (r *RpioReader) Watch(onEdge func(button.Pin)) error {
	return errors.New("rpio: not supported")
}

// Poll does nothing on non-Linux platforms.
func (r *RpioReader) Poll() {}

// Close is not implemented on non-Linux platforms.
func (r *RpioReader) Close() error {
	return nil
}
