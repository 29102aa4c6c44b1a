//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio"

	"github.com/sweeney/button-sensor/internal/button"
)

// RpioReader reads buttons through memory-mapped BCM2835 registers. The
// hardware latches edges, so it has no interrupt path: Poll reports latched
// edges on the scanning goroutine.
type RpioReader struct {
	pins    []rpio.Pin
	handler func(button.Pin)
}

// NewRpioReader maps the GPIO registers and enables edge detection on pins.
func NewRpioReader(pins []int, polarity button.Polarity) (*RpioReader, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}

	r := &RpioReader{pins: make([]rpio.Pin, 0, len(pins))}
	for _, n := range pins {
		pin := rpio.Pin(n)
		pin.Input()
		if polarity == button.ActiveHigh {
			pin.PullDown()
		} else {
			pin.PullUp() // GND => button press
		}
		pin.Detect(rpio.AnyEdge)
		r.pins = append(r.pins, pin)
	}
	return r, nil
}

// ReadPin returns the raw level of pin.
func (r *RpioReader) ReadPin(pin button.Pin) (button.Level, error) {
	for _, p := range r.pins {
		if button.Pin(p) == pin {
			if p.Read() == rpio.High {
				return button.High, nil
			}
			return button.Low, nil
		}
	}
	return 0, fmt.Errorf("pin %d not configured", pin)
}

// Watch installs the handler that Poll reports edges to.
func (r *RpioReader) Watch(onEdge func(button.Pin)) error {
	r.handler = onEdge
	return nil
}

// Poll reports every pin whose edge latch is set. Reading the latch clears it.
func (r *RpioReader) Poll() {
	for _, p := range r.pins {
		if p.EdgeDetected() && r.handler != nil {
			r.handler(button.Pin(p))
		}
	}
}

// Close disables edge detection and unmaps the registers.
func (r *RpioReader) Close() error {
	for _, p := range r.pins {
		p.Detect(rpio.NoEdge)
	}
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}
