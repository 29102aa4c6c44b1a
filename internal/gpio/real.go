//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/button-sensor/internal/button"
)

// RealReader reads buttons from actual hardware using the Linux GPIO
// character device. Edges are delivered by gpiocdev's event goroutine.
type RealReader struct {
	chip    *gpiocdev.Chip
	lines   map[button.Pin]*gpiocdev.Line
	handler atomic.Pointer[func(button.Pin)]
}

// NewRealReader requests every pin as an input with both-edge detection.
// Active-low buttons get the internal pull-up, active-high the pull-down.
func NewRealReader(chipName string, pins []int, polarity button.Polarity) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{
		chip:  chip,
		lines: make(map[button.Pin]*gpiocdev.Line, len(pins)),
	}

	var bias gpiocdev.LineReqOption = gpiocdev.WithPullUp
	if polarity == button.ActiveHigh {
		bias = gpiocdev.WithPullDown
	}

	for _, pin := range pins {
		line, err := chip.RequestLine(pin,
			gpiocdev.AsInput,
			bias,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(r.handleEvent),
		)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request pin %d: %w", pin, err)
		}
		r.lines[button.Pin(pin)] = line
	}

	return r, nil
}

func (r *RealReader) handleEvent(evt gpiocdev.LineEvent) {
	if h := r.handler.Load(); h != nil {
		(*h)(button.Pin(evt.Offset))
	}
}

// ReadPin returns the raw level of pin.
func (r *RealReader) ReadPin(pin button.Pin) (button.Level, error) {
	line, ok := r.lines[pin]
	if !ok {
		return 0, fmt.Errorf("pin %d not requested", pin)
	}
	v, err := line.Value()
	if err != nil {
		return 0, fmt.Errorf("read pin %d: %w", pin, err)
	}
	if v == 0 {
		return button.Low, nil
	}
	return button.High, nil
}

// Watch installs the edge handler. Edges seen before Watch are dropped.
func (r *RealReader) Watch(onEdge func(button.Pin)) error {
	if onEdge == nil {
		return errors.New("gpio: nil edge handler")
	}
	r.handler.Store(&onEdge)
	return nil
}

// Close releases GPIO resources.
// Reconfigures pins to input with pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (r *RealReader) Close() error {
	var errs []error

	r.handler.Store(nil)
	for pin, line := range r.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", pin, err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
