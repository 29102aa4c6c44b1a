// Package gpio provides button pin reading and edge notification with
// hardware abstraction.
// The real implementations use the Linux GPIO character device or the
// memory-mapped BCM2835 registers; the keyboard implementation simulates
// buttons on a terminal; the fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/button-sensor/internal/button"

// Reader reads button pins and reports raw edges.
type Reader interface {
	// ReadPin returns the raw level of pin.
	ReadPin(pin button.Pin) (button.Level, error)

	// Watch installs the edge handler. The handler may run on another
	// goroutine and must only arm a debounce (button.Registry.OnPinChanged).
	Watch(onEdge func(button.Pin)) error

	// Close releases GPIO resources.
	Close() error
}

// Poller is implemented by readers without edge interrupts. Poll checks for
// edges latched since the previous call and reports them to the handler; the
// scan loop calls it once per period.
type Poller interface {
	Poll()
}

// Default pin (BCM numbering) for a single-button setup.
const DefaultPin = 17

// Backend names accepted by Open.
const (
	BackendGPIOCDev = "gpiocdev"
	BackendRPIO     = "rpio"
	BackendKeyboard = "keyboard"
)
