package gpio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nsf/termbox-go"

	"github.com/sweeney/button-sensor/internal/button"
)

// KeyboardReader simulates buttons on a terminal. Each mapped key toggles
// its virtual pin between released and pressed and raises an edge, so a
// press is one keystroke down and one keystroke up.
type KeyboardReader struct {
	mu       sync.Mutex
	keys     map[rune]button.Pin
	levels   map[button.Pin]button.Level
	pressed  button.Level
	released button.Level
	handler  func(button.Pin)

	done     chan struct{}
	doneOnce sync.Once
	closed   atomic.Bool
}

// NewKeyboardReader takes over the terminal and starts reading keys.
// Ctrl-C or Esc closes Done.
func NewKeyboardReader(keys map[rune]button.Pin, polarity button.Polarity) (*KeyboardReader, error) {
	if err := termbox.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc)
	termbox.Flush()

	k := newKeyboard(keys, polarity)
	go k.pollEvents()
	return k, nil
}

func newKeyboard(keys map[rune]button.Pin, polarity button.Polarity) *KeyboardReader {
	k := &KeyboardReader{
		keys:    keys,
		levels:  make(map[button.Pin]button.Level, len(keys)),
		pressed: polarity.PressedLevel(),
		done:    make(chan struct{}),
	}
	k.released = button.High
	if k.pressed == button.High {
		k.released = button.Low
	}
	for _, pin := range keys {
		k.levels[pin] = k.released
	}
	return k
}

func (k *KeyboardReader) pollEvents() {
	for {
		ev := termbox.PollEvent()
		if k.closed.Load() {
			return
		}
		switch ev.Type {
		case termbox.EventKey:
			if ev.Key == termbox.KeyCtrlC || ev.Key == termbox.KeyEsc {
				k.quit()
				return
			}
			k.toggle(ev.Ch)
		case termbox.EventError:
			k.quit()
			return
		}
	}
}

// toggle flips the pin mapped to ch and raises an edge for it.
func (k *KeyboardReader) toggle(ch rune) {
	k.mu.Lock()
	pin, ok := k.keys[ch]
	if !ok {
		k.mu.Unlock()
		return
	}
	if k.levels[pin] == k.pressed {
		k.levels[pin] = k.released
	} else {
		k.levels[pin] = k.pressed
	}
	h := k.handler
	k.mu.Unlock()

	if h != nil {
		h(pin)
	}
}

func (k *KeyboardReader) quit() {
	k.doneOnce.Do(func() { close(k.done) })
}

// Done is closed when the user asks to quit.
func (k *KeyboardReader) Done() <-chan struct{} {
	return k.done
}

// ReadPin returns the simulated level of pin.
func (k *KeyboardReader) ReadPin(pin button.Pin) (button.Level, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.levels[pin]
	if !ok {
		return 0, fmt.Errorf("pin %d has no key", pin)
	}
	return l, nil
}

// Watch installs the edge handler.
func (k *KeyboardReader) Watch(onEdge func(button.Pin)) error {
	k.mu.Lock()
	k.handler = onEdge
	k.mu.Unlock()
	return nil
}

// Close restores the terminal.
func (k *KeyboardReader) Close() error {
	if k.closed.Swap(true) {
		return nil
	}
	termbox.Interrupt()
	termbox.Close()
	k.quit()
	return nil
}
