package button

import (
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeClock struct {
	now atomic.Uint32
}

func (c *fakeClock) Tick() uint32 {
	return c.now.Load()
}

// fakePins returns scripted levels. Unset pins read as released for the
// configured polarity.
type fakePins struct {
	mu       sync.Mutex
	levels   map[Pin]Level
	released Level
	err      error
}

func (f *fakePins) ReadPin(pin Pin) (Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if l, ok := f.levels[pin]; ok {
		return l, nil
	}
	return f.released, nil
}

func (f *fakePins) set(pin Pin, l Level) {
	f.mu.Lock()
	f.levels[pin] = l
	f.mu.Unlock()
}

type counts struct {
	short, long, veryLong, double int
}

func (c *counts) callbacks() Callbacks {
	return Callbacks{
		Short:    func() { c.short++ },
		Long:     func() { c.long++ },
		VeryLong: func() { c.veryLong++ },
		Double:   func() { c.double++ },
	}
}

func (c *counts) total() int {
	return c.short + c.long + c.veryLong + c.double
}

type harness struct {
	t     *testing.T
	cfg   Config
	clock *fakeClock
	pins  *fakePins
	reg   *Registry
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	pressed := cfg.Polarity.PressedLevel()
	released := High
	if pressed == High {
		released = Low
	}
	h := &harness{
		t:     t,
		cfg:   cfg,
		clock: &fakeClock{},
		pins:  &fakePins{levels: map[Pin]Level{}, released: released},
	}
	reg, err := New(cfg, h.clock, h.pins)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.reg = reg
	return h
}

func (h *harness) register(pin Pin) *counts {
	h.t.Helper()
	c := &counts{}
	if err := h.reg.Register(pin, c.callbacks()); err != nil {
		h.t.Fatalf("Register(%d): %v", pin, err)
	}
	return c
}

// run advances the clock one millisecond at a time, scanning after each step.
func (h *harness) run(ms int) {
	for i := 0; i < ms; i++ {
		h.clock.now.Add(1)
		h.reg.Tick()
	}
}

func (h *harness) level(pin Pin, pressed bool) {
	h.t.Helper()
	l := h.pins.released
	if pressed {
		l = h.cfg.Polarity.PressedLevel()
	}
	h.pins.set(pin, l)
	if err := h.reg.OnPinChanged(pin); err != nil {
		h.t.Fatalf("OnPinChanged(%d): %v", pin, err)
	}
}

func (h *harness) press(pin Pin)   { h.level(pin, true) }
func (h *harness) release(pin Pin) { h.level(pin, false) }

func (h *harness) state(i int) State {
	h.t.Helper()
	info, ok := h.reg.Button(i)
	if !ok {
		h.t.Fatalf("Button(%d) not found", i)
	}
	return info.State
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LongThreshold = cfg.VeryLongThreshold
	reg, err := New(cfg, &fakeClock{}, &fakePins{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if reg != nil {
		t.Error("expected nil registry for invalid config")
	}
}

// TestShortPressScenario walks the canonical 30/600/1000/3000ms timeline:
// press at 0, release at 200, short fires once the 600ms boundary passes.
func TestShortPressScenario(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)

	h.press(5)
	h.run(30)
	if got := h.state(0); got != StateStop {
		t.Errorf("t=30: expected stop while debouncing, got %s", got)
	}
	h.run(1)
	if got := h.state(0); got != StateButtonDown {
		t.Errorf("t=31: expected button_down after debounce, got %s", got)
	}

	h.run(169) // t=200
	h.release(5)
	h.run(400) // t=600
	if got := h.state(0); got != StateButtonUp {
		t.Errorf("t=600: expected button_up, got %s", got)
	}
	if c.total() != 0 {
		t.Fatalf("t=600: expected no callbacks yet, got %+v", *c)
	}

	h.run(100) // t=700
	if c.short != 1 || c.total() != 1 {
		t.Errorf("expected exactly one short press, got %+v", *c)
	}
	if got := h.state(0); got != StateStop {
		t.Errorf("expected stop after classification, got %s", got)
	}

	h.run(5000)
	if c.total() != 1 {
		t.Errorf("expected no further callbacks, got %+v", *c)
	}
}

func TestPressDurations(t *testing.T) {
	tests := []struct {
		name string
		hold int
		want counts
	}{
		{"short", 200, counts{short: 1}},
		{"between short boundary and long", 800, counts{short: 1}},
		{"long", 1500, counts{long: 1}},
		{"just under very long", 2900, counts{long: 1}},
		{"very long", 3500, counts{veryLong: 1}},
		{"held ten seconds", 10000, counts{veryLong: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig())
			c := h.register(5)

			h.press(5)
			h.run(tt.hold)
			if c.total() != 0 {
				t.Fatalf("callback fired while held: %+v", *c)
			}
			h.release(5)
			h.run(2000)

			if *c != tt.want {
				t.Errorf("got %+v, want %+v", *c, tt.want)
			}
			if got := h.state(0); got != StateStop {
				t.Errorf("expected stop, got %s", got)
			}
		})
	}
}

func TestDoublePress(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)

	h.press(5)
	h.run(100)
	h.release(5)
	h.run(200) // t=300
	h.press(5)
	h.run(33) // t=333, second press settled
	if got := h.state(0); got != StateDoublePress {
		t.Errorf("expected double_press while second press held, got %s", got)
	}
	h.run(67) // t=400
	h.release(5)
	h.run(1000)

	if c.double != 1 || c.total() != 1 {
		t.Errorf("expected exactly one double press, got %+v", *c)
	}
	if got := h.state(0); got != StateStop {
		t.Errorf("expected stop, got %s", got)
	}
}

func TestSecondPressAfterBoundaryIsTwoShorts(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)

	h.press(5)
	h.run(100)
	h.release(5)
	h.run(700) // first cycle classified as short by now
	h.press(5)
	h.run(100)
	h.release(5)
	h.run(1000)

	if c.short != 2 || c.double != 0 {
		t.Errorf("expected two short presses, got %+v", *c)
	}
}

func TestContactBounceIsFiltered(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)

	// Press with chatter: every edge restarts the settle window.
	for i := 0; i < 5; i++ {
		h.press(5)
		h.run(2)
		h.release(5)
		h.run(2)
	}
	h.press(5)
	h.run(29)
	if got := h.state(0); got != StateStop {
		t.Errorf("expected stop while bouncing, got %s", got)
	}
	h.run(200)

	for i := 0; i < 5; i++ {
		h.release(5)
		h.run(3)
		h.press(5)
		h.run(3)
	}
	h.release(5)
	h.run(1000)

	if c.short != 1 || c.total() != 1 {
		t.Errorf("expected one short press through bounce, got %+v", *c)
	}
}

func TestGlitchShorterThanWindowIsIgnored(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)

	h.press(5)
	h.run(5)
	h.release(5)
	h.run(3000)

	if c.total() != 0 {
		t.Errorf("expected no callbacks for a glitch, got %+v", *c)
	}
	if got := h.state(0); got != StateStop {
		t.Errorf("expected stop, got %s", got)
	}
}

func TestBounceDuringActivePress(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)

	h.press(5)
	h.run(500)
	// Brief contact loss mid-press settles back to pressed.
	h.release(5)
	h.run(5)
	h.press(5)
	h.run(995) // t=1500
	if got := h.state(0); got != StateButtonDown {
		t.Errorf("expected button_down after glitch, got %s", got)
	}
	h.release(5)
	h.run(1000)

	if c.long != 1 || c.total() != 1 {
		t.Errorf("expected one long press, got %+v", *c)
	}
}

func TestHeldAtRegistrationDoesNotStartCycle(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.pins.set(5, h.cfg.Polarity.PressedLevel())
	c := h.register(5)

	info, _ := h.reg.Button(0)
	if !info.Pressed {
		t.Fatal("expected initial stable level to be pressed")
	}

	h.run(5000)
	h.release(5)
	h.run(5000)
	if c.total() != 0 {
		t.Errorf("expected no callbacks for a press that began before registration, got %+v", *c)
	}

	h.press(5)
	h.run(100)
	h.release(5)
	h.run(1000)
	if c.short != 1 {
		t.Errorf("expected a short press after a fresh press, got %+v", *c)
	}
}

func TestActiveHighPolarity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Polarity = ActiveHigh
	h := newHarness(t, cfg)
	c := h.register(5)

	h.press(5)
	h.run(1200)
	h.release(5)
	h.run(1000)

	if c.long != 1 || c.total() != 1 {
		t.Errorf("expected one long press, got %+v", *c)
	}
}

func TestNilCallbacksAreNoOps(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	if err := h.reg.Register(5, Callbacks{}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	h.press(5)
	h.run(100)
	h.release(5)
	h.run(1000)

	if got := h.state(0); got != StateStop {
		t.Errorf("expected stop, got %s", got)
	}
}

func TestButtonsAreIndependent(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	a := h.register(5)
	b := h.register(6)

	h.press(5)
	h.run(100)
	h.press(6)
	h.release(5)
	h.run(1500)
	h.release(6)
	h.run(1000)

	if a.short != 1 || a.total() != 1 {
		t.Errorf("button 5: expected one short, got %+v", *a)
	}
	if b.long != 1 || b.total() != 1 {
		t.Errorf("button 6: expected one long, got %+v", *b)
	}
}

func TestTickWraparound(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)
	h.clock.now.Store(^uint32(0) - 100)

	h.press(5)
	h.run(200)
	h.release(5)
	h.run(1000)

	if c.short != 1 || c.total() != 1 {
		t.Errorf("expected one short press across tick wraparound, got %+v", *c)
	}
}

func TestRegisterCapacity(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	for i := 0; i < MaxButtons; i++ {
		h.register(Pin(i))
	}

	for i := 0; i < 3; i++ {
		err := h.reg.Register(Pin(100+i), Callbacks{})
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Errorf("attempt %d: expected ErrCapacityExceeded, got %v", i, err)
		}
		if h.reg.Len() != MaxButtons {
			t.Errorf("attempt %d: Len = %d, want %d", i, h.reg.Len(), MaxButtons)
		}
	}
	if _, ok := h.reg.Lookup(100); ok {
		t.Error("rejected pin should not be registered")
	}
}

func TestRegisterDuplicatePin(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.register(5)

	err := h.reg.Register(5, Callbacks{})
	if !errors.Is(err, ErrDuplicatePin) {
		t.Errorf("expected ErrDuplicatePin, got %v", err)
	}
	if h.reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", h.reg.Len())
	}
}

func TestRegisterReadErrorLeavesRegistryUnchanged(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.pins.err = errors.New("line busy")

	if err := h.reg.Register(5, Callbacks{}); err == nil {
		t.Fatal("expected error when initial level cannot be read")
	}
	if h.reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", h.reg.Len())
	}
}

func TestLookup(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.register(5)
	h.register(9)

	if i, ok := h.reg.Lookup(9); !ok || i != 1 {
		t.Errorf("Lookup(9) = (%d, %v), want (1, true)", i, ok)
	}
	if i, ok := h.reg.Lookup(7); ok || i != -1 {
		t.Errorf("Lookup(7) = (%d, %v), want (-1, false)", i, ok)
	}
}

func TestOnPinChangedUnknownPin(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.register(5)
	before, _ := h.reg.Button(0)

	if err := h.reg.OnPinChanged(42); !errors.Is(err, ErrUnknownPin) {
		t.Errorf("expected ErrUnknownPin, got %v", err)
	}

	after, _ := h.reg.Button(0)
	if before != after {
		t.Errorf("record changed: before %+v, after %+v", before, after)
	}
	if after.DebouncePending {
		t.Error("unknown pin must not arm a debounce on another record")
	}
}

func TestTickIdleIsNoOp(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.register(5)
	r := &h.reg.records[0]

	type snapshot struct {
		last, cur State
		pressed   bool
		elapsed   uint32
		deadline  uint64
	}
	take := func() snapshot {
		return snapshot{r.last, r.cur, r.pressed, r.elapsed, r.deadline.Load()}
	}

	before := take()
	h.run(10000)
	if after := take(); after != before {
		t.Errorf("idle tick changed record: before %+v, after %+v", before, after)
	}
}

func TestPendingDebounceSkipsStep(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.register(5)

	h.press(5)
	h.run(100)
	r := &h.reg.records[0]
	elapsed := r.elapsed

	h.release(5)
	for i := 0; i < 30; i++ {
		h.run(1)
		if r.cur != StateButtonDown || r.last != StateButtonDown || r.elapsed != elapsed {
			t.Fatalf("tick %d: classifier advanced while debounce pending", i)
		}
	}
}

func TestInitializeClearsRegistrations(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)
	h.press(5)
	h.run(100)

	h.reg.Initialize()
	if h.reg.Len() != 0 {
		t.Errorf("Len = %d after Initialize, want 0", h.reg.Len())
	}
	if _, ok := h.reg.Button(0); ok {
		t.Error("Button(0) should not exist after Initialize")
	}
	h.run(5000)
	if c.total() != 0 {
		t.Errorf("callbacks fired after Initialize: %+v", *c)
	}
	h.register(5)
}

func TestStatesStayValidUnderRandomInput(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	pins := []Pin{1, 2, 3}
	for _, p := range pins {
		h.register(p)
	}
	rng := rand.New(rand.NewSource(1))
	pressed := map[Pin]bool{}

	for i := 0; i < 20000; i++ {
		switch rng.Intn(4) {
		case 0:
			p := pins[rng.Intn(len(pins))]
			pressed[p] = !pressed[p]
			h.level(p, pressed[p])
		case 1:
			h.reg.OnPinChanged(Pin(rng.Intn(10)))
		default:
			h.run(rng.Intn(80))
		}
		for j := range pins {
			if s := h.state(j); !s.Valid() {
				t.Fatalf("step %d: button %d in invalid state %d", i, j, s)
			}
		}
	}
}

func TestConcurrentEdgeHandler(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	c := h.register(5)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		down := false
		for {
			select {
			case <-stop:
				return
			default:
			}
			down = !down
			h.level(5, down)
		}
	}()
	for i := 0; i < 2000; i++ {
		h.run(1)
	}
	close(stop)
	wg.Wait()

	h.release(5)
	h.run(5000)
	if got := h.state(0); got != StateStop {
		t.Errorf("expected stop once input is quiet, got %s", got)
	}
	quiet := c.total()
	h.run(5000)
	if c.total() != quiet {
		t.Errorf("callbacks fired after input went quiet: %+v", *c)
	}
}
