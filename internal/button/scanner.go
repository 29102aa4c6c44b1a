package button

// deadlinePending marks a deadline word as holding a pending debounce; the
// low 32 bits are the tick at which it settles. Zero means nothing pending.
const deadlinePending = uint64(1) << 32

// OnPinChanged restarts the debounce window for pin. It is the edge/interrupt
// entry point: it only stores the record's deadline and never blocks or
// allocates.
func (reg *Registry) OnPinChanged(pin Pin) error {
	i, ok := reg.Lookup(pin)
	if !ok {
		return ErrUnknownPin
	}
	settle := reg.clock.Tick() + reg.cfg.DebounceWindow
	reg.records[i].deadline.Store(deadlinePending | uint64(settle))
	return nil
}

// Tick advances every registered button by at most one step, in registration
// order. A button whose debounce settled this tick is resolved and not
// stepped; a button still debouncing or idle is left untouched.
func (reg *Registry) Tick() {
	now := reg.clock.Tick()
	for i := 0; i < reg.count; i++ {
		r := &reg.records[i]

		if d := r.deadline.Load(); d&deadlinePending != 0 {
			if !passed(now, uint32(d)) {
				continue
			}
			// A retrigger between Load and here wins; resolve on a later tick.
			if !r.deadline.CompareAndSwap(d, 0) {
				continue
			}
			reg.resolve(r)
			continue
		}

		if r.cur == StateStop {
			continue
		}
		code := reg.step(r, now)
		r.last = r.cur
		r.cur = next(r.cur, code)
	}
}

// resolve re-reads a settled pin and records a changed level. A new press
// starts a cycle only from idle.
func (reg *Registry) resolve(r *record) {
	level, err := reg.reader.ReadPin(r.pin)
	if err != nil {
		// Keep the previous stable level; the next edge retries.
		return
	}
	pressed := level == reg.cfg.Polarity.PressedLevel()
	if pressed == r.pressed {
		return
	}
	r.pressed = pressed
	if pressed && r.cur == StateStop {
		r.last = StateStop
		r.cur = StateButtonDown
	}
}

// passed reports whether now is strictly after deadline, tolerating wraparound.
func passed(now, deadline uint32) bool {
	return int32(now-deadline) > 0
}
