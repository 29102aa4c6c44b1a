package button

type transition struct {
	src  State
	code Code
	dst  State
}

var transitions = [...]transition{
	{StateButtonDown, CodeRepeat, StateButtonDown},
	{StateButtonDown, CodeOK, StateButtonUp},

	{StateButtonUp, CodeRepeat, StateButtonUp},
	{StateButtonUp, CodeToVeryLongPress, StateVeryLongPress},
	{StateButtonUp, CodeToLongPress, StateLongPress},
	{StateButtonUp, CodeToShortPress, StateShortPress},
	{StateButtonUp, CodeToDoublePress, StateDoublePress},

	{StateShortPress, CodeOK, StateStop},

	{StateDoublePress, CodeOK, StateStop},
	{StateDoublePress, CodeRepeat, StateDoublePress},

	{StateLongPress, CodeOK, StateStop},

	{StateVeryLongPress, CodeOK, StateStop},
}

// next returns the destination for (cur, code). Pairs missing from the
// table resolve to StateStop.
func next(cur State, code Code) State {
	for _, t := range transitions {
		if t.src == cur && t.code == code {
			return t.dst
		}
	}
	return StateStop
}

// step runs the behavior of r.cur once and returns its result code.
func (reg *Registry) step(r *record, now uint32) Code {
	switch r.cur {
	case StateButtonDown:
		if r.last != StateButtonDown {
			r.elapsed = now
		}
		if !r.pressed {
			return CodeOK
		}
		return CodeRepeat

	case StateButtonUp:
		held := now - r.elapsed
		switch {
		case held > reg.cfg.VeryLongThreshold:
			return CodeToVeryLongPress
		case held > reg.cfg.LongThreshold:
			return CodeToLongPress
		case held > reg.cfg.ShortBoundary:
			return CodeToShortPress
		case r.pressed:
			return CodeToDoublePress
		}
		return CodeRepeat

	case StateVeryLongPress:
		call(r.cb.VeryLong)
		return CodeOK

	case StateLongPress:
		call(r.cb.Long)
		return CodeOK

	case StateShortPress:
		call(r.cb.Short)
		return CodeOK

	case StateDoublePress:
		if r.pressed {
			return CodeRepeat
		}
		call(r.cb.Double)
		return CodeOK
	}

	// StateStop has no behavior; OK is not in its row so it stays stopped.
	return CodeOK
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
