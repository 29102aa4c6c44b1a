package press

import (
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// Recorder collects events emitted by button callbacks until drained.
// It is not safe for concurrent use; callbacks run on the scanning goroutine.
type Recorder struct {
	now           func() time.Time
	startTime     time.Time
	pending       []Event
	totals        Counts
	perButton     map[string]Counts
	lastHeartbeat time.Time
}

// NewRecorder creates a Recorder. startTime is used for heartbeat uptime.
func NewRecorder(now func() time.Time, startTime time.Time) *Recorder {
	return &Recorder{
		now:           now,
		startTime:     startTime,
		perButton:     make(map[string]Counts),
		lastHeartbeat: startTime,
	}
}

// Callbacks returns classifier callbacks that record events for the named button.
func (r *Recorder) Callbacks(name string, pin button.Pin) button.Callbacks {
	emit := func(k Kind) func() {
		return func() { r.record(name, int(pin), k) }
	}
	return button.Callbacks{
		Short:    emit(KindShort),
		Long:     emit(KindLong),
		VeryLong: emit(KindVeryLong),
		Double:   emit(KindDouble),
	}
}

func (r *Recorder) record(name string, pin int, k Kind) {
	r.pending = append(r.pending, Event{
		Timestamp: r.now(),
		Button:    name,
		Pin:       pin,
		Kind:      k,
	})
	r.totals.Add(k)
	c := r.perButton[name]
	c.Add(k)
	r.perButton[name] = c
}

// Drain returns the events recorded since the last call, oldest first.
func (r *Recorder) Drain() []Event {
	events := r.pending
	r.pending = nil
	return events
}

// Totals returns counts across all buttons.
func (r *Recorder) Totals() Counts {
	return r.totals
}

// ButtonCounts returns counts for one button.
func (r *Recorder) ButtonCounts(name string) Counts {
	return r.perButton[name]
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (r *Recorder) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(r.lastHeartbeat) < interval {
		return nil
	}

	r.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(r.startTime),
		Counts:    r.totals,
	}
}
