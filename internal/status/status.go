// Package status provides a thread-safe status tracker for the button-sensor daemon.
// It is written by the scan loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-sensor/internal/press"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs      int64
	DebounceMs  int64
	ShortMs     int64
	LongMs      int64
	VeryLongMs  int64
	HeartbeatMs int64
	ActiveHigh  bool
	Backend     string
	Broker      string
	HTTPAddr    string
}

// Button is the display state of one registered button.
type Button struct {
	Name      string
	Pin       int
	State     string // classifier state, e.g. "stop", "button_down"
	Pressed   bool   // debounced level
	Counts    press.Counts
	LastPress press.Kind
	LastAt    time.Time
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Buttons       []Button
	Totals        press.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTQueued    int
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Button returns the named button.
func (s Snapshot) Button(name string) (Button, bool) {
	for _, b := range s.Buttons {
		if b.Name == name {
			return b, true
		}
	}
	return Button{}, false
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update replaces the button states and totals. The last press of a button
// is kept when the update does not carry one.
// Called from runLoop on every scan.
func (t *Tracker) Update(buttons []Button, totals press.Counts) {
	cp := make([]Button, len(buttons))
	copy(cp, buttons)

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range cp {
		if cp[i].LastPress != "" {
			continue
		}
		if prev, ok := t.snap.Button(cp[i].Name); ok {
			cp[i].LastPress = prev.LastPress
			cp[i].LastAt = prev.LastAt
		}
	}
	t.snap.Buttons = cp
	t.snap.Totals = totals
}

// RecordPress stores the latest press for the named button.
func (t *Tracker) RecordPress(e press.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.snap.Buttons {
		if t.snap.Buttons[i].Name == e.Button {
			t.snap.Buttons[i].LastPress = e.Kind
			t.snap.Buttons[i].LastAt = e.Timestamp
			return
		}
	}
}

// SetMQTT sets the MQTT connection status and outbox depth.
func (t *Tracker) SetMQTT(connected bool, queued int) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.snap.MQTTQueued = queued
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Buttons = make([]Button, len(t.snap.Buttons))
	copy(s.Buttons, t.snap.Buttons)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
