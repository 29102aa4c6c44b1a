// Package tick provides the millisecond tick source consumed by the button registry.
package tick

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Source counts whole milliseconds since it was created. The count is a
// uint32 and wraps after about 49.7 days; consumers use wrap-safe arithmetic.
type Source struct {
	clock clockwork.Clock
	start time.Time
}

// New returns a Source anchored at clock's current time.
func New(clock clockwork.Clock) *Source {
	return &Source{clock: clock, start: clock.Now()}
}

// NewReal returns a Source backed by the wall clock's monotonic reading.
func NewReal() *Source {
	return New(clockwork.NewRealClock())
}

// Tick returns the milliseconds elapsed since the Source was created.
func (s *Source) Tick() uint32 {
	return uint32(s.clock.Now().Sub(s.start) / time.Millisecond)
}

// Now returns the underlying clock's time, for stamping events.
func (s *Source) Now() time.Time {
	return s.clock.Now()
}
