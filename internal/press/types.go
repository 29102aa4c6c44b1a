// Package press turns classifier callbacks into timestamped press events.
// This package has NO external dependencies (no GPIO, MQTT, or OS).
// Time is always injectable via a func() time.Time.
package press

import "time"

// Kind is the classification of a completed press cycle.
type Kind string

const (
	KindShort    Kind = "SHORT"
	KindLong     Kind = "LONG"
	KindVeryLong Kind = "VERY_LONG"
	KindDouble   Kind = "DOUBLE"
)

// Event is a classified press to be published.
type Event struct {
	Timestamp time.Time
	Button    string
	Pin       int
	Kind      Kind
}

// Counts tracks the number of each press kind since startup.
type Counts struct {
	Short    int
	Long     int
	VeryLong int
	Double   int
}

// Add increments the counter for k.
func (c *Counts) Add(k Kind) {
	switch k {
	case KindShort:
		c.Short++
	case KindLong:
		c.Long++
	case KindVeryLong:
		c.VeryLong++
	case KindDouble:
		c.Double++
	}
}

// Total returns the sum of all counters.
func (c Counts) Total() int {
	return c.Short + c.Long + c.VeryLong + c.Double
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    Counts
}
