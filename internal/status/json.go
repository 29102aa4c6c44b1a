package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Buttons       []ButtonJSON `json:"buttons"`
	Totals        CountsJSON   `json:"press_counts"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// ButtonJSON is the JSON representation of one button.
type ButtonJSON struct {
	Name      string     `json:"name"`
	Pin       int        `json:"pin"`
	State     string     `json:"state"`
	Pressed   bool       `json:"pressed"`
	Counts    CountsJSON `json:"press_counts"`
	LastPress string     `json:"last_press,omitempty"`
	LastAt    string     `json:"last_press_at,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Queued    int    `json:"queued"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of press counts.
type CountsJSON struct {
	Short    int `json:"short"`
	Long     int `json:"long"`
	VeryLong int `json:"very_long"`
	Double   int `json:"double"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	ShortMs     int64  `json:"short_ms"`
	LongMs      int64  `json:"long_ms"`
	VeryLongMs  int64  `json:"very_long_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	ActiveHigh  bool   `json:"active_high"`
	Backend     string `json:"backend"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildButton(b Button) ButtonJSON {
	bj := ButtonJSON{
		Name:    b.Name,
		Pin:     b.Pin,
		State:   b.State,
		Pressed: b.Pressed,
		Counts: CountsJSON{
			Short:    b.Counts.Short,
			Long:     b.Counts.Long,
			VeryLong: b.Counts.VeryLong,
			Double:   b.Counts.Double,
		},
		LastPress: string(b.LastPress),
	}
	if !b.LastAt.IsZero() {
		bj.LastAt = b.LastAt.UTC().Format(time.RFC3339)
	}
	return bj
}

func buildInner(snap Snapshot) StatusInner {
	buttons := make([]ButtonJSON, len(snap.Buttons))
	for i, b := range snap.Buttons {
		buttons[i] = buildButton(b)
	}

	return StatusInner{
		Buttons: buttons,
		Totals: CountsJSON{
			Short:    snap.Totals.Short,
			Long:     snap.Totals.Long,
			VeryLong: snap.Totals.VeryLong,
			Double:   snap.Totals.Double,
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Queued:    snap.MQTTQueued,
			Broker:    snap.Config.Broker,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			ShortMs:     snap.Config.ShortMs,
			LongMs:      snap.Config.LongMs,
			VeryLongMs:  snap.Config.VeryLongMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			ActiveHigh:  snap.Config.ActiveHigh,
			Backend:     snap.Config.Backend,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatButtonJSON returns the JSON for a single button.
func FormatButtonJSON(b Button) []byte {
	data, _ := json.MarshalIndent(buildButton(b), "", "  ")
	return data
}
