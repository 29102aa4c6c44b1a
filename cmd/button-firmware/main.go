//go:build tinygo

// Command button-firmware runs the press classifier directly on a
// microcontroller. Pin-change interrupts arm the debounce; the main loop
// scans once per millisecond and prints each classified press on the
// serial console.
package main

import (
	"machine"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// Buttons wired to ground with the internal pull-up enabled.
var buttons = []struct {
	name string
	pin  machine.Pin
}{
	{"a", machine.D3},
	{"b", machine.D4},
}

var led = machine.LED

// uptime is the millisecond tick since boot.
type uptime struct {
	start time.Time
}

func (u uptime) Tick() uint32 {
	return uint32(time.Since(u.start) / time.Millisecond)
}

type pins struct{}

func (pins) ReadPin(p button.Pin) (button.Level, error) {
	if machine.Pin(p).Get() {
		return button.High, nil
	}
	return button.Low, nil
}

func report(name, kind string) func() {
	return func() {
		led.Set(!led.Get())
		println(name, kind)
	}
}

func main() {
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	reg, err := button.New(button.DefaultConfig(), uptime{start: time.Now()}, pins{})
	if err != nil {
		println("config:", err.Error())
		return
	}

	isr := func(p machine.Pin) {
		reg.OnPinChanged(button.Pin(p))
	}

	for _, b := range buttons {
		b.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		err := reg.Register(button.Pin(b.pin), button.Callbacks{
			Short:    report(b.name, "SHORT"),
			Long:     report(b.name, "LONG"),
			VeryLong: report(b.name, "VERY_LONG"),
			Double:   report(b.name, "DOUBLE"),
		})
		if err != nil {
			println("register", b.name+":", err.Error())
			continue
		}
		if err := b.pin.SetInterrupt(machine.PinToggle, isr); err != nil {
			println("interrupt", b.name+":", err.Error())
		}
	}

	for {
		reg.Tick()
		time.Sleep(time.Millisecond)
	}
}
