// Command button-sensor watches GPIO push buttons, classifies each press as
// short, long, very long or double, and publishes the presses to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/config"
	"github.com/sweeney/button-sensor/internal/gpio"
	"github.com/sweeney/button-sensor/internal/mqtt"
	"github.com/sweeney/button-sensor/internal/press"
	"github.com/sweeney/button-sensor/internal/status"
	"github.com/sweeney/button-sensor/internal/tick"
	"github.com/sweeney/button-sensor/internal/web"
)

type options struct {
	poll        time.Duration
	debounce    time.Duration
	short       time.Duration
	long        time.Duration
	veryLong    time.Duration
	activeHigh  bool
	backend     string
	chip        string
	buttonsFile string
	broker      string
	heartbeat   time.Duration
	httpAddr    string
	printState  bool
}

func main() {
	var o options
	flag.DurationVar(&o.poll, "poll", 5*time.Millisecond, "Scan period")
	flag.DurationVar(&o.debounce, "debounce", button.DefaultDebounceWindow*time.Millisecond, "Debounce window")
	flag.DurationVar(&o.short, "short", button.DefaultShortBoundary*time.Millisecond, "Short press / double press boundary")
	flag.DurationVar(&o.long, "long", button.DefaultLongThreshold*time.Millisecond, "Long press threshold")
	flag.DurationVar(&o.veryLong, "very-long", button.DefaultVeryLongThreshold*time.Millisecond, "Very long press threshold")
	flag.BoolVar(&o.activeHigh, "active-high", false, "Buttons read high when pressed (default: active low with pull-up)")
	flag.StringVar(&o.backend, "backend", gpio.BackendGPIOCDev, "GPIO backend: gpiocdev, rpio or keyboard")
	flag.StringVar(&o.chip, "chip", "gpiochip0", "GPIO chip (gpiocdev backend)")
	flag.StringVar(&o.buttonsFile, "buttons", "", "Button map file (empty for a single button on pin 17)")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	logFile := flag.String("log-file", "", "Write logs to this file with rotation (empty for stderr)")
	flag.BoolVar(&o.printState, "print-state", false, "Print current button levels and exit")

	flag.Parse()

	if *logFile != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   *logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func (o options) registryConfig() button.Config {
	cfg := button.Config{
		DebounceWindow:    millis(o.debounce),
		ShortBoundary:     millis(o.short),
		LongThreshold:     millis(o.long),
		VeryLongThreshold: millis(o.veryLong),
		Polarity:          button.ActiveLow,
	}
	if o.activeHigh {
		cfg.Polarity = button.ActiveHigh
	}
	return cfg
}

func (o options) statusConfig() status.Config {
	return status.Config{
		PollMs:      o.poll.Milliseconds(),
		DebounceMs:  o.debounce.Milliseconds(),
		ShortMs:     o.short.Milliseconds(),
		LongMs:      o.long.Milliseconds(),
		VeryLongMs:  o.veryLong.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		ActiveHigh:  o.activeHigh,
		Backend:     o.backend,
		Broker:      o.broker,
		HTTPAddr:    o.httpAddr,
	}
}

func millis(d time.Duration) uint32 {
	return uint32(d / time.Millisecond)
}

func (o options) validate() error {
	if o.poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", o.poll)
	}
	return o.registryConfig().Validate()
}

func run(o options) error {
	if err := o.validate(); err != nil {
		return err
	}
	cfg := o.registryConfig()

	buttons, err := config.Load(o.buttonsFile)
	if err != nil {
		return err
	}

	// Initialize GPIO
	reader, err := openReader(o.backend, o.chip, buttons, cfg.Polarity)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	source := tick.NewReal()
	reg, err := button.New(cfg, source, reader)
	if err != nil {
		return err
	}
	recorder := press.NewRecorder(source.Now, source.Now())
	if err := registerAll(reg, recorder, buttons); err != nil {
		return err
	}

	// Print state mode
	if o.printState {
		for _, b := range buttonStates(reg, recorder, buttons) {
			fmt.Printf("%s (pin %d): %s\n", b.Name, b.Pin, pressedString(b.Pressed))
		}
		return nil
	}

	if err := watch(reader, reg); err != nil {
		return fmt.Errorf("watch gpio: %w", err)
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(o.broker, "button-sensor")
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(source.Now(), o.statusConfig())
	tracker.Update(buttonStates(reg, recorder, buttons), recorder.Totals())
	updateMQTT(tracker, publisher)

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: backend=%s buttons=%d poll=%v debounce=%v short=%v long=%v very-long=%v broker=%s heartbeat=%v",
		o.backend, len(buttons), o.poll, o.debounce, o.short, o.long, o.veryLong, o.broker, o.heartbeat)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	if kb, ok := reader.(*gpio.KeyboardReader); ok {
		go forwardDone(kb.Done(), sigCh)
	}

	return runLoop(reader, reg, recorder, publisher, publisher, tracker, buttons, o.heartbeat, source.Now, ticker.C, sigCh)
}

// openReader opens the GPIO backend for the configured pins.
func openReader(backend, chip string, buttons []config.Button, polarity button.Polarity) (gpio.Reader, error) {
	switch backend {
	case gpio.BackendGPIOCDev:
		return gpio.NewRealReader(chip, config.Pins(buttons), polarity)
	case gpio.BackendRPIO:
		return gpio.NewRpioReader(config.Pins(buttons), polarity)
	case gpio.BackendKeyboard:
		if err := config.RequireKeys(buttons); err != nil {
			return nil, fmt.Errorf("keyboard backend: %w", err)
		}
		return gpio.NewKeyboardReader(config.Keys(buttons), polarity)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// registerAll registers every configured button with callbacks that record
// its presses.
func registerAll(reg *button.Registry, recorder *press.Recorder, buttons []config.Button) error {
	for _, b := range buttons {
		pin := button.Pin(b.Pin)
		if err := reg.Register(pin, recorder.Callbacks(b.Name, pin)); err != nil {
			return fmt.Errorf("register %s (pin %d): %w", b.Name, b.Pin, err)
		}
	}
	return nil
}

// watch routes raw edges from the reader into the registry's debounce.
func watch(reader gpio.Reader, reg *button.Registry) error {
	return reader.Watch(func(pin button.Pin) {
		_ = reg.OnPinChanged(pin)
	})
}

// forwardDone turns a quit request from the keyboard backend into SIGINT.
func forwardDone(done <-chan struct{}, sig chan<- os.Signal) {
	<-done
	select {
	case sig <- syscall.SIGINT:
	default:
	}
}

func runLoop(reader gpio.Reader, reg *button.Registry, recorder *press.Recorder, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, buttons []config.Button, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	poller, _ := reader.(gpio.Poller)

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			reason := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    reason,
				Retained:  true,
			}
			if tracker != nil {
				updateMQTT(tracker, mqttStatus)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			if poller != nil {
				poller.Poll()
			}
			reg.Tick()

			events := recorder.Drain()

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(buttonStates(reg, recorder, buttons), recorder.Totals())
				updateMQTT(tracker, mqttStatus)
			}

			for _, event := range events {
				log.Printf("press: %s %s (pin %d)", event.Button, event.Kind, event.Pin)
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Queued or dropped by the publisher; keep scanning
				}
				if tracker != nil {
					tracker.RecordPress(event)
				}
			}

			if hbData := recorder.CheckHeartbeat(now(), heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v short=%d long=%d very_long=%d double=%d",
					hbData.Uptime, hbData.Counts.Short, hbData.Counts.Long, hbData.Counts.VeryLong, hbData.Counts.Double)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// buttonStates reads the registry into display form, in configuration order.
func buttonStates(reg *button.Registry, recorder *press.Recorder, buttons []config.Button) []status.Button {
	out := make([]status.Button, 0, len(buttons))
	for _, b := range buttons {
		sb := status.Button{
			Name:   b.Name,
			Pin:    b.Pin,
			State:  button.StateStop.String(),
			Counts: recorder.ButtonCounts(b.Name),
		}
		if i, ok := reg.Lookup(button.Pin(b.Pin)); ok {
			if info, ok := reg.Button(i); ok {
				sb.State = info.State.String()
				sb.Pressed = info.Pressed
			}
		}
		out = append(out, sb)
	}
	return out
}

// queueDepth is implemented by publishers that buffer while disconnected.
type queueDepth interface {
	Queued() int
}

func updateMQTT(tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus) {
	if mqttStatus == nil {
		return
	}
	queued := 0
	if q, ok := mqttStatus.(queueDepth); ok {
		queued = q.Queued()
	}
	tracker.SetMQTT(mqttStatus.IsConnected(), queued)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
