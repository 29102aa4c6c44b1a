// Package config loads the button map: which pins carry buttons and what
// they are called.
package config

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/sweeney/button-sensor/internal/button"
	"github.com/sweeney/button-sensor/internal/gpio"
)

// Button is one configured button.
type Button struct {
	Name string `mapstructure:"name"`
	Pin  int    `mapstructure:"pin"`
	// Key is the keyboard key that simulates this button (keyboard backend only).
	Key string `mapstructure:"key"`
}

const configKeyButtons = "buttons"

var ErrInvalid = errors.New("config: invalid button map")

// Default is the button map used when no file is given.
func Default() []Button {
	return []Button{{Name: "main", Pin: gpio.DefaultPin, Key: "m"}}
}

// Load reads a YAML (or any viper-supported format) file of the form
//
//	buttons:
//	  - name: door
//	    pin: 17
//	    key: d
//
// An empty path returns Default().
func Load(path string) ([]Button, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) ([]Button, error) {
	var buttons []Button
	if err := v.UnmarshalKey(configKeyButtons, &buttons); err != nil {
		return nil, fmt.Errorf("decode %s: %w", configKeyButtons, err)
	}
	if err := Validate(buttons); err != nil {
		return nil, err
	}
	return buttons, nil
}

// Validate checks that the map fits the registry: at least one button, no
// more than button.MaxButtons, unique names, pins and keys.
func Validate(buttons []Button) error {
	if len(buttons) == 0 {
		return fmt.Errorf("%w: no buttons", ErrInvalid)
	}
	if len(buttons) > button.MaxButtons {
		return fmt.Errorf("%w: %d buttons, at most %d supported", ErrInvalid, len(buttons), button.MaxButtons)
	}

	names := make(map[string]bool)
	pins := make(map[int]bool)
	keys := make(map[string]bool)
	for i, b := range buttons {
		if b.Name == "" {
			return fmt.Errorf("%w: button %d has no name", ErrInvalid, i)
		}
		if b.Pin < 0 {
			return fmt.Errorf("%w: button %q has negative pin %d", ErrInvalid, b.Name, b.Pin)
		}
		if names[b.Name] {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalid, b.Name)
		}
		if pins[b.Pin] {
			return fmt.Errorf("%w: duplicate pin %d", ErrInvalid, b.Pin)
		}
		if b.Key != "" {
			if utf8.RuneCountInString(b.Key) != 1 {
				return fmt.Errorf("%w: button %q key %q must be a single character", ErrInvalid, b.Name, b.Key)
			}
			if keys[b.Key] {
				return fmt.Errorf("%w: duplicate key %q", ErrInvalid, b.Key)
			}
			keys[b.Key] = true
		}
		names[b.Name] = true
		pins[b.Pin] = true
	}
	return nil
}

// RequireKeys checks that every button has a key, as the keyboard backend
// can only simulate keyed buttons.
func RequireKeys(buttons []Button) error {
	for _, b := range buttons {
		if b.Key == "" {
			return fmt.Errorf("%w: button %q has no key", ErrInvalid, b.Name)
		}
	}
	return nil
}

// Pins returns the pin numbers in configuration order.
func Pins(buttons []Button) []int {
	pins := make([]int, len(buttons))
	for i, b := range buttons {
		pins[i] = b.Pin
	}
	return pins
}

// Keys maps each button's key to its pin. Buttons without a key are skipped.
func Keys(buttons []Button) map[rune]button.Pin {
	keys := make(map[rune]button.Pin)
	for _, b := range buttons {
		if b.Key == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(b.Key)
		keys[r] = button.Pin(b.Pin)
	}
	return keys
}
