package gpio

import (
	"testing"

	"github.com/sweeney/button-sensor/internal/button"
)

func TestKeyboardToggle(t *testing.T) {
	k := newKeyboard(map[rune]button.Pin{'a': 17, 'b': 27}, button.ActiveLow)

	var edges []button.Pin
	k.Watch(func(p button.Pin) { edges = append(edges, p) })

	if l, _ := k.ReadPin(17); l != button.High {
		t.Errorf("expected released (HIGH) initially, got %s", l)
	}

	k.toggle('a')
	if l, _ := k.ReadPin(17); l != button.Low {
		t.Errorf("expected pressed (LOW) after first key, got %s", l)
	}
	k.toggle('a')
	if l, _ := k.ReadPin(17); l != button.High {
		t.Errorf("expected released (HIGH) after second key, got %s", l)
	}
	if l, _ := k.ReadPin(27); l != button.High {
		t.Errorf("pin 27 should be untouched, got %s", l)
	}

	if len(edges) != 2 || edges[0] != 17 || edges[1] != 17 {
		t.Errorf("unexpected edges: %v", edges)
	}
}

func TestKeyboardUnmappedKey(t *testing.T) {
	k := newKeyboard(map[rune]button.Pin{'a': 17}, button.ActiveLow)

	called := false
	k.Watch(func(button.Pin) { called = true })
	k.toggle('z')

	if called {
		t.Error("unmapped key should not raise an edge")
	}
	if _, err := k.ReadPin(99); err == nil {
		t.Error("expected error for pin without a key")
	}
}

func TestKeyboardActiveHigh(t *testing.T) {
	k := newKeyboard(map[rune]button.Pin{'a': 17}, button.ActiveHigh)

	if l, _ := k.ReadPin(17); l != button.Low {
		t.Errorf("expected released (LOW) initially, got %s", l)
	}
	k.toggle('a')
	if l, _ := k.ReadPin(17); l != button.High {
		t.Errorf("expected pressed (HIGH), got %s", l)
	}
}

func TestKeyboardQuitClosesDone(t *testing.T) {
	k := newKeyboard(nil, button.ActiveLow)
	k.quit()
	k.quit()

	select {
	case <-k.Done():
	default:
		t.Error("expected Done to be closed")
	}
}
