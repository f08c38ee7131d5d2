package flow

import (
	"fmt"
	"sync"
)

// Listener receives one trigger dispatch. State carries the values
// condition-style cards match against, tokens the values exposed to the
// automation author.
type Listener func(deviceID string, state, tokens map[string]any) error

// Dispatcher fans trigger dispatches out to registered card listeners.
// Triggering a card nobody registered is a no-op, mirroring the host's
// null-registration contract.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[string][]Listener)}
}

// Register adds a listener for the named trigger card.
func (d *Dispatcher) Register(card string, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[card] = append(d.listeners[card], l)
}

// Trigger notifies every listener of the named card. Listener errors are
// collected so the caller can retry, but one failing listener does not
// keep the others from running.
func (d *Dispatcher) Trigger(deviceID, card string, state, tokens map[string]any) error {
	d.mu.RLock()
	listeners := d.listeners[card]
	d.mu.RUnlock()

	var firstErr error
	for _, l := range listeners {
		if err := l(deviceID, state, tokens); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("trigger %s: %w", card, err)
		}
	}
	return firstErr
}
