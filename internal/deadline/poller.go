// Package deadline watches task items across devices and fires the
// deadline-due trigger at most once per overdue occurrence.
package deadline

import (
	"log"
	"sync"
	"time"

	"listrigo/internal/flow"
	"listrigo/internal/item"
)

// Candidate is one task item of one device, as offered to a scan.
type Candidate struct {
	DeviceID string
	Item     item.Item
}

// Source enumerates the current due-date candidates across all devices.
type Source func() []Candidate

// Dispatcher is the slice of the flow engine the poller fires through.
type Dispatcher interface {
	Trigger(deviceID, card string, state, tokens map[string]any) error
}

// Config tunes the poller. Zero values fall back to the defaults:
// a 60 second interval, a 1 hour lookback and the end-of-day cutoff.
type Config struct {
	Interval time.Duration
	Lookback time.Duration
	Cutoff   item.Cutoff
	Location *time.Location
	Now      func() time.Time
}

// Poller owns the process-lifetime notified set. It is deliberately not
// persisted: a restart may re-fire for tasks that became overdue within
// the lookback window, which is the accepted tradeoff.
type Poller struct {
	cfg      Config
	dispatch Dispatcher

	mu       sync.Mutex
	notified map[string]struct{}

	stop chan struct{}
	done chan struct{}
}

// New creates a poller. Call Start to begin scanning and Stop on
// teardown.
func New(cfg Config, dispatch Dispatcher) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = time.Hour
	}
	if cfg.Cutoff == (item.Cutoff{}) {
		cfg.Cutoff = item.EndOfDay
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Poller{
		cfg:      cfg,
		dispatch: dispatch,
		notified: make(map[string]struct{}),
	}
}

// Start runs an immediate scan and then one per interval until Stop.
// Scans never overlap: the next tick waits for the previous pass's
// dispatch calls to settle.
func (p *Poller) Start(source Source) {
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		p.Scan(source)
		ticker := time.NewTicker(p.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.Scan(source)
			}
		}
	}()
}

// Stop halts the scan loop and waits for an in-progress pass to finish.
func (p *Poller) Stop() {
	if p.stop == nil {
		return
	}
	close(p.stop)
	<-p.done
	p.stop = nil
}

// Scan runs one pass over every candidate. A dispatch failure for one
// item is logged and rolled back for retry without aborting the rest.
func (p *Poller) Scan(source Source) {
	now := p.cfg.Now()

	for _, c := range source() {
		it := c.Item
		if it.Type != item.TypeTask || it.Checked {
			continue
		}
		due, ok := it.DueAt(p.cfg.Cutoff, p.cfg.Location)
		if !ok {
			continue
		}
		key := c.DeviceID + "|" + it.ID

		if due.After(now) {
			// Deadline edited into the future: forget it so it can
			// fire again when it lapses.
			p.forget(key)
			continue
		}
		if now.Sub(due) > p.cfg.Lookback {
			// Too old to notify about, typically after a restart.
			continue
		}
		if !p.mark(key) {
			continue
		}

		personName := ""
		if it.Person != nil {
			personName = it.Person.Name
		}
		err := p.dispatch.Trigger(c.DeviceID, flow.TriggerTaskDeadlineDue,
			map[string]any{"task": it.Content},
			map[string]any{
				"task":   it.Content,
				"person": personName,
				"due":    due.Format(time.RFC3339),
			})
		if err != nil {
			// Roll back so the next scan retries this item.
			p.forget(key)
			log.Printf("deadline: dispatch for %s failed: %v", key, err)
		}
	}
}

// Resolve clears the notified entry for an item whose pending state
// changed (checked, due edited, removed). Implements list.Resolver.
func (p *Poller) Resolve(deviceID, itemID string) {
	p.forget(deviceID + "|" + itemID)
}

// mark records a key, reporting false when it was already present.
func (p *Poller) mark(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.notified[key]; ok {
		return false
	}
	p.notified[key] = struct{}{}
	return true
}

func (p *Poller) forget(key string) {
	p.mu.Lock()
	delete(p.notified, key)
	p.mu.Unlock()
}

// notifiedCount reports the size of the notified set, for tests.
func (p *Poller) notifiedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.notified)
}
