package list

import (
	"log"
	"sync"
	"time"
)

// saver coalesces mutations into debounced writes. At most one write is
// in flight at a time; a snapshot scheduled during a write is picked up
// by a follow-up cycle, and a failed write keeps its snapshot pending so
// the next cycle retries. notify runs once per completed physical write.
type saver struct {
	debounce time.Duration
	write    func(snapshot []byte) error
	notify   func()

	mu      sync.Mutex
	cond    *sync.Cond
	timer   *time.Timer
	pending []byte
	writing bool
	stopped bool
}

func newSaver(debounce time.Duration, write func([]byte) error, notify func()) *saver {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	s := &saver{debounce: debounce, write: write, notify: notify}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Schedule replaces the pending snapshot and restarts the quiet period.
func (s *saver) Schedule(snapshot []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = snapshot
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.onTimer)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *saver) onTimer() {
	s.mu.Lock()
	if s.writing {
		// A write is in flight; run again once it completes.
		if s.timer != nil {
			s.timer.Reset(s.debounce)
		}
		s.mu.Unlock()
		return
	}
	if s.pending == nil || s.stopped {
		s.mu.Unlock()
		return
	}
	snapshot := s.pending
	s.pending = nil
	s.writing = true
	s.mu.Unlock()

	err := s.write(snapshot)

	s.mu.Lock()
	s.writing = false
	if err != nil && s.pending == nil {
		// Keep the failed snapshot so the next cycle retries it.
		s.pending = snapshot
	}
	if s.pending != nil && s.timer != nil && !s.stopped {
		s.timer.Reset(s.debounce)
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	if err != nil {
		log.Printf("list: persist failed, will retry: %v", err)
		return
	}
	if s.notify != nil {
		s.notify()
	}
}

// Settle blocks until no write is in flight. Callers that are about to
// read persisted storage use this to avoid observing a half-committed
// value.
func (s *saver) Settle() {
	s.mu.Lock()
	for s.writing {
		s.cond.Wait()
	}
	s.mu.Unlock()
}

// Flush synchronously drains the pending snapshot, if any. Used on
// shutdown so coalesced mutations are not lost.
func (s *saver) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	for s.writing {
		s.cond.Wait()
	}
	snapshot := s.pending
	s.pending = nil
	if snapshot == nil {
		s.mu.Unlock()
		return nil
	}
	s.writing = true
	s.mu.Unlock()

	err := s.write(snapshot)

	s.mu.Lock()
	s.writing = false
	if err != nil && s.pending == nil {
		s.pending = snapshot
	}
	s.cond.Broadcast()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if s.notify != nil {
		s.notify()
	}
	return nil
}

// Stop cancels the debounce timer. Pending data is dropped; call Flush
// first when it must survive.
func (s *saver) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
}
