package storage

import (
	"context"
	"sync"
	"time"
)

// DefaultAutosaveDelay is the quiet period after the last edit before a
// scheduled snapshot is written.
const DefaultAutosaveDelay = 800 * time.Millisecond

// Autosaver debounces snapshot writes. Schedule replaces any pending
// snapshot and restarts the quiet-period timer, so a burst of edits persists
// only its final state. Saves run one at a time on the Autosaver's own
// goroutine.
type Autosaver struct {
	store Store
	delay time.Duration

	in      chan Snapshot
	flush   chan chan struct{}
	done    chan struct{}
	stopped chan struct{}
	errs    chan error

	closeOnce sync.Once
}

// NewAutosaver starts an autosaver writing to store. A non-positive delay
// falls back to DefaultAutosaveDelay.
func NewAutosaver(store Store, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	a := &Autosaver{
		store:   store,
		delay:   delay,
		in:      make(chan Snapshot),
		flush:   make(chan chan struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		errs:    make(chan error, 8),
	}
	go a.loop()
	return a
}

// Schedule queues a snapshot for writing after the quiet period. It replaces
// any snapshot already waiting. Calls after Close are dropped.
func (a *Autosaver) Schedule(snap Snapshot) {
	select {
	case a.in <- snap:
	case <-a.done:
	}
}

// Flush writes any pending snapshot now and returns once it is on disk.
func (a *Autosaver) Flush() {
	ack := make(chan struct{})
	select {
	case a.flush <- ack:
		<-ack
	case <-a.done:
	}
}

// Close flushes any pending snapshot and stops the autosaver.
func (a *Autosaver) Close() {
	a.closeOnce.Do(func() { close(a.done) })
	<-a.stopped
}

// Errs delivers save failures. The channel is buffered and never blocks a
// save; when nobody is listening, errors are dropped.
func (a *Autosaver) Errs() <-chan error {
	return a.errs
}

func (a *Autosaver) loop() {
	defer close(a.stopped)

	var pending *Snapshot
	var timer *time.Timer
	var fire <-chan time.Time

	disarm := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
		}
		fire = nil
	}
	save := func() {
		if pending == nil {
			return
		}
		snap := *pending
		pending = nil
		if err := a.store.SaveSnapshot(context.Background(), snap); err != nil {
			select {
			case a.errs <- err:
			default:
			}
		}
	}

	for {
		select {
		case snap := <-a.in:
			pending = &snap
			disarm()
			timer = time.NewTimer(a.delay)
			fire = timer.C
		case <-fire:
			fire = nil
			timer = nil
			save()
		case ack := <-a.flush:
			disarm()
			save()
			close(ack)
		case <-a.done:
			disarm()
			save()
			return
		}
	}
}
