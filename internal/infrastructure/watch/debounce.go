// Package watch reruns the last scan when the document export changes on
// disk.
package watch

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid change events into a single callback with the
// latest event.
type Debouncer struct {
	window   time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	last     ChangeEvent
	callback func(ChangeEvent)
}

func NewDebouncer(window time.Duration, callback func(ChangeEvent)) *Debouncer {
	return &Debouncer{
		window:   window,
		callback: callback,
	}
}

// Trigger records e and restarts the window.
func (d *Debouncer) Trigger(e ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = e
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	e := d.last
	d.timer = nil
	d.mu.Unlock()

	if d.callback != nil {
		d.callback(e)
	}
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
