package watcher

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Debouncer groups rapid changes into a single batch. The batch is emitted
// once no change has arrived for the delay, with one event per path (the
// latest wins).
type Debouncer struct {
	delay  time.Duration
	output chan []ChangeEvent
	done   chan struct{}

	mutex    sync.Mutex
	timer    *time.Timer
	pending  []ChangeEvent
	stopOnce sync.Once
}

// NewDebouncer returns a Debouncer that waits delay after the last change.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		output: make(chan []ChangeEvent, 10),
		done:   make(chan struct{}),
	}
}

// Output delivers debounced batches.
func (d *Debouncer) Output() <-chan []ChangeEvent { return d.output }

// Done is closed by Stop.
func (d *Debouncer) Done() <-chan struct{} { return d.done }

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	select {
	case <-d.done:
		return
	default:
	}

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

// Run blocks until ctx is cancelled or Stop is called.
func (d *Debouncer) Run(ctx context.Context) {
	select {
	case <-ctx.Done():
		d.Stop()
	case <-d.done:
	}
}

// Stop drops pending changes. It is safe to call more than once.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() {
		d.mutex.Lock()
		defer d.mutex.Unlock()
		if d.timer != nil {
			d.timer.Stop()
		}
		d.pending = nil
		close(d.done)
	})
}

func (d *Debouncer) flush() {
	d.mutex.Lock()
	if len(d.pending) == 0 {
		d.mutex.Unlock()
		return
	}

	latest := make(map[string]ChangeEvent, len(d.pending))
	for _, event := range d.pending {
		latest[event.Path] = event
	}
	d.pending = d.pending[:0]
	d.mutex.Unlock()

	events := make([]ChangeEvent, 0, len(latest))
	for _, event := range latest {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })

	// Blocks without the lock held so Add keeps collecting the next batch.
	select {
	case d.output <- events:
	case <-d.done:
	}
}
