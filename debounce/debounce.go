/*
Package debounce coalesces bursts of writes per key.

PURPOSE:
  The billable form recomputes rates on every keystroke, but persisting
  every intermediate value would hammer the store. Schedule records the
  latest snapshot for a key and restarts a quiet-period timer; only the
  snapshot present when the timer fires is written.

GUARANTEES:
  - At most one pending value per key; newer values replace older ones.
  - The value passed to the flush function is always the latest scheduled.
  - Flush and Close write everything pending immediately, so no snapshot is
    lost on shutdown.

SEE ALSO:
  - api/billable.go: Preview endpoint that schedules writes
  - cmd/server: Flushes on shutdown
*/
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Schedule after Close.
var ErrClosed = errors.New("debouncer closed")

// FlushFunc persists one coalesced value.
type FlushFunc[K comparable, V any] func(ctx context.Context, key K, value V) error

type entry[V any] struct {
	value V
	gen   uint64
	timer *time.Timer
}

// Debouncer delays writes until a key has been quiet for a fixed period.
type Debouncer[K comparable, V any] struct {
	delay   time.Duration
	flush   FlushFunc[K, V]
	onError func(K, error)

	mu      sync.Mutex
	pending map[K]*entry[V]
	closed  bool
	// shared by all keys so a recreated entry never reuses a stale timer's gen
	gen uint64

	// counts entries that have been scheduled but not yet written
	inflight sync.WaitGroup
}

// New creates a debouncer. onError, if non-nil, receives failures of
// timer-driven flushes; Flush and Close return theirs.
func New[K comparable, V any](delay time.Duration, flush FlushFunc[K, V], onError func(K, error)) *Debouncer[K, V] {
	return &Debouncer[K, V]{
		delay:   delay,
		flush:   flush,
		onError: onError,
		pending: make(map[K]*entry[V]),
	}
}

// Schedule replaces the pending value for key and restarts its timer.
func (d *Debouncer[K, V]) Schedule(key K, value V) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	e, ok := d.pending[key]
	if !ok {
		e = &entry[V]{}
		d.pending[key] = e
		d.inflight.Add(1)
	} else {
		e.timer.Stop()
	}
	e.value = value
	d.gen++
	e.gen = d.gen
	gen := e.gen
	e.timer = time.AfterFunc(d.delay, func() { d.fire(key, gen) })
	return nil
}

// fire writes the entry if no newer Schedule superseded this timer.
func (d *Debouncer[K, V]) fire(key K, gen uint64) {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok || e.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	defer d.inflight.Done()
	if err := d.flush(context.Background(), key, e.value); err != nil && d.onError != nil {
		d.onError(key, err)
	}
}

// Cancel drops the pending value for key without writing it. It reports
// whether anything was pending.
func (d *Debouncer[K, V]) Cancel(key K) bool {
	d.mu.Lock()
	e, ok := d.pending[key]
	if ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		d.inflight.Done()
	}
	return ok
}

// Pending returns the number of keys waiting to be written.
func (d *Debouncer[K, V]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush writes every pending value now.
func (d *Debouncer[K, V]) Flush(ctx context.Context) error {
	d.mu.Lock()
	taken := d.pending
	d.pending = make(map[K]*entry[V])
	for _, e := range taken {
		e.timer.Stop()
	}
	d.mu.Unlock()

	var errs []error
	for key, e := range taken {
		if err := d.flush(ctx, key, e.value); err != nil {
			errs = append(errs, err)
		}
		d.inflight.Done()
	}
	return errors.Join(errs...)
}

// Close flushes pending values, waits for timer-driven writes already in
// progress and rejects further Schedule calls.
func (d *Debouncer[K, V]) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	err := d.Flush(ctx)

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}
