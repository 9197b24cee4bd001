package debounce

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	writes map[string][]int
	err    error
}

func newRecorder() *recorder {
	return &recorder{writes: make(map[string][]int)}
}

func (r *recorder) flush(_ context.Context, key string, v int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes[key] = append(r.writes[key], v)
	return r.err
}

func (r *recorder) get(key string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.writes[key]...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.flush, nil)

	// WHEN: a burst of edits
	for i := 1; i <= 10; i++ {
		require.NoError(t, d.Schedule("acme", i))
	}

	// THEN: only the last one is written
	require.Eventually(t, func() bool { return len(rec.get("acme")) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int{10}, rec.get("acme"))
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	rec := newRecorder()
	d := New(10*time.Millisecond, rec.flush, nil)

	require.NoError(t, d.Schedule("a", 1))
	require.NoError(t, d.Schedule("b", 2))
	assert.Equal(t, 2, d.Pending())

	require.Eventually(t, func() bool {
		return len(rec.get("a")) == 1 && len(rec.get("b")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncer_FlushWritesImmediately(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.flush, nil)

	require.NoError(t, d.Schedule("acme", 1))
	require.NoError(t, d.Schedule("acme", 2))

	require.NoError(t, d.Flush(context.Background()))

	assert.Equal(t, []int{2}, rec.get("acme"))
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_CloseFlushesAndRejects(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.flush, nil)

	require.NoError(t, d.Schedule("acme", 7))
	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, []int{7}, rec.get("acme"))
	assert.ErrorIs(t, d.Schedule("acme", 8), ErrClosed)
}

func TestDebouncer_FlushReturnsErrors(t *testing.T) {
	rec := newRecorder()
	rec.err = errors.New("disk full")
	d := New(time.Hour, rec.flush, nil)

	require.NoError(t, d.Schedule("acme", 1))
	err := d.Flush(context.Background())
	assert.ErrorContains(t, err, "disk full")
}

func TestDebouncer_TimerErrorsGoToHandler(t *testing.T) {
	rec := newRecorder()
	rec.err = errors.New("disk full")

	var mu sync.Mutex
	var failed []string
	d := New(5*time.Millisecond, rec.flush, func(key string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, key)
	})

	require.NoError(t, d.Schedule("acme", 1))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(failed) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncer_ConcurrentSchedule(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.flush, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, d.Schedule("acme", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, d.Pending())
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, rec.get("acme"), 1)
}

func TestDebouncer_CancelDropsPending(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.flush, nil)

	require.NoError(t, d.Schedule("acme", 1))
	assert.True(t, d.Cancel("acme"))
	assert.False(t, d.Cancel("acme"))
	assert.Equal(t, 0, d.Pending())

	require.NoError(t, d.Close(context.Background()))
	assert.Empty(t, rec.get("acme"))
}

func TestDebouncer_StaleTimerIgnoredAfterCancel(t *testing.T) {
	rec := newRecorder()
	d := New(time.Hour, rec.flush, nil)

	// GIVEN: A value that was cancelled and a new one scheduled in its place
	require.NoError(t, d.Schedule("acme", 1))
	d.mu.Lock()
	staleGen := d.pending["acme"].gen
	d.mu.Unlock()
	require.True(t, d.Cancel("acme"))
	require.NoError(t, d.Schedule("acme", 2))

	// WHEN: The cancelled value's timer fires late
	d.fire("acme", staleGen)

	// THEN: The new value stays pending until its own timer or a flush
	assert.Empty(t, rec.get("acme"))
	assert.Equal(t, 1, d.Pending())

	require.NoError(t, d.Close(context.Background()))
	assert.Equal(t, []int{2}, rec.get("acme"))
}
