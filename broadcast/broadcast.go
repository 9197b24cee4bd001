/*
Package broadcast publishes the current hourly cost of an owner so that
other processes (dashboards, invoicing tools) can read it without calling
the calculator.

SINKS:
  - RedisSink: Latest value under <prefix>:<owner>, readable with Get
  - AMQPSink:  Event per change on a durable topic exchange
  - Latest:    In-process map, used when nothing external is configured
  - Multi:     Fan-out to several sinks
  - Nop:       Discards everything

Publishing is best effort: callers log failures and carry on.
*/
package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// HourlyCost is the published value.
type HourlyCost struct {
	Owner                string    `json:"owner"`
	HourlyRate           float64   `json:"hourly_rate"`
	BreakEvenYearlyCost  float64   `json:"break_even_yearly_cost"`
	BillableHoursPerYear float64   `json:"billable_hours_per_year"`
	Currency             string    `json:"currency"`
	// Available is false when the owner has no billable hours, in which
	// case the rates are zero.
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h HourlyCost) encode() ([]byte, error) {
	return json.Marshal(h)
}

// ErrNotPublished is returned by readers when the owner has no value yet.
var ErrNotPublished = errors.New("hourly cost not published")

// Sink receives hourly cost updates.
type Sink interface {
	PublishHourlyCost(ctx context.Context, cost HourlyCost) error
}

// Reader returns the last published value of an owner.
type Reader interface {
	Get(ctx context.Context, owner string) (HourlyCost, error)
}

// =============================================================================
// NOP
// =============================================================================

type Nop struct{}

func (Nop) PublishHourlyCost(context.Context, HourlyCost) error { return nil }

// =============================================================================
// MULTI
// =============================================================================

// Multi publishes to every sink and joins their errors.
type Multi []Sink

func (m Multi) PublishHourlyCost(ctx context.Context, cost HourlyCost) error {
	var errs []error
	for _, s := range m {
		if err := s.PublishHourlyCost(ctx, cost); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// LATEST
// =============================================================================

// Latest keeps the last value per owner in memory.
type Latest struct {
	mu     sync.RWMutex
	values map[string]HourlyCost
}

func NewLatest() *Latest {
	return &Latest{values: make(map[string]HourlyCost)}
}

func (l *Latest) PublishHourlyCost(_ context.Context, cost HourlyCost) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[cost.Owner] = cost
	return nil
}

func (l *Latest) Get(_ context.Context, owner string) (HourlyCost, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.values[owner]
	if !ok {
		return HourlyCost{}, ErrNotPublished
	}
	return v, nil
}
