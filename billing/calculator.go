package billing

import (
	"time"

	"github.com/warp/breakeven-engine/cache"
)

// Calculator memoizes both calculators on their full input tuple. Because the
// calculations are pure, a cached result is indistinguishable from a fresh
// one. Safe for concurrent use.
type Calculator struct {
	metrics   *cache.LRUCache[WorkSchedule, BillableMetricsResult]
	breakEven *cache.LRUCache[BreakEvenInput, BreakEvenResult]
}

// NewCalculator creates a Calculator caching up to size results of each kind.
func NewCalculator(size int, ttl time.Duration) *Calculator {
	return &Calculator{
		metrics:   cache.NewLRU[WorkSchedule, BillableMetricsResult](size, ttl),
		breakEven: cache.NewLRU[BreakEvenInput, BreakEvenResult](size, ttl),
	}
}

// Metrics is the memoized CalculateBillableMetrics.
func (c *Calculator) Metrics(in WorkScheduleInput) BillableMetricsResult {
	ws := in.Resolve()
	if r, ok := c.metrics.Get(ws); ok {
		return r
	}
	r := billableMetrics(ws)
	c.metrics.Set(ws, r)
	return r
}

// BreakEven is the memoized CalculateBreakEven. Errors are not cached.
func (c *Calculator) BreakEven(in BreakEvenInput) (BreakEvenResult, error) {
	if r, ok := c.breakEven.Get(in); ok {
		return r, nil
	}
	r, err := CalculateBreakEven(in)
	if err != nil {
		return BreakEvenResult{}, err
	}
	c.breakEven.Set(in, r)
	return r, nil
}

// Quote runs the whole pipeline: schedule → metrics → break-even.
// The metrics are returned even when the break-even step fails.
func (c *Calculator) Quote(schedule WorkScheduleInput, comp CompensationInput, otherMonthly float64) (Quote, error) {
	ws := schedule.Resolve()
	metrics := c.Metrics(schedule)
	q := Quote{Schedule: ws, Compensation: comp, OtherMonthlyExpenses: otherMonthly, Metrics: metrics}

	be, err := c.BreakEven(NewBreakEvenInput(ws, metrics, comp, otherMonthly))
	if err != nil {
		return q, err
	}
	q.BreakEven = &be
	return q, nil
}

// CleanExpired drops expired entries from both caches and returns how many
// were removed.
func (c *Calculator) CleanExpired() int {
	return c.metrics.CleanExpired() + c.breakEven.CleanExpired()
}

// CacheStats reports usage of the two caches.
func (c *Calculator) CacheStats() (metrics, breakEven cache.Stats) {
	return c.metrics.Stats(), c.breakEven.Stats()
}

// Quote bundles the inputs and outputs of one full recomputation.
type Quote struct {
	Schedule             WorkSchedule          `json:"schedule"`
	Compensation         CompensationInput     `json:"compensation"`
	OtherMonthlyExpenses float64               `json:"other_monthly_expenses"`
	Metrics              BillableMetricsResult `json:"metrics"`
	BreakEven            *BreakEvenResult      `json:"break_even,omitempty"`
}
